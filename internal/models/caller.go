package models

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID   string
	Role Role
}

func (c Caller) Authenticated() bool {
	return c.ID != ""
}

func (c Caller) Is(role Role) bool {
	return c.Authenticated() && c.Role == role
}
