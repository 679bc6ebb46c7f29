package models

import "time"

// PositiveRating is the lowest rating counted as a positive review.
const PositiveRating = 4

type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookingID  string    `gorm:"size:36;not null;uniqueIndex" json:"bookingId"`
	CustomerID string    `gorm:"size:36;not null;index" json:"customerId"`
	ProviderID string    `gorm:"size:36;not null;index" json:"providerId"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Review) TableName() string {
	return "reviews"
}

// Favorite is a provider saved by a customer.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_provider" json:"userId"`
	ProviderID string    `gorm:"size:36;not null;uniqueIndex:idx_favorites_user_provider" json:"providerId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Favorite) TableName() string {
	return "favorites"
}
