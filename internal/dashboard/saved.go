package dashboard

import (
	"context"

	"github.com/chachabrian/taskmate-backend/internal/models"
)

type SavedProvider struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	Username  string  `json:"username"`
	Location  string  `json:"location"`
	Rating    float64 `json:"rating"`
	AvatarURL string  `json:"avatarUrl,omitempty"`
}

// Saved lists the providers the customer saved, most recent first.
// Favorites pointing at deleted profiles are skipped.
func (s *Service) Saved(ctx context.Context, caller models.Caller) ([]SavedProvider, error) {
	if err := requireRole(caller, models.RoleCustomer); err != nil {
		return nil, err
	}
	return cached(ctx, s, caller, ViewSaved, func(ctx context.Context) ([]SavedProvider, error) {
		var favs []models.Favorite
		if err := s.rowsFor(ctx, caller, "user_id", "created_at DESC, id DESC", &favs); err != nil {
			return nil, err
		}

		k := newKeys()
		for _, f := range favs {
			k.profiles.add(f.ProviderID)
		}
		l, err := s.resolve(ctx, k)
		if err != nil {
			return nil, err
		}

		out := make([]SavedProvider, 0, len(favs))
		for _, f := range favs {
			p, ok := l.profiles[f.ProviderID]
			if !ok {
				continue
			}
			out = append(out, SavedProvider{
				ID:        p.ID,
				FullName:  p.DisplayName(),
				Username:  p.Username,
				Location:  p.Location,
				Rating:    p.Rating,
				AvatarURL: p.AvatarURL,
			})
		}
		return out, nil
	})
}
