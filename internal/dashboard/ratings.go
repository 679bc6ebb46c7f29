package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/models"
)

type ReviewRow struct {
	ID           uint      `json:"id"`
	BookingID    string    `json:"bookingId"`
	CustomerName string    `json:"customerName"`
	ServiceID    string    `json:"serviceId"`
	ServiceTitle string    `json:"serviceTitle"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Ratings struct {
	Average   float64     `json:"average"`
	Total     int         `json:"total"`
	Positive  int         `json:"positive"`
	Reviews   []ReviewRow `json:"reviews"`
	ServiceID string      `json:"serviceId,omitempty"`
}

// Ratings summarises the provider's reviews, optionally for one service.
func (s *Service) Ratings(ctx context.Context, caller models.Caller, serviceID string) (*Ratings, error) {
	if err := requireRole(caller, models.RoleProvider); err != nil {
		return nil, err
	}
	view := ViewRatings
	if serviceID != "" {
		view += ":" + serviceID
	}
	return cached(ctx, s, caller, view, func(ctx context.Context) (*Ratings, error) {
		var reviews []models.Review
		if err := s.rowsFor(ctx, caller, "provider_id", "created_at DESC", &reviews); err != nil {
			return nil, err
		}

		k := newKeys()
		for _, r := range reviews {
			k.bookings.add(r.BookingID)
			k.profiles.add(r.CustomerID)
		}
		l, err := s.resolve(ctx, k)
		if err != nil {
			return nil, err
		}

		out := &Ratings{Reviews: []ReviewRow{}, ServiceID: serviceID}
		sum := 0
		for _, r := range reviews {
			svcID, title := l.bookingServiceTitle(r.BookingID)
			if serviceID != "" && svcID != serviceID {
				continue
			}
			out.Reviews = append(out.Reviews, ReviewRow{
				ID:           r.ID,
				BookingID:    r.BookingID,
				CustomerName: l.profileName(r.CustomerID),
				ServiceID:    svcID,
				ServiceTitle: title,
				Rating:       r.Rating,
				Comment:      r.Comment,
				CreatedAt:    r.CreatedAt,
			})
			sum += r.Rating
			if r.Rating >= models.PositiveRating {
				out.Positive++
			}
		}
		out.Total = len(out.Reviews)
		if out.Total > 0 {
			out.Average = round2(float64(sum) / float64(out.Total))
		}
		return out, nil
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
