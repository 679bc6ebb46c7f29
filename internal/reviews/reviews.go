// Package reviews lets customers rate completed bookings and keeps each
// provider's profile rating in line with their reviews.
package reviews

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/chachabrian/taskmate-backend/internal/dashboard"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Invalidator drops cached dashboard views for the given users.
type Invalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

type Service struct {
	db    *gorm.DB
	cache Invalidator
	log   logrus.FieldLogger
}

func NewService(db *gorm.DB, cache Invalidator, log logrus.FieldLogger) *Service {
	return &Service{db: db, cache: cache, log: log}
}

type Input struct {
	BookingID string `json:"bookingId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func (in *Input) Validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return models.NewValidationError("rating", "must be between 1 and 5")
	}
	in.Comment = strings.TrimSpace(in.Comment)
	return nil
}

// Create stores the customer's review of a completed booking and
// recomputes the provider's rating in the same transaction.
func (s *Service) Create(ctx context.Context, caller models.Caller, in Input) (*models.Review, error) {
	if !caller.Authenticated() {
		return nil, models.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, "id = ?", in.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrBookingNotFound
		}
		return nil, err
	}
	if booking.CustomerID != caller.ID {
		return nil, models.ErrForbidden
	}
	if booking.Status != models.BookingStatusCompleted {
		return nil, models.ErrBookingStateConflict
	}

	review := models.Review{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		ProviderID: booking.ProviderID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Review{}).Where("booking_id = ?", booking.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return models.ErrAlreadyReviewed
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return updateProviderRating(tx, booking.ProviderID)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = models.ErrAlreadyReviewed
	}
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"provider_id": booking.ProviderID,
		"rating":      review.Rating,
	}).Info("review created")

	s.invalidate(ctx, booking)
	return &review, nil
}

// invalidate drops the views showing the provider's rating, which reach
// beyond the two parties of the booking.
func (s *Service) invalidate(ctx context.Context, booking models.Booking) {
	if s.cache == nil {
		return
	}
	ids, err := dashboard.Audience(ctx, s.db, booking.ProviderID)
	if err != nil {
		s.log.WithError(err).WithField("provider_id", booking.ProviderID).Warn("failed to list provider audience")
		ids = []string{booking.CustomerID, booking.ProviderID}
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.log.WithError(err).Warn("failed to invalidate dashboard cache")
	}
}

func updateProviderRating(tx *gorm.DB, providerID string) error {
	var average float64
	err := tx.Model(&models.Review{}).
		Where("provider_id = ?", providerID).
		Select("COALESCE(AVG(rating), 0)").
		Row().Scan(&average)
	if err != nil {
		return err
	}
	return tx.Model(&models.Profile{}).
		Where("id = ?", providerID).
		Update("rating", math.Round(average*100)/100).Error
}
