// Package bookings owns the booking lifecycle: creation by a customer and
// status changes by whichever party the current state allows.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Invalidator drops cached dashboard views for the given users.
type Invalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

// Notifier is told about every booking change after it is committed.
type Notifier interface {
	BookingChanged(ctx context.Context, event models.BookingEvent)
}

type Service struct {
	db       *gorm.DB
	cache    Invalidator
	notifier Notifier
	limits   Limits
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(db *gorm.DB, cache Invalidator, notifier Notifier, limits Limits, log logrus.FieldLogger) *Service {
	if cache == nil {
		cache = noopInvalidator{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if limits == (Limits{}) {
		limits = DefaultLimits
	}
	return &Service{
		db:       db,
		cache:    cache,
		notifier: notifier,
		limits:   limits,
		log:      log,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create books a published service for the calling customer. The booking
// always starts Pending and its amount is recomputed from the service rate.
func (s *Service) Create(ctx context.Context, caller models.Caller, req CreateRequest) (*models.Booking, error) {
	if !caller.Authenticated() {
		return nil, models.ErrUnauthenticated
	}

	date, hours, err := req.normalize(s.limits, truncateDay(s.now()))
	if err != nil {
		return nil, err
	}

	var svc models.Service
	if err := s.db.WithContext(ctx).First(&svc, "id = ?", req.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrServiceNotFound
		}
		return nil, err
	}
	if !svc.IsPublished {
		return nil, models.ErrServiceNotFound
	}
	if svc.ProviderID != req.ProviderID {
		return nil, models.NewValidationError("providerId", "does not offer this service")
	}
	if svc.ProviderID == caller.ID {
		return nil, models.NewValidationError("providerId", "cannot book your own service")
	}

	amount := Price(hours, svc.Price)
	if math.Abs(amount-roundCents(req.TotalPrice)) >= 0.005 {
		return nil, models.NewValidationError("totalPrice", fmt.Sprintf("expected %.2f for %d hours at %.2f", amount, hours, svc.Price))
	}

	booking := models.Booking{
		CustomerID: caller.ID,
		ProviderID: svc.ProviderID,
		ServiceID:  svc.ID,
		Date:       date,
		Hours:      hours,
		Amount:     amount,
		Status:     models.BookingStatusPending,
	}
	now := s.now()
	booking.CreatedAt, booking.UpdatedAt = now, now
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return tx.Create(&models.BookingStatusEvent{
			BookingID: booking.ID,
			To:        models.BookingStatusPending,
			ActorID:   caller.ID,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"customer_id": booking.CustomerID,
		"provider_id": booking.ProviderID,
	}).Info("booking created")

	s.afterChange(ctx, &booking, "", caller.ID, svc.Title)
	return &booking, nil
}

// Transition moves a booking to target on behalf of caller.
func (s *Service) Transition(ctx context.Context, caller models.Caller, bookingID string, target models.BookingStatus) (*models.Booking, error) {
	if !caller.Authenticated() {
		return nil, models.ErrUnauthenticated
	}
	if target == models.BookingStatusPending || !target.Valid() {
		return nil, models.NewValidationError("status", fmt.Sprintf("cannot move a booking to %q", target))
	}

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := authorizeTransition(caller, booking, target); err != nil {
		return nil, err
	}

	from := booking.Status
	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := compareAndSetStatus(tx, booking.ID, from, target, now); err != nil {
			return err
		}
		return tx.Create(&models.BookingStatusEvent{
			BookingID: booking.ID,
			From:      from,
			To:        target,
			ActorID:   caller.ID,
			CreatedAt: now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	booking.Status = target
	booking.UpdatedAt = now

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"from":       from,
		"to":         target,
		"actor_id":   caller.ID,
	}).Info("booking status changed")

	s.afterChange(ctx, booking, from, caller.ID, s.serviceTitle(ctx, booking.ServiceID))
	return booking, nil
}

// Get returns a booking to one of its parties.
func (s *Service) Get(ctx context.Context, caller models.Caller, bookingID string) (*models.Booking, error) {
	if !caller.Authenticated() {
		return nil, models.ErrUnauthenticated
	}
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Involves(caller.ID) {
		return nil, models.ErrForbidden
	}
	return booking, nil
}

// History lists the audit trail of a booking, oldest first.
func (s *Service) History(ctx context.Context, caller models.Caller, bookingID string) ([]models.BookingStatusEvent, error) {
	if _, err := s.Get(ctx, caller, bookingID); err != nil {
		return nil, err
	}
	var events []models.BookingStatusEvent
	err := s.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

func (s *Service) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).First(&booking, "id = ?", bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (s *Service) serviceTitle(ctx context.Context, serviceID string) string {
	var svc models.Service
	if err := s.db.WithContext(ctx).Select("title").First(&svc, "id = ?", serviceID).Error; err != nil {
		return ""
	}
	return svc.Title
}

// afterChange runs once the write is committed. Failures here are logged
// and never undo the change.
func (s *Service) afterChange(ctx context.Context, b *models.Booking, from models.BookingStatus, actorID, title string) {
	if err := s.cache.Invalidate(ctx, b.CustomerID, b.ProviderID); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("failed to invalidate dashboard cache")
	}
	s.notifier.BookingChanged(ctx, models.BookingEvent{
		BookingID:    b.ID,
		CustomerID:   b.CustomerID,
		ProviderID:   b.ProviderID,
		ServiceTitle: title,
		From:         from,
		To:           b.Status,
		ActorID:      actorID,
		OccurredAt:   s.now(),
	})
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, ...string) error { return nil }

type noopNotifier struct{}

func (noopNotifier) BookingChanged(context.Context, models.BookingEvent) {}
