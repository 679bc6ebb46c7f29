// Package dashboard renders the read-only views of the customer and
// provider dashboards. Every view goes through the same projection and is
// cached per user until a booking change touching that user invalidates it.
package dashboard

import (
	"context"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	ViewBookings  = "bookings"
	ViewPayments  = "payments"
	ViewEarnings  = "earnings"
	ViewRatings   = "ratings"
	ViewSaved     = "saved"
	ViewAnalytics = "analytics"
	ViewOverview  = "overview"
)

// Cache stores rendered views per user. Get reports whether dst was filled.
type Cache interface {
	Get(ctx context.Context, userID, view string, dst interface{}) (bool, error)
	Set(ctx context.Context, userID, view string, v interface{}) error
}

type Service struct {
	db    *gorm.DB
	cache Cache
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(db *gorm.DB, cache Cache, log logrus.FieldLogger) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{db: db, cache: cache, log: log, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// cached serves view from the cache or builds and stores it. Cache
// failures only cost a rebuild.
func cached[T any](ctx context.Context, s *Service, caller models.Caller, view string, build func(context.Context) (T, error)) (T, error) {
	var out T
	hit, err := s.cache.Get(ctx, caller.ID, view, &out)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": caller.ID, "view": view}).Warn("dashboard cache read failed")
	} else if hit {
		return out, nil
	}

	out, err = build(ctx)
	if err != nil {
		return out, err
	}
	if err := s.cache.Set(ctx, caller.ID, view, out); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"user_id": caller.ID, "view": view}).Warn("dashboard cache write failed")
	}
	return out, nil
}

func requireRole(caller models.Caller, role models.Role) error {
	if !caller.Authenticated() {
		return models.ErrUnauthenticated
	}
	if caller.Role != role {
		return models.ErrForbidden
	}
	return nil
}

type noCache struct{}

func (noCache) Get(context.Context, string, string, interface{}) (bool, error) { return false, nil }
func (noCache) Set(context.Context, string, string, interface{}) error        { return nil }
