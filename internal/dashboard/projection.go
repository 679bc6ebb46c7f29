package dashboard

import (
	"context"
	"sort"

	"github.com/chachabrian/taskmate-backend/internal/models"
)

const (
	unknownProfile = "Unknown user"
	unknownService = "Service unavailable"
)

// sideColumn is the column holding the caller's id on booking-shaped
// tables (bookings, transactions, reviews).
func sideColumn(role models.Role) string {
	if role == models.RoleProvider {
		return "provider_id"
	}
	return "customer_id"
}

// rowsFor runs the primary query of every view: the caller's rows of a
// table, in the given order.
func (s *Service) rowsFor(ctx context.Context, caller models.Caller, column, order string, dst interface{}) error {
	return s.db.WithContext(ctx).Where(column+" = ?", caller.ID).Order(order).Find(dst).Error
}

type idSet map[string]struct{}

func (s idSet) add(ids ...string) {
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
}

func (s idSet) list() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// keys collects the foreign keys a set of rows refers to.
type keys struct {
	profiles idSet
	services idSet
	bookings idSet
}

func newKeys() keys {
	return keys{profiles: idSet{}, services: idSet{}, bookings: idSet{}}
}

// lookups holds the batched secondary rows, indexed by id.
type lookups struct {
	profiles map[string]models.Profile
	services map[string]models.Service
	bookings map[string]models.Booking
}

// resolve loads everything k refers to with one IN query per table.
// Bookings are loaded first so their services join the service lookup.
func (s *Service) resolve(ctx context.Context, k keys) (*lookups, error) {
	l := &lookups{
		profiles: map[string]models.Profile{},
		services: map[string]models.Service{},
		bookings: map[string]models.Booking{},
	}
	db := s.db.WithContext(ctx)

	if len(k.bookings) > 0 {
		var rows []models.Booking
		if err := db.Where("id IN ?", k.bookings.list()).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, b := range rows {
			l.bookings[b.ID] = b
			k.services.add(b.ServiceID)
		}
	}

	if len(k.services) > 0 {
		var rows []models.Service
		if err := db.Where("id IN ?", k.services.list()).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, svc := range rows {
			l.services[svc.ID] = svc
		}
	}

	if len(k.profiles) > 0 {
		var rows []models.Profile
		if err := db.Where("id IN ?", k.profiles.list()).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, p := range rows {
			l.profiles[p.ID] = p
		}
	}
	return l, nil
}

func (l *lookups) profileName(id string) string {
	if p, ok := l.profiles[id]; ok {
		return p.DisplayName()
	}
	return unknownProfile
}

func (l *lookups) serviceTitle(id string) string {
	if svc, ok := l.services[id]; ok {
		return svc.Title
	}
	return unknownService
}

// bookingServiceTitle follows a booking to its service.
func (l *lookups) bookingServiceTitle(bookingID string) (string, string) {
	b, ok := l.bookings[bookingID]
	if !ok {
		return "", unknownService
	}
	return b.ServiceID, l.serviceTitle(b.ServiceID)
}
