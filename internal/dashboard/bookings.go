package dashboard

import (
	"context"

	"github.com/chachabrian/taskmate-backend/internal/models"
)

// Action is a status change the viewer may trigger from a booking row.
type Action struct {
	Label  string               `json:"label"`
	Status models.BookingStatus `json:"status"`
}

var actionLabels = map[models.BookingStatus]string{
	models.BookingStatusConfirmed:  "Accept",
	models.BookingStatusRejected:   "Reject",
	models.BookingStatusCancelled:  "Cancel",
	models.BookingStatusInProgress: "Start",
	models.BookingStatusCompleted:  "Complete",
}

// Actions lists what role may do with a booking in status.
func Actions(status models.BookingStatus, role models.Role) []Action {
	actions := []Action{}
	for _, next := range models.NextStatuses(status, role) {
		actions = append(actions, Action{Label: actionLabels[next], Status: next})
	}
	return actions
}

type BookingRow struct {
	ID                string               `json:"id"`
	ServiceID         string               `json:"serviceId"`
	ServiceTitle      string               `json:"serviceTitle"`
	CounterpartID     string               `json:"counterpartId"`
	CounterpartName   string               `json:"counterpartName"`
	CounterpartAvatar string               `json:"counterpartAvatar,omitempty"`
	Location          string               `json:"location,omitempty"`
	Date              string               `json:"date"`
	Hours             int                  `json:"hours"`
	Duration          string               `json:"duration"`
	Amount            float64              `json:"amount"`
	Status            models.BookingStatus `json:"status"`
	Actions           []Action             `json:"actions"`
}

// Bookings lists the caller's bookings from their side, newest first.
func (s *Service) Bookings(ctx context.Context, caller models.Caller) ([]BookingRow, error) {
	if !caller.Authenticated() {
		return nil, models.ErrUnauthenticated
	}
	return cached(ctx, s, caller, ViewBookings, func(ctx context.Context) ([]BookingRow, error) {
		var rows []models.Booking
		if err := s.rowsFor(ctx, caller, sideColumn(caller.Role), "created_at DESC", &rows); err != nil {
			return nil, err
		}
		return s.bookingRows(ctx, caller, rows)
	})
}

// Booking renders one booking the caller is a party to.
func (s *Service) Booking(ctx context.Context, caller models.Caller, b *models.Booking) (*BookingRow, error) {
	if !b.Involves(caller.ID) {
		return nil, models.ErrForbidden
	}
	rows, err := s.bookingRows(ctx, caller, []models.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (s *Service) bookingRows(ctx context.Context, caller models.Caller, rows []models.Booking) ([]BookingRow, error) {
	k := newKeys()
	for _, b := range rows {
		k.services.add(b.ServiceID)
		k.profiles.add(b.Counterpart(caller.ID))
	}
	l, err := s.resolve(ctx, k)
	if err != nil {
		return nil, err
	}

	out := make([]BookingRow, 0, len(rows))
	for _, b := range rows {
		// Actions follow the caller's side of this booking, not the role
		// claim, so a row always matches what Transition will accept.
		side := models.RoleCustomer
		if b.ProviderID == caller.ID {
			side = models.RoleProvider
		}
		counterpart := b.Counterpart(caller.ID)
		p := l.profiles[counterpart]
		out = append(out, BookingRow{
			ID:                b.ID,
			ServiceID:         b.ServiceID,
			ServiceTitle:      l.serviceTitle(b.ServiceID),
			CounterpartID:     counterpart,
			CounterpartName:   l.profileName(counterpart),
			CounterpartAvatar: p.AvatarURL,
			Location:          p.Location,
			Date:              b.Date.Format("2006-01-02"),
			Hours:             b.Hours,
			Duration:          b.Duration(),
			Amount:            b.Amount,
			Status:            b.Status,
			Actions:           Actions(b.Status, side),
		})
	}
	return out, nil
}
