package dashboard

import (
	"context"

	"github.com/chachabrian/taskmate-backend/internal/models"
)

// recentBookings is how many bookings the overview lists.
const recentBookings = 3

// Overview is the landing dashboard of either role. Money is what the
// customer paid or, for a provider, the net payout received.
type Overview struct {
	ActiveBookings    int          `json:"activeBookings"`
	CompletedBookings int          `json:"completedBookings"`
	MonetaryLabel     string       `json:"monetaryLabel"`
	MonetaryValue     float64      `json:"monetaryValue"`
	RecentBookings    []BookingRow `json:"recentBookings"`
}

func (s *Service) Overview(ctx context.Context, caller models.Caller) (*Overview, error) {
	if !caller.Authenticated() {
		return nil, models.ErrUnauthenticated
	}
	return cached(ctx, s, caller, ViewOverview, func(ctx context.Context) (*Overview, error) {
		column := sideColumn(caller.Role)

		var rows []models.Booking
		if err := s.rowsFor(ctx, caller, column, "date DESC, created_at DESC", &rows); err != nil {
			return nil, err
		}

		out := &Overview{MonetaryLabel: "Total Paid"}
		if caller.Role == models.RoleProvider {
			out.MonetaryLabel = "Current Income"
		}
		for _, b := range rows {
			switch b.Status {
			case models.BookingStatusConfirmed, models.BookingStatusInProgress:
				out.ActiveBookings++
			case models.BookingStatusCompleted:
				out.CompletedBookings++
			}
		}

		recent := rows
		if len(recent) > recentBookings {
			recent = recent[:recentBookings]
		}
		var err error
		if out.RecentBookings, err = s.bookingRows(ctx, caller, recent); err != nil {
			return nil, err
		}

		var txs []models.Transaction
		if err := s.rowsFor(ctx, caller, column, "transaction_date DESC", &txs); err != nil {
			return nil, err
		}
		for _, t := range txs {
			if t.Status != models.TransactionStatusPaid {
				continue
			}
			if caller.Role == models.RoleProvider {
				out.MonetaryValue += t.PayoutNet
			} else {
				out.MonetaryValue += t.AmountPaid
			}
		}
		out.MonetaryValue = round2(out.MonetaryValue)
		return out, nil
	})
}
