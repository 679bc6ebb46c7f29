package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/models"
)

type Analytics struct {
	TotalBookings        int     `json:"totalBookings"`
	CompletedBookings    int     `json:"completedBookings"`
	CompletionRate       int     `json:"completionRate"`
	CustomerSatisfaction float64 `json:"customerSatisfaction"`
	CurrentMonthEarning  float64 `json:"currentMonthEarning"`
	LastMonthEarning     float64 `json:"lastMonthEarning"`
	TotalEarnings        float64 `json:"totalEarnings"`
	GrowthRate           float64 `json:"growthRate"`
}

// Analytics reports the provider's completion rate and payout trend.
// GrowthRate is the change from last month as a fraction, zero when
// there were no payouts last month.
func (s *Service) Analytics(ctx context.Context, caller models.Caller) (*Analytics, error) {
	if err := requireRole(caller, models.RoleProvider); err != nil {
		return nil, err
	}
	return cached(ctx, s, caller, ViewAnalytics, func(ctx context.Context) (*Analytics, error) {
		var bookings []models.Booking
		if err := s.rowsFor(ctx, caller, "provider_id", "created_at DESC", &bookings); err != nil {
			return nil, err
		}
		var txs []models.Transaction
		if err := s.rowsFor(ctx, caller, "provider_id", "transaction_date DESC", &txs); err != nil {
			return nil, err
		}
		var reviews []models.Review
		if err := s.rowsFor(ctx, caller, "provider_id", "created_at DESC", &reviews); err != nil {
			return nil, err
		}

		a := &Analytics{TotalBookings: len(bookings)}
		for _, b := range bookings {
			if b.Status == models.BookingStatusCompleted {
				a.CompletedBookings++
			}
		}
		if a.TotalBookings > 0 {
			a.CompletionRate = int(math.Round(float64(a.CompletedBookings) / float64(a.TotalBookings) * 100))
		}

		if len(reviews) > 0 {
			sum := 0
			for _, r := range reviews {
				sum += r.Rating
			}
			a.CustomerSatisfaction = round2(float64(sum) / float64(len(reviews)))
		}

		thisMonth := monthStart(s.now())
		lastMonth := thisMonth.AddDate(0, -1, 0)
		for _, t := range txs {
			if t.Status == models.TransactionStatusCanceled {
				continue
			}
			a.TotalEarnings += t.PayoutNet
			month := monthStart(t.TransactionDate)
			if month.Equal(thisMonth) {
				a.CurrentMonthEarning += t.PayoutNet
			} else if month.Equal(lastMonth) {
				a.LastMonthEarning += t.PayoutNet
			}
		}
		a.TotalEarnings = round2(a.TotalEarnings)
		a.CurrentMonthEarning = round2(a.CurrentMonthEarning)
		a.LastMonthEarning = round2(a.LastMonthEarning)
		if a.LastMonthEarning > 0 {
			a.GrowthRate = math.Round((a.CurrentMonthEarning-a.LastMonthEarning)/a.LastMonthEarning*10000) / 10000
		}
		return a, nil
	})
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
