package dashboard

import (
	"context"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/models"
)

// CommissionRate is the platform share kept from each payment.
const CommissionRate = 0.10

type PaymentRow struct {
	ID             string                   `json:"id"`
	BookingID      string                   `json:"bookingId"`
	ServiceTitle   string                   `json:"serviceTitle"`
	ProviderID     string                   `json:"providerId"`
	ProviderName   string                   `json:"providerName"`
	ProviderRating float64                  `json:"providerRating"`
	AmountPaid     float64                  `json:"amountPaid"`
	Status         models.TransactionStatus `json:"status"`
	Date           time.Time                `json:"date"`
}

// Payments is the customer's payment history.
func (s *Service) Payments(ctx context.Context, caller models.Caller) ([]PaymentRow, error) {
	if err := requireRole(caller, models.RoleCustomer); err != nil {
		return nil, err
	}
	return cached(ctx, s, caller, ViewPayments, func(ctx context.Context) ([]PaymentRow, error) {
		var txs []models.Transaction
		if err := s.rowsFor(ctx, caller, "customer_id", "transaction_date DESC", &txs); err != nil {
			return nil, err
		}

		k := newKeys()
		for _, t := range txs {
			k.bookings.add(t.BookingID)
			k.profiles.add(t.ProviderID)
		}
		l, err := s.resolve(ctx, k)
		if err != nil {
			return nil, err
		}

		out := make([]PaymentRow, 0, len(txs))
		for _, t := range txs {
			_, title := l.bookingServiceTitle(t.BookingID)
			out = append(out, PaymentRow{
				ID:             t.ID,
				BookingID:      t.BookingID,
				ServiceTitle:   title,
				ProviderID:     t.ProviderID,
				ProviderName:   l.profileName(t.ProviderID),
				ProviderRating: l.profiles[t.ProviderID].Rating,
				AmountPaid:     t.AmountPaid,
				Status:         t.Status,
				Date:           t.TransactionDate,
			})
		}
		return out, nil
	})
}

type EarningRow struct {
	ID           string                   `json:"id"`
	BookingID    string                   `json:"bookingId"`
	CustomerName string                   `json:"customerName"`
	ServiceTitle string                   `json:"serviceTitle"`
	Amount       float64                  `json:"amount"`
	PayoutAmount float64                  `json:"payoutAmount"`
	Status       models.TransactionStatus `json:"status"`
	Date         time.Time                `json:"date"`
}

type Earnings struct {
	TotalEarning   float64      `json:"totalEarning"`
	PendingEarning float64      `json:"pendingEarning"`
	CommissionRate float64      `json:"commissionRate"`
	Transactions   []EarningRow `json:"transactions"`
}

// Earnings lists the provider's payouts. Paid and pending payouts are
// totalled separately; canceled ones count toward neither.
func (s *Service) Earnings(ctx context.Context, caller models.Caller) (*Earnings, error) {
	if err := requireRole(caller, models.RoleProvider); err != nil {
		return nil, err
	}
	return cached(ctx, s, caller, ViewEarnings, func(ctx context.Context) (*Earnings, error) {
		var txs []models.Transaction
		if err := s.rowsFor(ctx, caller, "provider_id", "transaction_date DESC", &txs); err != nil {
			return nil, err
		}

		k := newKeys()
		for _, t := range txs {
			k.bookings.add(t.BookingID)
			k.profiles.add(t.CustomerID)
		}
		l, err := s.resolve(ctx, k)
		if err != nil {
			return nil, err
		}

		e := &Earnings{CommissionRate: CommissionRate, Transactions: make([]EarningRow, 0, len(txs))}
		for _, t := range txs {
			_, title := l.bookingServiceTitle(t.BookingID)
			e.Transactions = append(e.Transactions, EarningRow{
				ID:           t.ID,
				BookingID:    t.BookingID,
				CustomerName: l.profileName(t.CustomerID),
				ServiceTitle: title,
				Amount:       t.AmountPaid,
				PayoutAmount: t.PayoutNet,
				Status:       t.Status,
				Date:         t.TransactionDate,
			})
			switch t.Status {
			case models.TransactionStatusPaid:
				e.TotalEarning += t.PayoutNet
			case models.TransactionStatusPending:
				e.PendingEarning += t.PayoutNet
			}
		}
		e.TotalEarning = round2(e.TotalEarning)
		e.PendingEarning = round2(e.PendingEarning)
		return e, nil
	})
}
