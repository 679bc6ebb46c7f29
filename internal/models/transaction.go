package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionStatus string

const (
	TransactionStatusPaid     TransactionStatus = "Paid"
	TransactionStatusPending  TransactionStatus = "Pending"
	TransactionStatusCanceled TransactionStatus = "Canceled"
)

// Transaction is a settlement record written by the payment provider
// integration. This service only reads it.
type Transaction struct {
	ID              string            `gorm:"primaryKey;size:36" json:"id"`
	BookingID       string            `gorm:"size:36;index" json:"bookingId"`
	CustomerID      string            `gorm:"size:36;not null;index" json:"customerId"`
	ProviderID      string            `gorm:"size:36;not null;index" json:"providerId"`
	AmountPaid      float64           `gorm:"column:amount_paid;not null" json:"amountPaid"`
	PayoutNet       float64           `gorm:"column:payout_net;not null" json:"payoutNet"`
	Status          TransactionStatus `gorm:"size:16;not null" json:"status"`
	TransactionDate time.Time         `gorm:"column:transaction_date;not null;index" json:"transactionDate"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
