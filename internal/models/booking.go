package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "Pending"
	BookingStatusConfirmed  BookingStatus = "Confirmed"
	BookingStatusRejected   BookingStatus = "Rejected"
	BookingStatusCancelled  BookingStatus = "Cancelled"
	BookingStatusInProgress BookingStatus = "In Progress"
	BookingStatusCompleted  BookingStatus = "Completed"
)

// AllBookingStatuses lists every status in lifecycle order.
var AllBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusRejected,
	BookingStatusCancelled,
	BookingStatusInProgress,
	BookingStatusCompleted,
}

// BookingTransition is one edge of the booking lifecycle together with
// the party allowed to take it.
type BookingTransition struct {
	From  BookingStatus
	To    BookingStatus
	Actor Role
}

var bookingTransitions = []BookingTransition{
	{From: BookingStatusPending, To: BookingStatusConfirmed, Actor: RoleProvider},
	{From: BookingStatusPending, To: BookingStatusRejected, Actor: RoleProvider},
	{From: BookingStatusPending, To: BookingStatusCancelled, Actor: RoleCustomer},
	{From: BookingStatusConfirmed, To: BookingStatusInProgress, Actor: RoleProvider},
	{From: BookingStatusInProgress, To: BookingStatusCompleted, Actor: RoleProvider},
}

func (s BookingStatus) Valid() bool {
	for _, status := range AllBookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusRejected || s == BookingStatusCancelled || s == BookingStatusCompleted
}

// Active reports whether the booking still holds the provider's time.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed || s == BookingStatusInProgress
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to BookingStatus) bool {
	for _, t := range bookingTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// TransitionActor returns the party allowed to move a booking into the
// target status. ok is false when no edge leads to target.
func TransitionActor(target BookingStatus) (role Role, ok bool) {
	for _, t := range bookingTransitions {
		if t.To == target {
			return t.Actor, true
		}
	}
	return "", false
}

// NextStatuses returns the statuses the given role may move a booking to
// from its current status.
func NextStatuses(current BookingStatus, role Role) []BookingStatus {
	var next []BookingStatus
	for _, t := range bookingTransitions {
		if t.From == current && t.Actor == role {
			next = append(next, t.To)
		}
	}
	return next
}

// Booking is a customer's request for a provider's service on a date.
type Booking struct {
	ID         string        `gorm:"primaryKey;size:36" json:"id"`
	CustomerID string        `gorm:"size:36;not null;index" json:"customerId"`
	ProviderID string        `gorm:"size:36;not null;index" json:"providerId"`
	ServiceID  string        `gorm:"size:36;not null;index" json:"serviceId"`
	Date       time.Time     `gorm:"type:date;not null" json:"date"`
	Hours      int           `gorm:"not null" json:"hours"`
	Amount     float64       `gorm:"not null" json:"amount"`
	Status     BookingStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Duration renders the booked time the way listings show it.
func (b Booking) Duration() string {
	if b.Hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", b.Hours)
}

// Involves reports whether the user is the booking's customer or provider.
func (b Booking) Involves(userID string) bool {
	return userID != "" && (b.CustomerID == userID || b.ProviderID == userID)
}

// Counterpart returns the other party of the booking for userID.
func (b Booking) Counterpart(userID string) string {
	if b.CustomerID == userID {
		return b.ProviderID
	}
	return b.CustomerID
}

// BookingStatusEvent is the audit row written for every status change.
type BookingStatusEvent struct {
	ID        uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID string        `gorm:"size:36;not null;index" json:"bookingId"`
	From      BookingStatus `gorm:"column:from_status;size:16" json:"from"`
	To        BookingStatus `gorm:"column:to_status;size:16;not null" json:"to"`
	ActorID   string        `gorm:"size:36;not null" json:"actorId"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (BookingStatusEvent) TableName() string {
	return "booking_status_events"
}

// BookingEvent is what gets pushed to the parties after a booking changes.
type BookingEvent struct {
	BookingID    string        `json:"bookingId"`
	CustomerID   string        `json:"customerId"`
	ProviderID   string        `json:"providerId"`
	ServiceTitle string        `json:"serviceTitle,omitempty"`
	From         BookingStatus `json:"from,omitempty"`
	To           BookingStatus `json:"to"`
	ActorID      string        `json:"actorId"`
	OccurredAt   time.Time     `json:"occurredAt"`
}

// Recipient is the party that did not cause the event.
func (e BookingEvent) Recipient() string {
	if e.ActorID == e.CustomerID {
		return e.ProviderID
	}
	return e.CustomerID
}
