package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]BookingStatus]bool{
		{BookingStatusPending, BookingStatusConfirmed}:    true,
		{BookingStatusPending, BookingStatusRejected}:     true,
		{BookingStatusPending, BookingStatusCancelled}:    true,
		{BookingStatusConfirmed, BookingStatusInProgress}: true,
		{BookingStatusInProgress, BookingStatusCompleted}: true,
	}

	for _, from := range AllBookingStatuses {
		for _, to := range AllBookingStatuses {
			want := allowed[[2]BookingStatus{from, to}]
			assert.Equalf(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, from := range AllBookingStatuses {
		if !from.Terminal() {
			continue
		}
		assert.Empty(t, NextStatuses(from, RoleCustomer), from)
		assert.Empty(t, NextStatuses(from, RoleProvider), from)
	}
}

func TestTransitionActor(t *testing.T) {
	role, ok := TransitionActor(BookingStatusCancelled)
	assert.True(t, ok)
	assert.Equal(t, RoleCustomer, role)

	for _, s := range []BookingStatus{BookingStatusConfirmed, BookingStatusRejected, BookingStatusInProgress, BookingStatusCompleted} {
		role, ok := TransitionActor(s)
		assert.True(t, ok, s)
		assert.Equal(t, RoleProvider, role, s)
	}

	_, ok = TransitionActor(BookingStatusPending)
	assert.False(t, ok)
	_, ok = TransitionActor(BookingStatus("Archived"))
	assert.False(t, ok)
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []BookingStatus{BookingStatusCancelled}, NextStatuses(BookingStatusPending, RoleCustomer))
	assert.Equal(t, []BookingStatus{BookingStatusConfirmed, BookingStatusRejected}, NextStatuses(BookingStatusPending, RoleProvider))
	assert.Empty(t, NextStatuses(BookingStatusConfirmed, RoleCustomer))
	assert.Equal(t, []BookingStatus{BookingStatusInProgress}, NextStatuses(BookingStatusConfirmed, RoleProvider))
}

func TestBookingHelpers(t *testing.T) {
	b := Booking{CustomerID: "c", ProviderID: "p", Hours: 3}
	assert.Equal(t, "3 hours", b.Duration())
	assert.Equal(t, "1 hour", Booking{Hours: 1}.Duration())
	assert.True(t, b.Involves("c"))
	assert.True(t, b.Involves("p"))
	assert.False(t, b.Involves("x"))
	assert.False(t, b.Involves(""))
	assert.Equal(t, "p", b.Counterpart("c"))
	assert.Equal(t, "c", b.Counterpart("p"))

	e := BookingEvent{CustomerID: "c", ProviderID: "p", ActorID: "p"}
	assert.Equal(t, "c", e.Recipient())
	e.ActorID = "c"
	assert.Equal(t, "p", e.Recipient())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, BookingStatusInProgress.Valid())
	assert.False(t, BookingStatus("pending").Valid())
	assert.True(t, BookingStatusPending.Active())
	assert.False(t, BookingStatusCompleted.Active())
}
