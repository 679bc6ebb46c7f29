package bookings

import (
	"fmt"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"gorm.io/gorm"
)

// authorizeTransition is the single check every status change goes
// through: the caller must be the party the target status belongs to and
// the booking must currently sit on an edge leading to it.
func authorizeTransition(caller models.Caller, b *models.Booking, target models.BookingStatus) error {
	if !caller.Authenticated() {
		return models.ErrUnauthenticated
	}

	actor, ok := models.TransitionActor(target)
	if !ok {
		return models.NewValidationError("status", fmt.Sprintf("cannot move a booking to %q", target))
	}

	switch actor {
	case models.RoleProvider:
		if caller.ID != b.ProviderID {
			return fmt.Errorf("%w: only the booking's provider may set %s", models.ErrForbidden, target)
		}
	case models.RoleCustomer:
		if caller.ID != b.CustomerID {
			return fmt.Errorf("%w: only the booking's customer may set %s", models.ErrForbidden, target)
		}
	}

	if !models.CanTransition(b.Status, target) {
		return fmt.Errorf("%w (%s -> %s)", models.ErrBookingStateConflict, b.Status, target)
	}
	return nil
}

// compareAndSetStatus writes the new status only if the row still holds
// the status the guard saw. Losing a race surfaces as a conflict.
func compareAndSetStatus(tx *gorm.DB, bookingID string, from, to models.BookingStatus, at time.Time) error {
	res := tx.Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w (expected %s)", models.ErrBookingStateConflict, from)
	}
	return nil
}
