package bookings

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/models"
)

const dateLayout = "2006-01-02"

// Limits bounds the number of hours a single booking may cover.
type Limits struct {
	MinHours     int
	MaxHours     int
	DefaultHours int
}

var DefaultLimits = Limits{MinHours: 1, MaxHours: 12, DefaultHours: 2}

// CreateRequest is the body of a booking request. TotalPrice is what the
// client displayed; it is checked against the service's current rate.
type CreateRequest struct {
	ServiceID  string  `json:"serviceId" binding:"required"`
	ProviderID string  `json:"providerId" binding:"required"`
	Hours      int     `json:"hours"`
	TotalPrice float64 `json:"totalPrice" binding:"required"`
	Date       string  `json:"date" binding:"required"`
}

// normalize applies the hour default and checks the fields that do not
// need the database.
func (r CreateRequest) normalize(limits Limits, today time.Time) (time.Time, int, error) {
	if strings.TrimSpace(r.ServiceID) == "" {
		return time.Time{}, 0, models.NewValidationError("serviceId", "is required")
	}
	if strings.TrimSpace(r.ProviderID) == "" {
		return time.Time{}, 0, models.NewValidationError("providerId", "is required")
	}

	hours := r.Hours
	if hours == 0 {
		hours = limits.DefaultHours
	}
	if hours < limits.MinHours || hours > limits.MaxHours {
		return time.Time{}, 0, models.NewValidationError("hours", fmt.Sprintf("must be between %d and %d", limits.MinHours, limits.MaxHours))
	}

	if strings.TrimSpace(r.Date) == "" {
		return time.Time{}, 0, models.NewValidationError("date", "is required")
	}
	date, err := time.ParseInLocation(dateLayout, r.Date, today.Location())
	if err != nil {
		return time.Time{}, 0, models.NewValidationError("date", "must be formatted as YYYY-MM-DD")
	}
	if date.Before(today) {
		return time.Time{}, 0, models.NewValidationError("date", "must not be in the past")
	}
	return date, hours, nil
}

// TransitionRequest is the body of a status change.
type TransitionRequest struct {
	Status models.BookingStatus `json:"status" binding:"required"`
}

// Price is hours times the hourly rate, rounded to cents.
func Price(hours int, rate float64) float64 {
	return roundCents(float64(hours) * rate)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// truncateDay is midnight of t's date in t's own zone, so "today" follows
// the server clock rather than UTC.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
