package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("not allowed to perform this action")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var (
	ErrBookingNotFound  = fmt.Errorf("booking %w", ErrNotFound)
	ErrServiceNotFound  = fmt.Errorf("service %w", ErrNotFound)
	ErrProfileNotFound  = fmt.Errorf("profile %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrProviderNotFound = fmt.Errorf("provider %w", ErrNotFound)

	ErrBookingStateConflict = fmt.Errorf("%w: booking is not in a state that allows this change", ErrConflict)
	ErrServiceHasBookings   = fmt.Errorf("%w: service has active bookings", ErrConflict)
	ErrAlreadyReviewed      = fmt.Errorf("%w: booking already reviewed", ErrConflict)
	ErrDuplicateEmail       = fmt.Errorf("%w: email already registered", ErrConflict)
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
