package handlers

import (
	"github.com/chachabrian/taskmate-backend/internal/bookings"
	"github.com/chachabrian/taskmate-backend/internal/dashboard"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CreateBooking handles the creation of a new booking
func CreateBooking(svc *bookings.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input bookings.CreateRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := svc.Create(c.Request.Context(), middleware.CallerFrom(c), input)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(201, gin.H{
			"id":       booking.ID,
			"status":   booking.Status,
			"amount":   booking.Amount,
			"hours":    booking.Hours,
			"duration": booking.Duration(),
			"date":     booking.Date.Format("2006-01-02"),
		})
	}
}

// ListBookings returns the caller's bookings from their side with the
// actions each row allows.
func ListBookings(dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := dash.Bookings(c.Request.Context(), middleware.CallerFrom(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, rows)
	}
}

// GetBooking returns one booking with its status history.
func GetBooking(svc *bookings.Service, dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CallerFrom(c)
		ctx := c.Request.Context()

		booking, err := svc.Get(ctx, caller, c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		row, err := dash.Booking(ctx, caller, booking)
		if err != nil {
			respondError(c, log, err)
			return
		}
		history, err := svc.History(ctx, caller, booking.ID)
		if err != nil {
			respondError(c, log, err)
			return
		}

		c.JSON(200, gin.H{"booking": row, "history": history})
	}
}

// UpdateBookingStatus moves a booking along its lifecycle.
func UpdateBookingStatus(svc *bookings.Service, dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CallerFrom(c)

		var input bookings.TransitionRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		booking, err := svc.Transition(c.Request.Context(), caller, c.Param("id"), input.Status)
		if err != nil {
			respondError(c, log, err)
			return
		}
		row, err := dash.Booking(c.Request.Context(), caller, booking)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, row)
	}
}
