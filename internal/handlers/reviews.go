package handlers

import (
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/reviews"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CreateReview rates a completed booking.
func CreateReview(svc *reviews.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input reviews.Input
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		review, err := svc.Create(c.Request.Context(), middleware.CallerFrom(c), input)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(201, review)
	}
}
