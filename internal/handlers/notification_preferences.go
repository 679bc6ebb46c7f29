package handlers

import (
	"errors"

	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// preferencesFor loads the user's preferences, creating the defaults on
// first access.
func preferencesFor(c *gin.Context, db *gorm.DB, userID string) (*models.NotificationPreference, error) {
	var preferences models.NotificationPreference
	err := db.WithContext(c.Request.Context()).Where("user_id = ?", userID).First(&preferences).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		defaults := models.DefaultPreferences(userID)
		if err := db.WithContext(c.Request.Context()).Create(defaults).Error; err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return &preferences, nil
}

// GetNotificationPreferences retrieves user's notification preferences
func GetNotificationPreferences(db *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		preferences, err := preferencesFor(c, db, middleware.CallerFrom(c).ID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, preferences)
	}
}

// UpdateNotificationPreferences updates user's notification preferences
func UpdateNotificationPreferences(db *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			PushEnabled         *bool `json:"pushEnabled"`
			BookingAlerts       *bool `json:"bookingAlerts"`
			PromotionalMessages *bool `json:"promotionalMessages"`
			EmailEnabled        *bool `json:"emailEnabled"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		preferences, err := preferencesFor(c, db, middleware.CallerFrom(c).ID)
		if err != nil {
			respondError(c, log, err)
			return
		}

		if input.PushEnabled != nil {
			preferences.PushEnabled = *input.PushEnabled
		}
		if input.BookingAlerts != nil {
			preferences.BookingAlerts = *input.BookingAlerts
		}
		if input.PromotionalMessages != nil {
			preferences.PromotionalMessages = *input.PromotionalMessages
		}
		if input.EmailEnabled != nil {
			preferences.EmailEnabled = *input.EmailEnabled
		}

		if err := db.WithContext(c.Request.Context()).Save(preferences).Error; err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, preferences)
	}
}
