package handlers

import (
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RegisterFCMToken stores the device token booking pushes are sent to.
func RegisterFCMToken(db *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FCMToken string `json:"fcmToken" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		err := db.WithContext(c.Request.Context()).Model(&models.Profile{}).
			Where("id = ?", middleware.CallerFrom(c).ID).
			Update("fcm_token", input.FCMToken).Error
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"message": "FCM token registered successfully"})
	}
}

// RemoveFCMToken stops pushes to the caller's device, e.g. on logout.
func RemoveFCMToken(db *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.WithContext(c.Request.Context()).Model(&models.Profile{}).
			Where("id = ?", middleware.CallerFrom(c).ID).
			Update("fcm_token", "").Error
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"message": "FCM token removed successfully"})
	}
}
