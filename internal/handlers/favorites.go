package handlers

import (
	"errors"

	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/chachabrian/taskmate-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddFavorite saves a provider for the caller. Saving twice is a no-op.
func AddFavorite(db *gorm.DB, cache *services.RedisCache, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CallerFrom(c)

		var input struct {
			ProviderID string `json:"providerId" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var provider models.Profile
		err := db.WithContext(c.Request.Context()).
			Where("id = ? AND role = ?", input.ProviderID, models.RoleProvider).
			First(&provider).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, log, models.ErrProviderNotFound)
			return
		}
		if err != nil {
			respondError(c, log, err)
			return
		}

		favorite := models.Favorite{UserID: caller.ID, ProviderID: provider.ID}
		if err := db.WithContext(c.Request.Context()).Where(favorite).FirstOrCreate(&favorite).Error; err != nil {
			respondError(c, log, err)
			return
		}

		invalidate(c, cache, log, caller.ID)
		c.JSON(200, favorite)
	}
}

func RemoveFavorite(db *gorm.DB, cache *services.RedisCache, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CallerFrom(c)

		err := db.WithContext(c.Request.Context()).
			Where("user_id = ? AND provider_id = ?", caller.ID, c.Param("providerId")).
			Delete(&models.Favorite{}).Error
		if err != nil {
			respondError(c, log, err)
			return
		}

		invalidate(c, cache, log, caller.ID)
		c.JSON(200, gin.H{"message": "Provider removed from favorites"})
	}
}
