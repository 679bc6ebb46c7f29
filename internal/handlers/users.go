package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chachabrian/taskmate-backend/internal/dashboard"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/chachabrian/taskmate-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GetMe returns the caller's profile.
func GetMe(db *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := loadProfile(c, db, middleware.CallerFrom(c).ID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, profile)
	}
}

type UpdateProfileInput struct {
	FullName *string `json:"fullname"`
	Username *string `json:"username"`
	Location *string `json:"location"`
}

// UpdateProfile changes the caller's display fields. Only fields present
// in the body are touched.
func UpdateProfile(db *gorm.DB, cache *services.RedisCache, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CallerFrom(c)

		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		profile, err := loadProfile(c, db, caller.ID)
		if err != nil {
			respondError(c, log, err)
			return
		}

		if input.FullName != nil {
			name := strings.TrimSpace(*input.FullName)
			if name == "" {
				respondError(c, log, models.NewValidationError("fullname", "must not be empty"))
				return
			}
			profile.FullName = name
		}
		if input.Username != nil {
			profile.Username = strings.TrimSpace(*input.Username)
		}
		if input.Location != nil {
			profile.Location = strings.TrimSpace(*input.Location)
		}

		if err := db.WithContext(c.Request.Context()).Save(profile).Error; err != nil {
			respondError(c, log, err)
			return
		}
		invalidateAudience(c, db, cache, log, caller.ID)
		c.JSON(200, profile)
	}
}

// UploadAvatar stores the "avatar" form file and points the profile at it.
func UploadAvatar(db *gorm.DB, storage *services.Storage, cache *services.RedisCache, maxBytes int64, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CallerFrom(c)

		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(400, gin.H{"error": "avatar file is required"})
			return
		}
		if file.Size > maxBytes {
			respondError(c, log, models.NewValidationError("avatar", fmt.Sprintf("must be at most %d bytes", maxBytes)))
			return
		}

		profile, err := loadProfile(c, db, caller.ID)
		if err != nil {
			respondError(c, log, err)
			return
		}

		src, err := file.Open()
		if err != nil {
			respondError(c, log, err)
			return
		}
		defer src.Close()

		url, err := storage.UploadImage(c.Request.Context(), "avatars", src)
		if errors.Is(err, services.ErrNotImage) {
			respondError(c, log, models.NewValidationError("avatar", err.Error()))
			return
		}
		if err != nil {
			respondError(c, log, err)
			return
		}

		previous := profile.AvatarURL
		if err := db.WithContext(c.Request.Context()).Model(profile).Update("avatar_url", url).Error; err != nil {
			respondError(c, log, err)
			return
		}
		if err := storage.DeleteImage(c.Request.Context(), previous); err != nil {
			log.WithError(err).WithField("user_id", caller.ID).Warn("failed to delete previous avatar")
		}

		invalidateAudience(c, db, cache, log, caller.ID)
		c.JSON(200, gin.H{"avatarUrl": url})
	}
}

// invalidate drops cached dashboard views after a write. The write has
// already succeeded, so failures are only logged.
func invalidate(c *gin.Context, cache *services.RedisCache, log logrus.FieldLogger, userIDs ...string) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(c.Request.Context(), userIDs...); err != nil {
		log.WithError(err).Warn("failed to invalidate dashboard cache")
	}
}

// invalidateAudience drops every cached view that renders userID's
// profile, not only userID's own.
func invalidateAudience(c *gin.Context, db *gorm.DB, cache *services.RedisCache, log logrus.FieldLogger, userID string) {
	if cache == nil {
		return
	}
	ids, err := dashboard.Audience(c.Request.Context(), db, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("failed to list profile audience")
		ids = []string{userID}
	}
	invalidate(c, cache, log, ids...)
}
