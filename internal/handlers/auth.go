package handlers

import (
	"errors"
	"strings"

	"github.com/chachabrian/taskmate-backend/internal/config"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/chachabrian/taskmate-backend/internal/services"
	"github.com/chachabrian/taskmate-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SignUpInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullname" binding:"required"`
	Username string `json:"username"`
	Role     string `json:"role" binding:"required,oneof=customer provider"`
	Location string `json:"location"`
}

type SignInInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func issueToken(c *gin.Context, cfg config.Config, log logrus.FieldLogger, profile *models.Profile, status int) {
	token, claims, err := utils.GenerateToken([]byte(cfg.JWTSecret), profile, cfg.JWTTTL)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(status, gin.H{
		"token":     token,
		"expiresAt": claims.ExpiresAt.Time,
		"user":      profile,
	})
}

// SignUp creates a profile with default notification preferences and
// signs it in.
func SignUp(db *gorm.DB, cfg config.Config, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignUpInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		email := normalizeEmail(input.Email)
		var existing int64
		if err := db.WithContext(c.Request.Context()).Model(&models.Profile{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			respondError(c, log, err)
			return
		}
		if existing > 0 {
			respondError(c, log, models.ErrDuplicateEmail)
			return
		}

		username := strings.TrimSpace(input.Username)
		if username == "" {
			username = strings.SplitN(email, "@", 2)[0]
		}
		profile := models.Profile{
			Email:    email,
			Password: input.Password,
			FullName: strings.TrimSpace(input.FullName),
			Username: username,
			Role:     models.Role(input.Role),
			Location: strings.TrimSpace(input.Location),
		}
		if err := profile.HashPassword(); err != nil {
			respondError(c, log, err)
			return
		}

		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			return tx.Create(models.DefaultPreferences(profile.ID)).Error
		})
		// A concurrent sign-up can win between the count and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = models.ErrDuplicateEmail
		}
		if err != nil {
			respondError(c, log, err)
			return
		}

		log.WithFields(logrus.Fields{"user_id": profile.ID, "role": profile.Role}).Info("profile created")
		issueToken(c, cfg, log, &profile, 201)
	}
}

func SignIn(db *gorm.DB, cfg config.Config, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SignInInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var profile models.Profile
		err := db.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(input.Email)).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, log, models.ErrInvalidCredentials)
			return
		}
		if err != nil {
			respondError(c, log, err)
			return
		}
		if err := profile.CheckPassword(input.Password); err != nil {
			respondError(c, log, models.ErrInvalidCredentials)
			return
		}

		issueToken(c, cfg, log, &profile, 200)
	}
}

// SignOut revokes the presented token for the rest of its lifetime.
func SignOut(cache *services.RedisCache, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.ClaimsFrom(c)
		if claims == nil {
			respondError(c, log, models.ErrUnauthenticated)
			return
		}
		if err := cache.Revoke(c.Request.Context(), claims.ID, claims.Remaining()); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"message": "Signed out"})
	}
}

func ChangePassword(db *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.CallerFrom(c)

		var input ChangePasswordInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		profile, err := loadProfile(c, db, caller.ID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		if err := profile.CheckPassword(input.CurrentPassword); err != nil {
			respondError(c, log, models.NewValidationError("currentPassword", "is incorrect"))
			return
		}

		profile.Password = input.NewPassword
		if err := profile.HashPassword(); err != nil {
			respondError(c, log, err)
			return
		}
		if err := db.WithContext(c.Request.Context()).Model(profile).Update("password_hash", profile.PasswordHash).Error; err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"message": "Password updated"})
	}
}

func loadProfile(c *gin.Context, db *gorm.DB, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := db.WithContext(c.Request.Context()).First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}
