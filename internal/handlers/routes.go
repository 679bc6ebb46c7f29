package handlers

import (
	"github.com/casbin/casbin"
	"github.com/chachabrian/taskmate-backend/internal/bookings"
	"github.com/chachabrian/taskmate-backend/internal/catalog"
	"github.com/chachabrian/taskmate-backend/internal/config"
	"github.com/chachabrian/taskmate-backend/internal/dashboard"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/reviews"
	"github.com/chachabrian/taskmate-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Config    config.Config
	DB        *gorm.DB
	Cache     *services.RedisCache
	Storage   *services.Storage
	Hub       *services.Hub
	Enforcer  *casbin.Enforcer
	Bookings  *bookings.Service
	Catalog   *catalog.Service
	Dashboard *dashboard.Service
	Reviews   *reviews.Service
	Log       logrus.FieldLogger
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	log := d.Log
	r.Use(middleware.RequestLogger(log))

	if d.Storage != nil && !d.Storage.UsingS3() {
		r.Static("/uploads", d.Storage.LocalDir())
	}

	var pinger Pinger
	if d.Cache != nil {
		pinger = d.Cache
	}
	r.GET("/health", Health(d.DB, pinger, log))

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/signup", SignUp(d.DB, d.Config, log))
			auth.POST("/signin", SignIn(d.DB, d.Config, log))
		}

		api.GET("/categories", ListCategories(d.Catalog, log))
		api.GET("/categories/:id/services", CategoryServices(d.Catalog, log))
		api.GET("/services/:id", GetService(d.Catalog, log))

		var revoked middleware.RevocationChecker
		if d.Cache != nil {
			revoked = d.Cache
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(
			middleware.AuthMiddleware([]byte(d.Config.JWTSecret), revoked, log),
			middleware.RBAC(d.Enforcer, log),
		)
		{
			protected.POST("/auth/signout", SignOut(d.Cache, log))
			protected.PUT("/auth/password", ChangePassword(d.DB, log))

			users := protected.Group("/users")
			{
				users.GET("/me", GetMe(d.DB, log))
				users.PUT("/profile", UpdateProfile(d.DB, d.Cache, log))
				users.POST("/avatar", UploadAvatar(d.DB, d.Storage, d.Cache, d.Config.MaxAvatarBytes, log))
			}

			bookingRoutes := protected.Group("/bookings")
			{
				bookingRoutes.POST("", CreateBooking(d.Bookings, log))
				bookingRoutes.GET("", ListBookings(d.Dashboard, log))
				bookingRoutes.GET("/:id", GetBooking(d.Bookings, d.Dashboard, log))
				bookingRoutes.PATCH("/:id/status", UpdateBookingStatus(d.Bookings, d.Dashboard, log))
			}

			provider := protected.Group("/provider")
			{
				provider.GET("/services", GetProviderServices(d.Catalog, log))
				provider.POST("/services", CreateProviderService(d.Catalog, log))
				provider.PUT("/services/:id", UpdateProviderService(d.Catalog, log))
				provider.DELETE("/services/:id", DeleteProviderService(d.Catalog, log))
			}

			protected.POST("/favorites", AddFavorite(d.DB, d.Cache, log))
			protected.DELETE("/favorites/:providerId", RemoveFavorite(d.DB, d.Cache, log))
			protected.POST("/reviews", CreateReview(d.Reviews, log))

			dash := protected.Group("/dashboard")
			{
				dash.GET("/overview", GetOverview(d.Dashboard, log))
				dash.GET("/payments", GetPayments(d.Dashboard, log))
				dash.GET("/saved", GetSavedProviders(d.Dashboard, log))
				dash.GET("/earnings", GetEarnings(d.Dashboard, log))
				dash.GET("/ratings", GetRatings(d.Dashboard, log))
				dash.GET("/analytics", GetAnalytics(d.Dashboard, log))
			}

			notifications := protected.Group("/notifications")
			{
				notifications.POST("/register-token", RegisterFCMToken(d.DB, log))
				notifications.DELETE("/remove-token", RemoveFCMToken(d.DB, log))
				notifications.GET("/preferences", GetNotificationPreferences(d.DB, log))
				notifications.PUT("/preferences", UpdateNotificationPreferences(d.DB, log))
			}

			protected.GET("/ws", WebSocketHandler(d.Hub))
		}
	}
}
