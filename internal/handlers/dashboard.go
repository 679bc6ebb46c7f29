package handlers

import (
	"context"

	"github.com/chachabrian/taskmate-backend/internal/dashboard"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// dashboardView adapts a dashboard read into a handler.
func dashboardView[T any](log logrus.FieldLogger, view func(context.Context, models.Caller) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := view(c.Request.Context(), middleware.CallerFrom(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, result)
	}
}

// GetOverview is the landing dashboard of either role.
func GetOverview(dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return dashboardView(log, dash.Overview)
}

func GetPayments(dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return dashboardView(log, dash.Payments)
}

func GetSavedProviders(dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return dashboardView(log, dash.Saved)
}

func GetEarnings(dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return dashboardView(log, dash.Earnings)
}

func GetAnalytics(dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return dashboardView(log, dash.Analytics)
}

// GetRatings returns the provider's reviews, optionally narrowed to one
// service with ?serviceId=.
func GetRatings(dash *dashboard.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ratings, err := dash.Ratings(c.Request.Context(), middleware.CallerFrom(c), c.Query("serviceId"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, ratings)
	}
}
