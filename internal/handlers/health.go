package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Pinger is a backend the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the database and redis answer.
func Health(db *gorm.DB, redis Pinger, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		healthy := true

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.WithError(err).Warn("database health check failed")
			checks["database"] = "unavailable"
			healthy = false
		}

		if redis != nil {
			if err := redis.Ping(ctx); err != nil {
				log.WithError(err).Warn("redis health check failed")
				checks["redis"] = "unavailable"
				healthy = false
			}
		}

		status := 200
		checks["status"] = "ok"
		if !healthy {
			status = 503
			checks["status"] = "degraded"
		}
		c.JSON(status, checks)
	}
}
