package handlers

import (
	"errors"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps domain errors onto status codes. Anything unknown is a
// backend failure: logged with the request, hidden from the client.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(400, gin.H{"error": verr.Error()})
	case errors.Is(err, models.ErrValidation):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(401, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(403, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		c.JSON(409, gin.H{"error": err.Error()})
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}
