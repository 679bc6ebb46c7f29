package handlers

import (
	"github.com/chachabrian/taskmate-backend/internal/catalog"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetProviderServices lists the caller's own services, drafts included.
func GetProviderServices(svc *catalog.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		services, err := svc.ProviderServices(c.Request.Context(), middleware.CallerFrom(c))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, services)
	}
}

func CreateProviderService(svc *catalog.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input catalog.ServiceInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		service, err := svc.CreateService(c.Request.Context(), middleware.CallerFrom(c), input)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(201, service)
	}
}

func UpdateProviderService(svc *catalog.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input catalog.ServiceInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		service, err := svc.UpdateService(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), input)
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, service)
	}
}

// DeleteProviderService removes a listing that has no open bookings.
func DeleteProviderService(svc *catalog.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteService(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, gin.H{"message": "Service deleted successfully"})
	}
}
