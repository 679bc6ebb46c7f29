package handlers

import (
	"strconv"

	"github.com/chachabrian/taskmate-backend/internal/catalog"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func ListCategories(svc *catalog.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := svc.Categories(c.Request.Context())
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, categories)
	}
}

// CategoryServices lists the published services of one category.
func CategoryServices(svc *catalog.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			respondError(c, log, models.NewValidationError("id", "must be a category number"))
			return
		}
		listings, err := svc.CategoryServices(c.Request.Context(), uint(id))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, listings)
	}
}

func GetService(svc *catalog.Service, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		listing, err := svc.Listing(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, log, err)
			return
		}
		c.JSON(200, listing)
	}
}
