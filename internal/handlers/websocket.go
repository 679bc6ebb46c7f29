package handlers

import (
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades the request and registers the caller with the hub.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		services.HandleWebSocket(hub, c.Writer, c.Request, middleware.CallerFrom(c))
	}
}
