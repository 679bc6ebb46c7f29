package middleware

import (
	"context"
	"strings"

	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/chachabrian/taskmate-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	callerKey = "caller"
	claimsKey = "claims"
)

// RevocationChecker reports whether a token id was signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func AuthMiddleware(secret []byte, revoked RevocationChecker, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Browsers cannot set headers on a websocket handshake.
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header or token query parameter required"})
			return
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token"})
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				log.WithError(err).Error("failed to check token revocation")
				c.AbortWithStatusJSON(500, gin.H{"error": "Internal server error"})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(401, gin.H{"error": "Token has been revoked"})
				return
			}
		}

		c.Set(callerKey, claims.Caller())
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CallerFrom returns the identity set by AuthMiddleware, or the zero
// Caller on routes it does not guard.
func CallerFrom(c *gin.Context) models.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(models.Caller); ok {
			return caller
		}
	}
	return models.Caller{}
}

func ClaimsFrom(c *gin.Context) *utils.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*utils.Claims); ok {
			return claims
		}
	}
	return nil
}
