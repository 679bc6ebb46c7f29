package middleware

import (
	"fmt"

	"github.com/casbin/casbin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewEnforcer loads the role model and policy files.
func NewEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	e, err := casbin.NewEnforcerSafe(modelPath, policyPath)
	if err != nil {
		return nil, fmt.Errorf("load rbac policy: %w", err)
	}
	return e, nil
}

// RBAC checks the caller's role against the route pattern and method. It
// must run after AuthMiddleware.
func RBAC(e *casbin.Enforcer, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if !caller.Authenticated() {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authentication required"})
			return
		}

		obj := c.FullPath()
		if obj == "" {
			obj = c.Request.URL.Path
		}

		allowed, err := e.EnforceSafe(string(caller.Role), obj, c.Request.Method)
		if err != nil {
			log.WithError(err).WithField("path", obj).Error("rbac enforce failed")
			c.AbortWithStatusJSON(500, gin.H{"error": "Internal server error"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(403, gin.H{"error": "Your role cannot access this resource"})
			return
		}
		c.Next()
	}
}
