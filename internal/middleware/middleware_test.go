package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chachabrian/taskmate-backend/internal/logging"
	"github.com/chachabrian/taskmate-backend/internal/middleware"
	"github.com/chachabrian/taskmate-backend/internal/models"
	"github.com/chachabrian/taskmate-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

type denylist map[string]bool

func (d denylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	return d[jti], nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, role models.Role) (string, *utils.Claims) {
	t.Helper()
	signed, claims, err := utils.GenerateToken(secret, &models.Profile{ID: "user-1", Role: role}, time.Hour)
	require.NoError(t, err)
	return signed, claims
}

func newRouter(t *testing.T, revoked denylist) *gin.Engine {
	t.Helper()

	enforcer, err := middleware.NewEnforcer("../../config/rbac_model.conf", "../../config/policy.csv")
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(secret, revoked, logging.Discard()), middleware.RBAC(enforcer, logging.Discard()))

	ok := func(c *gin.Context) {
		c.JSON(200, gin.H{"id": middleware.CallerFrom(c).ID})
	}
	api.GET("/users/me", ok)
	api.POST("/bookings", ok)
	api.GET("/bookings/:id", ok)
	api.PATCH("/bookings/:id/status", ok)
	api.GET("/provider/services", ok)
	api.DELETE("/favorites/:providerId", ok)
	api.GET("/dashboard/earnings", ok)
	api.GET("/dashboard/payments", ok)
	api.GET("/dashboard/overview", ok)
	api.GET("/ws", ok)
	return r
}

func do(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	signed, claims := token(t, models.RoleCustomer)
	revokedToken, revokedClaims := token(t, models.RoleCustomer)
	r := newRouter(t, denylist{revokedClaims.ID: true})

	assert.Equal(t, 401, do(r, "GET", "/api/users/me", "").Code)
	assert.Equal(t, 401, do(r, "GET", "/api/users/me", "not-a-token").Code)
	assert.Equal(t, 401, do(r, "GET", "/api/users/me", revokedToken).Code)

	w := do(r, "GET", "/api/users/me", signed)
	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, `{"id":"user-1"}`, w.Body.String())

	assert.Equal(t, 200, do(r, "GET", "/api/ws?token="+signed, "").Code)
	assert.NotEmpty(t, claims.ID)
}

func TestRBACPolicy(t *testing.T) {
	customer, _ := token(t, models.RoleCustomer)
	provider, _ := token(t, models.RoleProvider)
	r := newRouter(t, nil)

	tests := []struct {
		method, path, bearer string
		want                 int
	}{
		{"POST", "/api/bookings", customer, 200},
		{"POST", "/api/bookings", provider, 403},
		{"GET", "/api/bookings/abc", provider, 200},
		{"PATCH", "/api/bookings/abc/status", customer, 200},
		{"PATCH", "/api/bookings/abc/status", provider, 200},
		{"GET", "/api/provider/services", provider, 200},
		{"GET", "/api/provider/services", customer, 403},
		{"DELETE", "/api/favorites/p1", customer, 200},
		{"DELETE", "/api/favorites/p1", provider, 403},
		{"GET", "/api/dashboard/earnings", provider, 200},
		{"GET", "/api/dashboard/earnings", customer, 403},
		{"GET", "/api/dashboard/payments", customer, 200},
		{"GET", "/api/dashboard/payments", provider, 403},
		{"GET", "/api/dashboard/overview", customer, 200},
		{"GET", "/api/dashboard/overview", provider, 200},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, do(r, tt.method, tt.path, tt.bearer).Code)
		})
	}
}

func TestCallerFromWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, middleware.CallerFrom(c).Authenticated())
	assert.Nil(t, middleware.ClaimsFrom(c))
}
