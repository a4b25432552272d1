package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func TestSwaggerProtection_Disabled(t *testing.T) {
	router := swaggerRouter(SwaggerConfig{Enabled: false}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestSwaggerProtection_AllowedIPs(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		remoteAddr string
		status     int
	}{
		{"exact match", []string{"10.0.0.5"}, "10.0.0.5:4000", http.StatusOK},
		{"cidr match", []string{"10.0.0.0/24"}, "10.0.0.77:4000", http.StatusOK},
		{"outside list", []string{"10.0.0.0/24"}, "192.168.1.2:4000", http.StatusForbidden},
		{"empty list allows all", nil, "192.168.1.2:4000", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := swaggerRouter(SwaggerConfig{Enabled: true, AllowedIPs: tt.allowed}, nil)

			req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
			req.RemoteAddr = tt.remoteAddr
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSwaggerProtection_RequireAuth(t *testing.T) {
	svc := newTestJWTService()
	router := swaggerRouter(SwaggerConfig{Enabled: true, RequireAuth: true}, JWTAuthMiddleware(svc))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	pair, _ := issueToken(t, svc, shared.DepartmentShipment, false)
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "docs", w.Body.String())
}
