package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/infrastructure/auth"
	"github.com/logidocs/backend/internal/infrastructure/config"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "logidocs-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, dept shared.Department, admin bool) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		UserID:     uuid.New(),
		Username:   "tess",
		Department: dept,
		IsAdmin:    admin,
	}
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error.Code
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	pair, input := issueToken(t, svc, shared.DepartmentTrucking, false)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/api/v1/shipments", func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.Equal(t, input.UserID, actor.UserID)
		assert.Equal(t, shared.DepartmentTrucking, actor.Department)
		assert.Equal(t, "TRUCKING", c.GetString(DepartmentKey))
		assert.Equal(t, input.UserID.String(), logger.GetUserID(c.Request.Context()))
		assert.NotNil(t, GetJWTClaims(c))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shipments", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_Rejects(t *testing.T) {
	svc := newTestJWTService()
	pair, _ := issueToken(t, svc, shared.DepartmentFinance, false)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "TOKEN_INVALID"},
		{"wrong scheme", "Basic abc", "TOKEN_INVALID"},
		{"garbage token", "Bearer not-a-jwt", "TOKEN_INVALID"},
		{"refresh token as access", "Bearer " + pair.RefreshToken, "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(JWTAuthMiddleware(svc))
			router.GET("/api/v1/documents", func(c *gin.Context) {
				t.Fatal("handler must not run")
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  -time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "logidocs-test",
	})
	pair, _ := issueToken(t, svc, shared.DepartmentFinance, false)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.GET("/api/v1/documents", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, w))
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	svc := newTestJWTService()
	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	router.POST("/api/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_QueryTokenOnStreamOnly(t *testing.T) {
	svc := newTestJWTService()
	pair, _ := issueToken(t, svc, shared.DepartmentVerifier, false)

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.GET("/api/v1/audit-logs/stream", ok)
	router.GET("/api/v1/audit-logs", ok)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs/stream?access_token="+pair.AccessToken, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?access_token="+pair.AccessToken, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newTestJWTService()
	blacklist := auth.NewInMemoryTokenBlacklist()
	cfg := DefaultJWTConfig(svc)
	cfg.TokenBlacklist = blacklist

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/api/v1/dashboard/summary", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("revoked jti", func(t *testing.T) {
		pair, _ := issueToken(t, svc, shared.DepartmentShipment, false)
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

		w := call(pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_REVOKED", errorCode(t, w))
	})

	t.Run("all sessions of user invalidated", func(t *testing.T) {
		pair, input := issueToken(t, svc, shared.DepartmentShipment, false)
		require.NoError(t, blacklist.AddUserTokensToBlacklist(context.Background(), input.UserID.String(), time.Hour))

		w := call(pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("other tokens pass", func(t *testing.T) {
		pair, _ := issueToken(t, svc, shared.DepartmentShipment, false)
		assert.Equal(t, http.StatusOK, call(pair.AccessToken).Code)
	})
}

func TestRequireDepartment(t *testing.T) {
	svc := newTestJWTService()

	tests := []struct {
		name   string
		dept   shared.Department
		admin  bool
		status int
	}{
		{"verifier allowed", shared.DepartmentVerifier, false, http.StatusOK},
		{"finance denied", shared.DepartmentFinance, false, http.StatusForbidden},
		{"admin bypasses", shared.DepartmentFinance, true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, _ := issueToken(t, svc, tt.dept, tt.admin)
			router := gin.New()
			router.Use(JWTAuthMiddleware(svc))
			router.POST("/api/v1/documents/:id/verify",
				RequireDepartment(shared.DepartmentVerifier),
				func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+uuid.NewString()+"/verify", nil)
			req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", errorCode(t, w))
			}
		})
	}
}

func TestRequireDepartment_WithoutAuthentication(t *testing.T) {
	router := gin.New()
	router.GET("/x", RequireDepartment(shared.DepartmentShipment), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	handler := func(actor shared.Actor) *httptest.ResponseRecorder {
		router := gin.New()
		router.GET("/users", func(c *gin.Context) {
			c.Set(ActorKey, actor)
			c.Next()
		}, RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users", nil))
		return w
	}

	assert.Equal(t, http.StatusForbidden, handler(shared.Actor{UserID: uuid.New(), Department: shared.DepartmentVerifier}).Code)
	assert.Equal(t, http.StatusOK, handler(shared.Actor{UserID: uuid.New(), Department: shared.DepartmentVerifier, IsAdmin: true}).Code)
}
