package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"github.com/logidocs/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequireDepartment allows the request when the caller belongs to one of
// departments. Administrators always pass.
func RequireDepartment(departments ...shared.Department) gin.HandlerFunc {
	names := make([]string, len(departments))
	for i, d := range departments {
		names[i] = string(d)
	}
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortForbidden(c, shared.CodeUnauthorized, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !actor.In(departments...) {
			logger.L(c.Request.Context()).Warn("Department check failed",
				zap.String("department", string(actor.Department)),
				zap.Strings("required", names),
				zap.String("path", c.FullPath()))
			abortForbidden(c, shared.CodeForbidden, http.StatusForbidden,
				"This action is reserved for the "+strings.Join(names, ", ")+" department")
			return
		}
		c.Next()
	}
}

// RequireAdmin allows administrators only
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortForbidden(c, shared.CodeUnauthorized, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !actor.IsAdmin {
			abortForbidden(c, shared.CodeForbidden, http.StatusForbidden, "Administrator access required")
			return
		}
		c.Next()
	}
}

func abortForbidden(c *gin.Context, code string, status int, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}
