package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/logidocs/backend/internal/interfaces/http/dto"
)

// multipartOverhead leaves room for the form boundary and text fields
// around an uploaded file
const multipartOverhead = 1 << 20

// BodyLimit caps request bodies at maxBytes. Multipart uploads get
// maxUpload plus some room for the other form parts.
func BodyLimit(maxBytes, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if strings.HasPrefix(c.ContentType(), "multipart/") && maxUpload > 0 {
			limit = maxUpload + multipartOverhead
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				c.GetString(RequestIDKey),
			))
			return
		}

		// Chunked bodies have no Content-Length; cap them while reading
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
