package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type containerBody struct {
	Number string `json:"number" binding:"required,len=11"`
	Size   string `json:"size" binding:"required,oneof=20GP 40GP 40HC"`
}

type shipmentBody struct {
	Consignee  string          `json:"consignee" binding:"required,max=10"`
	Containers []containerBody `json:"containers" binding:"required,min=1,dive"`
}

func bindShipment(t *testing.T, body string) []shared.FieldError {
	t.Helper()
	SetupValidator()

	var details []shared.FieldError
	router := gin.New()
	router.POST("/x", func(c *gin.Context) {
		var req shipmentBody
		if err := c.ShouldBindJSON(&req); err != nil {
			details = FormatValidationErrors(err)
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, w))
	return details
}

func TestFormatValidationErrors_FieldPaths(t *testing.T) {
	details := bindShipment(t, `{"consignee":"A very long consignee","containers":[{"number":"CSQU3054383","size":"45GP"}]}`)

	byField := map[string]shared.FieldError{}
	for _, d := range details {
		byField[d.Field] = d
	}
	require.Len(t, byField, 2)
	assert.Equal(t, "MAX", byField["consignee"].Code)
	assert.Equal(t, "Must be at most 10 characters", byField["consignee"].Message)
	assert.Equal(t, "ONEOF", byField["containers[0].size"].Code)
	assert.Equal(t, "Must be one of: 20GP 40GP 40HC", byField["containers[0].size"].Message)
}

func TestFormatValidationErrors_Required(t *testing.T) {
	details := bindShipment(t, `{}`)

	fields := make([]string, 0, len(details))
	for _, d := range details {
		assert.Equal(t, "REQUIRED", d.Code)
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"consignee", "containers"}, fields)
}

func TestHandleValidationError_MalformedBody(t *testing.T) {
	details := bindShipment(t, `{"consignee":`)
	assert.Empty(t, details)
}

func TestHandleValidationError_Envelope(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.POST("/x", func(c *gin.Context) {
		HandleValidationError(c, errors.New("boom"))
	})

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Malformed request body", body.Error.Message)
	assert.Equal(t, "req-1", body.Error.RequestID)
}
