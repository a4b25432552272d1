package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeValidationFailed, http.StatusBadRequest},
		{shared.CodeInvalidInput, http.StatusBadRequest},
		{"INVALID_PRO_NUMBER", http.StatusBadRequest},
		{"INVALID_CONTAINER_NUMBER", http.StatusBadRequest},
		{shared.CodeForbidden, http.StatusForbidden},
		{shared.CodeUnauthorized, http.StatusUnauthorized},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{shared.CodeAlreadyExists, http.StatusConflict},
		{"DOCUMENT_EXISTS", http.StatusConflict},
		{shared.CodeConcurrentModified, http.StatusConflict},
		{"ACCOUNT_LOCKED", http.StatusLocked},
		{"INVALID_TRUCKING_TRANSITION", http.StatusUnprocessableEntity},
		{"FILE_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"UNSUPPORTED_FILE_TYPE", http.StatusUnsupportedMediaType},
		{"STORAGE_ERROR", http.StatusBadGateway},
		{"PRINTING_DISABLED", http.StatusServiceUnavailable},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(shared.CodeNotFound))
	assert.True(t, IsClientError("INVALID_REJECTION_REASON"))
	assert.False(t, IsClientError("STORAGE_ERROR"))
	assert.False(t, IsClientError("WHATEVER"))
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Bill of Lading has 1 invalid field(s)", "req-1", []shared.FieldError{
		{Field: "consignee", Code: "REQUIRED", Message: "Consignee is required"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	errObj := decoded["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errObj["code"])
	assert.Equal(t, "req-1", errObj["request_id"])
	details := errObj["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "consignee", details[0].(map[string]any)["field"])
	assert.NotContains(t, decoded, "data")
}

func TestNewPageResponse(t *testing.T) {
	page := shared.NewPaginated([]string{"2026001", "2026002"}, 45, 2, 20)

	resp := NewPageResponse(page)

	assert.True(t, resp.Success)
	assert.Equal(t, []string{"2026001", "2026002"}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestNewPageResponse_EmptyItemsEncodeAsArray(t *testing.T) {
	resp := NewPageResponse(shared.NewPaginated[string](nil, 0, 1, 20))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":[]`)
}
