package dto

import (
	"net/http"
	"strings"

	"github.com/logidocs/backend/internal/domain/shared"
)

// Codes produced by the HTTP layer itself
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid    = "TOKEN_INVALID"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeStreamFull      = "STREAM_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:       http.StatusInternalServerError,
	"PASSWORD_HASH_ERROR": http.StatusInternalServerError,

	// Input
	ErrCodeBadRequest:            http.StatusBadRequest,
	shared.CodeInvalidInput:      http.StatusBadRequest,
	shared.CodeValidationFailed:  http.StatusBadRequest,
	shared.CodeInvalidDepartment: http.StatusBadRequest,
	"FILE_REQUIRED":              http.StatusBadRequest,
	"ITEMS_NOT_ALLOWED":          http.StatusBadRequest,

	// Auth
	shared.CodeUnauthorized: http.StatusUnauthorized,
	"INVALID_CREDENTIALS":   http.StatusUnauthorized,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeTokenRevoked:     http.StatusUnauthorized,
	shared.CodeForbidden:    http.StatusForbidden,
	"ACCOUNT_DISABLED":      http.StatusForbidden,
	"ACCOUNT_LOCKED":        http.StatusLocked,

	// Resources
	shared.CodeNotFound:           http.StatusNotFound,
	shared.CodeAlreadyExists:      http.StatusConflict,
	shared.CodeConcurrentModified: http.StatusConflict,
	"DOCUMENT_EXISTS":             http.StatusConflict,
	"DUPLICATE_CONTAINER":         http.StatusConflict,
	"SHIPMENT_HAS_DOCUMENTS":      http.StatusConflict,

	// Business rules
	shared.CodeInvalidState:       http.StatusUnprocessableEntity,
	"SHIPMENT_CLOSED":             http.StatusUnprocessableEntity,
	"INVALID_TRUCKING_TRANSITION": http.StatusUnprocessableEntity,
	"PRO_SEQUENCE_EXHAUSTED":      http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":              http.StatusUnprocessableEntity,
	"ALREADY_DISABLED":            http.StatusUnprocessableEntity,
	"CANNOT_DISABLE_SELF":         http.StatusUnprocessableEntity,

	// Files
	"FILE_TOO_LARGE":        http.StatusRequestEntityTooLarge,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	"UNSUPPORTED_FILE_TYPE": http.StatusUnsupportedMediaType,
	"STORAGE_ERROR":         http.StatusBadGateway,
	"PRINT_FAILED":          http.StatusBadGateway,
	"PRINTING_DISABLED":     http.StatusServiceUnavailable,
	ErrCodeStreamFull:       http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code. Unlisted
// INVALID_* codes are input errors; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether code maps to a 4xx status
func IsClientError(code string) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}
