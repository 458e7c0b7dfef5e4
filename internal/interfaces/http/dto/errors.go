package dto

import (
	"net/http"
	"strings"
)

// API error codes. They are the domain error codes surfaced as-is, so a
// client sees the same code the service layer raised.
const (
	ErrCodeInternal                 = "INTERNAL_ERROR"
	ErrCodeValidation               = "VALIDATION_ERROR"
	ErrCodeInvalidInput             = "INVALID_INPUT"
	ErrCodeInvalidJSON              = "INVALID_JSON"
	ErrCodeUnauthenticated          = "UNAUTHENTICATED"
	ErrCodeForbidden                = "FORBIDDEN"
	ErrCodeNotFound                 = "NOT_FOUND"
	ErrCodeAlreadyExists            = "ALREADY_EXISTS"
	ErrCodeConcurrentModification   = "CONCURRENT_MODIFICATION"
	ErrCodeInvalidState             = "INVALID_STATE"
	ErrCodePaymentGateway           = "PAYMENT_GATEWAY_ERROR"
	ErrCodeUnsupportedPaymentMethod = "UNSUPPORTED_PAYMENT_METHOD"
	ErrCodeInvalidSignature         = "INVALID_SIGNATURE"
	ErrCodeUploadsDisabled          = "UPLOADS_DISABLED"
	ErrCodeExportDisabled           = "EXPORT_DISABLED"
	ErrCodeRateLimited              = "RATE_LIMITED"
	ErrCodeRequestTooLarge          = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:               http.StatusBadRequest,
	ErrCodeInvalidInput:             http.StatusBadRequest,
	ErrCodeInvalidJSON:              http.StatusBadRequest,
	ErrCodeUnsupportedPaymentMethod: http.StatusBadRequest,
	ErrCodeInvalidSignature:         http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,

	// Upstream and optional features
	ErrCodePaymentGateway:  http.StatusBadGateway,
	ErrCodeUploadsDisabled: http.StatusServiceUnavailable,
	ErrCodeExportDisabled:  http.StatusServiceUnavailable,

	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Field-level codes (INVALID_*) are client errors; anything else
// unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping folds aliases into the codes above
var LegacyErrorCodeMapping = map[string]string{
	"UNAUTHORIZED":          ErrCodeUnauthenticated,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrentModification,
	"OPTIMISTIC_LOCK_ERROR": ErrCodeConcurrentModification,
	"ERR_INTERNAL":          ErrCodeInternal,
	"BAD_REQUEST":           ErrCodeInvalidInput,
}

// NormalizeErrorCode converts an alias to its canonical code.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
