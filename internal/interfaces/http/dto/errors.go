package dto

import (
	"net/http"
	"strings"
)

// Error codes returned in the envelope. Format: ERR_<DESCRIPTION>

// General error codes
const (
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation = "ERR_VALIDATION"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeTokenRevoked       = "ERR_TOKEN_REVOKED"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountSuspended   = "ERR_ACCOUNT_SUSPENDED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the current status
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeTooEarly         = "ERR_TOO_EARLY"
	ErrCodePlanLimitReached = "ERR_PLAN_LIMIT_REACHED"
)

// Dependency error codes
const (
	ErrCodeExportUnavailable    = "ERR_EXPORT_UNAVAILABLE"
	ErrCodeStorageUnavailable   = "ERR_STORAGE_UNAVAILABLE"
	ErrCodeBillingUnavailable   = "ERR_BILLING_UNAVAILABLE"
	ErrCodeBillingProviderError = "ERR_BILLING_PROVIDER_ERROR"
	ErrCodeAnalysisFailed       = "ERR_ANALYSIS_FAILED"
	ErrCodeInvalidSignature     = "ERR_INVALID_SIGNATURE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeInvalidSignature: http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeAccountSuspended:   http.StatusForbidden,
	ErrCodePlanLimitReached:   http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeTooEarly:     http.StatusUnprocessableEntity,

	// Dependency errors
	ErrCodeExportUnavailable:    http.StatusServiceUnavailable,
	ErrCodeStorageUnavailable:   http.StatusServiceUnavailable,
	ErrCodeBillingUnavailable:   http.StatusServiceUnavailable,
	ErrCodeBillingProviderError: http.StatusBadGateway,
	ErrCodeAnalysisFailed:       http.StatusBadGateway,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status for an envelope code. Unlisted
// ERR_INVALID_* and ERR_ALREADY_* codes fall back to 400 and 409; anything
// else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "ERR_INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "ERR_ALREADY_"):
		return http.StatusConflict
	case strings.HasPrefix(code, "ERR_TOKEN_"):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// domainCodeAliases maps domain codes whose envelope name differs from ERR_<code>
var domainCodeAliases = map[string]string{
	"VALIDATION_ERROR":     ErrCodeValidation,
	"CANNOT_SUSPEND_ADMIN": ErrCodeForbidden,
	"INCOMPLETE_LISTING":   ErrCodeInvalidState,
	"TOO_MANY_PHOTOS":      ErrCodeInvalidInput,
	"REASON_REQUIRED":      ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code (NOT_FOUND, INVALID_STATE, ...)
// to its envelope form. Codes already carrying the ERR_ prefix pass through.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeInternal
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	if alias, ok := domainCodeAliases[code]; ok {
		return alias
	}
	return "ERR_" + code
}
