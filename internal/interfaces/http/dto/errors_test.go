package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeAccountSuspended, http.StatusForbidden},
		{ErrCodePlanLimitReached, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeTooEarly, http.StatusUnprocessableEntity},
		{ErrCodeExportUnavailable, http.StatusServiceUnavailable},
		{ErrCodeAnalysisFailed, http.StatusBadGateway},
		{ErrCodeInvalidSignature, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"ERR_INVALID_PERIOD", http.StatusBadRequest},
		{"ERR_ALREADY_SUSPENDED", http.StatusConflict},
		{"ERR_TOKEN_MAX_REFRESH", http.StatusUnauthorized},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"PLAN_LIMIT_REACHED", ErrCodePlanLimitReached},
		{"INVALID_TITLE", "ERR_INVALID_TITLE"},
		{"CANNOT_SUSPEND_ADMIN", ErrCodeForbidden},
		{"TOO_MANY_PHOTOS", ErrCodeInvalidInput},
		{ErrCodeRateLimited, ErrCodeRateLimited},
		{"", ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, &Meta{Total: 41, Page: 2, PageSize: 20, TotalPages: 3}, resp.Meta)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1",
		[]ValidationDetail{{Field: "email", Message: "Invalid email format"}})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 1)
}
