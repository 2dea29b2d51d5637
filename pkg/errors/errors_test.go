package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "test error", http.StatusBadRequest)
	assert.Equal(t, "INVALID_INPUT: test error", err.Error())

	wrapped := WrapError(errors.New("redis: connection refused"), ErrCodeServiceUnavailable, "storage unavailable", http.StatusServiceUnavailable)
	assert.Equal(t, "SERVICE_UNAVAILABLE: storage unavailable: redis: connection refused", wrapped.Error())
}

func TestAppError_WithCause(t *testing.T) {
	originalErr := errors.New("original error")
	err := WrapError(originalErr, ErrCodeInternal, "wrapped error", http.StatusInternalServerError)

	assert.Same(t, originalErr, err.Cause)
	assert.True(t, errors.Is(err, originalErr))
}

func TestAppError_Body(t *testing.T) {
	plain := NewNotFoundError("scenario")
	assert.Equal(t, map[string]any{"error": "NOT_FOUND", "message": "scenario not found"}, plain.Body())

	param := NewInvalidParameterError("sinr", `parameter sinr must be numeric, got "abc"`)
	assert.Equal(t, map[string]any{
		"error":   "INVALID_PARAMETER",
		"message": `parameter sinr must be numeric, got "abc"`,
		"details": map[string]any{"parameter": "sinr"},
	}, param.Body())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"invalid input", NewInvalidInputError("x"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"invalid parameter", NewInvalidParameterError("bler", "x"), ErrCodeInvalidParameter, http.StatusBadRequest},
		{"not found", NewNotFoundError("scenario"), ErrCodeNotFound, http.StatusNotFound},
		{"unauthorized", NewUnauthorizedError("x"), ErrCodeUnauthorized, http.StatusUnauthorized},
		{"token expired", NewTokenExpiredError(), ErrCodeTokenExpired, http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("x"), ErrCodeForbidden, http.StatusForbidden},
		{"conflict", NewConflictError("x"), ErrCodeConflict, http.StatusConflict},
		{"rate limit", NewRateLimitError(), ErrCodeRateLimit, http.StatusTooManyRequests},
		{"internal", NewInternalError("x"), ErrCodeInternal, http.StatusInternalServerError},
		{"unavailable", NewServiceUnavailableError("x"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}
}

func TestGetAppError(t *testing.T) {
	appErr := NewInvalidInputError("test")
	assert.Same(t, appErr, GetAppError(appErr))

	wrapped := fmt.Errorf("handler: %w", appErr)
	require.NotNil(t, GetAppError(wrapped))
	assert.Equal(t, http.StatusBadRequest, StatusCode(wrapped))

	assert.Nil(t, GetAppError(errors.New("regular error")))
	assert.Nil(t, GetAppError(nil))
	assert.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("regular error")))
}
