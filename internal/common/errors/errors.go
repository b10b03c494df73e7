// Package errors provides standardized error handling for the RM Copilot API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidSignalValue ErrorCode = "INVALID_SIGNAL_VALUE"
	ErrCodePolicyLoadFailed   ErrorCode = "POLICY_LOAD_FAILED"

	ErrCodeAIUpstreamError      ErrorCode = "AI_UPSTREAM_ERROR"
	ErrCodeAITimeout            ErrorCode = "AI_TIMEOUT"
	ErrCodeAIResponseUnparsable ErrorCode = "AI_RESPONSE_UNPARSABLE"
	ErrCodeAINotConfigured      ErrorCode = "AI_NOT_CONFIGURED"

	ErrCodeRateLimited          ErrorCode = "RATE_LIMITED"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeMalformedRequest     ErrorCode = "MALFORMED_REQUEST"
)

// FieldError carries field-level detail for validation failures.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Fields    []FieldError           `json:"fields,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// AsStandardError unwraps err into a *StandardError if possible.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable input validation error
// with field-level detail.
func NewValidationFailedError(fields []FieldError) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Deal input validation failed",
		Details:   fmt.Sprintf("%d field error(s)", len(fields)),
		Fields:    fields,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidSignalValueError reports an out-of-enumeration value reaching the
// classifier after validation. This indicates a schema/version mismatch and is
// a defect, never a caller mistake.
func NewInvalidSignalValueError(field, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSignalValue,
		Message:   "Signal value outside its enumeration",
		Details:   fmt.Sprintf("field: %s, value: %q", field, value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPolicyLoadFailedError creates a non-retryable policy configuration error.
func NewPolicyLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePolicyLoadFailed,
		Message:   "Policy configuration could not be loaded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIUpstreamError creates a retryable model-provider error.
func NewAIUpstreamError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIUpstreamError,
		Message:   "AI provider call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAITimeoutError creates a retryable AI timeout error.
func NewAITimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAITimeout,
		Message:   "AI provider call timed out",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIResponseUnparsableError reports a model reply that could not be parsed
// into the expected structure. The caller may retry; the reply is never
// replaced with fabricated content.
func NewAIResponseUnparsableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIResponseUnparsable,
		Message:   "AI response could not be parsed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAINotConfiguredError reports that no AI provider is configured.
func NewAINotConfiguredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAINotConfigured,
		Message:   "AI is not configured",
		Details:   "set OPENAI_API_KEY to enable AI responses",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a retryable throttling error.
func NewRateLimitedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError creates a non-retryable authentication error.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedRequestError reports a request body that is not valid JSON.
func NewMalformedRequestError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedRequest,
		Message:   "Request body is not valid JSON",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// httpStatusMapping maps internal error codes to HTTP status codes.
var httpStatusMapping = map[ErrorCode]int{
	ErrCodeValidationFailed:     http.StatusBadRequest,
	ErrCodeMalformedRequest:     http.StatusBadRequest,
	ErrCodeInvalidSignalValue:   http.StatusInternalServerError,
	ErrCodePolicyLoadFailed:     http.StatusInternalServerError,
	ErrCodeAIUpstreamError:      http.StatusBadGateway,
	ErrCodeAIResponseUnparsable: http.StatusBadGateway,
	ErrCodeAITimeout:            http.StatusGatewayTimeout,
	ErrCodeAINotConfigured:      http.StatusServiceUnavailable,
	ErrCodeRateLimited:          http.StatusTooManyRequests,
	ErrCodeAuthenticationFailed: http.StatusUnauthorized,
}

// HTTPStatus returns the HTTP status code for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, exists := httpStatusMapping[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryable checks whether an error should be surfaced to the caller as
// retryable.
func IsRetryable(err error) bool {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Retryable
	}
	return false
}
