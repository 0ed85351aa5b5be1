package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Handlers and services use these instead of literals.
const (
	// Ingestion endpoint (500)
	ErrCodeStoreUnavailable   ErrorCode = "internal_store_unavailable"
	ErrCodeInvalidPayload     ErrorCode = "internal_invalid_payload"
	ErrCodePersistenceFailure ErrorCode = "internal_persistence_failure"

	// Rolling window snapshot storage
	ErrCodeSnapshotCorrupt     ErrorCode = "internal_snapshot_corrupt"
	ErrCodeSnapshotWriteFailed ErrorCode = "internal_snapshot_write_failed"

	// Poll loop (502)
	ErrCodeFetchFailure      ErrorCode = "upstream_fetch_failure"
	ErrCodeMalformedResponse ErrorCode = "upstream_malformed_response"

	// Request validation (400)
	ErrCodeValidationInvalidField ErrorCode = "validation_invalid_field"
	ErrCodeValidationInvalidWidth ErrorCode = "validation_invalid_width"
	ErrCodeValidationInvalidJSON  ErrorCode = "validation_invalid_json"

	// Not found (404)
	ErrCodeNotFoundChart   ErrorCode = "not_found_chart"
	ErrCodeNotFoundReading ErrorCode = "not_found_reading"

	// Generic
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// HTTPStatus maps an ErrorCode to its HTTP status code by prefix. Unknown codes
// map to 500.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type. Message is safe to show to
// clients; Err carries the internal cause and is never serialized.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeInternalUnexpected if
// err is not an AppError.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternalUnexpected
}

// AsAppError extracts the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
