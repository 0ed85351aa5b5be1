package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeStoreUnavailable, http.StatusInternalServerError},
		{ErrCodeInvalidPayload, http.StatusInternalServerError},
		{ErrCodePersistenceFailure, http.StatusInternalServerError},
		{ErrCodeFetchFailure, http.StatusBadGateway},
		{ErrCodeMalformedResponse, http.StatusBadGateway},
		{ErrCodeValidationInvalidField, http.StatusBadRequest},
		{ErrCodeNotFoundChart, http.StatusNotFound},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	plain := NewAppError(ErrCodeStoreUnavailable, "Failed to connect to the database", nil)
	assert.Equal(t, "internal_store_unavailable: Failed to connect to the database", plain.Error())

	wrapped := NewAppError(ErrCodePersistenceFailure, "insert failed", errors.New("duplicate key"))
	assert.Equal(t, "internal_persistence_failure: insert failed: duplicate key", wrapped.Error())
}

func TestAppError_UnwrapAndAs(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := NewAppError(ErrCodeFetchFailure, "fetch failed", cause)
	chained := fmt.Errorf("tick: %w", appErr)

	assert.ErrorIs(t, chained, cause)

	got, ok := AsAppError(chained)
	require.True(t, ok)
	assert.Equal(t, ErrCodeFetchFailure, got.Code)
	assert.Equal(t, ErrCodeFetchFailure, CodeOf(chained))
}

func TestCodeOf_NonAppError(t *testing.T) {
	assert.Equal(t, ErrCodeInternalUnexpected, CodeOf(errors.New("boom")))
	_, ok := AsAppError(nil)
	assert.False(t, ok)
}

func TestAppError_WithDetailsDoesNotMutate(t *testing.T) {
	orig := &AppError{Code: ErrCodeValidationInvalidField, Message: "bad field", Details: map[string]any{"a": 1}}
	copied := orig.WithDetails(map[string]any{"field": "pm25"})

	assert.Len(t, orig.Details, 1)
	assert.Equal(t, map[string]any{"a": 1, "field": "pm25"}, copied.Details)
	assert.Equal(t, orig.Code, copied.Code)
}
