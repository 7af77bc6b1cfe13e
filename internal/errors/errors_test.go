package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: NewValidationError("bad"), want: http.StatusBadRequest},
		{name: "not found", err: NewNotFoundError("HealthLog", 1), want: http.StatusNotFound},
		{name: "source", err: NewSourceUnavailableError(errors.New("timeout"), "mifit"), want: http.StatusServiceUnavailable},
		{name: "database", err: NewDatabaseError(errors.New("conn reset")), want: http.StatusInternalServerError},
		{name: "plain", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped", err: fmt.Errorf("get: %w", NewNotFoundError("HealthLog", 2)), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestWithField_KeepsFirstMessage(t *testing.T) {
	err := NewValidationError("Validation failed").
		WithField("value", "value must be a number").
		WithField("value", "second")

	assert.Equal(t, map[string]string{"value": "value must be a number"}, err.Fields)
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
}

func TestAppError_UnwrapAndIs(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewSourceUnavailableError(cause, "mifit")

	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.Is(err, ErrSourceUnavailable))
	assert.Equal(t, "mifit data source unavailable", err.Message)
	assert.Contains(t, err.Error(), "refused")

	appErr, ok := AsAppError(fmt.Errorf("wrapped: %w", err))
	require.True(t, ok)
	assert.Equal(t, "mifit", appErr.Context["source"])

	_, ok = AsAppError(cause)
	assert.False(t, ok)
}
