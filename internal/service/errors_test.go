package service_test

import (
	"errors"
	"fmt"
	"testing"

	"taskFlow/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     *service.BusinessError
		code    string
		details map[string]any
	}{
		{
			name:    "not found",
			err:     service.NewNotFound("задача", "42"),
			code:    service.CodeNotFound,
			details: map[string]any{"resource": "задача", "id": "42"},
		},
		{
			name:    "validation",
			err:     service.NewValidationError("title", "required"),
			code:    service.CodeValidation,
			details: map[string]any{"field": "title", "reason": "required"},
		},
		{
			name:    "backend unavailable",
			err:     service.NewBackendUnavailable("toggle_task"),
			code:    service.CodeBackendUnavailable,
			details: map[string]any{"operation": "toggle_task"},
		},
		{
			name:    "custom details",
			err:     service.NewBusinessError("CONFLICT", "конфликт", service.ToDetail("id", 7), service.ToDetail("id", 8)),
			code:    "CONFLICT",
			details: map[string]any{"id": 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.details, tt.err.Details)
			assert.Contains(t, tt.err.Error(), tt.code)
		})
	}
}

func TestBusinessError_Wrapped(t *testing.T) {
	cause := errors.New("pool closed")
	busErr := service.NewBackendUnavailable("create_task")
	busErr.Err = cause

	wrapped := fmt.Errorf("handler: %w", busErr)

	var target *service.BusinessError
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, service.CodeBackendUnavailable, target.Code)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, busErr.Error(), "pool closed")
}
