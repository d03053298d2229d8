package service_test

import (
	"errors"
	"fmt"
	"taskManager/internal/service"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBusinessError_Details(t *testing.T) {
	busErr := service.NewBusinessError("CONFLICT", "Task changed",
		service.ToDetail("id", "42"),
		service.ToDetail("field", "title"),
	)

	assert.Equal(t, "CONFLICT", busErr.Code)
	assert.Equal(t, map[string]any{"id": "42", "field": "title"}, busErr.Details)
	assert.Equal(t, "[CONFLICT] Task changed", busErr.Error())
}

func TestBusinessErrorConstructors(t *testing.T) {
	tests := []struct {
		name        string
		err         *service.BusinessError
		wantCode    string
		wantMessage string
		wantDetails map[string]any
	}{
		{
			name:        "not found",
			err:         service.NewNotFound("42"),
			wantCode:    service.CodeNotFound,
			wantMessage: "Task not found",
			wantDetails: map[string]any{"id": "42"},
		},
		{
			name:        "invalid id",
			err:         service.NewInvalidID("zz"),
			wantCode:    service.CodeInvalidID,
			wantMessage: "Invalid Task ID",
			wantDetails: map[string]any{"id": "zz"},
		},
		{
			name:        "validation",
			err:         service.NewValidationError("title", "Title is required"),
			wantCode:    service.CodeValidation,
			wantMessage: "Title is required",
			wantDetails: map[string]any{"field": "title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantMessage, tt.err.Message)
			assert.Equal(t, tt.wantDetails, tt.err.Details)
		})
	}
}

func TestAsBusinessError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", service.NewNotFound("42"))

	busErr, ok := service.AsBusinessError(wrapped)
	require.True(t, ok)
	assert.Equal(t, service.CodeNotFound, busErr.Code)

	_, ok = service.AsBusinessError(errors.New("plain"))
	assert.False(t, ok)
}
