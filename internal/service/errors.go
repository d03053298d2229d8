package service

import (
	"errors"
	"fmt"
	"taskManager/internal/models/task"
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInvalidID  = "INVALID_ID"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(id string) *BusinessError {
	return NewBusinessError(CodeNotFound, "Task not found", ToDetail("id", id))
}

func NewInvalidID(id string) *BusinessError {
	return NewBusinessError(CodeInvalidID, "Invalid Task ID", ToDetail("id", id))
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation, reason, ToDetail("field", field))
}

// validationError turns a model invariant violation into a VALIDATION_ERROR
// naming the offending field.
func validationError(err error) *BusinessError {
	switch {
	case errors.Is(err, task.ErrEmptyTitle):
		return NewValidationError("title", "Title is required")
	case errors.Is(err, task.ErrInvalidStatus):
		return NewValidationError("status", err.Error())
	default:
		return NewValidationError("task", err.Error())
	}
}

// AsBusinessError reports whether err carries a *BusinessError.
func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr, true
	}
	return nil, false
}
