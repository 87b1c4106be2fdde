package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")

	// ErrUnauthorized covers bad credentials and missing or invalid tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a rejected input field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// TransitionError is returned when a status change is not allowed by the lifecycle.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrConflict
}
