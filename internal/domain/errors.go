package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")
)

// Field-level validation messages shared by entities and request DTOs.
const (
	MsgRequired     = "is required"
	MsgMustNotEmpty = "must not be empty"
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError reports that no stored entity matches the given identifier.
// It is an absence outcome, not a store failure, and matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// StorageError wraps a store failure (connectivity, acquire timeout, constraint
// violation, open circuit breaker) with the action that was being attempted,
// e.g. "create todo" or "fetch todos".
//
// errors.Is matches both ErrStorage and the underlying cause.
type StorageError struct {
	Action string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Action, e.Err)
}

// Redacted returns the client-safe form of the message without the store detail.
func (e *StorageError) Redacted() string {
	return "Failed to " + e.Action
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}
