package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSerializationFailure = errors.New("serialization failure")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidInput         = errors.New("invalid input")
	ErrIdentityRequired     = errors.New("authenticated identity required")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrSubmitInFlight       = errors.New("submission already in flight")
	ErrSessionExpired       = errors.New("booking session expired")
)

// FieldErrors maps field names to human-readable messages. Only fields that
// failed validation appear.
type FieldErrors map[string]string

// ValidationError carries per-field messages back to the caller. Validation
// failures never reach the network layer.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(fields FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

// AsValidation unwraps a *ValidationError if err is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
