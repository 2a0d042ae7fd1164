// Package apperrors holds the error taxonomy shared by repositories, services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrValidation        = errors.New("validation failed")
	ErrReferenceNotFound = errors.New("referenced resource not found")
	ErrUniqueViolation   = errors.New("unique constraint violated")
	// ErrDuplicateOrderNumber is retryable: the caller should re-run order number allocation.
	ErrDuplicateOrderNumber = fmt.Errorf("%w: order number already taken", ErrUniqueViolation)
	// ErrReferenced is returned when a delete is blocked by dependent rows.
	ErrReferenced       = errors.New("resource is referenced by other records")
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError carries field-level messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a message for field, keeping the first one reported.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Merge copies the fields of other under prefix (e.g. "items[0].").
func (e *ValidationError) Merge(prefix string, other *ValidationError) {
	if other == nil {
		return
	}
	for field, message := range other.Fields {
		e.Add(prefix+field, message)
	}
}

// Err returns nil when no field was recorded.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ReferenceError names the request field whose foreign key target is missing.
type ReferenceError struct {
	Field string
}

func MissingReference(field string) error {
	return &ReferenceError{Field: field}
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, ErrReferenceNotFound.Error())
}

func (e *ReferenceError) Unwrap() error {
	return ErrReferenceNotFound
}

// AsValidation returns the ValidationError wrapped in err, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
