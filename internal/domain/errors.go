package domain

import (
	"errors"
	"sort"
	"strings"
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"lt":       "Must be less than maximum value",
	"uuid":     "Must be a valid UUID",
	"url":      "Must be a valid URL",
	"oneof":    "Must be one of the allowed values",
	"numeric":  "Must be a numeric value",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeInvalidState = "invalid_state"
	ErrorTypeInternal     = "internal_error"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState matches every *StateError via errors.Is
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError reports one or more rejected input fields. No mutation
// has happened when it is returned.
type ValidationError struct {
	Errors map[string]string
	cause  error
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: map[string]string{field: message}}
}

// Add records another rejected field
func (e *ValidationError) Add(field, message string) *ValidationError {
	if e.Errors == nil {
		e.Errors = make(map[string]string)
	}
	e.Errors[field] = message
	return e
}

// WithCause attaches a sentinel so callers can match the specific failure
func (e *ValidationError) WithCause(err error) *ValidationError {
	e.cause = err
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e.Errors[field]
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

// StateError is returned when an operation is illegal for the current state
// of an opportunity. It is checked before any write.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalidState
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

var (
	// ErrOpportunityClosed is returned for any mutation of a closed opportunity,
	// its orders or its order items
	ErrOpportunityClosed error = &StateError{Message: "read-only: opportunity closed"}

	// ErrStageClosed is returned when changing the stage of a closed opportunity
	ErrStageClosed error = &StateError{Message: "cannot change stage of closed opportunity"}

	// ErrStageUnchanged is returned when the target stage equals the current stage
	ErrStageUnchanged error = &StateError{Message: "opportunity is already in the requested stage"}

	// ErrStageReasonRequired is the cause of the validation error returned for
	// a blank reason, so the error matches both ErrValidation and ErrInvalidState
	ErrStageReasonRequired error = &StateError{Message: "a reason is required to change the stage"}
)
