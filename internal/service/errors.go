package service

import "errors"

// Common service errors
var (
	// ErrNotFound matches every entity-specific not found error
	ErrNotFound = errors.New("resource not found")

	// ErrConflict matches every uniqueness or reference conflict
	ErrConflict = errors.New("resource conflict")

	// ErrOrderNumberExhausted is returned when no free order number could be generated
	ErrOrderNumberExhausted = errors.New("failed to generate a unique order number")
)

type notFoundError string

func (e notFoundError) Error() string { return string(e) + " not found" }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

type conflictError string

func (e conflictError) Error() string { return string(e) }

func (e conflictError) Is(target error) bool { return target == ErrConflict }

var (
	ErrUserNotFound        error = notFoundError("user")
	ErrAccountNotFound     error = notFoundError("account")
	ErrContactNotFound     error = notFoundError("contact")
	ErrLeadNotFound        error = notFoundError("lead")
	ErrProductNotFound     error = notFoundError("product")
	ErrOpportunityNotFound error = notFoundError("opportunity")
	ErrOrderNotFound       error = notFoundError("order")
	ErrOrderItemNotFound   error = notFoundError("order item")
	ErrActivityNotFound    error = notFoundError("activity")
	ErrNoteNotFound        error = notFoundError("note")
)

var (
	ErrDuplicateUserEmail    error = conflictError("a user with this email already exists")
	ErrDuplicateLeadEmail    error = conflictError("a lead with this email already exists")
	ErrDuplicateContactEmail error = conflictError("a contact with this email already exists")
	ErrProductInUse          error = conflictError("product is referenced by order items")
	ErrProductTypeLocked     error = conflictError("product type cannot change while order items reference it")
)
