package domain

import "errors"

// Sentinel errors shared across services and repositories. Services wrap them
// with context via fmt.Errorf("...: %w", err); controllers translate them to
// HTTP status codes.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on business-rule violations: wrong state,
	// participant limit reached, ownership clashes, duplicates.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned for malformed input such as an inverted
	// date range.
	ErrValidation = errors.New("invalid input")
	// ErrForbidden is returned when the caller is not allowed to act on the
	// entity.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateEmail is returned when a user email is already taken.
	ErrDuplicateEmail = errors.New("email already in use")
)
