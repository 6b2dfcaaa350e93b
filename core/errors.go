package core

import "fmt"

// ValidationError reports malformed or missing input: a required field
// absent on create, an unparseable date, a non-numeric range bound.
// Maps to HTTP 400.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// Validationf creates a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) ValidationError {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a natural-key collision, either detected by the
// application-level pre-check or by the storage layer's unique index.
// Maps to HTTP 400.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string { return e.Message }

// Conflictf creates a ConflictError with a formatted message.
func Conflictf(format string, args ...interface{}) ConflictError {
	return ConflictError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent or soft-deleted record, or a lookup
// with a malformed identifier. Maps to HTTP 404.
type NotFoundError struct {
	Message string
}

func (e NotFoundError) Error() string {
	if e.Message == "" {
		return "not found"
	}
	return e.Message
}

// AuthError reports a missing, malformed or expired bearer token.
// Maps to HTTP 401.
type AuthError struct {
	Message string
}

func (e AuthError) Error() string {
	if e.Message == "" {
		return "not authorized"
	}
	return e.Message
}
