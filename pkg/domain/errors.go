package domain

import "fmt"

// ValidationError reports missing or malformed caller input. It is detected
// before any mutation is applied.
type ValidationError struct {
	Field   string
	Message string
}

// MissingField builds the canonical validation error for an absent required
// field.
func MissingField(field string) ValidationError {
	return ValidationError{Field: field}
}

func (e ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required field: " + e.Field
}

// DuplicateError reports a uniqueness violation on a keyed column.
type DuplicateError struct {
	Collection string
	Column     string
	Value      string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q in %s", e.Column, e.Value, e.Collection)
}

// NotFoundError reports a missing row or an unknown collection or column.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// ConflictError reports an operation rejected by the current lifecycle state.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string {
	return e.Message
}

// DependencyError wraps a failure of a dependent mutation performed mid
// workflow. By the time it is returned any compensating rollback has already
// been applied.
type DependencyError struct {
	Op  string
	Err error
}

func (e DependencyError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e DependencyError) Unwrap() error {
	return e.Err
}
