package store

import (
	"errors"
	"fmt"
)

// Sentinels shared by every reference store backend. Backends wrap them with
// detail; callers match with errors.Is.
var (
	// ErrNotFound is the root of every lookup miss.
	ErrNotFound = errors.New("not found")

	// ErrReferenceNotFound means a character has no reference strokes, or
	// none that parse.
	ErrReferenceNotFound = fmt.Errorf("%w: reference strokes", ErrNotFound)

	// ErrDuplicate is returned when a write collides with an existing stroke.
	ErrDuplicate = errors.New("stroke already exists")

	// ErrInvalidEntity is returned for reference data rejected before or
	// during a write: blank characters, empty paths, violated constraints.
	ErrInvalidEntity = errors.New("invalid reference data")

	// ErrReadOnly is returned by backends without write support.
	ErrReadOnly = errors.New("reference store is read-only")

	// ErrTransactionFailed wraps begin and commit failures.
	ErrTransactionFailed = errors.New("transaction failed")
)

// IsNotFoundError reports whether err is any kind of lookup miss.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError records which backend operation failed, and for which character.
type StoreError struct {
	Operation string // get, list, replace
	Character string // empty for operations spanning characters
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	target := "reference strokes"
	if e.Character != "" {
		target = fmt.Sprintf("reference strokes of %q", e.Character)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Operation, target, e.Message)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Operation, target, e.Message, e.Err)
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a StoreError.
func NewStoreError(operation, character, message string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Character: character,
		Message:   message,
		Err:       err,
	}
}
