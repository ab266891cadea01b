package lazycell

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrConstructionFailed matches every *ConstructionError via errors.Is.
	ErrConstructionFailed = errors.New("construction failed")

	// ErrNilConstructor indicates the cell was created without a constructor.
	ErrNilConstructor = errors.New("constructor cannot be nil")
)

// ConstructionError reports a failed construction attempt.
// Only the caller that ran the attempt receives it; the cell stays empty.
type ConstructionError struct {
	// Cell is the name of the cell.
	Cell string
	// Attempt is the 1-based slow-path attempt number.
	Attempt int
	// Err is the constructor's error, or a *PanicError.
	Err error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cell %s: construction attempt %d: %v", e.Cell, e.Attempt, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConstructionFailed.
func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstructionFailed
}

// PanicError captures a panic raised by a constructor.
// It includes the stack trace for debugging.
type PanicError struct {
	// Cell is the name of the cell whose constructor panicked.
	Cell string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("cell %s: constructor panicked: %v", e.Cell, e.Value)
}
