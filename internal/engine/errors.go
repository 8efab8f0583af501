package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a failure surfaced by Substitutable or Hash.
//
// Errors include:
//   - Shape resolution: a type's fields cannot be determined
//   - Circular composition: a composite nests itself by value
//   - Internal failure: an accessor or nested call panicked during traversal
//
// All are fatal for the operation that raised them; the engine never retries
// and never returns a partial result.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Type names the composite being synthesized or traversed, if known.
	Type string

	// Path is the chain of types being synthesized when a cycle was found,
	// starting and ending with the same type.
	Path []string

	// Cause is the underlying error or recovered panic value.
	Cause error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeShapeResolution indicates a type's shape could not be read.
	ErrCodeShapeResolution ErrorCode = "SHAPE_RESOLUTION"

	// ErrCodeCircularComposition indicates a composite transitively nests
	// itself with no reference indirection.
	ErrCodeCircularComposition ErrorCode = "CIRCULAR_COMPOSITION"

	// ErrCodeInternalFailure indicates a panic during traversal.
	ErrCodeInternalFailure ErrorCode = "INTERNAL_FAILURE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Path, " → "))
	} else if e.Type != "" {
		fmt.Fprintf(&b, " (type=%s)", e.Type)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsShapeResolutionError reports whether err is a shape resolution error.
// Uses errors.As to handle wrapped errors.
func IsShapeResolutionError(err error) bool {
	return hasCode(err, ErrCodeShapeResolution)
}

// IsCircularCompositionError reports whether err is a circular composition error.
func IsCircularCompositionError(err error) bool {
	return hasCode(err, ErrCodeCircularComposition)
}

// IsInternalFailure reports whether err is an internal failure.
func IsInternalFailure(err error) bool {
	return hasCode(err, ErrCodeInternalFailure)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// NewShapeError wraps an introspection failure for type name.
func NewShapeError(typeName string, cause error) *Error {
	return &Error{
		Code:    ErrCodeShapeResolution,
		Message: "cannot determine composite shape",
		Type:    typeName,
		Cause:   cause,
	}
}

// NewCircularError creates an error for a by-value composition cycle.
// path lists the types from the first occurrence of the repeated type to
// its repetition.
func NewCircularError(path []string) *Error {
	return &Error{
		Code:    ErrCodeCircularComposition,
		Message: "composite nests itself without a reference indirection",
		Type:    path[0],
		Path:    path,
	}
}

// NewCyclicValueError creates an error for a value that reaches itself
// through handles while being hashed. path lists the handle types from the
// repeated handle back to it.
func NewCyclicValueError(path []string) *Error {
	return &Error{
		Code:    ErrCodeCircularComposition,
		Message: "value refers to itself through handles and has no finite hash",
		Type:    path[0],
		Path:    path,
	}
}

// NewInternalFailure wraps a panic recovered while traversing typeName.
func NewInternalFailure(typeName string, recovered any) *Error {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return &Error{
		Code:    ErrCodeInternalFailure,
		Message: "traversal failed",
		Type:    typeName,
		Cause:   cause,
	}
}
