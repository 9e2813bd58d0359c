// Package dwtile structured error types for driver and protocol failures
package dwtile

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Shape or parameter contract violations
	ErrTypeShape ErrorType = iota
	// Scratch buffer capacity exceeded
	ErrTypeCapacity
	// Engine instruction/word-count desynchronization
	ErrTypeProtocol
	// Engine read timed out
	ErrTypeTimeout
	// Other engine transport failures
	ErrTypeEngine
)

// ConvError represents a structured error with context
type ConvError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *ConvError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dwtile %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("dwtile %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *ConvError) Unwrap() error {
	return e.Err
}

// Is matches against the per-type sentinel errors so callers can use
// errors.Is(err, ErrTensorTooLarge) without holding the concrete value.
func (e *ConvError) Is(target error) bool {
	switch target {
	case ErrTensorTooLarge:
		return e.Type == ErrTypeCapacity
	case ErrProtocolDesync:
		return e.Type == ErrTypeProtocol
	case ErrEngineTimeout:
		return e.Type == ErrTypeTimeout
	}
	return false
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeShape:
		return "Shape"
	case ErrTypeCapacity:
		return "TensorTooLarge"
	case ErrTypeProtocol:
		return "ProtocolDesync"
	case ErrTypeTimeout:
		return "EngineTimeout"
	case ErrTypeEngine:
		return "Engine"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewShapeError creates a shape/parameter contract violation error
func NewShapeError(op string, message string) error {
	return &ConvError{
		Type:    ErrTypeShape,
		Op:      op,
		Message: message,
	}
}

// NewCapacityError creates a scratch-capacity overflow error
func NewCapacityError(op string, message string) error {
	return &ConvError{
		Type:    ErrTypeCapacity,
		Op:      op,
		Message: message,
	}
}

// NewProtocolError creates a word-count desynchronization error
func NewProtocolError(op string, message string, err error) error {
	return &ConvError{
		Type:    ErrTypeProtocol,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewTimeoutError creates an engine read-timeout error
func NewTimeoutError(op string, message string, err error) error {
	return &ConvError{
		Type:    ErrTypeTimeout,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewEngineError creates a generic engine transport error
func NewEngineError(op string, err error) error {
	return &ConvError{
		Type:    ErrTypeEngine,
		Op:      op,
		Message: "engine instruction failed",
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrTensorTooLarge indicates the packed tile stream would exceed
	// scratch capacity
	ErrTensorTooLarge = NewCapacityError("Pack", "packed stream exceeds scratch capacity")

	// ErrProtocolDesync indicates a word-count mismatch at a channel boundary
	ErrProtocolDesync = NewProtocolError("Stream", "engine word count desynchronized", nil)

	// ErrEngineTimeout indicates a blocking output read did not complete
	ErrEngineTimeout = NewTimeoutError("ReadOutput", "engine output read timed out", nil)
)
