// Package vm provides error handling for the script runtime.
package vm

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of runtime error.
type ErrorType string

const (
	// Fatal errors - the run is aborted and returns 0
	ErrorTimeout       ErrorType = "TIMEOUT"
	ErrorStackOverflow ErrorType = "STACK_OVERFLOW"
)

// RuntimeError represents a runtime error in the VM.
// Unresolved names and out-of-range memory reads are not errors: they evaluate to 0.
type RuntimeError struct {
	Type    ErrorType
	Message string
	Token   int // index of the token being executed, -1 if unknown
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Token >= 0 {
		return fmt.Sprintf("[%s] %s at token %d", e.Type, e.Message, e.Token)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// NewRuntimeError creates a new RuntimeError.
func NewRuntimeError(errType ErrorType, message string) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: message,
		Token:   -1,
	}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(limit time.Duration, token int) *RuntimeError {
	err := NewRuntimeError(ErrorTimeout, fmt.Sprintf("trace timed out after %v", limit))
	err.Token = token
	return err
}

// NewStackOverflowError creates a stack overflow error.
func NewStackOverflowError(depth, max int) *RuntimeError {
	return NewRuntimeError(ErrorStackOverflow, fmt.Sprintf("stack overflow: depth %d exceeds maximum %d", depth, max))
}

// IsTimeout reports whether err is (or wraps) a timeout RuntimeError.
func IsTimeout(err error) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr) && rerr.Type == ErrorTimeout
}

// IsStackOverflow reports whether err is (or wraps) a stack overflow RuntimeError.
func IsStackOverflow(err error) bool {
	var rerr *RuntimeError
	return errors.As(err, &rerr) && rerr.Type == ErrorStackOverflow
}
