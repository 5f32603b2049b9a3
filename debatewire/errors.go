package debatewire

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// Frame errors: the payload is dropped, the subscription survives.
	ErrorSerialization
	ErrorUnknownFrame
	ErrorMissingRoom

	// Transport errors: recovered by reconnecting.
	ErrorConnection
	ErrorDisconnected
	ErrorTimeout

	// Caller errors
	ErrorInvalidConfig
	ErrorClosed
	ErrorNotRunning
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorSerialization:
		return "serialization_error"
	case ErrorUnknownFrame:
		return "unknown_frame"
	case ErrorMissingRoom:
		return "missing_room"
	case ErrorConnection:
		return "connection_error"
	case ErrorDisconnected:
		return "disconnected"
	case ErrorTimeout:
		return "timeout"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorClosed:
		return "closed"
	case ErrorNotRunning:
		return "not_running"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// DebateError is a structured error with code and context.
type DebateError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *DebateError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *DebateError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a *DebateError with the same code.
func (e *DebateError) Is(target error) bool {
	t, ok := target.(*DebateError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new DebateError with the given code and message.
func NewError(code ErrorCode, message string) *DebateError {
	return &DebateError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a DebateError.
func WrapError(code ErrorCode, message string, err error) *DebateError {
	return &DebateError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// IsFrameError reports whether err describes a single bad frame.
func IsFrameError(err error) bool {
	var de *DebateError
	if !errors.As(err, &de) {
		return false
	}
	return de.Code >= ErrorSerialization && de.Code <= ErrorMissingRoom
}

// IsConnectionError checks if an error is a connection-related error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var de *DebateError
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == ErrorConnection || de.Code == ErrorDisconnected || de.Code == ErrorTimeout
}
