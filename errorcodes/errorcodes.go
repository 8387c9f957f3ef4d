package errorcodes

import (
	"errors"
	"fmt"
)

// Code identifies the kind of a structured error.
type Code string

const (
	ErrCodeInvalidArgument       Code = "InvalidArgument"
	ErrCodeInvalidFormat         Code = "InvalidFormat"
	ErrCodeChecksumMismatch      Code = "ChecksumMismatch"
	ErrCodeIllegalState          Code = "IllegalState"
	ErrCodeMissingImplementation Code = "MissingImplementation"
	ErrCodeRuntime               Code = "Runtime"
	ErrCodeOutOfRange            Code = "OutOfRange"
	ErrCodeUnsupportedOperation  Code = "UnsupportedOperation"
	ErrCodeTimeout               Code = "Timeout"
)

// Error is the structured failure payload used across the code base. It
// carries a code, a human readable message and an optional opaque user data
// value, and may wrap the error that caused it.
type Error struct {
	// Code is the kind of the failure.
	Code Code

	// Message is the diagnostic text.
	Message string

	// UserData is optional caller supplied context.
	UserData any

	cause error
}

// New creates a new structured error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a new structured error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a structured error that wraps err. The wrapped error stays
// reachable through errors.Is and errors.As.
func Wrap(code Code, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}

	return &Error{Code: code, Message: msg, cause: err}
}

// WithUserData returns a copy of the error carrying the given user data.
func (e *Error) WithUserData(data any) *Error {
	cp := *e
	cp.UserData = data

	return &cp
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is a structured error of the same kind. An empty
// target message matches any message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	if t.Code != e.Code {
		return false
	}

	return t.Message == "" || t.Message == e.Message
}

// CodeOf returns the code of the first structured error found in err's chain.
// Unstructured errors report ErrCodeRuntime and a nil error reports "".
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeRuntime
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// AsError converts any error into a structured one. Structured errors are
// returned as-is, anything else is wrapped into a runtime failure carrying the
// original diagnostic text.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	return &Error{Code: ErrCodeRuntime, Message: err.Error(), cause: err}
}

// FromPanic converts a recovered panic value into a structured error.
func FromPanic(r any) *Error {
	switch v := r.(type) {
	case *Error:
		return v

	case error:
		return AsError(v)

	default:
		return Newf(ErrCodeRuntime, "%v", v)
	}
}
