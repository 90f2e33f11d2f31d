// Package errs provides coded application errors shared by the letter store,
// the chat transport and the composition flow.
package errs

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown    = "UNKNOWN"
	CodeStore      = "STORE"
	CodeTransport  = "TRANSPORT"
	CodeInput      = "INPUT"
	CodeStale      = "STALE"
	CodeConfig     = "CONFIG"
	CodeValidation = "VALIDATION"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a coded application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if it doesn't have one.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}

func newError(code, message string, cause error) error {
	return &Error{code: code, message: message, err: cause}
}

// NewStoreError wraps a letter store failure.
func NewStoreError(message string, cause error) error {
	return newError(CodeStore, message, cause)
}

// NewTransportError wraps a chat transport failure.
func NewTransportError(message string, cause error) error {
	return newError(CodeTransport, message, cause)
}

// NewInputError reports user input that was rejected.
func NewInputError(message string) error {
	return newError(CodeInput, message, nil)
}

// NewStaleError reports an event that refers to state which no longer exists.
func NewStaleError(message string) error {
	return newError(CodeStale, message, nil)
}

// NewConfigError wraps a configuration failure.
func NewConfigError(message string, cause error) error {
	return newError(CodeConfig, message, cause)
}

// NewValidationError reports an invalid value passed to an operation.
func NewValidationError(message string, cause error) error {
	return newError(CodeValidation, message, cause)
}
