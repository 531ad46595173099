package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur during a crawl
type ErrorType string

const (
	ErrorTypeLoginTimeout ErrorType = "login_timeout"
	ErrorTypeNoResults    ErrorType = "no_results"
	ErrorTypeSurface      ErrorType = "surface"
	ErrorTypeSession      ErrorType = "session"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeOutput       ErrorType = "output"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents a crawl error with type information
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// LoginTimeout reports that the authenticated-home marker never appeared
func LoginTimeout(err error) *Error {
	return New(ErrorTypeLoginTimeout, "login was not detected in the expected time", err)
}

// NoResults reports that neither the results list nor any fallback container appeared
func NoResults(err error) *Error {
	return New(ErrorTypeNoResults, "no timeline or posts detected; login wall or DOM change", err)
}

// Surface reports an unrecoverable render surface fault
func Surface(op string, err error) *Error {
	return New(ErrorTypeSurface, op, err)
}

// TypeOf returns the error type of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given type
func Is(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeSurface:
		return true
	case ErrorTypeLoginTimeout, ErrorTypeNoResults, ErrorTypeConfig, ErrorTypeSession, ErrorTypeOutput:
		return false
	default:
		return false
	}
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch TypeOf(err) {
	case ErrorTypeLoginTimeout:
		return 2
	case ErrorTypeNoResults:
		return 3
	case ErrorTypeSurface:
		return 4
	default:
		return 1
	}
}
