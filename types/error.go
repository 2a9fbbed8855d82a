package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the service.
type ErrorCode string

// Generic error codes
const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrRateLimited        ErrorCode = "RATE_LIMITED"
	ErrTimeout            ErrorCode = "TIMEOUT"
	ErrUpstreamError      ErrorCode = "UPSTREAM_ERROR"
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

// Onboarding error codes
const (
	ErrValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrExtractionFailed       ErrorCode = "EXTRACTION_FAILED"
	ErrDuplicateRecord        ErrorCode = "DUPLICATE_RECORD"
	ErrPersistenceUnavailable ErrorCode = "PERSISTENCE_UNAVAILABLE"
	ErrUnexpectedInput        ErrorCode = "UNEXPECTED_INPUT"
	ErrInvalidTransition      ErrorCode = "INVALID_TRANSITION"
	ErrCancelled              ErrorCode = "CANCELLED"
)

// Session error codes
const (
	ErrSessionBusy     ErrorCode = "SESSION_BUSY"
	ErrSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrSessionLimit    ErrorCode = "SESSION_LIMIT"
	ErrSessionClosed   ErrorCode = "SESSION_CLOSED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Field      string    `json:"field,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithField records which employee field the error refers to.
func (e *Error) WithField(field Field) *Error {
	e.Field = string(field)
	return e
}

// Coder is implemented by component errors that can describe themselves
// as a unified *Error.
type Coder interface {
	ToTypesError() *Error
}

// AsError converts err into *Error, following wrapped errors and Coder
// implementations. ok is false when no structured form exists.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	var c Coder
	if errors.As(err, &c) {
		return c.ToTypesError(), true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether err carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
