// Package errors provides structured error handling for netsight operations.
// It defines the error codes and error types surfaced by a scan session:
// validation failures caught before submission, transport failures talking
// to the scanning service, and decode failures on its responses.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeCanceled      ErrorCode = "CANCELED"

	// Scanning service errors.
	CodeTransport ErrorCode = "TRANSPORT"
	CodeDecode    ErrorCode = "DECODE"

	// Session errors.
	CodeConflict ErrorCode = "CONFLICT"
)

// Messages used for validation failures.
const (
	MsgRequiredFieldMissing = "required field missing"
	MsgInvalidValue         = "invalid value"
)

// ValidationError reports malformed or missing user input. It never reaches
// the network.
type ValidationError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewValidationError creates a validation error for a specific field.
func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// ErrRequiredField creates the error for an empty required field.
func ErrRequiredField(field string) *ValidationError {
	return NewValidationError(MsgRequiredFieldMissing, field, nil)
}

// TransportError reports a non-2xx response or a failed HTTP exchange.
// StatusCode is zero when no response was received.
type TransportError struct {
	Code       ErrorCode
	StatusCode int
	Message    string
	Endpoint   string
	Cause      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (status: %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewStatusError creates a transport error for a non-2xx response.
func NewStatusError(statusCode int, message, endpoint string) *TransportError {
	if message == "" {
		message = fmt.Sprintf("HTTP error: %d", statusCode)
	}
	return &TransportError{
		Code:       CodeTransport,
		StatusCode: statusCode,
		Message:    message,
		Endpoint:   endpoint,
	}
}

// WrapTransportError wraps a network-level failure.
func WrapTransportError(message, endpoint string, err error) *TransportError {
	return &TransportError{
		Code:     CodeTransport,
		Message:  message,
		Endpoint: endpoint,
		Cause:    err,
	}
}

// DecodeError reports a response body that could not be parsed.
type DecodeError struct {
	Code     ErrorCode
	Message  string
	Endpoint string
	Cause    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("[%s] %s (endpoint: %s)", e.Code, e.Message, e.Endpoint)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// WrapDecodeError wraps a body parsing failure.
func WrapDecodeError(endpoint string, err error) *DecodeError {
	return &DecodeError{
		Code:     CodeDecode,
		Message:  "malformed response body",
		Endpoint: endpoint,
		Cause:    err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// StateError reports an operation rejected by the current session phase.
type StateError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewStateError creates a session state error.
func NewStateError(code ErrorCode, message string) *StateError {
	return &StateError{
		Code:    code,
		Message: message,
	}
}

// Utility functions for common error operations

// GetCode extracts the error code from an error chain if it has one.
func GetCode(err error) ErrorCode {
	var (
		ve *ValidationError
		te *TransportError
		de *DecodeError
		ce *ConfigError
		se *StateError
	)
	switch {
	case err == nil:
		return CodeUnknown
	case stderrors.As(err, &ve):
		return ve.Code
	case stderrors.As(err, &te):
		return te.Code
	case stderrors.As(err, &de):
		return de.Code
	case stderrors.As(err, &ce):
		return ce.Code
	case stderrors.As(err, &se):
		return se.Code
	}
	return CodeUnknown
}

// As is errors.As re-exported so callers need a single errors import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsRetryable reports whether an error should be retried automatically.
// Scan sessions never retry on their own; a retry is a user action.
func IsRetryable(error) bool {
	return false
}

// Message returns the human-readable text shown to the user for a failed
// scan session.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		te *TransportError
		de *DecodeError
		se *StateError
	)
	switch {
	case stderrors.As(err, &ve):
		if ve.Field != "" {
			return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
		}
		return ve.Message
	case stderrors.As(err, &te):
		if te.Cause != nil {
			return fmt.Sprintf("%s: %v", te.Message, te.Cause)
		}
		return te.Message
	case stderrors.As(err, &de):
		if de.Cause != nil {
			return fmt.Sprintf("%s: %v", de.Message, de.Cause)
		}
		return de.Message
	case stderrors.As(err, &se):
		return se.Message
	}
	return err.Error()
}
