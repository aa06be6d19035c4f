package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrInvalidPattern ErrorCode = "INVALID_PATTERN"

	// Configuration errors: unknown imports, import cycles, malformed modules
	ErrConfiguration ErrorCode = "CONFIGURATION"
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"

	// Ownership errors
	ErrPathConflict ErrorCode = "PATH_CONFLICT"
	ErrPathExists   ErrorCode = "PATH_EXISTS"

	// Source errors
	ErrFetchFailure ErrorCode = "FETCH_FAILURE"
	ErrHashMismatch ErrorCode = "HASH_MISMATCH"

	// Environment errors
	ErrFilesystem     ErrorCode = "FILESYSTEM"
	ErrUserResolution ErrorCode = "USER_RESOLUTION"
	ErrStateSave      ErrorCode = "STATE_SAVE"
)

// DotmodError represents a structured error with code and details
type DotmodError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DotmodError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DotmodError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DotmodError) Is(target error) bool {
	var targetErr *DotmodError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DotmodError with the given code and message
func New(code ErrorCode, message string) *DotmodError {
	return &DotmodError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DotmodError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DotmodError {
	return &DotmodError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DotmodError
func Wrap(err error, code ErrorCode, message string) *DotmodError {
	if err == nil {
		return nil
	}
	return &DotmodError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DotmodError {
	if err == nil {
		return nil
	}
	return &DotmodError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DotmodError) WithDetail(key string, value interface{}) *DotmodError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DotmodError) WithDetails(details map[string]interface{}) *DotmodError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error, or any DotmodError it wraps, has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var dotmodErr *DotmodError
		if !errors.As(err, &dotmodErr) {
			return false
		}
		if dotmodErr.Code == code {
			return true
		}
		err = dotmodErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DotmodError
func GetErrorCode(err error) ErrorCode {
	var dotmodErr *DotmodError
	if errors.As(err, &dotmodErr) {
		return dotmodErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DotmodError
func GetErrorDetails(err error) map[string]interface{} {
	var dotmodErr *DotmodError
	if errors.As(err, &dotmodErr) {
		return dotmodErr.Details
	}
	return nil
}