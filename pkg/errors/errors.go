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
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Target parsing errors
	ErrMalformedTarget ErrorCode = "MALFORMED_TARGET"

	// Configuration errors
	ErrConfigLoad       ErrorCode = "CONFIG_LOAD"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"
	ErrConfigWrite      ErrorCode = "CONFIG_WRITE"

	// Git errors
	ErrCloneFailed ErrorCode = "CLONE_FAILED"
	ErrRefNotFound ErrorCode = "REF_NOT_FOUND"

	// Materialization errors
	ErrDuplicateDestination ErrorCode = "DUPLICATE_DESTINATION"

	// Lockfile errors
	ErrLockfileLoad          ErrorCode = "LOCKFILE_LOAD"
	ErrLockfileWrite         ErrorCode = "LOCKFILE_WRITE"
	ErrLockfileInconsistency ErrorCode = "LOCKFILE_INCONSISTENCY"

	// FileSystem errors
	ErrFilesystem ErrorCode = "FILESYSTEM"

	// Plugin lookup errors
	ErrPluginNotFound ErrorCode = "PLUGIN_NOT_FOUND"
)

// PezError represents a structured error with code and details
type PezError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *PezError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PezError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *PezError) Is(target error) bool {
	var targetErr *PezError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new PezError with the given code and message
func New(code ErrorCode, message string) *PezError {
	return &PezError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new PezError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *PezError {
	return &PezError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a PezError
func Wrap(err error, code ErrorCode, message string) *PezError {
	if err == nil {
		return nil
	}
	return &PezError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *PezError {
	if err == nil {
		return nil
	}
	return &PezError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *PezError) WithDetail(key string, value interface{}) *PezError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *PezError) WithDetails(details map[string]interface{}) *PezError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var pezErr *PezError
	if errors.As(err, &pezErr) {
		return pezErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a PezError
func GetErrorCode(err error) ErrorCode {
	var pezErr *PezError
	if errors.As(err, &pezErr) {
		return pezErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a PezError
func GetErrorDetails(err error) map[string]interface{} {
	var pezErr *PezError
	if errors.As(err, &pezErr) {
		return pezErr.Details
	}
	return nil
}
