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
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Filesystem errors
	ErrPermission ErrorCode = "PERMISSION"
	ErrIOFault    ErrorCode = "IO_FAULT"
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
	ErrSymlink    ErrorCode = "SYMLINK_CREATE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Build descriptor errors
	ErrDescriptorMissing ErrorCode = "DESCRIPTOR_MISSING"
	ErrDescriptorParse   ErrorCode = "DESCRIPTOR_PARSE"
	ErrDescriptorInvalid ErrorCode = "DESCRIPTOR_INVALID"

	// Dependency errors
	ErrDependencyUnresolved ErrorCode = "DEPENDENCY_UNRESOLVED"
	ErrDependencyFetch      ErrorCode = "DEPENDENCY_FETCH"

	// Resolution errors
	ErrResolutionFailed ErrorCode = "RESOLUTION_FAILED"

	// Execution errors
	ErrActionInvalid ErrorCode = "ACTION_INVALID"
	ErrActionExecute ErrorCode = "ACTION_EXECUTE"
)

// SitelinkError represents a structured error with code and details
type SitelinkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SitelinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SitelinkError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SitelinkError) Is(target error) bool {
	var targetErr *SitelinkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SitelinkError with the given code and message
func New(code ErrorCode, message string) *SitelinkError {
	return &SitelinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SitelinkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SitelinkError {
	return &SitelinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SitelinkError
func Wrap(err error, code ErrorCode, message string) *SitelinkError {
	if err == nil {
		return nil
	}
	return &SitelinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SitelinkError {
	if err == nil {
		return nil
	}
	return &SitelinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SitelinkError) WithDetail(key string, value interface{}) *SitelinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var slErr *SitelinkError
	if errors.As(err, &slErr) {
		return slErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SitelinkError
func GetErrorCode(err error) ErrorCode {
	var slErr *SitelinkError
	if errors.As(err, &slErr) {
		return slErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SitelinkError
func GetErrorDetails(err error) map[string]interface{} {
	var slErr *SitelinkError
	if errors.As(err, &slErr) {
		return slErr.Details
	}
	return nil
}
