package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for docsentry errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// Reasoning service error codes
const (
	SERVICE_UNAVAILABLE  ErrorCode = "SERVICE_UNAVAILABLE"
	SERVICE_UNAUTHORIZED ErrorCode = "SERVICE_UNAUTHORIZED"
	SERVICE_RATE_LIMITED ErrorCode = "SERVICE_RATE_LIMITED"
	COMPLETION_FAILED    ErrorCode = "COMPLETION_FAILED"
)

// Tool provider error codes
const (
	TOOL_SEARCH_FAILED ErrorCode = "TOOL_SEARCH_FAILED"
	TOOL_READ_FAILED   ErrorCode = "TOOL_READ_FAILED"
)

// Pipeline error codes
const (
	PIPELINE_RUN_FAILED   ErrorCode = "PIPELINE_RUN_FAILED"
	SCHEMA_VIOLATION      ErrorCode = "SCHEMA_VIOLATION"
	BATCH_PARTIAL_FAILURE ErrorCode = "BATCH_PARTIAL_FAILURE"
)

// Storage error codes
const (
	STORE_OPEN_FAILED  ErrorCode = "STORE_OPEN_FAILED"
	STORE_WRITE_FAILED ErrorCode = "STORE_WRITE_FAILED"
	STORE_QUERY_FAILED ErrorCode = "STORE_QUERY_FAILED"
)

// AnalyzerError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints for
// error handling logic.
type AnalyzerError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *AnalyzerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *AnalyzerError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is an AnalyzerError with the same Code.
func (e *AnalyzerError) Is(target error) bool {
	var analyzerErr *AnalyzerError
	if errors.As(target, &analyzerErr) {
		return e.Code == analyzerErr.Code
	}
	return false
}

// NewError creates a new non-retryable AnalyzerError with the given code and message.
func NewError(code ErrorCode, message string) *AnalyzerError {
	return &AnalyzerError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable AnalyzerError with the given code
// and message. Use this for transient errors that may succeed on retry.
func NewRetryableError(code ErrorCode, message string) *AnalyzerError {
	return &AnalyzerError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable AnalyzerError that wraps an existing
// error. The wrapped error is accessible via Unwrap() for chain inspection.
func WrapError(code ErrorCode, message string, cause error) *AnalyzerError {
	return &AnalyzerError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}
