package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// Run errors
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodePatternInvalid   ErrorCode = "PATTERN_INVALID"
	ErrCodeToolFailed       ErrorCode = "TOOL_FAILED"
	ErrCodeBuildQueryFailed ErrorCode = "BUILD_QUERY_FAILED"
	ErrCodeCancelled        ErrorCode = "CANCELLED"

	// HTTP service errors
	ErrCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeTooManyRequests ErrorCode = "TOO_MANY_REQUESTS"
	ErrCodeInternalError   ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with additional context
type AppError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Details  string    `json:"details,omitempty"`
	ExitCode int       `json:"-"`
	Err      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to an HTTP status for the classification service.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidRequest, ErrCodePatternInvalid, ErrCodeConfigInvalid:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrCodeToolFailed, ErrCodeBuildQueryFailed:
		return http.StatusBadGateway
	case ErrCodeCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: getExitCodeForError(code),
	}
}

// Wrap wraps an existing error with application context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: getExitCodeForError(code),
		Err:      err,
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: getExitCodeForError(code),
		Err:      err,
	}
}

// getExitCodeForError maps error codes to process exit codes
func getExitCodeForError(code ErrorCode) int {
	switch code {
	case ErrCodeConfigInvalid, ErrCodePatternInvalid, ErrCodeInvalidRequest:
		return 2
	case ErrCodeToolFailed:
		return 3
	case ErrCodeBuildQueryFailed:
		return 4
	case ErrCodeCancelled:
		return 130
	default:
		return 1
	}
}

// As returns the *AppError in err's chain. Errors that are not application
// errors are classified as cancellations when they come from a context, and as
// internal errors otherwise.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return Cancelled(err)
	}
	return InternalError(err)
}

// Common error constructors for convenience

// ConfigInvalid creates a configuration error
func ConfigInvalid(message string) *AppError {
	return New(ErrCodeConfigInvalid, message)
}

// MissingVariable reports a required pipeline variable that is not set.
func MissingVariable(name string) *AppError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("Environment Error: this task requires %q variable", name))
}

// PatternInvalid creates a glob syntax error
func PatternInvalid(category, pattern string, err error) *AppError {
	return Wrapf(err, ErrCodePatternInvalid, "invalid glob pattern %q in category %q", pattern, category)
}

// ToolFailed creates a versioning tool invocation error
func ToolFailed(err error, command string) *AppError {
	return Wrapf(err, ErrCodeToolFailed, "command failed: %s", command)
}

// BuildQueryFailed creates a build history query error
func BuildQueryFailed(err error, what string) *AppError {
	return Wrapf(err, ErrCodeBuildQueryFailed, "failed to query %s", what)
}

// Cancelled creates a cancellation error
func Cancelled(err error) *AppError {
	return Wrap(err, ErrCodeCancelled, "run cancelled")
}

// InvalidRequest creates an invalid request error
func InvalidRequest(message string) *AppError {
	return New(ErrCodeInvalidRequest, message)
}

// Unauthorized creates an authentication error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// InternalError creates an internal server error
func InternalError(err error) *AppError {
	return Wrap(err, ErrCodeInternalError, "Internal error")
}
