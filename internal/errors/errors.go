package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes, one per taxonomy kind (spec.md §7) plus the
// ambient codes every package reaches for.
const (
	CodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
	CodeMalformedHeader     = "MALFORMED_HEADER"
	CodeFileTooLarge        = "FILE_TOO_LARGE"
	CodeEncoding            = "ENCODING_ERROR"
	CodeMalformedRow        = "MALFORMED_ROW"
	CodeAccumulatorOverflow = "ACCUMULATOR_OVERFLOW"
	CodeCancelled           = "CANCELLED"

	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// UnsupportedFormat wraps a detection/config failure for an unrecognized
// or disabled format.
func UnsupportedFormat(detail string) *AppError {
	return New(CodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", detail))
}

// MalformedHeader wraps a header-row parse failure.
func MalformedHeader(detail string) *AppError {
	return New(CodeMalformedHeader, fmt.Sprintf("malformed header: %s", detail))
}

// FileTooLarge wraps a size_limit_bytes guardrail trip.
func FileTooLarge(limit uint64) *AppError {
	return New(CodeFileTooLarge, fmt.Sprintf("stream exceeded size_limit_bytes=%d", limit))
}

// AccumulatorOverflow wraps a u64 counter overflow detected at finalize.
func AccumulatorOverflow(column string) *AppError {
	return New(CodeAccumulatorOverflow, fmt.Sprintf("accumulator overflow in column %q", column))
}

// Cancelled wraps a cooperative cancellation.
func Cancelled() *AppError {
	return New(CodeCancelled, "session cancelled")
}
