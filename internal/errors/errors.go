package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeDegenerateSplit = "DEGENERATE_SPLIT"
	CodeInternal        = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Any AppError carrying the same code matches.
var (
	ErrInvalidInput    = New(CodeInvalidInput, "invalid input")
	ErrDegenerateSplit = New(CodeDegenerateSplit, "degenerate split")
)

// AppError represents a structured pipeline error
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

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// InvalidInput creates an INVALID_INPUT error with a formatted message.
func InvalidInput(format string, args ...any) error {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// DegenerateSplit creates a DEGENERATE_SPLIT error with a formatted message.
func DegenerateSplit(format string, args ...any) error {
	return New(CodeDegenerateSplit, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Code returns the code of the outermost AppError in the chain, or "" if none.
func Code(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
