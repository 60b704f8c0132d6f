// Package apperr defines a small, composable error model with canonical
// codes and fluent helpers. Every error produced by the restkit packages is an
// *AppError, so callers can match on codes with errors.Is:
//
//	if errors.Is(err, apperr.ErrMissingEndpoint) { ... }
//
// AppError also describes the common {code, message, suggestions} body
// returned by many JSON APIs on 400 responses and can be used directly as
// the failure type of a call.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching. Never mutate them; build new errors with New/Newf.
var (
	ErrUnsupportedMediaType  = New(ErrorCodeUnsupportedMediaType)
	ErrUnsupportedBodyShape  = New(ErrorCodeUnsupportedBodyShape)
	ErrUnsupportedTargetType = New(ErrorCodeUnsupportedTargetType)
	ErrConversionFailed      = New(ErrorCodeConversionFailed)
	ErrInvalidBaseURL        = New(ErrorCodeInvalidBaseURL)
	ErrInvalidSerializedBody = New(ErrorCodeInvalidSerializedBody)
	ErrMissingEndpoint       = New(ErrorCodeMissingEndpoint)
	ErrMissingMethod         = New(ErrorCodeMissingMethod)
	ErrUnsupportedMethod     = New(ErrorCodeUnsupportedMethod)
	ErrUnhandledStatus       = New(ErrorCodeUnhandledStatus)
	ErrHandlerTypeMismatch   = New(ErrorCodeHandlerTypeMismatch)
	ErrFailureDecode         = New(ErrorCodeFailureDecode)
	ErrCallConsumed          = New(ErrorCodeCallConsumed)
	ErrInvalidConfig         = New(ErrorCodeInvalidConfig)
)

// Suggestion is a per-field suggestion to fix a validation error.
type Suggestion struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the canonical error shape.
type AppError struct {
	Code        string       `json:"code"`
	Message     string       `json:"message"`
	Suggestions []Suggestion `json:"suggestions,omitempty"` // useful for validation errors
	// Status is the upstream HTTP status for dispatch errors, 0 otherwise.
	Status int `json:"-"`

	cause error
	ec    *ErrorCode
}

// New creates a new AppError from an ErrorCode.
func New(ec *ErrorCode) *AppError {
	if ec == nil {
		ec = ErrorCodeRemote
	}
	return &AppError{
		Code:    ec.Code(),
		Message: ec.Message(),
		ec:      ec,
	}
}

// Newf creates AppError with formatted message.
func Newf(ec *ErrorCode, format string, args ...interface{}) *AppError {
	a := New(ec)
	a.Message = fmt.Sprintf(format, args...)
	return a
}

// Wrapf creates AppError with formatted message and an underlying cause.
func Wrapf(ec *ErrorCode, err error, format string, args ...interface{}) *AppError {
	return Newf(ec, format, args...).Wrap(err)
}

// FromError returns err as an *AppError, wrapping unknown errors as remote errors.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	a := New(ErrorCodeRemote)
	a.cause = err
	return a
}

// AddSuggestion appends a field suggestion (fluent)
func (a *AppError) AddSuggestion(field, message string) *AppError {
	if a == nil {
		a = New(ErrorCodeInvalidConfig)
	}
	a.Suggestions = append(a.Suggestions, Suggestion{
		Field:   field,
		Message: message,
	})
	return a
}

func (a *AppError) Error() string {
	if a == nil {
		return "<nil>"
	}
	if a.cause != nil {
		return fmt.Sprintf("%s: %s: %v", a.Code, a.Message, a.cause)
	}
	return fmt.Sprintf("%s: %s", a.Code, a.Message)
}

// WithStatus sets the upstream HTTP status and returns the same AppError for chaining.
func (a *AppError) WithStatus(status int) *AppError {
	if a == nil {
		return New(ErrorCodeRemote).WithStatus(status)
	}
	a.Status = status
	return a
}

// WithMessage overrides the message and returns the same AppError for chaining.
func (a *AppError) WithMessage(msg string) *AppError {
	if a == nil {
		return New(ErrorCodeRemote).WithMessage(msg)
	}
	a.Message = msg
	return a
}

// Wrap sets the underlying cause and returns the same AppError.
func (a *AppError) Wrap(err error) *AppError {
	if a == nil {
		a = New(ErrorCodeRemote)
	}
	a.cause = err
	return a
}

// Unwrap returns the underlying cause, allowing errors.Unwrap/Is/As to work.
func (a *AppError) Unwrap() error { return a.cause }

// Is matches any *AppError carrying the same code.
func (a *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || a == nil || t == nil {
		return false
	}
	return a.Code == t.Code
}

// Category reports the category of the code the error was built from.
func (a *AppError) Category() Category {
	if a == nil || a.ec == nil {
		return ""
	}
	return a.ec.Category()
}

// IsConfiguration reports whether err is a configuration error raised before any network activity.
func IsConfiguration(err error) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Category() == CategoryConfiguration
}

// HasErrors returns true if the AppError has a code, message, or suggestions
func (a *AppError) HasErrors() bool {
	if a == nil {
		return false
	}
	return a.Code != "" || a.Message != "" || len(a.Suggestions) > 0
}
