// Package errors captures low-level failures with the stack of the call that
// observed them. The transport uses it to record exchange failures on a
// response without losing where they happened.
package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net"
	"runtime"
	"strings"
)

// Error wraps an error with a message and stack trace.
type Error struct {
	msg   string
	err   error
	stack string
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) StackTrace() string {
	return e.stack
}

// Wrap wraps err with msg and stack trace.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{
		msg:   msg,
		err:   err,
		stack: callers(),
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{
		msg:   fmt.Sprintf(format, args...),
		err:   err,
		stack: callers(),
	}
}

// New creates a new error with stack trace.
func New(msg string) error {
	return &Error{
		msg:   msg,
		stack: callers(),
	}
}

// StackTrace returns the stack recorded by the outermost *Error in err's chain.
func StackTrace(err error) string {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.stack
	}
	return ""
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return stdErrors.As(err, &ne) && ne.Timeout()
}

// IsCanceled reports whether err stems from a canceled context.
func IsCanceled(err error) bool {
	return stdErrors.Is(err, context.Canceled)
}

// callers returns a formatted stack trace.
func callers() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for {
		frame, more := frames.Next()
		b.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}
