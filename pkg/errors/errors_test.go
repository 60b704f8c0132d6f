package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "msg"))
	assert.Nil(t, Wrapf(nil, "msg %d", 1))
}

func TestWrapRecordsStack(t *testing.T) {
	cause := stdErrors.New("dial tcp: connection refused")
	err := Wrapf(cause, "GET %s", "http://localhost:1")

	assert.Equal(t, "GET http://localhost:1: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, StackTrace(fmt.Errorf("outer: %w", err)), "TestWrapRecordsStack")
}

func TestStackTraceOfPlainError(t *testing.T) {
	assert.Empty(t, StackTrace(stdErrors.New("plain")))
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(Wrap(context.DeadlineExceeded, "exchange")))
	assert.False(t, IsTimeout(stdErrors.New("nope")))
	assert.False(t, IsTimeout(nil))
	assert.True(t, IsCanceled(Wrap(context.Canceled, "exchange")))
}
