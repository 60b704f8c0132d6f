package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := Newf(ErrorCodeMissingEndpoint, "endpoint %q is empty", "")
	assert.True(t, errors.Is(err, ErrMissingEndpoint))
	assert.False(t, errors.Is(err, ErrMissingMethod))

	wrapped := fmt.Errorf("dispatch: %w", err)
	assert.True(t, errors.Is(wrapped, ErrMissingEndpoint))
}

func TestWrapfKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(ErrorCodeConversionFailed, cause, "field %s", "Id")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.Equal(t, "conversion_failed: field Id: boom", err.Error())
}

func TestCategory(t *testing.T) {
	assert.True(t, IsConfiguration(New(ErrorCodeUnsupportedMethod)))
	assert.False(t, IsConfiguration(New(ErrorCodeUnhandledStatus)))
	assert.False(t, IsConfiguration(errors.New("plain")))
	assert.Equal(t, CategoryDispatch, New(ErrorCodeUnhandledStatus).Category())
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	ae := New(ErrorCodeInvalidBaseURL)
	assert.Same(t, ae, FromError(fmt.Errorf("x: %w", ae)))

	plain := errors.New("plain")
	got := FromError(plain)
	assert.Equal(t, ErrorCodeRemote.Code(), got.Code)
	assert.ErrorIs(t, got, plain)
}

func TestAppErrorDecodesFailureBody(t *testing.T) {
	body := `{"code":"validation_failed","message":"Validation failed","suggestions":[{"field":"name","message":"required"}]}`

	var ae AppError
	require.NoError(t, json.Unmarshal([]byte(body), &ae))
	assert.Equal(t, "validation_failed", ae.Code)
	assert.True(t, ae.HasErrors())
	require.Len(t, ae.Suggestions, 1)
	assert.Equal(t, "name", ae.Suggestions[0].Field)
}

func TestAppErrorEncodesPublicFieldsOnly(t *testing.T) {
	ae := Wrapf(ErrorCodeRemote, errors.New("boom"), "upstream down").WithStatus(502)
	out, err := json.Marshal(ae)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"remote_error","message":"upstream down"}`, string(out))
}
