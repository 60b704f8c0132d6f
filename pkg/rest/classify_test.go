package rest

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milan604/restkit/pkg/apperr"
	"github.com/milan604/restkit/pkg/errors"
	"github.com/milan604/restkit/pkg/media"
)

type product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price,omitempty"`
}

type problem struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func TestClassifySuccess(t *testing.T) {
	r, err := Classify[product, problem](http.StatusOK, `{"id":1}`, media.JSON)
	require.NoError(t, err)
	require.NotNil(t, r.Success)
	assert.Equal(t, 1, r.Success.ID)
	assert.False(t, r.Ambiguous)
	assert.Nil(t, r.Failure)
	assert.Empty(t, r.ErrorMessage)
	assert.True(t, r.IsSuccessful())
}

func TestClassifyAmbiguous(t *testing.T) {
	r, err := Classify[product, problem](http.StatusOK, "not json", media.JSON)
	require.NoError(t, err)
	assert.True(t, r.Ambiguous)
	assert.Nil(t, r.Success)
	assert.Nil(t, r.Failure)
	assert.Contains(t, r.ErrorMessage, "not json")
	assert.Equal(t, "not json", r.RawBody)
}

func TestClassifyEmptySuccess(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		r, err := Classify[product, problem](status, "", media.JSON)
		require.NoError(t, err)
		assert.Nil(t, r.Success)
		assert.False(t, r.Ambiguous)
		assert.Empty(t, r.ErrorMessage)
		assert.True(t, r.IsSuccessful())
	}
}

func TestClassifyStructuredFailure(t *testing.T) {
	r, err := Classify[product, problem](http.StatusBadRequest, `{"code":"invalid_name","detail":"name is required"}`, media.JSON)
	require.NoError(t, err)
	require.NotNil(t, r.Failure)
	assert.Equal(t, "invalid_name", r.Failure.Code)
	assert.Nil(t, r.Success)
	assert.False(t, r.IsSuccessful())
}

func TestClassifyFailureDecodeIsReported(t *testing.T) {
	r, err := Classify[product, problem](http.StatusBadRequest, "<html>bad</html>", media.JSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrFailureDecode)
	assert.ErrorIs(t, err, apperr.ErrConversionFailed)

	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
	assert.Equal(t, "<html>bad</html>", r.RawBody)
	assert.Nil(t, r.Failure)
	assert.Contains(t, r.ErrorMessage, "400")
}

func TestClassifyEmptyBadRequest(t *testing.T) {
	r, err := Classify[product, problem](http.StatusBadRequest, "", media.JSON)
	require.NoError(t, err)
	assert.Nil(t, r.Failure)
	assert.Equal(t, "request failed with status code 400 (Bad Request)", r.ErrorMessage)
}

func TestClassifyOtherStatuses(t *testing.T) {
	r, err := Classify[product, problem](http.StatusInternalServerError, `{"code":"boom","detail":"x"}`, media.JSON)
	require.NoError(t, err)
	assert.Contains(t, r.ErrorMessage, "500")
	assert.Contains(t, r.ErrorMessage, "Internal Server Error")
	assert.Nil(t, r.Success)
	assert.Nil(t, r.Failure)

	r, err = Classify[product, problem](http.StatusNotFound, "", media.JSON)
	require.NoError(t, err)
	assert.Equal(t, "request failed with status code 404 (Not Found)", r.ErrorMessage)
}

func TestCaptured(t *testing.T) {
	r := Captured[product, problem](context.DeadlineExceeded)
	assert.Zero(t, r.StatusCode)
	assert.True(t, r.IsTransportError())
	assert.False(t, r.IsSuccessful())
	assert.Equal(t, "an error occurred while sending the request: context deadline exceeded", r.ErrorMessage)
	assert.True(t, errors.IsTimeout(r.Err))
	assert.NotEmpty(t, errors.StackTrace(r.Err))
}
