package validator

import (
	"errors"
	"testing"

	gvalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milan604/restkit/pkg/apperr"
)

type settings struct {
	TokenURL string `mapstructure:"token_url" validate:"omitempty,url"`
	ClientID string `mapstructure:"client_id" validate:"required_with=TokenURL"`
	Burst    int    `json:"burst" validate:"gte=0"`
}

func TestStructReportsTaggedFieldNames(t *testing.T) {
	v := New(nil)

	err := v.Struct(settings{TokenURL: "not a url", Burst: -1})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidConfig))

	fields := map[string]bool{}
	for _, s := range err.Suggestions {
		fields[s.Field] = true
	}
	assert.True(t, fields["token_url"])
	assert.True(t, fields["client_id"])
	assert.True(t, fields["burst"])
}

func TestStructValid(t *testing.T) {
	assert.Nil(t, New(nil).Struct(settings{TokenURL: "https://idp.example.com/token", ClientID: "svc"}))
}

func TestRegisterTagError(t *testing.T) {
	v := New(apperr.ErrorCodeInvalidConfig)
	v.RegisterTagError("gte", func(fe gvalidator.FieldError) string { return fe.Field() + " must not be negative" })

	err := v.Struct(settings{Burst: -2})
	require.NotNil(t, err)
	require.Len(t, err.Suggestions, 1)
	assert.Equal(t, "burst must not be negative", err.Suggestions[0].Message)
}

func TestParseErrorOnNonStruct(t *testing.T) {
	err := New(nil).Struct(42)
	require.NotNil(t, err)
	assert.Equal(t, apperr.ErrorCodeInvalidConfig.Code(), err.Code)
}
