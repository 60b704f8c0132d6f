package validator

import (
	"fmt"
	"reflect"
	"strings"

	gvalidator "github.com/go-playground/validator/v10"

	"github.com/milan604/restkit/pkg/apperr"
)

// TagErrorBuilder describes how to convert a validator.FieldError into a message
type TagErrorBuilder struct {
	Builder func(fe gvalidator.FieldError) string
}

// Validator is the wrapper around go-playground validator with extra features.
type Validator struct {
	v                *gvalidator.Validate
	code             *apperr.ErrorCode
	tagErrorBuilders map[string]TagErrorBuilder
}

// ValidatorEngine defines the interface for validation engines
// This allows for custom implementations and easier testing
type ValidatorEngine interface {
	RegisterValidation(tag string, fn gvalidator.Func) error
	RegisterTagError(tag string, builder func(gvalidator.FieldError) string)
	Struct(s any) *apperr.AppError
	ParseError(err error) *apperr.AppError
}

// New creates a Validator whose failures carry code. A nil code means invalid_config.
// Field names in messages come from the mapstructure, json or form tag, in that order.
func New(code *apperr.ErrorCode) *Validator {
	if code == nil {
		code = apperr.ErrorCodeInvalidConfig
	}
	v := gvalidator.New(gvalidator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"mapstructure", "json", "form"} {
			if name := getTagName(f, tag); name != "" {
				return name
			}
		}
		return f.Name
	})

	return &Validator{
		v:                v,
		code:             code,
		tagErrorBuilders: make(map[string]TagErrorBuilder),
	}
}

// helper to get tag name
func getTagName(f reflect.StructField, tagName string) string {
	tagValue := f.Tag.Get(tagName)
	if tagValue == "-" {
		return ""
	}
	return strings.SplitN(tagValue, ",", 2)[0]
}

// RegisterValidation registers a custom validator (name) to the engine.
func (vi *Validator) RegisterValidation(tag string, fn gvalidator.Func) error {
	return vi.v.RegisterValidation(tag, fn)
}

// RegisterTagError allows mapping tag -> message builder.
func (vi *Validator) RegisterTagError(tag string, builder func(gvalidator.FieldError) string) {
	vi.tagErrorBuilders[tag] = TagErrorBuilder{Builder: builder}
}

// Struct validates s and returns nil or an *apperr.AppError with one suggestion per failing field.
func (vi *Validator) Struct(s any) *apperr.AppError {
	return vi.ParseError(vi.v.Struct(s))
}

// ParseError converts a validator error into *apperr.AppError
func (vi *Validator) ParseError(err error) *apperr.AppError {
	if err == nil {
		return nil
	}

	switch e := err.(type) {
	case gvalidator.ValidationErrors:
		appErr := apperr.New(vi.code)
		for _, fe := range e {
			appErr.AddSuggestion(fe.Field(), vi.buildMessageForField(fe))
		}
		return appErr

	case *gvalidator.InvalidValidationError:
		return apperr.Wrapf(vi.code, err, "value cannot be validated")

	default:
		return apperr.Newf(vi.code, "invalid input: %v", err)
	}
}

// buildMessageForField uses registered tag builders or defaults
func (vi *Validator) buildMessageForField(fe gvalidator.FieldError) string {
	if b, ok := vi.tagErrorBuilders[fe.Tag()]; ok && b.Builder != nil {
		return b.Builder(fe)
	}
	// default message
	if fe.Param() != "" {
		return fmt.Sprintf("field %s failed on '%s' validation (param=%s)", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("field %s failed on '%s' validation", fe.Field(), fe.Tag())
}
