package media

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/milan604/restkit/pkg/apperr"
)

// Field is one key/value pair of a form body.
type Field struct {
	Key   string
	Value string
}

// Form is an ordered form body. Encode keeps the insertion order.
type Form []Field

// Add appends a pair and returns the extended form.
func (f Form) Add(key, value string) Form {
	return append(f, Field{Key: key, Value: value})
}

// Encode percent-encodes every pair and joins them with '&'.
func (f Form) Encode() string {
	var b strings.Builder
	for i, fld := range f {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(fld.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fld.Value))
	}
	return b.String()
}

// FormMarshaler is implemented by types that provide their own form encoding.
type FormMarshaler interface {
	MarshalForm() (Form, error)
}

// FormUnmarshaler is implemented by types that declare their own mapping
// from form keys to fields instead of relying on field names.
type FormUnmarshaler interface {
	UnmarshalForm(values url.Values) error
}

func encodeForm(body any) (string, error) {
	switch b := body.(type) {
	case FormMarshaler:
		f, err := b.MarshalForm()
		if err != nil {
			return "", apperr.Wrapf(apperr.ErrorCodeConversionFailed, err, "marshal %T as form", body)
		}
		return f.Encode(), nil
	case Form:
		return b.Encode(), nil
	case map[string]string:
		keys := make([]string, 0, len(b))
		for k := range b {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		f := make(Form, 0, len(keys))
		for _, k := range keys {
			f = f.Add(k, b[k])
		}
		return f.Encode(), nil
	case url.Values:
		return b.Encode(), nil
	default:
		return "", apperr.Newf(apperr.ErrorCodeUnsupportedBodyShape, "form body must be a string to string mapping, got %T", body)
	}
}

func decodeForm(content string, dst any) error {
	values, err := url.ParseQuery(content)
	if err != nil {
		return apperr.Wrapf(apperr.ErrorCodeConversionFailed, err, "parse form content")
	}

	switch p := dst.(type) {
	case FormUnmarshaler:
		if err := p.UnmarshalForm(values); err != nil {
			return apperr.Wrapf(apperr.ErrorCodeConversionFailed, err, "unmarshal form into %T", dst)
		}
		return nil
	case *url.Values:
		*p = values
		return nil
	case *map[string]string:
		m := make(map[string]string, len(values))
		for k, vs := range values {
			if len(vs) > 0 {
				m[k] = vs[0]
			}
		}
		*p = m
		return nil
	}

	rv := reflect.ValueOf(dst).Elem()
	if rv.Kind() != reflect.Struct {
		return apperr.Newf(apperr.ErrorCodeUnsupportedTargetType, "form content cannot be decoded into %s", rv.Type())
	}

	input := make(map[string]any, len(values))
	for k, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			input[k] = vs[0]
		default:
			input[k] = vs
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:   "form",
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.DecodeHookFuncType(stringToScalarHook),
		),
		Result: dst,
	})
	if err != nil {
		return apperr.Wrapf(apperr.ErrorCodeUnsupportedTargetType, err, "form decoder for %s", rv.Type())
	}
	if err := dec.Decode(input); err != nil {
		return apperr.Wrapf(apperr.ErrorCodeConversionFailed, err, "decode form into %s", rv.Type())
	}
	return nil
}

// stringToScalarHook converts form text into numeric and bool fields.
// Numbers are base 10 only and an empty value is an error. A single value
// fills a one-element slice.
func stringToScalarHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := reflect.ValueOf(data).String()

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(s, 10, to.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(s, 10, to.Bits())
	case reflect.Float32, reflect.Float64:
		if strings.ContainsAny(s, "_xXpP") {
			return nil, fmt.Errorf("invalid decimal %q", s)
		}
		return strconv.ParseFloat(s, to.Bits())
	case reflect.Bool:
		return strconv.ParseBool(s)
	case reflect.Slice:
		if to.Elem().Kind() == reflect.Uint8 {
			return []byte(s), nil
		}
		return []string{s}, nil
	}
	return data, nil
}
