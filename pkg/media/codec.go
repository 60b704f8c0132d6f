package media

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/spf13/afero"
	"github.com/spf13/cast"

	"github.com/milan604/restkit/pkg/apperr"
)

// Codec serializes request bodies. Binary bodies given as file paths are
// read through the codec's filesystem.
type Codec struct {
	fs afero.Fs
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithFs sets the filesystem used to resolve file path bodies.
func WithFs(fs afero.Fs) CodecOption {
	return func(c *Codec) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// NewCodec creates a Codec backed by the OS filesystem unless WithFs is given.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = NewCodec()

// Serialize converts body with the default codec. See Codec.Serialize.
func Serialize(body any, t Type) (any, error) {
	return defaultCodec.Serialize(body, t)
}

// Serialize converts body to wire data for t. The result is a string for
// text kinds and a []byte for binary kinds.
//
//   - JSON: structural encoding honouring json tags.
//   - FormURLEncoded: Form, map[string]string, url.Values or a FormMarshaler.
//   - PlainText: the string form of body, "" for nil.
//   - JPEG, PNG, OctetStream: []byte, an io.Reader (drained) or the path of an existing file.
//
// XML, PDF, HTML and CSV are declared but not convertible yet.
func (c *Codec) Serialize(body any, t Type) (any, error) {
	if _, err := MimeOf(t); err != nil {
		return nil, err
	}
	switch t {
	case JSON:
		b, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.Wrapf(apperr.ErrorCodeConversionFailed, err, "encode %T as json", body)
		}
		return string(b), nil
	case FormURLEncoded:
		return encodeForm(body)
	case PlainText:
		return textOf(body), nil
	case JPEG, PNG, OctetStream:
		return c.readBinary(body)
	default:
		return nil, unimplemented(t)
	}
}

// Deserialize converts wire content to a T for t.
//
//   - JSON: structural decoding into T.
//   - PlainText: T must be string-kinded or []byte.
//   - FormURLEncoded: T is a struct (fields matched case-sensitively by name
//     or form tag), map[string]string, url.Values, or implements FormUnmarshaler.
//   - JPEG, PNG, OctetStream: content is Base64; T is []byte, io.Reader,
//     io.ReadCloser or *bytes.Reader.
func Deserialize[T any](content string, t Type) (T, error) {
	var out T
	if _, err := MimeOf(t); err != nil {
		return out, err
	}
	var err error
	switch t {
	case JSON:
		if uerr := json.Unmarshal([]byte(content), &out); uerr != nil {
			err = apperr.Wrapf(apperr.ErrorCodeConversionFailed, uerr, "decode json into %T", out)
		}
	case PlainText:
		err = decodeText(content, &out)
	case FormURLEncoded:
		err = decodeForm(content, &out)
	case JPEG, PNG, OctetStream:
		err = decodeBinary(content, &out)
	default:
		err = unimplemented(t)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func unimplemented(t Type) error {
	return apperr.Newf(apperr.ErrorCodeUnsupportedMediaType, "conversion for media type %s is not implemented", t)
}

func textOf(body any) string {
	switch b := body.(type) {
	case nil:
		return ""
	case string:
		return b
	case []byte:
		return string(b)
	case fmt.Stringer:
		return b.String()
	}
	if s, err := cast.ToStringE(body); err == nil {
		return s
	}
	return fmt.Sprint(body)
}

func decodeText(content string, dst any) error {
	switch p := dst.(type) {
	case *string:
		*p = content
		return nil
	case *[]byte:
		*p = []byte(content)
		return nil
	case *any:
		*p = content
		return nil
	}
	rv := reflect.ValueOf(dst).Elem()
	if rv.Kind() == reflect.String {
		rv.SetString(content)
		return nil
	}
	return apperr.Newf(apperr.ErrorCodeUnsupportedTargetType, "plain text cannot be decoded into %s", rv.Type())
}
