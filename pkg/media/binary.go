package media

import (
	"bytes"
	"encoding/base64"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/milan604/restkit/pkg/apperr"
)

func (c *Codec) readBinary(body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, apperr.Wrapf(apperr.ErrorCodeConversionFailed, err, "drain %T", body)
		}
		return data, nil
	case string:
		return c.readFile(b)
	default:
		return nil, apperr.Newf(apperr.ErrorCodeUnsupportedBodyShape, "binary body must be bytes, a reader or a file path, got %T", body)
	}
}

func (c *Codec) readFile(path string) ([]byte, error) {
	ok, err := afero.Exists(c.fs, path)
	if err != nil || !ok {
		return nil, apperr.Newf(apperr.ErrorCodeUnsupportedBodyShape, "binary body path %q does not exist", path)
	}
	if dir, _ := afero.IsDir(c.fs, path); dir {
		return nil, apperr.Newf(apperr.ErrorCodeUnsupportedBodyShape, "binary body path %q is a directory", path)
	}
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrorCodeConversionFailed, err, "read %q", path)
	}
	return data, nil
}

func decodeBinary(content string, dst any) error {
	switch dst.(type) {
	case *[]byte, *io.Reader, *io.ReadCloser, **bytes.Reader:
	default:
		return apperr.Newf(apperr.ErrorCodeUnsupportedTargetType, "binary content cannot be decoded into %T", dst)
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(content))
	if err != nil {
		return apperr.Wrapf(apperr.ErrorCodeConversionFailed, err, "decode base64 content")
	}

	switch p := dst.(type) {
	case *[]byte:
		*p = data
	case *io.Reader:
		*p = bytes.NewReader(data)
	case *io.ReadCloser:
		*p = io.NopCloser(bytes.NewReader(data))
	case **bytes.Reader:
		*p = bytes.NewReader(data)
	}
	return nil
}
