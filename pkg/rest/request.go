package rest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/milan604/restkit/pkg/apperr"
	"github.com/milan604/restkit/pkg/media"
)

// CreateRequest builds a request for uri without a payload.
//
// POST, PUT and PATCH get an empty entity (http.NoBody) so the content type
// travels with a body; other methods get Content-Type as a plain header.
// Accept is set from accept. Caller headers are applied last and always win.
func CreateRequest(ctx context.Context, method string, uri *url.URL, contentType, accept media.Type, headers map[string]string) (*http.Request, error) {
	if uri == nil {
		return nil, apperr.New(apperr.ErrorCodeInvalidBaseURL).WithMessage("request uri is nil")
	}
	ctMime, err := media.MimeOf(contentType)
	if err != nil {
		return nil, err
	}
	acceptMime, err := media.MimeOf(accept)
	if err != nil {
		return nil, err
	}

	method = strings.ToUpper(method)
	var body io.Reader
	if hasEntity(method) {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, uri.String(), body)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrorCodeInvalidBaseURL, err, "create %s request", method)
	}
	req.Header.Set("Content-Type", ctMime)
	req.Header.Set("Accept", acceptMime)

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func hasEntity(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Body is a serialized request entity tagged with its content type.
type Body struct {
	data        []byte
	mime        string
	contentType string
}

// CreateBody wraps codec output. Text is tagged "mime; charset=utf-8",
// bytes are tagged with mime as is. Any other shape is rejected.
func CreateBody(serialized any, mime string) (*Body, error) {
	switch s := serialized.(type) {
	case string:
		return &Body{data: []byte(s), mime: mime, contentType: mime + "; charset=utf-8"}, nil
	case []byte:
		return &Body{data: s, mime: mime, contentType: mime}, nil
	default:
		return nil, apperr.Newf(apperr.ErrorCodeInvalidSerializedBody, "serialized body must be string or []byte, got %T", serialized)
	}
}

// ContentType returns the Content-Type the body is tagged with.
func (b *Body) ContentType() string { return b.contentType }

// Len returns the entity length in bytes.
func (b *Body) Len() int { return len(b.data) }

// Attach installs the entity on req. A Content-Type the caller set to
// something other than the body's bare MIME type is kept.
func (b *Body) Attach(req *http.Request) {
	data := b.data
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.ContentLength = int64(len(data))
	if len(data) == 0 {
		req.Body = http.NoBody
	}

	if ct := req.Header.Get("Content-Type"); ct == "" || ct == b.mime {
		req.Header.Set("Content-Type", b.contentType)
	}
}
