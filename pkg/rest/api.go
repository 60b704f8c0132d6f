// Package rest sends typed calls to HTTP APIs and classifies each reply
// into success, structured failure, ambiguous body or transport failure.
//
// Every call performs exactly one exchange through the injected transport:
//
//	c := rest.NewClient(pkghttp.NewClient(pkghttp.WithLogger(log)), rest.WithLogger(log))
//	resp, err := rest.Get[Product, apperr.AppError](ctx, c, rest.Request{URL: "https://api.example.com/products/1"})
package rest

import (
	"context"
	"io"
	"net/http"
	"time"

	pkghttp "github.com/milan604/restkit/pkg/http"
	"github.com/milan604/restkit/pkg/logger"
	"github.com/milan604/restkit/pkg/media"
	"github.com/milan604/restkit/pkg/observability"
	"github.com/milan604/restkit/pkg/utils"
)

// Client binds a transport, a codec and a logger. It holds no per-call
// state and is safe for concurrent use when its transport is.
type Client struct {
	doer   pkghttp.Doer
	codec  *media.Codec
	logger logger.LogManager
}

// Option configures a Client.
type Option func(*Client)

// WithCodec sets the codec used for request bodies.
func WithCodec(codec *media.Codec) Option {
	return func(c *Client) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.LogManager) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client over doer. A nil doer gets a default pkghttp.Client.
func NewClient(doer pkghttp.Doer, opts ...Option) *Client {
	c := &Client{
		doer:   doer,
		codec:  media.NewCodec(),
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = pkghttp.NewClient(pkghttp.WithLogger(c.logger))
	}
	return c
}

// Request describes one call. The zero ContentType and Accept are JSON.
type Request struct {
	URL         string
	Query       Params
	Headers     map[string]string
	ContentType media.Type
	Accept      media.Type
	Body        any
}

// Get sends a GET without an entity.
func Get[TS, TF any](ctx context.Context, c *Client, req Request) (Response[TS, TF], error) {
	return send[TS, TF](ctx, c, http.MethodGet, req)
}

// Post serializes req.Body with req.ContentType and sends it.
func Post[TS, TF any](ctx context.Context, c *Client, req Request) (Response[TS, TF], error) {
	return send[TS, TF](ctx, c, http.MethodPost, req)
}

// Delete sends a DELETE. A non-nil req.Body is serialized and sent.
func Delete[TS, TF any](ctx context.Context, c *Client, req Request) (Response[TS, TF], error) {
	return send[TS, TF](ctx, c, http.MethodDelete, req)
}

// send returns an error only for configuration problems found before the
// exchange and for an undecodable 400 body. Transport failures are
// reported inside the Response.
func send[TS, TF any](ctx context.Context, c *Client, method string, req Request) (Response[TS, TF], error) {
	httpReq, err := c.prepare(ctx, method, req)
	if err != nil {
		return Response[TS, TF]{}, err
	}
	return exchange[TS, TF](ctx, c, httpReq, req.Accept)
}

// prepare builds the outgoing request. Every error it returns is raised
// before any network activity.
func (c *Client) prepare(ctx context.Context, method string, req Request) (*http.Request, error) {
	uri, err := BuildURI(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	var body *Body
	if req.Body != nil && method != http.MethodGet {
		body, err = c.encode(req.Body, req.ContentType)
		if err != nil {
			return nil, err
		}
	}

	httpReq, err := CreateRequest(ctx, method, uri, req.ContentType, req.Accept, req.Headers)
	if err != nil {
		return nil, err
	}
	if body != nil {
		body.Attach(httpReq)
	}
	return httpReq, nil
}

func (c *Client) encode(v any, ct media.Type) (*Body, error) {
	serialized, err := c.codec.Serialize(v, ct)
	if err != nil {
		return nil, err
	}
	mime, err := media.MimeOf(ct)
	if err != nil {
		return nil, err
	}
	return CreateBody(serialized, mime)
}

func exchange[TS, TF any](ctx context.Context, c *Client, req *http.Request, accept media.Type) (Response[TS, TF], error) {
	start := time.Now()
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		r := Captured[TS, TF](err)
		r.Duration = time.Since(start)
		observability.RecordSpanError(ctx, err)
		return r, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		r := Captured[TS, TF](err)
		r.Duration = time.Since(start)
		c.logger.WarnFCtx(ctx, "%s %s: reading response body failed: %v", req.Method, req.URL.Redacted(), err)
		return r, nil
	}

	r, cerr := Classify[TS, TF](resp.StatusCode, string(raw), accept)
	r.Header = resp.Header
	r.Duration = time.Since(start)

	switch {
	case cerr != nil:
		observability.RecordSpanError(ctx, cerr)
		c.logger.WarnFCtx(ctx, "%s %s: %v", req.Method, req.URL.Redacted(), cerr)
	case r.Ambiguous:
		observability.AddSpanEvent(ctx, "response.ambiguous", observability.AttrHTTPStatusCode.Int(r.StatusCode))
		c.logger.WarnFCtx(ctx, "%s %s returned %d with a body that does not match the expected type: %s",
			req.Method, req.URL.Redacted(), r.StatusCode, utils.Truncate(r.RawBody, 256, true))
	}
	return r, cerr
}

