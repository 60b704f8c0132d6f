package rest

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/milan604/restkit/pkg/apperr"
	"github.com/milan604/restkit/pkg/logger"
	"github.com/milan604/restkit/pkg/media"
	"github.com/milan604/restkit/pkg/observability"
	"github.com/milan604/restkit/pkg/utils"
)

// Handler maps a response with a specific status to a result.
type Handler[TS, TF, R any] func(Response[TS, TF]) (R, error)

// DefaultHandler maps any status without a Handler to a result.
// message is the response's ErrorMessage.
type DefaultHandler[R any] func(status int, message string) (R, error)

var dispatchMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete}

// Call accumulates the parameters and status handlers of one request.
// Setters mutate and return the same Call. A Call is owned by one
// goroutine and can be dispatched once.
type Call[TS, TF, R any] struct {
	client      *Client
	endpoint    string
	method      string
	contentType media.Type
	accept      media.Type
	headers     map[string]string
	query       Params
	body        any
	handlers    map[int]Handler[TS, TF, R]
	fallback    DefaultHandler[R]
	dispatched  bool
}

// NewCall starts an empty Call on c. Content type and accept default to JSON.
func NewCall[TS, TF, R any](c *Client) *Call[TS, TF, R] {
	if c == nil {
		c = NewClient(nil)
	}
	return &Call[TS, TF, R]{
		client:      c,
		contentType: media.JSON,
		accept:      media.JSON,
		headers:     map[string]string{},
		query:       Params{},
		handlers:    map[int]Handler[TS, TF, R]{},
	}
}

func (c *Call[TS, TF, R]) WithEndpoint(endpoint string) *Call[TS, TF, R] {
	c.endpoint = endpoint
	return c
}

// WithMethod sets the HTTP method. Dispatch supports GET, POST and DELETE.
func (c *Call[TS, TF, R]) WithMethod(method string) *Call[TS, TF, R] {
	c.method = strings.ToUpper(strings.TrimSpace(method))
	return c
}

func (c *Call[TS, TF, R]) WithContentType(t media.Type) *Call[TS, TF, R] {
	c.contentType = t
	return c
}

func (c *Call[TS, TF, R]) WithAccept(t media.Type) *Call[TS, TF, R] {
	c.accept = t
	return c
}

// WithHeader sets a header, replacing an earlier value for key.
func (c *Call[TS, TF, R]) WithHeader(key, value string) *Call[TS, TF, R] {
	c.headers[key] = value
	return c
}

// WithHeaders merges headers into the call; later values win.
func (c *Call[TS, TF, R]) WithHeaders(headers map[string]string) *Call[TS, TF, R] {
	c.headers = utils.MergeMaps(c.headers, headers)
	return c
}

// WithQueryParam sets a query parameter. v may be a QueryValue or any value
// accepted by Value.
func (c *Call[TS, TF, R]) WithQueryParam(key string, v any) *Call[TS, TF, R] {
	c.query[key] = Value(v)
	return c
}

func (c *Call[TS, TF, R]) WithBody(body any) *Call[TS, TF, R] {
	c.body = body
	return c
}

// OnStatus registers h for responses with exactly this status.
// Status 0 matches transport failures.
func (c *Call[TS, TF, R]) OnStatus(status int, h Handler[TS, TF, R]) *Call[TS, TF, R] {
	c.handlers[status] = h
	return c
}

// OnDefault registers h for every status without its own handler.
func (c *Call[TS, TF, R]) OnDefault(h DefaultHandler[R]) *Call[TS, TF, R] {
	c.fallback = h
	return c
}

func (c *Call[TS, TF, R]) request() Request {
	return Request{
		URL:         c.endpoint,
		Query:       c.query,
		Headers:     c.headers,
		ContentType: c.contentType,
		Accept:      c.accept,
		Body:        c.body,
	}
}

// Dispatch validates the call, performs the exchange and routes the
// response to the handler registered for its status, then to the default
// handler. Without either it fails with unhandled_status.
func (c *Call[TS, TF, R]) Dispatch(ctx context.Context) (R, error) {
	var zero R
	if c.dispatched {
		return zero, apperr.New(apperr.ErrorCodeCallConsumed)
	}
	if strings.TrimSpace(c.endpoint) == "" {
		return zero, apperr.New(apperr.ErrorCodeMissingEndpoint)
	}
	if c.method == "" {
		return zero, apperr.New(apperr.ErrorCodeMissingMethod)
	}
	if !utils.Contains(dispatchMethods, c.method) {
		return zero, apperr.Newf(apperr.ErrorCodeUnsupportedMethod, "method %s is not supported, use one of %s",
			c.method, strings.Join(dispatchMethods, ", "))
	}

	ctx = context.WithValue(ctx, logger.EndpointKey, c.endpoint)
	req := c.request()
	httpReq, err := c.client.prepare(ctx, c.method, req)
	if err != nil {
		return zero, err
	}
	c.dispatched = true

	resp, err := exchange[TS, TF](ctx, c.client, httpReq, req.Accept)
	if err != nil {
		return zero, err
	}

	if h, ok := c.handlers[resp.StatusCode]; ok && h != nil {
		return h(resp)
	}
	if c.fallback != nil {
		return c.fallback(resp.StatusCode, resp.ErrorMessage)
	}

	c.client.logger.WarnFCtx(ctx, "%s %s: no handler for status %d", c.method, c.endpoint, resp.StatusCode)
	observability.AddSpanEvent(ctx, "dispatch.unhandled_status", observability.AttrHTTPStatusCode.Int(resp.StatusCode))
	uerr := apperr.Newf(apperr.ErrorCodeUnhandledStatus, "no handler registered for status %d: %s",
		resp.StatusCode, utils.Truncate(resp.RawBody, 1024, true)).WithStatus(resp.StatusCode)
	if resp.Err != nil {
		uerr = uerr.Wrap(resp.Err)
	}
	return zero, uerr
}

// DispatchAs dispatches a call whose handlers return values of mixed
// types and asserts the result is a T. A nil result yields the zero T.
func DispatchAs[T, TS, TF any](ctx context.Context, call *Call[TS, TF, any]) (T, error) {
	var zero T
	v, err := call.Dispatch(ctx)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, apperr.Newf(apperr.ErrorCodeHandlerTypeMismatch, "handler returned %T, expected %v", v, reflect.TypeFor[T]())
	}
	return t, nil
}
