package http

import (
	"context"
	"net/http"
)

// Doer performs a single HTTP exchange.
// It is the seam the rest package dispatches through, so tests and callers
// can substitute their own transport.
type Doer interface {
	// Do sends req bound to ctx and returns the raw response.
	// A non-2xx status is not an error; only transport failures are.
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a plain function to Doer.
type DoerFunc func(ctx context.Context, req *http.Request) (*http.Response, error)

// Do calls f(ctx, req).
func (f DoerFunc) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return f(ctx, req)
}

// Ensure Client implements Doer interface.
var _ Doer = (*Client)(nil)
