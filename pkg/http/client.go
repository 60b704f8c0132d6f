package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/milan604/restkit/pkg/logger"
	"github.com/milan604/restkit/pkg/observability"
	"github.com/milan604/restkit/pkg/version"
)

// DefaultTimeout bounds every exchange unless WithTimeout or WithHTTPClient says otherwise.
const DefaultTimeout = 30 * time.Second

// Client is the shared transport handle: one pooled http.Client plus the
// per-exchange concerns around it (auth, request ids, throttling, tracing,
// metrics, hooks). It performs exactly one round trip per Do call and is
// safe for concurrent use once constructed.
type Client struct {
	httpClient      *http.Client
	timeout         time.Duration
	tlsConfig       *tls.Config
	insecure        bool
	tokenCache      *TokenCache
	logger          logger.LogManager
	limiter         *rate.Limiter
	requestIDHeader string
	userAgent       string
	tracer          trace.Tracer
	metrics         *observability.ClientMetrics
	requestHooks    []RequestHook
	responseHooks   []ResponseHook
}

// RequestHook is a function that can modify a request before it's sent.
type RequestHook func(*http.Request) error

// ResponseHook is a function that can process a response after it's received.
type ResponseHook func(*http.Response) error

// ClientOption configures the HTTP client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client. Timeout and TLS options are then ignored.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the fixed timeout applied to every exchange.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTLSConfig sets the TLS configuration of the pooled transport.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

// WithInsecureSkipVerify disables server certificate validation when skip is true.
// Validation is strict by default; only use this against test servers.
func WithInsecureSkipVerify(skip bool) ClientOption {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithTokenProvider sets the token provider for bearer authentication.
func WithTokenProvider(provider TokenProvider, refreshBuffer time.Duration) ClientOption {
	return func(c *Client) {
		c.tokenCache = NewTokenCache(provider, refreshBuffer)
	}
}

// WithLogger sets a logger for the client.
func WithLogger(l logger.LogManager) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
// Callers wait for a token; they are never rejected.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRequestIDHeader sets the header carrying the request id. Empty disables it.
func WithRequestIDHeader(name string) ClientOption {
	return func(c *Client) {
		c.requestIDHeader = name
	}
}

// WithUserAgent sets the User-Agent sent when the request has none.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTracerProvider traces every exchange as a client span.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(observability.InstrumentationName)
		}
	}
}

// WithMetrics records every exchange in m.
func WithMetrics(m *observability.ClientMetrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRequestHook adds a hook that runs before each request.
func WithRequestHook(hook RequestHook) ClientOption {
	return func(c *Client) {
		c.requestHooks = append(c.requestHooks, hook)
	}
}

// WithResponseHook adds a hook that runs after each response.
func WithResponseHook(hook ResponseHook) ClientOption {
	return func(c *Client) {
		c.responseHooks = append(c.responseHooks, hook)
	}
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:         DefaultTimeout,
		requestIDHeader: "X-Request-ID",
		userAgent:       version.UserAgent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.NewNop()
	}
	if c.tracer == nil {
		c.tracer = otel.GetTracerProvider().Tracer(observability.InstrumentationName)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: c.newTransport(),
		}
	}

	return c
}

func (c *Client) newTransport() *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	cfg := c.tlsConfig
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	} else {
		cfg = cfg.Clone()
	}
	if c.insecure {
		cfg.InsecureSkipVerify = true
		c.logger.WarnF("TLS certificate validation is disabled for this client")
	}
	tr.TLSClientConfig = cfg
	return tr
}

// Do executes exactly one HTTP exchange. Transport errors are returned as
// error; non-2xx responses are returned as resp with nil error.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req = req.WithContext(ctx)

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	reqID := c.ensureRequestID(ctx, req)
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if err := c.prepareRequest(ctx, req); err != nil {
		return nil, err
	}

	return c.execute(req, reqID)
}

// wait blocks until the rate limiter admits the request.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// ensureRequestID reuses the id already on the request or in ctx, or generates one.
func (c *Client) ensureRequestID(ctx context.Context, req *http.Request) string {
	if c.requestIDHeader == "" {
		return ""
	}
	id := req.Header.Get(c.requestIDHeader)
	if id == "" {
		if v, ok := ctx.Value(logger.RequestIDKey).(string); ok && v != "" {
			id = v
		} else {
			id = uuid.NewString()
		}
		req.Header.Set(c.requestIDHeader, id)
	}
	return id
}

// prepareRequest applies request hooks and token injection.
func (c *Client) prepareRequest(ctx context.Context, req *http.Request) error {
	if err := c.applyRequestHooks(req); err != nil {
		return err
	}

	return c.injectToken(ctx, req)
}

// applyRequestHooks applies all request hooks.
func (c *Client) applyRequestHooks(req *http.Request) error {
	for _, hook := range c.requestHooks {
		if err := hook(req); err != nil {
			return fmt.Errorf("request hook failed: %w", err)
		}
	}
	return nil
}

// injectToken injects the authorization token if token cache is available.
// An Authorization header set by the caller is left alone.
func (c *Client) injectToken(ctx context.Context, req *http.Request) error {
	if c.tokenCache == nil || req.Header.Get("Authorization") != "" {
		return nil
	}

	token, err := c.tokenCache.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// execute performs the round trip with tracing, metrics and logging around it.
func (c *Client) execute(req *http.Request, reqID string) (*http.Response, error) {
	req, span := observability.StartClientSpan(c.tracer, req, reqID)

	var record func(int, error)
	if c.metrics != nil {
		record = c.metrics.Start(req.Method, req.URL.Host)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	dur := time.Since(start)

	observability.EndClientSpan(span, resp, err)
	if err != nil {
		if record != nil {
			record(0, err)
		}
		c.logger.WarnFCtx(req.Context(), "%s %s failed after %v (request_id=%s): %v", req.Method, req.URL.Redacted(), dur, reqID, err)
		return nil, err
	}
	if record != nil {
		record(resp.StatusCode, nil)
	}
	c.logger.DebugFCtx(req.Context(), "%s %s -> %d in %v (request_id=%s)", req.Method, req.URL.Redacted(), resp.StatusCode, dur, reqID)

	if err := c.applyResponseHooks(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokenCache != nil {
		c.handle401()
	}

	return resp, nil
}

// applyResponseHooks applies all response hooks.
func (c *Client) applyResponseHooks(resp *http.Response) error {
	for _, hook := range c.responseHooks {
		if err := hook(resp); err != nil {
			return fmt.Errorf("response hook failed: %w", err)
		}
	}
	return nil
}

// handle401 invalidates the cached token so the next call fetches a fresh one.
// The current call is not repeated.
func (c *Client) handle401() {
	c.logger.InfoF("received 401, invalidating cached token")
	c.tokenCache.Invalidate()
}

// Timeout reports the fixed per-exchange timeout of the underlying http.Client.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}
