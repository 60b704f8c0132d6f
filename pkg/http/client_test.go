package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/milan604/restkit/pkg/config"
	"github.com/milan604/restkit/pkg/logger"
	"github.com/milan604/restkit/pkg/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// echoServer replies with the headers the client sent.
func echoServer(t *testing.T, status int) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	r := gin.New()
	r.Any("/*path", func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		c.JSON(status, gin.H{
			"authorization": c.GetHeader("Authorization"),
			"request_id":    c.GetHeader("X-Request-ID"),
			"user_agent":    c.GetHeader("User-Agent"),
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newGet(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestDoSetsDefaultHeaders(t *testing.T) {
	var got http.Header
	c := NewClient(
		WithTokenProvider(NewStaticTokenProvider("opaque-token"), 0),
		WithRequestHook(func(r *http.Request) error {
			got = r.Header.Clone()
			return nil
		}),
	)
	srv, hits := echoServer(t, http.StatusOK)

	resp, err := c.Do(context.Background(), newGet(t, srv.URL+"/products"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))

	_, perr := uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, perr)
	assert.Contains(t, got.Get("User-Agent"), "restkit/")

	// the token is injected after the hooks ran
	assert.Empty(t, got.Get("Authorization"))
	assert.Equal(t, "Bearer opaque-token", resp.Request.Header.Get("Authorization"))
}

func TestDoReusesRequestIDFromContext(t *testing.T) {
	c := NewClient(WithRequestIDHeader("X-Correlation-ID"))
	srv, _ := echoServer(t, http.StatusOK)

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")
	resp, err := c.Do(ctx, newGet(t, srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-42", resp.Request.Header.Get("X-Correlation-ID"))
	assert.Empty(t, resp.Request.Header.Get("X-Request-ID"))
}

func TestDoKeepsCallerAuthorization(t *testing.T) {
	var fetches int32
	provider := NewCustomTokenProvider(func(ctx context.Context) (string, time.Time, error) {
		atomic.AddInt32(&fetches, 1)
		return "from-provider", time.Time{}, nil
	})
	c := NewClient(WithTokenProvider(provider, 0))
	srv, _ := echoServer(t, http.StatusOK)

	req := newGet(t, srv.URL)
	req.Header.Set("Authorization", "Basic abc")
	resp, err := c.Do(context.Background(), req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Basic abc", resp.Request.Header.Get("Authorization"))
	assert.Zero(t, atomic.LoadInt32(&fetches))
}

func TestDoNon2xxIsNotAnError(t *testing.T) {
	c := NewClient()
	srv, _ := echoServer(t, http.StatusInternalServerError)

	resp, err := c.Do(context.Background(), newGet(t, srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestDo401InvalidatesTokenWithoutRetry(t *testing.T) {
	var fetches int32
	provider := NewCustomTokenProvider(func(ctx context.Context) (string, time.Time, error) {
		n := atomic.AddInt32(&fetches, 1)
		return "token-" + string(rune('0'+n)), time.Now().Add(time.Hour), nil
	})
	c := NewClient(WithTokenProvider(provider, time.Second))
	srv, hits := echoServer(t, http.StatusUnauthorized)

	resp, err := c.Do(context.Background(), newGet(t, srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
	assert.False(t, c.tokenCache.IsValid())

	resp, err = c.Do(context.Background(), newGet(t, srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.EqualValues(t, 2, atomic.LoadInt32(&fetches))
	assert.Equal(t, "Bearer token-2", resp.Request.Header.Get("Authorization"))
}

func TestDoTransportError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewClient(WithLogger(logger.FromZap(zap.New(core))))

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	resp, err := c.Do(context.Background(), newGet(t, url))
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 1, logs.FilterMessageSnippet("failed after").Len())
}

func TestDoHookErrors(t *testing.T) {
	srv, hits := echoServer(t, http.StatusOK)

	c := NewClient(WithRequestHook(func(*http.Request) error { return errors.New("denied") }))
	_, err := c.Do(context.Background(), newGet(t, srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request hook failed")
	assert.Zero(t, atomic.LoadInt32(hits))

	c = NewClient(WithResponseHook(func(*http.Response) error { return errors.New("bad reply") }))
	_, err = c.Do(context.Background(), newGet(t, srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response hook failed")
}

func TestDoTokenFailure(t *testing.T) {
	c := NewClient(WithTokenProvider(NewCustomTokenProvider(nil), 0))
	_, err := c.Do(context.Background(), newGet(t, "http://127.0.0.1:1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get token")
}

func TestDoRateLimitHonoursContext(t *testing.T) {
	srv, hits := echoServer(t, http.StatusOK)
	c := NewClient(WithRateLimit(0.01, 1))

	resp, err := c.Do(context.Background(), newGet(t, srv.URL))
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Do(ctx, newGet(t, srv.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestDoRecordsSpanAndMetrics(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	m := observability.NewClientMetrics("test")
	c := NewClient(WithTracerProvider(tp), WithMetrics(m))
	srv, _ := echoServer(t, http.StatusAccepted)

	resp, err := c.Do(context.Background(), newGet(t, srv.URL+"/jobs"))
	require.NoError(t, err)
	resp.Body.Close()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET", spans[0].Name())

	n, err := testutil.GatherAndCount(m.Registry(), "test_http_client_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTLSIsStrictByDefault(t *testing.T) {
	srv := httptest.NewTLSServer(gin.New())
	defer srv.Close()

	_, err := NewClient().Do(context.Background(), newGet(t, srv.URL))
	require.Error(t, err)

	core, logs := observer.New(zapcore.WarnLevel)
	c := NewClient(WithInsecureSkipVerify(true), WithLogger(logger.FromZap(zap.New(core))))
	resp, err := c.Do(context.Background(), newGet(t, srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, logs.FilterMessageSnippet("TLS certificate validation is disabled").Len())
}

func TestDefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewClient().Timeout())
	assert.Equal(t, 2*time.Second, NewClient(WithTimeout(2*time.Second)).Timeout())
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := config.New(config.WithDefaults(map[string]interface{}{
		"http.timeout":           "3s",
		"http.bearer_token":      "cfg-token",
		"http.metrics_namespace": "svc",
		"http.user_agent":        "catalog-sync/1.0",
	}))

	c, m, err := NewClientFromConfig(logger.NewNop(), cfg)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3*time.Second, c.Timeout())

	srv, _ := echoServer(t, http.StatusOK)
	resp, err := c.Do(context.Background(), newGet(t, srv.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "Bearer cfg-token", resp.Request.Header.Get("Authorization"))
	assert.Equal(t, "catalog-sync/1.0", resp.Request.Header.Get("User-Agent"))
}

func TestNewClientFromConfigInvalid(t *testing.T) {
	cfg := config.New(config.WithDefaults(map[string]interface{}{
		"http.token_url": "not a url",
	}))
	_, _, err := NewClientFromConfig(logger.NewNop(), cfg)
	require.Error(t, err)
}
