package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ClientMetrics holds Prometheus metrics for outbound API calls.
type ClientMetrics struct {
	reqCount   *prometheus.CounterVec
	reqDurHist *prometheus.HistogramVec
	inFlight   prometheus.Gauge
	registry   *prometheus.Registry
}

// NewClientMetrics creates and registers the outbound request metrics on a
// dedicated registry. namespace prefixes every metric name and may be empty.
func NewClientMetrics(namespace string) *ClientMetrics {
	reg := prometheus.NewRegistry()

	reqCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Total number of outbound HTTP requests",
		},
		[]string{"method", "host", "status"},
	)
	reqDurHist := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_request_duration_seconds",
			Help:      "Histogram of outbound request durations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "host"},
	)
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_client_in_flight_requests",
		Help:      "Current number of in-flight outbound requests",
	})

	reg.MustRegister(reqCount, reqDurHist, inFlight)

	return &ClientMetrics{
		reqCount:   reqCount,
		reqDurHist: reqDurHist,
		inFlight:   inFlight,
		registry:   reg,
	}
}

// Start marks a request as in flight. The returned func records its outcome.
// status is ignored when err is non-nil; the status label is then "error".
func (m *ClientMetrics) Start(method, host string) func(status int, err error) {
	start := time.Now()
	m.inFlight.Inc()
	return func(status int, err error) {
		m.inFlight.Dec()
		label := "error"
		if err == nil {
			label = strconv.Itoa(status)
		}
		m.reqCount.WithLabelValues(method, host, label).Inc()
		m.reqDurHist.WithLabelValues(method, host).Observe(time.Since(start).Seconds())
	}
}

// Registry exposes the underlying registry, e.g. to merge into an existing gatherer.
func (m *ClientMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *ClientMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
