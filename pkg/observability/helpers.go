package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
var (
	AttrHTTPMethod     = attribute.Key("http.request.method")
	AttrHTTPStatusCode = attribute.Key("http.response.status_code")
	AttrURLFull        = attribute.Key("url.full")
	AttrServerAddress  = attribute.Key("server.address")
	AttrRequestID      = attribute.Key("request.id")
)

// StartClientSpan starts a client span for an outbound request and injects
// the trace context into its headers. The returned request carries the span context.
func StartClientSpan(tracer trace.Tracer, req *http.Request, requestID string) (*http.Request, trace.Span) {
	ctx, span := tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrHTTPMethod.String(req.Method),
			AttrURLFull.String(req.URL.Redacted()),
			AttrServerAddress.String(req.URL.Host),
		),
	)
	if requestID != "" {
		span.SetAttributes(AttrRequestID.String(requestID))
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req.WithContext(ctx), span
}

// EndClientSpan records the outcome of an outbound request and ends the span.
func EndClientSpan(span trace.Span, resp *http.Response, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(AttrHTTPStatusCode.Int(resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
}

// AddSpanEvent adds an event to the span in ctx if it is recording.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// RecordSpanError marks the span in ctx as failed with err.
func RecordSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
