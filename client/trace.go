package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// startSpan opens the span covering one fetch.
func (c *Client) startSpan(ctx context.Context, id uint64, d Descriptor) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "pacer.fetch", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", d.Method),
		attribute.String("url.full", d.URL),
		attribute.Int64("pacer.correlation_id", int64(id)),
	)

	return ctx, span
}

// requestID returns the id sent in the request-id header: the trace id
// when tracing is active, a random UUID otherwise.
func requestID(span trace.Span) string {
	if traceID := span.SpanContext().TraceID(); traceID.IsValid() {
		return traceID.String()
	}

	return uuid.NewString()
}

// inject writes trace propagation headers into the outbound request.
func inject(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

func endSpan(span trace.Span, status int, err error) {
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}
