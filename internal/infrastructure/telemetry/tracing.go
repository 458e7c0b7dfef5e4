package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for application spans
const TracerName = "storefront"

// Span attribute keys
const (
	OrderIDKey         = attribute.Key("order.id")
	ConfigurationIDKey = attribute.Key("configuration.id")
	PaymentMethodKey   = attribute.Key("payment.method")
	PaymentStatusKey   = attribute.Key("payment.status")
	WebhookProviderKey = attribute.Key("webhook.provider")
	WebhookEventKey    = attribute.Key("webhook.event_type")
	WebhookDuplicate   = attribute.Key("webhook.duplicate")
)

// StartServiceSpan starts an internal span named {service}.{method}:
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "checkout",
//		telemetry.PaymentMethodKey.String(method))
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on span, if any, and ends it. Use with a named error
// result: defer func() { telemetry.EndSpan(span, err) }()
func EndSpan(span trace.Span, err error) {
	RecordError(span, err)
	span.End()
}

// RecordError marks span failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace id in ctx, or empty
func GetTraceID(ctx context.Context) string {
	id := trace.SpanContextFromContext(ctx).TraceID()
	if !id.IsValid() {
		return ""
	}
	return id.String()
}
