package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.NotPanics(t, func() { l.Info("dropped") })
}

func TestContextIDs(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	ctx, _ = WithRequestID(ctx, FromContext(ctx), "req-1")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "user-1")
	ctx, l := WithOrderID(ctx, FromContext(ctx), "order-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
	assert.Equal(t, "order-1", GetOrderID(ctx))
	assert.Same(t, l, FromContext(ctx))

	l.Info("checkout")
	require.Equal(t, 1, recorded.Len())
	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "order-1", fields["order_id"])
}

func TestContextIDs_Empty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetOrderID(ctx))
}

func TestWithLogger_EnrichesFromContext(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := context.WithValue(context.Background(), requestIDKey, "req-9")
	ctx = context.WithValue(ctx, orderIDKey, "order-9")

	WithLogger(ctx, zap.New(core)).With(zap.String("method", "cod")).Warn("payment retried")

	require.Equal(t, 1, recorded.Len())
	entry := recorded.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := fieldMap(entry)
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "order-9", fields["order_id"])
	assert.Equal(t, "cod", fields["method"])
	assert.NotContains(t, fields, "user_id")
	assert.NotContains(t, fields, "trace_id")
}

func TestWithLogger_AddsTraceIDs(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	WithLogger(ctx, zap.New(core)).Info("traced")

	fields := fieldMap(recorded.All()[0])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestWithLogger_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		cl := WithLogger(context.Background(), nil)
		cl.Debug("a")
		cl.Info("b")
		cl.Error("c")
		assert.NotNil(t, cl.Zap())
	})
}

func TestL_UsesContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, _ := WithRequestID(WithContext(context.Background(), zap.New(core)), zap.New(core), "req-2")

	L(ctx).Info("from context")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "req-2", fieldMap(recorded.All()[0])["request_id"])
}
