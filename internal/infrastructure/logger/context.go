package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
	userIDKey
	orderIDKey
)

// WithContext attaches logger to ctx
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

func withField(ctx context.Context, logger *zap.Logger, key contextKey, name, value string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, key, value)
	enriched := logger.With(zap.String(name, value))
	return WithContext(ctx, enriched), enriched
}

// WithRequestID records the request id on ctx and its logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, requestIDKey, "request_id", requestID)
}

// WithUserID records the authenticated customer on ctx and its logger
func WithUserID(ctx context.Context, logger *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, userIDKey, "user_id", userID)
}

// WithOrderID records the order being worked on
func WithOrderID(ctx context.Context, logger *zap.Logger, orderID string) (context.Context, *zap.Logger) {
	return withField(ctx, logger, orderIDKey, "order_id", orderID)
}

func value(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// GetRequestID returns the request id recorded on ctx
func GetRequestID(ctx context.Context) string { return value(ctx, requestIDKey) }

// GetUserID returns the customer recorded on ctx
func GetUserID(ctx context.Context) string { return value(ctx, userIDKey) }

// GetOrderID returns the order recorded on ctx
func GetOrderID(ctx context.Context) string { return value(ctx, orderIDKey) }

// ContextLogger logs through a base logger, adding the trace and request
// fields found on its context to every entry.
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L logs through the logger attached to ctx
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger logs through logger, enriched from ctx. Services hold their own
// named logger and use this in every method.
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) enriched() *zap.Logger {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(cl.ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	for _, f := range []struct {
		key  contextKey
		name string
	}{
		{requestIDKey, "request_id"},
		{userIDKey, "user_id"},
		{orderIDKey, "order_id"},
	} {
		if v := value(cl.ctx, f.key); v != "" {
			fields = append(fields, zap.String(f.name, v))
		}
	}
	if len(fields) == 0 {
		return cl.logger
	}
	return cl.logger.With(fields...)
}

// With returns a ContextLogger carrying extra fields
func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.logger.With(fields...)}
}

// Debug logs at debug level
func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.enriched().Debug(msg, fields...)
}

// Info logs at info level
func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.enriched().Info(msg, fields...)
}

// Warn logs at warn level
func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.enriched().Warn(msg, fields...)
}

// Error logs at error level
func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.enriched().Error(msg, fields...)
}

// Zap returns the enriched logger for APIs that take a *zap.Logger
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enriched()
}
