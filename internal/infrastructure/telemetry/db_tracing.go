package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db and flags slow statements on
// their spans. Query variables stay out of spans unless full SQL logging is on.
func RegisterDBTracing(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.DBTraceEnabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	threshold := cfg.DBSlowQueryThresh
	if threshold <= 0 {
		threshold = defaultSlowQueryThreshold
	}
	if err := registerSlowQueryCallbacks(db, threshold); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", threshold),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		markSlowQuery(tx, threshold)
	}

	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("storefront:timing_before_create", before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("storefront:timing_after_create", after); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("storefront:timing_before_query", before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("storefront:timing_after_query", after); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("storefront:timing_before_update", before); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("storefront:timing_after_update", after); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("storefront:timing_before_delete", before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("storefront:timing_after_delete", after); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register("storefront:timing_before_row", before); err != nil {
		return err
	}
	return cb.Row().After("gorm:row").Register("storefront:timing_after_row", after)
}

func markSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
