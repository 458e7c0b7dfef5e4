package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes GORM statements into zap. Missing-row lookups are
// expected by the repositories and are never logged as errors.
type GormLogger struct {
	logger *zap.Logger
	level  gormlogger.LogLevel
	slow   time.Duration
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which statements log at warn.
// Zero disables slow-query logging.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = threshold }
}

// NewGormLogger wraps zapLogger as a gormlogger.Interface
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{logger: zapLogger.Named("gorm"), level: level, slow: defaultSlowQuery}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	slow := l.slow > 0 && elapsed > l.slow
	switch {
	case err != nil && l.level >= gormlogger.Error:
	case slow && l.level >= gormlogger.Warn:
	case l.level >= gormlogger.Info:
	default:
		return
	}

	query, rows := fc()
	log := WithLogger(ctx, l.logger).With(
		zap.String("sql", query),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	switch {
	case err != nil:
		log.Error("Query failed", zap.Error(err))
	case slow:
		log.Warn("Slow query", zap.Duration("threshold", l.slow))
	default:
		log.Debug("Query")
	}
}

// MapGormLogLevel maps an application log level onto GORM's levels.
// Unknown values map to warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
