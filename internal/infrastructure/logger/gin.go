package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ginLoggerKey holds the request-scoped logger in the gin context
const ginLoggerKey = "logger"

// quietPaths are polled constantly and only logged on failure
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// GinMiddleware logs one access entry per request. It must run after the
// request id middleware. 5xx responses log at error and 4xx at warn.
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		reqLogger := logger.With(
			zap.String("request_id", GetRequestID(c.Request.Context())),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
		c.Set(ginLoggerKey, reqLogger)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if route := c.FullPath(); route != "" && route != path {
			fields = append(fields, zap.String("route", route))
		}
		if userID := GetUserID(c.Request.Context()); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn("HTTP Request", fields...)
		default:
			if _, quiet := quietPaths[path]; !quiet {
				reqLogger.Info("HTTP Request", fields...)
			}
		}
	}
}

// Recovery turns a panic into a 500 error envelope and logs the stack
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				requestID := GetRequestID(c.Request.Context())
				logger.Error("Panic recovered",
					zap.String("request_id", requestID),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":       "INTERNAL_ERROR",
						"message":    "An unexpected error occurred",
						"request_id": requestID,
						"timestamp":  time.Now().UTC(),
					},
				})
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger set by GinMiddleware, enriched
// with the caller once authentication has run
func GetGinLogger(c *gin.Context) *zap.Logger {
	l, ok := c.Value(ginLoggerKey).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}
	if userID := GetUserID(c.Request.Context()); userID != "" {
		l = l.With(zap.String("user_id", userID))
	}
	return l
}
