package router

import (
	"github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/apparel/storefront/internal/infrastructure/telemetry"
	"github.com/apparel/storefront/internal/interfaces/http/handler"
	"github.com/apparel/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineOptions configure the global middleware chain
type EngineOptions struct {
	HTTP    config.HTTPConfig
	Tracing middleware.TracingConfig
	Metrics *telemetry.Metrics
	// RateLimiter is applied to every request when set
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

// NewEngine creates a gin engine with the global middleware applied in order:
// request id, recovery, access log, security headers, CORS, body limit,
// rate limit, tracing and metrics. /health and /metrics sit outside the API.
func NewEngine(opts EngineOptions, system *handler.SystemHandler) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))

	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}

	engine.Use(middleware.TracingWithConfig(opts.Tracing))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())

	if opts.Metrics != nil {
		engine.Use(opts.Metrics.GinMiddleware())
		engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if system != nil {
		engine.GET("/health", system.Health)
	}
	return engine
}
