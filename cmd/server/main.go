package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/apparel/storefront/internal/application/catalog"
	"github.com/apparel/storefront/internal/application/checkout"
	appdesign "github.com/apparel/storefront/internal/application/design"
	appevent "github.com/apparel/storefront/internal/application/event"
	apporder "github.com/apparel/storefront/internal/application/order"
	apppayment "github.com/apparel/storefront/internal/application/payment"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/apparel/storefront/internal/domain/pricing"
	"github.com/apparel/storefront/internal/infrastructure/auth"
	"github.com/apparel/storefront/internal/infrastructure/cache"
	"github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/apparel/storefront/internal/infrastructure/event"
	"github.com/apparel/storefront/internal/infrastructure/export"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	paymentinfra "github.com/apparel/storefront/internal/infrastructure/payment"
	"github.com/apparel/storefront/internal/infrastructure/persistence"
	"github.com/apparel/storefront/internal/infrastructure/storage"
	"github.com/apparel/storefront/internal/infrastructure/telemetry"
	"github.com/apparel/storefront/internal/interfaces/http/handler"
	"github.com/apparel/storefront/internal/interfaces/http/middleware"
	"github.com/apparel/storefront/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	metrics := telemetry.NewMetrics()

	// Initialize database connection with the zap-backed GORM logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level, cfg.Telemetry.DBSlowQueryThresh)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if sqlDB, err := db.SQL(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB); err != nil {
			log.Warn("Failed to register connection pool metrics", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Redis-backed coordination stores, in memory when Redis is off or down
	stores, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	).Build(ctx)
	if err != nil {
		log.Fatal("Failed to initialize coordination stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing coordination stores", zap.Error(err))
		}
	}()

	// Initialize repositories
	colorRepo := persistence.NewGormColorRepository(db.DB)
	sizeRepo := persistence.NewGormSizeRepository(db.DB)
	fabricRepo := persistence.NewGormFabricRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	configurationRepo := persistence.NewGormConfigurationRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	resolver := design.NewResolver(colorRepo, sizeRepo, fabricRepo, productRepo)
	calculator := pricing.NewCalculator(
		decimal.NewFromInt(cfg.Pricing.BasePrice),
		surchargeTable(cfg.Pricing),
		decimal.NewFromInt(cfg.Pricing.DeliveryCharge),
	)
	redirects := paymentinfra.Redirects{ServerURL: cfg.Payment.ServerURL}

	payments, err := paymentRegistry(cfg.Payment, redirects, log)
	if err != nil {
		log.Fatal("Failed to initialize payment adapters", zap.Error(err))
	}

	// Initialize application services
	catalogService := catalogapp.NewService(catalogapp.Repositories{
		Colors:     colorRepo,
		Sizes:      sizeRepo,
		Fabrics:    fabricRepo,
		Categories: categoryRepo,
		Products:   productRepo,
	}, log)
	catalogService.SetCache(stores.Catalog, 0)

	designService := appdesign.NewService(configurationRepo, productRepo, resolver, calculator, orderRepo, log)
	if objectStorage := objectStorage(ctx, cfg, log); objectStorage != nil {
		designService.SetStorage(objectStorage, cfg.Storage.PresignExpiration)
	}

	checkoutService := checkout.NewService(configurationRepo, resolver, calculator, orderRepo, userRepo, payments, redirects,
		checkout.Options{Currency: cfg.Payment.Currency, LockTTL: cfg.Checkout.LockTTL}, log)
	if cfg.Checkout.LockEnabled {
		checkoutService.SetLocker(stores.Locker)
	}
	checkoutService.SetMetrics(metrics)
	statusService := checkout.NewStatusService(orderRepo, configurationRepo, resolver, userRepo, log)

	adminOrderService := apporder.NewAdminService(orderRepo, export.NewOrderSheetWriter(), apporder.Dashboard{
		RecentDays:  cfg.Admin.RecentDays,
		WeeklyGoal:  cfg.Admin.WeeklyGoal,
		MonthlyGoal: cfg.Admin.MonthlyGoal,
		Currency:    cfg.Payment.Currency,
	}, log)

	var stripeWebhooks *apppayment.StripeWebhookService
	if cfg.Payment.Stripe.Enabled {
		stripeWebhooks = apppayment.NewStripeWebhookService(cfg.Payment.Stripe.WebhookSecret, orderRepo, stores.Idempotency, log)
		stripeWebhooks.SetMetrics(metrics)
	}
	var razorpayWebhooks *apppayment.RazorpayWebhookService
	if cfg.Payment.Razorpay.Enabled {
		razorpayWebhooks = apppayment.NewRazorpayWebhookService(cfg.Payment.Razorpay.WebhookSecret, orderRepo, stores.Idempotency, log)
		razorpayWebhooks.SetMetrics(metrics)
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log, event.WithDispatchObserver(metrics.ObserveEventDispatch))
	appevent.RegisterHandlers(eventBus, log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	catalogService.SetEventPublisher(eventBus)
	designService.SetEventPublisher(eventBus)
	checkoutService.SetEventPublisher(eventBus)
	adminOrderService.SetEventPublisher(eventBus)
	if stripeWebhooks != nil {
		stripeWebhooks.SetEventPublisher(eventBus)
	}
	if razorpayWebhooks != nil {
		razorpayWebhooks.SetEventPublisher(eventBus)
	}

	handlers := router.Handlers{
		Catalog:       handler.NewCatalogHandler(catalogService),
		Configuration: handler.NewConfigurationHandler(designService),
		Checkout:      handler.NewCheckoutHandler(checkoutService, statusService),
		AdminOrders:   handler.NewAdminOrderHandler(adminOrderService),
		Webhooks:      handler.NewWebhookHandler(stripeWebhooks, razorpayWebhooks),
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	systemHandler.AddCheck("database", db.Ping)
	if stores.Redis != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return stores.Redis.Ping(ctx).Err()
		})
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		defer rateLimiter.Stop()
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}

	tracingConfig := middleware.DefaultTracingConfig()
	tracingConfig.ServiceName = cfg.Telemetry.ServiceName
	engine := router.NewEngine(router.EngineOptions{
		HTTP:        cfg.HTTP,
		Tracing:     tracingConfig,
		Metrics:     metrics,
		RateLimiter: rateLimiter,
		Logger:      log,
	}, systemHandler)

	jwtService := auth.NewJWTService(cfg.Auth)
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.StorefrontRoutes(handlers, middleware.JWTAuthMiddleware(jwtService, log))...).
		Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

func surchargeTable(p config.PricingConfig) pricing.SurchargeTable {
	table := make(pricing.SurchargeTable, len(p.Surcharges))
	for fabric, amount := range p.SurchargeMap() {
		table[fabric] = decimal.NewFromInt(amount)
	}
	return table
}

// paymentRegistry registers the enabled gateways. Checkout with a method
// whose gateway is off fails with PAYMENT_METHOD_UNAVAILABLE.
func paymentRegistry(cfg config.PaymentConfig, redirects paymentinfra.Redirects, log *zap.Logger) (*payment.Registry, error) {
	var adapters []payment.Adapter
	if cfg.CODEnabled {
		adapters = append(adapters, paymentinfra.NewCODAdapter(redirects))
	}
	if cfg.Stripe.Enabled {
		stripeAdapter, err := paymentinfra.NewStripeAdapter(paymentinfra.StripeConfig{
			SecretKey: cfg.Stripe.SecretKey,
			Countries: cfg.Stripe.Countries,
			Redirects: redirects,
		}, nil, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, stripeAdapter)
	}
	if cfg.Razorpay.Enabled {
		razorpayAdapter, err := paymentinfra.NewRazorpayAdapter(paymentinfra.RazorpayConfig{
			KeyID:      cfg.Razorpay.KeyID,
			KeySecret:  cfg.Razorpay.KeySecret,
			LinkExpiry: cfg.Razorpay.LinkExpiry,
			Redirects:  redirects,
		}, log)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, razorpayAdapter)
	}
	log.Info("Payment methods enabled", zap.Int("adapters", len(adapters)),
		zap.Bool("cod", cfg.CODEnabled),
		zap.Bool("card", cfg.Stripe.Enabled),
		zap.Bool("upi", cfg.Razorpay.Enabled),
	)
	return payment.NewRegistry(adapters...)
}

// objectStorage returns S3 when configured. Outside production a stub
// stands in so uploads can be exercised without a bucket.
func objectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) appdesign.ObjectStorageService {
	if !cfg.Storage.Enabled {
		if cfg.App.IsProduction() {
			log.Warn("Object storage disabled, artwork uploads are unavailable")
			return nil
		}
		return storage.NewStubObjectStorage(cfg.Storage.PublicBaseURL)
	}
	s3, err := storage.NewArtworkStore(ctx, &cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		log.Warn("Artwork bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
	}
	return s3
}
