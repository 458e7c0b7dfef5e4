package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Pricing   PricingConfig
	Payment   PaymentConfig
	Storage   StorageConfig
	Checkout  CheckoutConfig
	Admin     AdminConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. Redis is optional;
// when disabled the in-memory stores are used.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig holds identity token verification settings
type AuthConfig struct {
	Secret      string // HS256 secret shared with the identity provider
	Issuer      string
	Audience    string
	Leeway      time.Duration
	AdminEmails []string
}

// IsAdminEmail reports whether email belongs to a store administrator
func (a AuthConfig) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range a.AdminEmails {
		if strings.ToLower(strings.TrimSpace(e)) == email {
			return true
		}
	}
	return false
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// SurchargeEntry is one row of the fabric surcharge table.
// Fabric values are case-sensitive, so the table is an array of tables
// rather than a map (viper lowercases map keys).
type SurchargeEntry struct {
	Fabric string `mapstructure:"fabric"`
	Amount int64  `mapstructure:"amount"`
}

// PricingConfig holds the price inputs, all in minor currency units
type PricingConfig struct {
	BasePrice      int64
	DeliveryCharge int64
	Surcharges     []SurchargeEntry
}

// SurchargeMap returns the surcharge table keyed by fabric value
func (p PricingConfig) SurchargeMap() map[string]int64 {
	m := make(map[string]int64, len(p.Surcharges))
	for _, s := range p.Surcharges {
		m[s.Fabric] = s.Amount
	}
	return m
}

// PaymentConfig holds payment provider settings
type PaymentConfig struct {
	ServerURL  string // public storefront URL used in redirects
	Currency   string
	CODEnabled bool
	Stripe     StripeConfig
	Razorpay   RazorpayConfig
}

// StripeConfig holds card gateway settings
type StripeConfig struct {
	Enabled       bool
	SecretKey     string
	WebhookSecret string
	Countries     []string // shipping countries collected on the hosted page
}

// RazorpayConfig holds UPI gateway settings
type RazorpayConfig struct {
	Enabled       bool
	KeyID         string
	KeySecret     string
	WebhookSecret string
	LinkExpiry    time.Duration
}

// StorageConfig holds S3-compatible object storage settings for artwork
type StorageConfig struct {
	Enabled           bool
	Bucket            string
	AccessKey         string
	SecretKey         string
	Endpoint          string
	UseSSL            bool
	Region            string
	UsePathStyle      bool
	PresignExpiration time.Duration
	PublicBaseURL     string // CDN or bucket URL objects are served from
	MaxUploadSize     int64
}

// CheckoutConfig holds checkout coordination settings
type CheckoutConfig struct {
	LockEnabled    bool
	LockTTL        time.Duration
	IdempotencyTTL time.Duration // how long processed webhook events are remembered
}

// AdminConfig holds admin dashboard settings, goals in major units
type AdminConfig struct {
	RecentDays  int
	WeeklyGoal  int64
	MonthlyGoal int64
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings
}

// Load loads configuration from a .env file, TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_DATABASE_PASSWORD)
// 2. .env in the working directory (loaded into the environment, never overriding it)
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("payment.cod_enabled", true)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			Secret:      v.GetString("auth.secret"),
			Issuer:      v.GetString("auth.issuer"),
			Audience:    v.GetString("auth.audience"),
			Leeway:      v.GetDuration("auth.leeway"),
			AdminEmails: v.GetStringSlice("auth.admin_emails"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			RateLimitBurst:    v.GetInt("http.rate_limit_burst"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Pricing: PricingConfig{
			BasePrice:      v.GetInt64("pricing.base_price"),
			DeliveryCharge: v.GetInt64("pricing.delivery_charge"),
		},
		Payment: PaymentConfig{
			ServerURL:  v.GetString("payment.server_url"),
			Currency:   v.GetString("payment.currency"),
			CODEnabled: v.GetBool("payment.cod_enabled"),
			Stripe: StripeConfig{
				Enabled:       v.GetBool("payment.stripe.enabled"),
				SecretKey:     v.GetString("payment.stripe.secret_key"),
				WebhookSecret: v.GetString("payment.stripe.webhook_secret"),
				Countries:     v.GetStringSlice("payment.stripe.countries"),
			},
			Razorpay: RazorpayConfig{
				Enabled:       v.GetBool("payment.razorpay.enabled"),
				KeyID:         v.GetString("payment.razorpay.key_id"),
				KeySecret:     v.GetString("payment.razorpay.key_secret"),
				WebhookSecret: v.GetString("payment.razorpay.webhook_secret"),
				LinkExpiry:    v.GetDuration("payment.razorpay.link_expiry"),
			},
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			Endpoint:          v.GetString("storage.endpoint"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			Region:            v.GetString("storage.region"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
			MaxUploadSize:     v.GetInt64("storage.max_upload_size"),
		},
		Checkout: CheckoutConfig{
			LockEnabled:    v.GetBool("checkout.lock_enabled"),
			LockTTL:        v.GetDuration("checkout.lock_ttl"),
			IdempotencyTTL: v.GetDuration("checkout.idempotency_ttl"),
		},
		Admin: AdminConfig{
			RecentDays:  v.GetInt("admin.recent_days"),
			WeeklyGoal:  v.GetInt64("admin.weekly_goal"),
			MonthlyGoal: v.GetInt64("admin.monthly_goal"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
	}

	if err := v.UnmarshalKey("pricing.surcharges", &cfg.Pricing.Surcharges); err != nil {
		return nil, fmt.Errorf("error reading pricing.surcharges: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultSurcharges is the fabric surcharge table used when none is configured
func DefaultSurcharges() []SurchargeEntry {
	return []SurchargeEntry{
		{Fabric: "polyester", Amount: 12000},
		{Fabric: "polycotton", Amount: 15000},
		{Fabric: "dotKnit", Amount: 17000},
		{Fabric: "cotton", Amount: 20000},
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Auth.Leeway == 0 {
		cfg.Auth.Leeway = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 45 * time.Second // covers a 30s gateway call
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB, artwork goes straight to storage
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.RateLimitBurst == 0 {
		cfg.HTTP.RateLimitBurst = 20
	}
	// An empty origin list allows no cross-origin requests until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Pricing.BasePrice == 0 {
		cfg.Pricing.BasePrice = 10000
	}
	if len(cfg.Pricing.Surcharges) == 0 {
		cfg.Pricing.Surcharges = DefaultSurcharges()
	}
	if cfg.Payment.ServerURL == "" {
		cfg.Payment.ServerURL = "http://localhost:3000"
	}
	cfg.Payment.ServerURL = strings.TrimRight(cfg.Payment.ServerURL, "/")
	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "INR"
	}
	if len(cfg.Payment.Stripe.Countries) == 0 {
		cfg.Payment.Stripe.Countries = []string{"IN", "US"}
	}
	if cfg.Payment.Razorpay.LinkExpiry == 0 {
		cfg.Payment.Razorpay.LinkExpiry = 24 * time.Hour
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}
	if cfg.Storage.MaxUploadSize == 0 {
		cfg.Storage.MaxUploadSize = 10 << 20 // 10MB
	}
	if cfg.Checkout.LockTTL == 0 {
		cfg.Checkout.LockTTL = 45 * time.Second
	}
	if cfg.Checkout.IdempotencyTTL == 0 {
		cfg.Checkout.IdempotencyTTL = 72 * time.Hour
	}
	if cfg.Admin.RecentDays == 0 {
		cfg.Admin.RecentDays = 7
	}
	if cfg.Admin.WeeklyGoal == 0 {
		cfg.Admin.WeeklyGoal = 5000
	}
	if cfg.Admin.MonthlyGoal == 0 {
		cfg.Admin.MonthlyGoal = 25000
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "storefront"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Pricing.BasePrice < 0 || c.Pricing.DeliveryCharge < 0 {
		return fmt.Errorf("pricing amounts cannot be negative")
	}
	seen := make(map[string]struct{}, len(c.Pricing.Surcharges))
	for _, s := range c.Pricing.Surcharges {
		if s.Fabric == "" {
			return fmt.Errorf("pricing.surcharges entries need a fabric value")
		}
		if s.Amount < 0 {
			return fmt.Errorf("pricing.surcharges[%s] cannot be negative", s.Fabric)
		}
		if _, dup := seen[s.Fabric]; dup {
			return fmt.Errorf("pricing.surcharges lists %q twice", s.Fabric)
		}
		seen[s.Fabric] = struct{}{}
	}

	if _, err := url.ParseRequestURI(c.Payment.ServerURL); err != nil {
		return fmt.Errorf("payment.server_url is invalid: %w", err)
	}
	if c.Payment.Stripe.Enabled && c.Payment.Stripe.SecretKey == "" {
		return fmt.Errorf("payment.stripe.secret_key is required when stripe is enabled")
	}
	if c.Payment.Razorpay.Enabled && (c.Payment.Razorpay.KeyID == "" || c.Payment.Razorpay.KeySecret == "") {
		return fmt.Errorf("payment.razorpay.key_id and key_secret are required when razorpay is enabled")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}

	if c.App.IsProduction() {
		if c.Auth.Secret == "" {
			return fmt.Errorf("auth.secret is required in production")
		}
		if len(c.Auth.Secret) < 32 {
			return fmt.Errorf("auth.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Payment.Stripe.Enabled && c.Payment.Stripe.WebhookSecret == "" {
			return fmt.Errorf("payment.stripe.webhook_secret is required in production")
		}
		if c.Payment.Razorpay.Enabled && c.Payment.Razorpay.WebhookSecret == "" {
			return fmt.Errorf("payment.razorpay.webhook_secret is required in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
