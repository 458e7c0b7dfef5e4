package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/apparel/storefront/internal/infrastructure/config"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database owns the PostgreSQL connection pool shared by the repositories
type Database struct {
	DB *gorm.DB
}

// NewDatabaseWithLogger connects to PostgreSQL and routes SQL logging
// through zap at level. Statements slower than slowThreshold log at warn.
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, log *zap.Logger, level string, slowThreshold time.Duration) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.MapGormLogLevel(level),
			logger.WithSlowThreshold(slowThreshold)),
		// Order saves open their own transactions
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	d := &Database{DB: db}
	sqlDB, err := d.SQL()
	if err != nil {
		return nil, err
	}
	configurePool(sqlDB, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return d, nil
}

func configurePool(sqlDB *sql.DB, cfg *config.DatabaseConfig) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// SQL returns the pool behind the gorm handle, for migrations and pool metrics
func (d *Database) SQL() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB, nil
}

// Ping is registered as the "database" health check
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.SQL()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.SQL()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
