package persistence

import (
	"context"

	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormConfigurationRepository implements design.ConfigurationRepository using GORM
type GormConfigurationRepository struct {
	db *gorm.DB
}

// NewGormConfigurationRepository creates a new GormConfigurationRepository
func NewGormConfigurationRepository(db *gorm.DB) *GormConfigurationRepository {
	return &GormConfigurationRepository{db: db}
}

// FindByID finds a configuration by its ID
func (r *GormConfigurationRepository) FindByID(ctx context.Context, id uuid.UUID) (*design.Configuration, error) {
	return findOne[models.ConfigurationModel, design.Configuration](ctx, r.db, id)
}

// Save creates or updates a configuration
func (r *GormConfigurationRepository) Save(ctx context.Context, cfg *design.Configuration) error {
	model := &models.ConfigurationModel{}
	model.FromDomain(cfg)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormConfigurationRepository implements design.ConfigurationRepository
var _ design.ConfigurationRepository = (*GormConfigurationRepository)(nil)
