package design

import (
	"context"

	"github.com/google/uuid"
)

// ConfigurationRepository persists configurations
type ConfigurationRepository interface {
	// FindByID finds a configuration by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Configuration, error)
	// Save creates or updates a configuration
	Save(ctx context.Context, cfg *Configuration) error
}
