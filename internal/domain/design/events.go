package design

import (
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

const EventTypeConfigurationCreated = "ConfigurationCreated"

// ConfigurationCreatedEvent is raised when a customer starts a configuration
type ConfigurationCreatedEvent struct {
	shared.BaseDomainEvent
	ConfigurationID uuid.UUID  `json:"configuration_id"`
	Kind            Kind       `json:"kind"`
	ProductID       *uuid.UUID `json:"product_id,omitempty"`
}

// NewConfigurationCreatedEvent creates a new ConfigurationCreatedEvent
func NewConfigurationCreatedEvent(c *Configuration) *ConfigurationCreatedEvent {
	return &ConfigurationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeConfigurationCreated, AggregateTypeConfiguration, c.ID),
		ConfigurationID: c.ID,
		Kind:            c.Kind(),
		ProductID:       c.ProductID(),
	}
}
