package models

import (
	"time"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel is embedded by the catalog option rows
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) setEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// AggregateModel adds the optimistic-lock version of products,
// configurations and orders. Repositories compare it in UPDATE ... WHERE.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) setAggregate(a shared.BaseAggregateRoot) {
	m.setEntity(a.BaseEntity)
	m.Version = a.Version
}

// aggregate rebuilds the root without pending events
func (m *AggregateModel) aggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}
