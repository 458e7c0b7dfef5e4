package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity holds the identity and audit timestamps of a stored record
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a new id and stamps both timestamps
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}
