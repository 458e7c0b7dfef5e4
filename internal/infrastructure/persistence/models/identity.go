package models

import (
	"time"

	"github.com/apparel/storefront/internal/domain/identity"
)

// UserModel is the persistence model for customers.
// ID is the identity provider subject, not a generated uuid.
type UserModel struct {
	ID        string    `gorm:"type:varchar(191);primary_key"`
	Email     string    `gorm:"type:varchar(200);index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{ID: m.ID, Email: m.Email, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.Email = u.Email
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.UpdatedAt
}

// AllModels lists every persistence model, in dependency order
func AllModels() []any {
	return []any{
		&UserModel{},
		&ColorModel{},
		&SizeModel{},
		&FabricModel{},
		&CategoryModel{},
		&ProductModel{},
		&ConfigurationModel{},
		&AddressModel{},
		&OrderModel{},
	}
}
