package order

import (
	"context"
	"time"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilter narrows admin order listings
type ListFilter struct {
	shared.Filter
	Since         *time.Time
	Status        *FulfillmentStatus
	PaymentStatus *PaymentStatus
}

// Repository persists orders
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUser finds an order only if userID placed it
	FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*Order, error)
	// FindByUserAndConfiguration finds the order for a (user, configuration) key
	FindByUserAndConfiguration(ctx context.Context, userID string, configurationID uuid.UUID) (*Order, error)
	// FindByPaymentIntentID finds an order by its gateway reference
	FindByPaymentIntentID(ctx context.Context, intentID string) (*Order, error)
	// CreateIfAbsent inserts the order unless one already exists for its
	// (user, configuration) key. It reports whether the row was inserted.
	CreateIfAbsent(ctx context.Context, o *Order) (bool, error)
	// Save updates an existing order, failing with CONCURRENT_MODIFICATION
	// when the stored version moved on
	Save(ctx context.Context, o *Order) error
	// FindAll returns a page of orders, newest first
	FindAll(ctx context.Context, filter ListFilter) ([]Order, int64, error)
	// SumPaidSince totals the amounts of paid orders created since t
	SumPaidSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
	// ExistsPaidForConfiguration checks whether a paid order references the configuration
	ExistsPaidForConfiguration(ctx context.Context, configurationID uuid.UUID) (bool, error)
}
