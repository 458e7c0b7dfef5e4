package catalog

import (
	"context"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// ColorRepository persists color options
type ColorRepository interface {
	// FindByID finds a color by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Color, error)
	// FindAll returns every color ordered by label
	FindAll(ctx context.Context) ([]Color, error)
	// FindByIDs returns the colors that still exist among ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Color, error)
	// Save creates or updates a color
	Save(ctx context.Context, color *Color) error
	// Delete removes a color; references to it are nulled by storage
	Delete(ctx context.Context, id uuid.UUID) error
	// ExistsByValue checks whether a color with the value exists
	ExistsByValue(ctx context.Context, value string) (bool, error)
}

// SizeRepository persists size options
type SizeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Size, error)
	FindAll(ctx context.Context) ([]Size, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Size, error)
	Save(ctx context.Context, size *Size) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByValue(ctx context.Context, value string) (bool, error)
}

// FabricRepository persists fabric options
type FabricRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Fabric, error)
	FindAll(ctx context.Context) ([]Fabric, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Fabric, error)
	Save(ctx context.Context, fabric *Fabric) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByValue(ctx context.Context, value string) (bool, error)
}

// CategoryRepository persists product categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindAll(ctx context.Context) ([]Category, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	CategoryID *uuid.UUID
}

// ProductRepository persists catalog products
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindAll returns a page of products matching the filter
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error
	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error
}
