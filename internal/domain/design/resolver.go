package design

import (
	"context"
	"errors"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// ResolvedConfiguration is a configuration joined with its catalog records
type ResolvedConfiguration struct {
	*Configuration
	Color   Ref[catalog.Color]
	Size    Ref[catalog.Size]
	Fabric  Ref[catalog.Fabric]
	Product Ref[catalog.Product]
}

// FabricValue returns the fabric machine value, empty unless resolved
func (r *ResolvedConfiguration) FabricValue() string {
	if f, ok := r.Fabric.Get(); ok {
		return f.Value
	}
	return ""
}

// Resolver loads the catalog records a configuration points at.
// Records that were deleted resolve as Unresolved instead of failing.
type Resolver struct {
	colors   Finder[catalog.Color]
	sizes    Finder[catalog.Size]
	fabrics  Finder[catalog.Fabric]
	products Finder[catalog.Product]
}

// Finder loads one catalog record by id. The catalog repositories satisfy it.
type Finder[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
}

// NewResolver creates a new Resolver
func NewResolver(
	colors Finder[catalog.Color],
	sizes Finder[catalog.Size],
	fabrics Finder[catalog.Fabric],
	products Finder[catalog.Product],
) *Resolver {
	return &Resolver{colors: colors, sizes: sizes, fabrics: fabrics, products: products}
}

// Resolve joins cfg with its catalog records
func (r *Resolver) Resolve(ctx context.Context, cfg *Configuration) (*ResolvedConfiguration, error) {
	out := &ResolvedConfiguration{Configuration: cfg}
	var err error
	if out.Color, err = resolve(ctx, cfg.Options.ColorID, r.colors.FindByID); err != nil {
		return nil, err
	}
	if out.Size, err = resolve(ctx, cfg.Options.SizeID, r.sizes.FindByID); err != nil {
		return nil, err
	}
	if out.Fabric, err = resolve(ctx, cfg.Options.FabricID, r.fabrics.FindByID); err != nil {
		return nil, err
	}
	if out.Product, err = resolve(ctx, cfg.ProductID(), r.products.FindByID); err != nil {
		return nil, err
	}
	return out, nil
}

func resolve[T any](ctx context.Context, id *uuid.UUID, find func(context.Context, uuid.UUID) (*T, error)) (Ref[T], error) {
	if id == nil || *id == uuid.Nil {
		return Absent[T](), nil
	}
	v, err := find(ctx, *id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Unresolved[T](*id), nil
		}
		return Ref[T]{}, err
	}
	return Resolved(*id, v), nil
}
