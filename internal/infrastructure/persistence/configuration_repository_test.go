package persistence

import (
	"context"
	"testing"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConfigurationRepository_CustomRoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormConfigurationRepository(db)
	ctx := context.Background()

	cfg, err := design.NewCustom("https://cdn.example.com/raw.png", 800, 600)
	require.NoError(t, err)
	fabricID := uuid.New()
	cfg.UpdateOptions(design.Options{FabricID: &fabricID})
	require.NoError(t, cfg.AttachArtwork("https://cdn.example.com/crop.png", design.Placement{Width: 400, Height: 300, X: 10, Y: 20}))
	require.NoError(t, repo.Save(ctx, cfg))

	loaded, err := repo.FindByID(ctx, cfg.ID)
	require.NoError(t, err)
	assert.Equal(t, design.KindCustom, loaded.Kind())
	custom, ok := loaded.Variant().(design.Custom)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/crop.png", custom.CroppedImageURL)
	assert.Equal(t, design.Placement{Width: 400, Height: 300, X: 10, Y: 20}, custom.Placement)
	assert.Equal(t, &fabricID, loaded.Options.FabricID)
	assert.Equal(t, cfg.Version, loaded.Version)
}

func TestGormConfigurationRepository_NotFound(t *testing.T) {
	repo := NewGormConfigurationRepository(newSQLiteDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// A configuration keeps its fabric id after the fabric row is deleted; the
// resolver reports the reference as unresolved.
func TestGormConfigurationRepository_DanglingFabricResolvesUnresolved(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	configs := NewGormConfigurationRepository(db)
	fabrics := NewGormFabricRepository(db)
	products := NewGormProductRepository(db)

	fabric, err := catalog.NewFabric("Cotton", "cotton", decimal.NewFromInt(20000))
	require.NoError(t, err)
	require.NoError(t, fabrics.Save(ctx, fabric))

	product, err := catalog.NewProduct(catalog.ProductInput{
		Title:         "Classic Tee",
		RealPrice:     decimal.NewFromInt(50000),
		DiscountPrice: decimal.NewFromInt(45000),
	})
	require.NoError(t, err)
	require.NoError(t, products.Save(ctx, product))

	cfg, err := design.NewCatalogSelection(product.ID, design.Options{FabricID: &fabric.ID}, "")
	require.NoError(t, err)
	require.NoError(t, configs.Save(ctx, cfg))

	require.NoError(t, fabrics.Delete(ctx, fabric.ID))

	loaded, err := configs.FindByID(ctx, cfg.ID)
	require.NoError(t, err)

	resolver := design.NewResolver(
		NewGormColorRepository(db),
		NewGormSizeRepository(db),
		fabrics,
		products,
	)
	resolved, err := resolver.Resolve(ctx, loaded)
	require.NoError(t, err)
	assert.Equal(t, design.RefUnresolved, resolved.Fabric.State())
	assert.Equal(t, design.RefAbsent, resolved.Color.State())
	assert.Equal(t, design.RefResolved, resolved.Product.State())
	assert.Equal(t, design.NotAvailable, resolved.Fabric.Display(func(f *catalog.Fabric) string { return f.Label }))
}
