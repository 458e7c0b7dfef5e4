package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/infrastructure/persistence"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Catalog is a seeded set of catalog records.
type Catalog struct {
	Color    *catalog.Color
	Size     *catalog.Size
	Fabric   *catalog.Fabric
	Category *catalog.Category
	Product  *catalog.Product
}

// CatalogSeed controls the seeded fabric and product prices (minor units).
type CatalogSeed struct {
	FabricValue   string
	ProductPrice  decimal.Decimal
	DiscountPrice decimal.Decimal
}

// SeedCatalog stores one record of each catalog kind with fake labels.
func SeedCatalog(t *testing.T, db *gorm.DB, seed CatalogSeed) Catalog {
	t.Helper()

	ctx := context.Background()
	f := gofakeit.New(0)
	if seed.FabricValue == "" {
		seed.FabricValue = "cotton"
	}
	if seed.ProductPrice.IsZero() {
		seed.ProductPrice = decimal.NewFromInt(int64(f.Number(500, 5000)) * 100)
	}
	suffix := strings.ToLower(f.LetterN(6))

	color, err := catalog.NewColor(f.Color(), "color-"+suffix, f.HexColor(), "bg-zinc-900")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormColorRepository(db).Save(ctx, color))

	size, err := catalog.NewSize(strings.ToUpper(f.RandomString([]string{"s", "m", "l", "xl"})), "size-"+suffix)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSizeRepository(db).Save(ctx, size))

	fabric, err := catalog.NewFabric(strings.ToUpper(seed.FabricValue[:1])+seed.FabricValue[1:], seed.FabricValue, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormFabricRepository(db).Save(ctx, fabric))

	category, err := catalog.NewCategory(f.ProductCategory() + " " + suffix)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormCategoryRepository(db).Save(ctx, category))

	categoryID := category.ID
	product, err := catalog.NewProduct(catalog.ProductInput{
		Title:            f.ProductName(),
		Description:      f.Sentence(8),
		CategoryID:       &categoryID,
		RealPrice:        seed.ProductPrice,
		DiscountPrice:    seed.DiscountPrice,
		Images:           []string{"https://cdn.example.com/" + uuid.NewString() + ".png"},
		AvailableSizes:   []uuid.UUID{size.ID},
		AvailableFabrics: []uuid.UUID{fabric.ID},
	})
	require.NoError(t, err)
	product.ClearDomainEvents()
	require.NoError(t, persistence.NewGormProductRepository(db).Save(ctx, product))

	return Catalog{Color: color, Size: size, Fabric: fabric, Category: category, Product: product}
}
