package persistence

import (
	"context"
	"testing"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormFabricRepository_SaveAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormFabricRepository(db)
	ctx := context.Background()

	cotton, err := catalog.NewFabric("Cotton", "cotton", decimal.NewFromInt(20000))
	require.NoError(t, err)
	poly, err := catalog.NewFabric("Polyester", "polyester", decimal.NewFromInt(12000))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, cotton))
	require.NoError(t, repo.Save(ctx, poly))

	found, err := repo.FindByID(ctx, cotton.ID)
	require.NoError(t, err)
	assert.Equal(t, "cotton", found.Value)
	assert.True(t, decimal.NewFromInt(20000).Equal(found.Price))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "polyester", all[0].Value, "fabrics are ordered by price")

	exists, err := repo.ExistsByValue(ctx, "cotton")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByValue(ctx, "Cotton")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormColorRepository_FindByIDs(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormColorRepository(db)
	ctx := context.Background()

	red, err := catalog.NewColor("Red", "red", "#ff0000", "bg-red-500")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, red))

	colors, err := repo.FindByIDs(ctx, []uuid.UUID{red.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, colors, 1)
	assert.Equal(t, "bg-red-500", colors[0].TW)

	empty, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormSizeRepository_Delete(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSizeRepository(db)
	ctx := context.Background()

	size, err := catalog.NewSize("Large", "L")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, size))

	require.NoError(t, repo.Delete(ctx, size.ID))

	_, err = repo.FindByID(ctx, size.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, size.ID), shared.ErrNotFound)
}

func TestGormCategoryRepository_ExistsByName(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	cat, err := catalog.NewCategory("Hoodies")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, cat))

	exists, err := repo.ExistsByName(ctx, "hoodies")
	require.NoError(t, err)
	assert.True(t, exists)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGormProductRepository_FindAll(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	categoryID := uuid.New()
	sizeID := uuid.New()
	for i, title := range []string{"Classic Tee", "Zip Hoodie", "Graphic Tee"} {
		in := catalog.ProductInput{
			Title:         title,
			RealPrice:     decimal.NewFromInt(int64(50000 + i*1000)),
			DiscountPrice: decimal.NewFromInt(int64(45000 + i*1000)),
			Images:        []string{"https://cdn.example.com/" + title + ".png"},
		}
		if i != 1 {
			in.CategoryID = &categoryID
			in.AvailableSizes = []uuid.UUID{sizeID}
		}
		p, err := catalog.NewProduct(in)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, p))
	}

	t.Run("search matches title case-insensitively", func(t *testing.T) {
		f := catalog.ProductFilter{Filter: shared.Filter{Search: "tee", Page: 1, PageSize: 10}}
		products, total, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, products, 2)
	})

	t.Run("category filter and paging", func(t *testing.T) {
		f := catalog.ProductFilter{
			Filter:     shared.Filter{Page: 1, PageSize: 1, OrderBy: "real_price", OrderDir: "asc"},
			CategoryID: &categoryID,
		}
		products, total, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, products, 1)
		assert.Equal(t, "Classic Tee", products[0].Title)
		assert.Equal(t, []uuid.UUID{sizeID}, products[0].AvailableSizes)
		assert.Len(t, products[0].Images, 1)
	})

	t.Run("unknown sort field falls back to created_at", func(t *testing.T) {
		f := catalog.ProductFilter{Filter: shared.Filter{OrderBy: "title; DROP TABLE products"}}
		products, total, err := repo.FindAll(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, products, 3)
	})
}
