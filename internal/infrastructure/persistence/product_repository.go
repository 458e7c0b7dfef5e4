package persistence

import (
	"context"
	"strings"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return findOne[models.ProductModel, catalog.Product](ctx, r.db, id)
}

// FindAll returns a page of products and the total count before paging
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products, err := findMany[models.ProductModel, catalog.Product](page(query, filter.Filter, productSortColumns))
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := &models.ProductModel{}
	model.FromDomain(product)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a product. Configurations that selected it keep a null product id.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.ProductModel](ctx, r.db, id)
}

func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	return query
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
