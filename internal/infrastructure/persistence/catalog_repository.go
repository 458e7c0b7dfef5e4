package persistence

import (
	"context"
	"errors"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// domainModel is a persistence model that maps to a domain record D
type domainModel[D any] interface {
	ToDomain() *D
}

// findOne loads a single row by id and maps it to the domain
func findOne[M any, D any, PM interface {
	*M
	domainModel[D]
}](ctx context.Context, db *gorm.DB, id uuid.UUID) (*D, error) {
	var model M
	if err := db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return PM(&model).ToDomain(), nil
}

// findMany runs the query and maps every row
func findMany[M any, D any, PM interface {
	*M
	domainModel[D]
}](query *gorm.DB) ([]D, error) {
	var rows []M
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]D, len(rows))
	for i := range rows {
		out[i] = *PM(&rows[i]).ToDomain()
	}
	return out, nil
}

// deleteByID removes a row, reporting ErrNotFound when nothing matched
func deleteByID[M any](ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	result := db.WithContext(ctx).Delete(new(M), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// existsWhere checks whether any row matches the condition
func existsWhere[M any](ctx context.Context, db *gorm.DB, query string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(M)).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormColorRepository implements catalog.ColorRepository using GORM
type GormColorRepository struct {
	db *gorm.DB
}

// NewGormColorRepository creates a new GormColorRepository
func NewGormColorRepository(db *gorm.DB) *GormColorRepository {
	return &GormColorRepository{db: db}
}

// FindByID finds a color by its ID
func (r *GormColorRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Color, error) {
	return findOne[models.ColorModel, catalog.Color](ctx, r.db, id)
}

// FindAll returns every color ordered by label
func (r *GormColorRepository) FindAll(ctx context.Context) ([]catalog.Color, error) {
	return findMany[models.ColorModel, catalog.Color](r.db.WithContext(ctx).Order("label ASC"))
}

// FindByIDs returns the colors that still exist among ids
func (r *GormColorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Color, error) {
	if len(ids) == 0 {
		return []catalog.Color{}, nil
	}
	return findMany[models.ColorModel, catalog.Color](r.db.WithContext(ctx).Where("id IN ?", ids))
}

// Save creates or updates a color
func (r *GormColorRepository) Save(ctx context.Context, color *catalog.Color) error {
	model := &models.ColorModel{}
	model.FromDomain(color)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a color
func (r *GormColorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.ColorModel](ctx, r.db, id)
}

// ExistsByValue checks whether a color with the value exists
func (r *GormColorRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	return existsWhere[models.ColorModel](ctx, r.db, "value = ?", value)
}

// GormSizeRepository implements catalog.SizeRepository using GORM
type GormSizeRepository struct {
	db *gorm.DB
}

// NewGormSizeRepository creates a new GormSizeRepository
func NewGormSizeRepository(db *gorm.DB) *GormSizeRepository {
	return &GormSizeRepository{db: db}
}

// FindByID finds a size by its ID
func (r *GormSizeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Size, error) {
	return findOne[models.SizeModel, catalog.Size](ctx, r.db, id)
}

// FindAll returns every size in creation order
func (r *GormSizeRepository) FindAll(ctx context.Context) ([]catalog.Size, error) {
	return findMany[models.SizeModel, catalog.Size](r.db.WithContext(ctx).Order("created_at ASC"))
}

// FindByIDs returns the sizes that still exist among ids
func (r *GormSizeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Size, error) {
	if len(ids) == 0 {
		return []catalog.Size{}, nil
	}
	return findMany[models.SizeModel, catalog.Size](r.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at ASC"))
}

// Save creates or updates a size
func (r *GormSizeRepository) Save(ctx context.Context, size *catalog.Size) error {
	model := &models.SizeModel{}
	model.FromDomain(size)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a size
func (r *GormSizeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.SizeModel](ctx, r.db, id)
}

// ExistsByValue checks whether a size with the value exists
func (r *GormSizeRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	return existsWhere[models.SizeModel](ctx, r.db, "value = ?", value)
}

// GormFabricRepository implements catalog.FabricRepository using GORM
type GormFabricRepository struct {
	db *gorm.DB
}

// NewGormFabricRepository creates a new GormFabricRepository
func NewGormFabricRepository(db *gorm.DB) *GormFabricRepository {
	return &GormFabricRepository{db: db}
}

// FindByID finds a fabric by its ID
func (r *GormFabricRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Fabric, error) {
	return findOne[models.FabricModel, catalog.Fabric](ctx, r.db, id)
}

// FindAll returns every fabric ordered by price
func (r *GormFabricRepository) FindAll(ctx context.Context) ([]catalog.Fabric, error) {
	return findMany[models.FabricModel, catalog.Fabric](r.db.WithContext(ctx).Order("price ASC, label ASC"))
}

// FindByIDs returns the fabrics that still exist among ids
func (r *GormFabricRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Fabric, error) {
	if len(ids) == 0 {
		return []catalog.Fabric{}, nil
	}
	return findMany[models.FabricModel, catalog.Fabric](r.db.WithContext(ctx).Where("id IN ?", ids).Order("price ASC"))
}

// Save creates or updates a fabric
func (r *GormFabricRepository) Save(ctx context.Context, fabric *catalog.Fabric) error {
	model := &models.FabricModel{}
	model.FromDomain(fabric)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a fabric
func (r *GormFabricRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.FabricModel](ctx, r.db, id)
}

// ExistsByValue checks whether a fabric with the value exists
func (r *GormFabricRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	return existsWhere[models.FabricModel](ctx, r.db, "value = ?", value)
}

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return findOne[models.CategoryModel, catalog.Category](ctx, r.db, id)
}

// FindAll returns every category ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	return findMany[models.CategoryModel, catalog.Category](r.db.WithContext(ctx).Order("name ASC"))
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	model := &models.CategoryModel{}
	model.FromDomain(category)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID[models.CategoryModel](ctx, r.db, id)
}

// ExistsByName checks whether a category with the name exists
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return existsWhere[models.CategoryModel](ctx, r.db, "LOWER(name) = LOWER(?)", name)
}

// Ensure interfaces are implemented
var (
	_ catalog.ColorRepository    = (*GormColorRepository)(nil)
	_ catalog.SizeRepository     = (*GormSizeRepository)(nil)
	_ catalog.FabricRepository   = (*GormFabricRepository)(nil)
	_ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
)
