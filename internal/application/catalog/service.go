package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// CacheKeyPrefix namespaces every catalog cache entry
	CacheKeyPrefix = "catalog:"
	// DefaultCacheTTL bounds how long a catalog read may be stale
	DefaultCacheTTL = 5 * time.Minute

	keyColors     = CacheKeyPrefix + "colors"
	keySizes      = CacheKeyPrefix + "sizes"
	keyFabrics    = CacheKeyPrefix + "fabrics"
	keyCategories = CacheKeyPrefix + "categories"
	keyProduct    = CacheKeyPrefix + "product:"
)

// Cache is the read-through store used for catalog reads
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
}

// Repositories groups the catalog repositories
type Repositories struct {
	Colors     catalog.ColorRepository
	Sizes      catalog.SizeRepository
	Fabrics    catalog.FabricRepository
	Categories catalog.CategoryRepository
	Products   catalog.ProductRepository
}

// Service handles catalog administration and shop reads
type Service struct {
	colors         catalog.ColorRepository
	sizes          catalog.SizeRepository
	fabrics        catalog.FabricRepository
	categories     catalog.CategoryRepository
	products       catalog.ProductRepository
	cache          Cache
	cacheTTL       time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a new catalog Service
func NewService(repos Repositories, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		colors:     repos.Colors,
		sizes:      repos.Sizes,
		fabrics:    repos.Fabrics,
		categories: repos.Categories,
		products:   repos.Products,
		cacheTTL:   DefaultCacheTTL,
		logger:     logger,
	}
}

// SetCache enables read-through caching. Writes invalidate the whole catalog.
func (s *Service) SetCache(cache Cache, ttl time.Duration) {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

// SetEventPublisher sets the event publisher
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// ListColors returns every color option
func (s *Service) ListColors(ctx context.Context) ([]ColorResponse, error) {
	return cached(ctx, s, keyColors, func() ([]ColorResponse, error) {
		colors, err := s.colors.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapSlice(colors, ToColorResponse), nil
	})
}

// CreateColor adds a color option
func (s *Service) CreateColor(ctx context.Context, req CreateColorRequest) (*ColorResponse, error) {
	color, err := catalog.NewColor(req.Label, req.Value, req.Hex, req.TW)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, s.colors.ExistsByValue, color.Value, "A color with this value already exists"); err != nil {
		return nil, err
	}
	if err := s.colors.Save(ctx, color); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := ToColorResponse(color)
	return &resp, nil
}

// DeleteColor removes a color option
func (s *Service) DeleteColor(ctx context.Context, id uuid.UUID) error {
	return s.deleteRecord(ctx, catalog.KindColor, id, s.colors.Delete)
}

// ListSizes returns every size option
func (s *Service) ListSizes(ctx context.Context) ([]SizeResponse, error) {
	return cached(ctx, s, keySizes, func() ([]SizeResponse, error) {
		sizes, err := s.sizes.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapSlice(sizes, ToSizeResponse), nil
	})
}

// CreateSize adds a size option
func (s *Service) CreateSize(ctx context.Context, req CreateSizeRequest) (*SizeResponse, error) {
	size, err := catalog.NewSize(req.Label, req.Value)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, s.sizes.ExistsByValue, size.Value, "A size with this value already exists"); err != nil {
		return nil, err
	}
	if err := s.sizes.Save(ctx, size); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := ToSizeResponse(size)
	return &resp, nil
}

// DeleteSize removes a size option
func (s *Service) DeleteSize(ctx context.Context, id uuid.UUID) error {
	return s.deleteRecord(ctx, catalog.KindSize, id, s.sizes.Delete)
}

// ListFabrics returns every fabric option
func (s *Service) ListFabrics(ctx context.Context) ([]FabricResponse, error) {
	return cached(ctx, s, keyFabrics, func() ([]FabricResponse, error) {
		fabrics, err := s.fabrics.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapSlice(fabrics, ToFabricResponse), nil
	})
}

// CreateFabric adds a fabric option
func (s *Service) CreateFabric(ctx context.Context, req CreateFabricRequest) (*FabricResponse, error) {
	fabric, err := catalog.NewFabric(req.Label, req.Value, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, s.fabrics.ExistsByValue, fabric.Value, "A fabric with this value already exists"); err != nil {
		return nil, err
	}
	if err := s.fabrics.Save(ctx, fabric); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := ToFabricResponse(fabric)
	return &resp, nil
}

// DeleteFabric removes a fabric option
func (s *Service) DeleteFabric(ctx context.Context, id uuid.UUID) error {
	return s.deleteRecord(ctx, catalog.KindFabric, id, s.fabrics.Delete)
}

// ListCategories returns every category
func (s *Service) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	return cached(ctx, s, keyCategories, func() ([]CategoryResponse, error) {
		categories, err := s.categories.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return mapSlice(categories, ToCategoryResponse), nil
	})
}

// CreateCategory adds a category
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, s.categories.ExistsByName, category.Name, "A category with this name already exists"); err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// DeleteCategory removes a category. Its products become uncategorized.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.deleteRecord(ctx, catalog.KindCategory, id, s.categories.Delete)
}

// CreateProduct adds a product
func (s *Service) CreateProduct(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	if err := s.validateProductRefs(ctx, req); err != nil {
		return nil, err
	}
	product, err := catalog.NewProduct(req.toInput())
	if err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.publish(ctx, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdateProduct replaces a product's editable fields
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateProductRefs(ctx, req); err != nil {
		return nil, err
	}
	if err := product.Update(req.toInput()); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.publish(ctx, product)
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct returns a product with its size and fabric options.
// Options deleted since the product was saved are left out.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetailResponse, error) {
	detail, err := cached(ctx, s, keyProduct+id.String(), func() (ProductDetailResponse, error) {
		product, err := s.products.FindByID(ctx, id)
		if err != nil {
			return ProductDetailResponse{}, err
		}
		return s.productDetail(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListProducts returns a page of products
func (s *Service) ListProducts(ctx context.Context, filter ProductListFilter) (*ProductListResponse, error) {
	f := catalog.ProductFilter{Filter: shared.DefaultFilter()}
	if filter.CategoryID != "" {
		categoryID, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Invalid category id")
		}
		f.CategoryID = &categoryID
	}
	f.Search = filter.Search
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}

	products, total, err := s.products.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ProductListResponse{
		Items:    mapSlice(products, ToProductResponse),
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

// DeleteProduct removes a product. Configurations that picked it keep
// working with the product shown as unavailable.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.deleteRecord(ctx, catalog.KindProduct, id, s.products.Delete)
}

func (s *Service) productDetail(ctx context.Context, product *catalog.Product) (ProductDetailResponse, error) {
	detail := ProductDetailResponse{
		ProductResponse: ToProductResponse(product),
		Sizes:           []SizeResponse{},
		Fabrics:         []FabricResponse{},
	}
	if product.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *product.CategoryID)
		switch {
		case err == nil:
			c := ToCategoryResponse(category)
			detail.Category = &c
		case !errors.Is(err, shared.ErrNotFound):
			return ProductDetailResponse{}, err
		}
	}
	if len(product.AvailableSizes) > 0 {
		sizes, err := s.sizes.FindByIDs(ctx, product.AvailableSizes)
		if err != nil {
			return ProductDetailResponse{}, err
		}
		detail.Sizes = mapSlice(sizes, ToSizeResponse)
	}
	if len(product.AvailableFabrics) > 0 {
		fabrics, err := s.fabrics.FindByIDs(ctx, product.AvailableFabrics)
		if err != nil {
			return ProductDetailResponse{}, err
		}
		detail.Fabrics = mapSlice(fabrics, ToFabricResponse)
	}
	return detail, nil
}

func (s *Service) validateProductRefs(ctx context.Context, req ProductRequest) error {
	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return err
		}
	}
	if len(req.AvailableSizes) > 0 {
		sizes, err := s.sizes.FindByIDs(ctx, req.AvailableSizes)
		if err != nil {
			return err
		}
		if len(sizes) != countDistinct(req.AvailableSizes) {
			return shared.NewDomainError("INVALID_SIZE", "One or more sizes do not exist")
		}
	}
	if len(req.AvailableFabrics) > 0 {
		fabrics, err := s.fabrics.FindByIDs(ctx, req.AvailableFabrics)
		if err != nil {
			return err
		}
		if len(fabrics) != countDistinct(req.AvailableFabrics) {
			return shared.NewDomainError("INVALID_FABRIC", "One or more fabrics do not exist")
		}
	}
	return nil
}

func (s *Service) ensureUnique(ctx context.Context, exists func(context.Context, string) (bool, error), key, message string) error {
	found, err := exists(ctx, key)
	if err != nil {
		return err
	}
	if found {
		return shared.NewDomainError("ALREADY_EXISTS", message)
	}
	return nil
}

func (s *Service) deleteRecord(ctx context.Context, kind catalog.RecordKind, id uuid.UUID, del func(context.Context, uuid.UUID) error) error {
	if err := del(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, catalog.NewCatalogRecordDeletedEvent(kind, id)); err != nil {
			s.logger.Warn("failed to publish catalog deletion", zap.String("kind", string(kind)), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, product *catalog.Product) {
	if err := shared.PublishPending(ctx, s.eventPublisher, product); err != nil {
		s.logger.Warn("failed to publish product events", zap.String("product_id", product.ID.String()), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, CacheKeyPrefix); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

// cached serves key from the cache, loading and storing it on a miss.
// Cache failures degrade to a direct load.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	if s.cache != nil {
		var hit T
		ok, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return hit, nil
		}
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

func countDistinct(ids []uuid.UUID) int {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id != uuid.Nil {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}
