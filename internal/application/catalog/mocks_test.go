package catalog

import (
	"context"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockColorRepository is a mock implementation of catalog.ColorRepository
type MockColorRepository struct {
	mock.Mock
}

func (m *MockColorRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Color, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Color), args.Error(1)
}

func (m *MockColorRepository) FindAll(ctx context.Context) ([]catalog.Color, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Color), args.Error(1)
}

func (m *MockColorRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Color, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Color), args.Error(1)
}

func (m *MockColorRepository) Save(ctx context.Context, color *catalog.Color) error {
	return m.Called(ctx, color).Error(0)
}

func (m *MockColorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockColorRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	args := m.Called(ctx, value)
	return args.Bool(0), args.Error(1)
}

// MockSizeRepository is a mock implementation of catalog.SizeRepository
type MockSizeRepository struct {
	mock.Mock
}

func (m *MockSizeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Size, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Size), args.Error(1)
}

func (m *MockSizeRepository) FindAll(ctx context.Context) ([]catalog.Size, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Size), args.Error(1)
}

func (m *MockSizeRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Size, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Size), args.Error(1)
}

func (m *MockSizeRepository) Save(ctx context.Context, size *catalog.Size) error {
	return m.Called(ctx, size).Error(0)
}

func (m *MockSizeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSizeRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	args := m.Called(ctx, value)
	return args.Bool(0), args.Error(1)
}

// MockFabricRepository is a mock implementation of catalog.FabricRepository
type MockFabricRepository struct {
	mock.Mock
}

func (m *MockFabricRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Fabric, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Fabric), args.Error(1)
}

func (m *MockFabricRepository) FindAll(ctx context.Context) ([]catalog.Fabric, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Fabric), args.Error(1)
}

func (m *MockFabricRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Fabric, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Fabric), args.Error(1)
}

func (m *MockFabricRepository) Save(ctx context.Context, fabric *catalog.Fabric) error {
	return m.Called(ctx, fabric).Error(0)
}

func (m *MockFabricRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFabricRepository) ExistsByValue(ctx context.Context, value string) (bool, error) {
	args := m.Called(ctx, value)
	return args.Bool(0), args.Error(1)
}

// MockCategoryRepository is a mock implementation of catalog.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type mocks struct {
	colors     *MockColorRepository
	sizes      *MockSizeRepository
	fabrics    *MockFabricRepository
	categories *MockCategoryRepository
	products   *MockProductRepository
}

func newTestService() (*Service, *mocks) {
	m := &mocks{
		colors:     new(MockColorRepository),
		sizes:      new(MockSizeRepository),
		fabrics:    new(MockFabricRepository),
		categories: new(MockCategoryRepository),
		products:   new(MockProductRepository),
	}
	svc := NewService(Repositories{
		Colors:     m.colors,
		Sizes:      m.sizes,
		Fabrics:    m.fabrics,
		Categories: m.categories,
		Products:   m.products,
	}, nil)
	return svc, m
}
