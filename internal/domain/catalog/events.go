package catalog

import (
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeProductCreated       = "ProductCreated"
	EventTypeProductPriceChanged  = "ProductPriceChanged"
	EventTypeCatalogRecordDeleted = "CatalogRecordDeleted"
)

// ProductCreatedEvent is raised when a product is added to the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID  `json:"product_id"`
	Title      string     `json:"title"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Title:           p.Title,
		CategoryID:      p.CategoryID,
	}
}

// ProductPriceChangedEvent is raised when a product's prices change.
// Existing orders keep their amount snapshot.
type ProductPriceChangedEvent struct {
	shared.BaseDomainEvent
	ProductID        uuid.UUID       `json:"product_id"`
	OldRealPrice     decimal.Decimal `json:"old_real_price"`
	OldDiscountPrice decimal.Decimal `json:"old_discount_price"`
	NewRealPrice     decimal.Decimal `json:"new_real_price"`
	NewDiscountPrice decimal.Decimal `json:"new_discount_price"`
}

// NewProductPriceChangedEvent creates a new ProductPriceChangedEvent
func NewProductPriceChangedEvent(p *Product, oldReal, oldDiscount decimal.Decimal) *ProductPriceChangedEvent {
	return &ProductPriceChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeProductPriceChanged, AggregateTypeProduct, p.ID),
		ProductID:        p.ID,
		OldRealPrice:     oldReal,
		OldDiscountPrice: oldDiscount,
		NewRealPrice:     p.RealPrice,
		NewDiscountPrice: p.DiscountPrice,
	}
}

// RecordKind names a catalog taxonomy
type RecordKind string

const (
	KindColor    RecordKind = "color"
	KindSize     RecordKind = "size"
	KindFabric   RecordKind = "fabric"
	KindCategory RecordKind = "category"
	KindProduct  RecordKind = "product"
)

// CatalogRecordDeletedEvent is raised when an admin removes a catalog record.
// Configurations that referenced it resolve the reference as unresolved.
type CatalogRecordDeletedEvent struct {
	shared.BaseDomainEvent
	Kind     RecordKind `json:"kind"`
	RecordID uuid.UUID  `json:"record_id"`
}

// NewCatalogRecordDeletedEvent creates a new CatalogRecordDeletedEvent
func NewCatalogRecordDeletedEvent(kind RecordKind, id uuid.UUID) *CatalogRecordDeletedEvent {
	return &CatalogRecordDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCatalogRecordDeleted, string(kind), id),
		Kind:            kind,
		RecordID:        id,
	}
}
