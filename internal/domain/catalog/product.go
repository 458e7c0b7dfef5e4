package catalog

import (
	"strings"
	"time"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeProduct is the aggregate type for products
const AggregateTypeProduct = "Product"

// Product is a ready-made catalog item customers can order as-is.
// Prices are integer minor units.
type Product struct {
	shared.BaseAggregateRoot
	Title            string
	Description      string
	Details          string
	CategoryID       *uuid.UUID
	RealPrice        decimal.Decimal
	DiscountPrice    decimal.Decimal
	Images           []string
	AvailableSizes   []uuid.UUID
	AvailableFabrics []uuid.UUID
}

// ProductInput carries the editable fields of a product
type ProductInput struct {
	Title            string
	Description      string
	Details          string
	CategoryID       *uuid.UUID
	RealPrice        decimal.Decimal
	DiscountPrice    decimal.Decimal
	Images           []string
	AvailableSizes   []uuid.UUID
	AvailableFabrics []uuid.UUID
}

// NewProduct creates a new product
func NewProduct(in ProductInput) (*Product, error) {
	p := &Product{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// Update replaces the editable fields of the product
func (p *Product) Update(in ProductInput) error {
	oldReal, oldDiscount := p.RealPrice, p.DiscountPrice
	if err := p.apply(in); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	if !oldReal.Equal(p.RealPrice) || !oldDiscount.Equal(p.DiscountPrice) {
		p.AddDomainEvent(NewProductPriceChangedEvent(p, oldReal, oldDiscount))
	}
	return nil
}

func (p *Product) apply(in ProductInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot exceed 200 characters")
	}
	if in.RealPrice.IsNegative() || in.DiscountPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product prices cannot be negative")
	}
	if !in.RealPrice.IsZero() && in.DiscountPrice.GreaterThan(in.RealPrice) {
		return shared.NewDomainError("INVALID_PRICE", "Discount price cannot exceed the real price")
	}
	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	p.Title = title
	p.Description = strings.TrimSpace(in.Description)
	p.Details = strings.TrimSpace(in.Details)
	p.CategoryID = in.CategoryID
	p.RealPrice = in.RealPrice
	p.DiscountPrice = in.DiscountPrice
	p.Images = images
	p.AvailableSizes = dedupeIDs(in.AvailableSizes)
	p.AvailableFabrics = dedupeIDs(in.AvailableFabrics)
	return nil
}

// EffectivePrice returns the price a customer pays for the product before
// fabric surcharges. The discount price is authoritative; a zero discount
// falls back to the real price. A product with neither is not sellable.
func (p *Product) EffectivePrice() (decimal.Decimal, error) {
	if p.DiscountPrice.IsPositive() {
		return p.DiscountPrice, nil
	}
	if p.RealPrice.IsPositive() {
		return p.RealPrice, nil
	}
	return decimal.Zero, shared.NewDomainError("VALIDATION_ERROR", "Product has no price")
}

// PrimaryImage returns the first product image, or empty
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// OffersSize reports whether the size is listed for the product.
// An empty list means every size is offered.
func (p *Product) OffersSize(id uuid.UUID) bool {
	return containsOrEmpty(p.AvailableSizes, id)
}

// OffersFabric reports whether the fabric is listed for the product.
// An empty list means every fabric is offered.
func (p *Product) OffersFabric(id uuid.UUID) bool {
	return containsOrEmpty(p.AvailableFabrics, id)
}

func containsOrEmpty(ids []uuid.UUID, id uuid.UUID) bool {
	if len(ids) == 0 {
		return true
	}
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
