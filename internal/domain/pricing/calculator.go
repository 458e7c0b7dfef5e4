// Package pricing turns a resolved configuration into an amount.
// Amounts are integer minor units held in decimal.Decimal.
package pricing

import (
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SurchargeTable maps a fabric machine value to its price delta.
// Keys match exactly; lookups are case-sensitive.
type SurchargeTable map[string]decimal.Decimal

// Lookup returns the surcharge for value, zero when unknown
func (t SurchargeTable) Lookup(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	if s, ok := t[value]; ok {
		return s
	}
	return decimal.Zero
}

// Quote is a price breakdown
type Quote struct {
	Base            decimal.Decimal
	FabricSurcharge decimal.Decimal
	Delivery        decimal.Decimal
	Total           decimal.Decimal
}

// Calculator prices configurations. It holds no state besides its tables.
type Calculator struct {
	BasePrice      decimal.Decimal
	Surcharges     SurchargeTable
	DeliveryCharge decimal.Decimal
}

// NewCalculator creates a new Calculator
func NewCalculator(basePrice decimal.Decimal, surcharges SurchargeTable, delivery decimal.Decimal) *Calculator {
	table := make(SurchargeTable, len(surcharges))
	for k, v := range surcharges {
		table[k] = v
	}
	return &Calculator{BasePrice: basePrice, Surcharges: table, DeliveryCharge: delivery}
}

// Compute prices a resolved configuration.
// Custom designs start from BasePrice, catalog selections from the product's
// effective price. Absent, deleted or unknown fabrics add nothing.
func (c *Calculator) Compute(cfg *design.ResolvedConfiguration) (Quote, error) {
	if cfg == nil || cfg.Configuration == nil {
		return Quote{}, shared.NewDomainError("VALIDATION_ERROR", "Configuration is required")
	}

	var base decimal.Decimal
	switch cfg.Variant().(type) {
	case design.Custom:
		base = c.BasePrice
	case design.CatalogSelection:
		product, ok := cfg.Product.Get()
		if !ok {
			return Quote{}, shared.NewDomainError("VALIDATION_ERROR", "Selected product is no longer available")
		}
		price, err := product.EffectivePrice()
		if err != nil {
			return Quote{}, err
		}
		base = price
	default:
		return Quote{}, shared.NewDomainError("VALIDATION_ERROR", "Configuration has no design")
	}

	surcharge := c.Surcharges.Lookup(cfg.FabricValue())
	delivery := c.DeliveryCharge
	if delivery.IsNegative() {
		delivery = decimal.Zero
	}
	return Quote{
		Base:            base,
		FabricSurcharge: surcharge,
		Delivery:        delivery,
		Total:           base.Add(surcharge).Add(delivery),
	}, nil
}
