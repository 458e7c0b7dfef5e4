package catalog

import (
	"regexp"
	"strings"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color is a garment color option
type Color struct {
	shared.BaseEntity
	Label string
	Value string
	Hex   string
	TW    string // utility class used by the storefront swatch
}

// NewColor creates a new color option
func NewColor(label, value, hex, tw string) (*Color, error) {
	label, value = strings.TrimSpace(label), strings.TrimSpace(value)
	if err := validateLabelValue("color", label, value); err != nil {
		return nil, err
	}
	if hex != "" && !hexColorPattern.MatchString(hex) {
		return nil, shared.NewDomainError("INVALID_HEX", "Color hex must look like #RRGGBB")
	}
	return &Color{
		BaseEntity: shared.NewBaseEntity(),
		Label:      label,
		Value:      value,
		Hex:        hex,
		TW:         strings.TrimSpace(tw),
	}, nil
}

// Size is a garment size option
type Size struct {
	shared.BaseEntity
	Label string
	Value string
}

// NewSize creates a new size option
func NewSize(label, value string) (*Size, error) {
	label, value = strings.TrimSpace(label), strings.TrimSpace(value)
	if err := validateLabelValue("size", label, value); err != nil {
		return nil, err
	}
	return &Size{
		BaseEntity: shared.NewBaseEntity(),
		Label:      label,
		Value:      value,
	}, nil
}

// Fabric is a fabric option. Value is the machine key used by the pricing
// surcharge table; Price is the amount shown next to the option.
type Fabric struct {
	shared.BaseEntity
	Label string
	Value string
	Price decimal.Decimal
}

// NewFabric creates a new fabric option
func NewFabric(label, value string, price decimal.Decimal) (*Fabric, error) {
	label, value = strings.TrimSpace(label), strings.TrimSpace(value)
	if err := validateLabelValue("fabric", label, value); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Fabric price cannot be negative")
	}
	return &Fabric{
		BaseEntity: shared.NewBaseEntity(),
		Label:      label,
		Value:      value,
		Price:      price,
	}, nil
}

// Category groups products in the shop
type Category struct {
	shared.BaseEntity
	Name string
}

// NewCategory creates a new category
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

func validateLabelValue(kind, label, value string) error {
	if label == "" {
		return shared.NewDomainError("INVALID_LABEL", "The "+kind+" label cannot be empty")
	}
	if value == "" {
		return shared.NewDomainError("INVALID_VALUE", "The "+kind+" value cannot be empty")
	}
	if len(label) > 100 || len(value) > 50 {
		return shared.NewDomainError("INVALID_VALUE", "The "+kind+" label or value is too long")
	}
	return nil
}
