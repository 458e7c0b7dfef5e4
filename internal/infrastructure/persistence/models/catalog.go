package models

import (
	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ColorModel is the persistence model for color options
type ColorModel struct {
	BaseModel
	Label string `gorm:"type:varchar(100);not null"`
	Value string `gorm:"type:varchar(50);not null;uniqueIndex:idx_colors_value"`
	Hex   string `gorm:"type:varchar(7)"`
	TW    string `gorm:"column:tw;type:varchar(100)"`
}

// TableName returns the table name for GORM
func (ColorModel) TableName() string {
	return "colors"
}

// ToDomain converts the persistence model to a domain Color
func (m *ColorModel) ToDomain() *catalog.Color {
	return &catalog.Color{
		BaseEntity: m.entity(),
		Label:      m.Label,
		Value:      m.Value,
		Hex:        m.Hex,
		TW:         m.TW,
	}
}

// FromDomain populates the persistence model from a domain Color
func (m *ColorModel) FromDomain(c *catalog.Color) {
	m.setEntity(c.BaseEntity)
	m.Label = c.Label
	m.Value = c.Value
	m.Hex = c.Hex
	m.TW = c.TW
}

// SizeModel is the persistence model for size options
type SizeModel struct {
	BaseModel
	Label string `gorm:"type:varchar(100);not null"`
	Value string `gorm:"type:varchar(50);not null;uniqueIndex:idx_sizes_value"`
}

// TableName returns the table name for GORM
func (SizeModel) TableName() string {
	return "sizes"
}

// ToDomain converts the persistence model to a domain Size
func (m *SizeModel) ToDomain() *catalog.Size {
	return &catalog.Size{BaseEntity: m.entity(), Label: m.Label, Value: m.Value}
}

// FromDomain populates the persistence model from a domain Size
func (m *SizeModel) FromDomain(s *catalog.Size) {
	m.setEntity(s.BaseEntity)
	m.Label = s.Label
	m.Value = s.Value
}

// FabricModel is the persistence model for fabric options
type FabricModel struct {
	BaseModel
	Label string          `gorm:"type:varchar(100);not null"`
	Value string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_fabrics_value"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (FabricModel) TableName() string {
	return "fabrics"
}

// ToDomain converts the persistence model to a domain Fabric
func (m *FabricModel) ToDomain() *catalog.Fabric {
	return &catalog.Fabric{BaseEntity: m.entity(), Label: m.Label, Value: m.Value, Price: m.Price}
}

// FromDomain populates the persistence model from a domain Fabric
func (m *FabricModel) FromDomain(f *catalog.Fabric) {
	m.setEntity(f.BaseEntity)
	m.Label = f.Label
	m.Value = f.Value
	m.Price = f.Price
}

// CategoryModel is the persistence model for product categories
type CategoryModel struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:idx_categories_name"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{BaseEntity: m.entity(), Name: m.Name}
}

// FromDomain populates the persistence model from a domain Category
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.setEntity(c.BaseEntity)
	m.Name = c.Name
}

// ProductModel is the persistence model for catalog products.
// Images and option lists are JSON columns.
type ProductModel struct {
	AggregateModel
	Title            string                         `gorm:"type:varchar(200);not null"`
	Description      string                         `gorm:"type:text"`
	Details          string                         `gorm:"type:text"`
	CategoryID       *uuid.UUID                     `gorm:"type:uuid;index"`
	RealPrice        decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountPrice    decimal.Decimal                `gorm:"type:decimal(12,2);not null;default:0"`
	Images           datatypes.JSONSlice[string]    `gorm:"not null"`
	AvailableSizes   datatypes.JSONSlice[uuid.UUID] `gorm:"not null"`
	AvailableFabrics datatypes.JSONSlice[uuid.UUID] `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.aggregate(),
		Title:             m.Title,
		Description:       m.Description,
		Details:           m.Details,
		CategoryID:        m.CategoryID,
		RealPrice:         m.RealPrice,
		DiscountPrice:     m.DiscountPrice,
		Images:            append([]string(nil), m.Images...),
		AvailableSizes:    append([]uuid.UUID(nil), m.AvailableSizes...),
		AvailableFabrics:  append([]uuid.UUID(nil), m.AvailableFabrics...),
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.setAggregate(p.BaseAggregateRoot)
	m.Title = p.Title
	m.Description = p.Description
	m.Details = p.Details
	m.CategoryID = p.CategoryID
	m.RealPrice = p.RealPrice
	m.DiscountPrice = p.DiscountPrice
	m.Images = datatypes.NewJSONSlice(nonNil(p.Images))
	m.AvailableSizes = datatypes.NewJSONSlice(nonNil(p.AvailableSizes))
	m.AvailableFabrics = datatypes.NewJSONSlice(nonNil(p.AvailableFabrics))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
