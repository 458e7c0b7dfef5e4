package catalog

import (
	"time"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateColorRequest represents a request to add a color option
type CreateColorRequest struct {
	Label string `json:"label" binding:"required,min=1,max=100"`
	Value string `json:"value" binding:"required,min=1,max=50"`
	Hex   string `json:"hex" binding:"omitempty,hexcolor"`
	TW    string `json:"tw" binding:"max=100"`
}

// CreateSizeRequest represents a request to add a size option
type CreateSizeRequest struct {
	Label string `json:"label" binding:"required,min=1,max=100"`
	Value string `json:"value" binding:"required,min=1,max=50"`
}

// CreateFabricRequest represents a request to add a fabric option
type CreateFabricRequest struct {
	Label string          `json:"label" binding:"required,min=1,max=100"`
	Value string          `json:"value" binding:"required,min=1,max=50"`
	Price decimal.Decimal `json:"price"`
}

// CreateCategoryRequest represents a request to add a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// ProductRequest represents a request to create or replace a product
type ProductRequest struct {
	Title            string          `json:"title" binding:"required,min=1,max=200"`
	Description      string          `json:"description" binding:"max=5000"`
	Details          string          `json:"details" binding:"max=5000"`
	CategoryID       *uuid.UUID      `json:"categoryId"`
	RealPrice        decimal.Decimal `json:"realPrice"`
	DiscountPrice    decimal.Decimal `json:"discountPrice"`
	Images           []string        `json:"images" binding:"max=10,dive,url"`
	AvailableSizes   []uuid.UUID     `json:"availableSizes"`
	AvailableFabrics []uuid.UUID     `json:"availableFabrics"`
}

func (r ProductRequest) toInput() catalog.ProductInput {
	return catalog.ProductInput{
		Title:            r.Title,
		Description:      r.Description,
		Details:          r.Details,
		CategoryID:       r.CategoryID,
		RealPrice:        r.RealPrice,
		DiscountPrice:    r.DiscountPrice,
		Images:           r.Images,
		AvailableSizes:   r.AvailableSizes,
		AvailableFabrics: r.AvailableFabrics,
	}
}

// ProductListFilter represents query parameters for listing products
type ProductListFilter struct {
	Search     string `form:"search"`
	CategoryID string `form:"categoryId" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by" binding:"omitempty,oneof=title created_at discount_price real_price"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ColorResponse represents a color option in API responses
type ColorResponse struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Value string    `json:"value"`
	Hex   string    `json:"hex"`
	TW    string    `json:"tw"`
}

// SizeResponse represents a size option in API responses
type SizeResponse struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Value string    `json:"value"`
}

// FabricResponse represents a fabric option in API responses
type FabricResponse struct {
	ID    uuid.UUID       `json:"id"`
	Label string          `json:"label"`
	Value string          `json:"value"`
	Price decimal.Decimal `json:"price"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ProductResponse represents a product in listings
type ProductResponse struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Details          string          `json:"details"`
	CategoryID       *uuid.UUID      `json:"categoryId"`
	RealPrice        decimal.Decimal `json:"realPrice"`
	DiscountPrice    decimal.Decimal `json:"discountPrice"`
	Images           []string        `json:"images"`
	AvailableSizes   []uuid.UUID     `json:"availableSizes"`
	AvailableFabrics []uuid.UUID     `json:"availableFabrics"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Version          int             `json:"version"`
}

// ProductDetailResponse is a product with its size and fabric options loaded
type ProductDetailResponse struct {
	ProductResponse
	Category *CategoryResponse `json:"category,omitempty"`
	Sizes    []SizeResponse    `json:"sizes"`
	Fabrics  []FabricResponse  `json:"fabrics"`
}

// ProductListResponse is a page of products
type ProductListResponse struct {
	Items    []ProductResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// ToColorResponse converts a domain Color to ColorResponse
func ToColorResponse(c *catalog.Color) ColorResponse {
	return ColorResponse{ID: c.ID, Label: c.Label, Value: c.Value, Hex: c.Hex, TW: c.TW}
}

// ToSizeResponse converts a domain Size to SizeResponse
func ToSizeResponse(s *catalog.Size) SizeResponse {
	return SizeResponse{ID: s.ID, Label: s.Label, Value: s.Value}
}

// ToFabricResponse converts a domain Fabric to FabricResponse
func ToFabricResponse(f *catalog.Fabric) FabricResponse {
	return FabricResponse{ID: f.ID, Label: f.Label, Value: f.Value, Price: f.Price}
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	sizes := p.AvailableSizes
	if sizes == nil {
		sizes = []uuid.UUID{}
	}
	fabrics := p.AvailableFabrics
	if fabrics == nil {
		fabrics = []uuid.UUID{}
	}
	return ProductResponse{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Details:          p.Details,
		CategoryID:       p.CategoryID,
		RealPrice:        p.RealPrice,
		DiscountPrice:    p.DiscountPrice,
		Images:           images,
		AvailableSizes:   sizes,
		AvailableFabrics: fabrics,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}

func mapSlice[T any, R any](items []T, f func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = f(&items[i])
	}
	return out
}
