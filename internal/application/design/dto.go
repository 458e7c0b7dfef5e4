package design

import (
	"time"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomRequest starts a design from an uploaded image
type CreateCustomRequest struct {
	ImageURL string `json:"imageUrl" binding:"required,url"`
	Width    int    `json:"width" binding:"required,min=1"`
	Height   int    `json:"height" binding:"required,min=1"`
}

// CreateFromProductRequest starts a configuration from a catalog product
type CreateFromProductRequest struct {
	ProductID uuid.UUID  `json:"productId" binding:"required"`
	ColorID   *uuid.UUID `json:"colorId"`
	SizeID    *uuid.UUID `json:"sizeId"`
	FabricID  *uuid.UUID `json:"fabricId"`
	ImageURL  string     `json:"imageUrl" binding:"omitempty,url"`
}

// UpdateOptionsRequest replaces the garment choices
type UpdateOptionsRequest struct {
	ColorID  *uuid.UUID `json:"colorId"`
	SizeID   *uuid.UUID `json:"sizeId"`
	FabricID *uuid.UUID `json:"fabricId"`
}

func (r UpdateOptionsRequest) options() design.Options {
	return design.Options{ColorID: r.ColorID, SizeID: r.SizeID, FabricID: r.FabricID}
}

// PlacementRequest is the artwork geometry on the mockup
type PlacementRequest struct {
	Width  int `json:"width" binding:"required,min=1"`
	Height int `json:"height" binding:"required,min=1"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// AttachArtworkRequest records the composited preview
type AttachArtworkRequest struct {
	CroppedImageURL string           `json:"croppedImageUrl" binding:"required,url"`
	Placement       PlacementRequest `json:"placement" binding:"required"`
}

// UploadRequest asks for a presigned artwork upload
type UploadRequest struct {
	ContentType string `json:"contentType" binding:"required,oneof=image/png image/jpeg image/webp"`
}

// MutationResponse is returned by the configuration steps
type MutationResponse struct {
	ID          uuid.UUID `json:"id"`
	RedirectURL string    `json:"redirectUrl"`
}

// UploadResponse carries a presigned upload target
type UploadResponse struct {
	UploadURL  string    `json:"uploadUrl"`
	PublicURL  string    `json:"publicUrl"`
	StorageKey string    `json:"storageKey"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// QuoteResponse is a price breakdown in minor units
type QuoteResponse struct {
	Base            decimal.Decimal `json:"base"`
	FabricSurcharge decimal.Decimal `json:"fabricSurcharge"`
	Delivery        decimal.Decimal `json:"delivery"`
	Total           decimal.Decimal `json:"total"`
}

// ToQuoteResponse converts a pricing.Quote to QuoteResponse
func ToQuoteResponse(q pricing.Quote) QuoteResponse {
	return QuoteResponse{Base: q.Base, FabricSurcharge: q.FabricSurcharge, Delivery: q.Delivery, Total: q.Total}
}

// ConfigurationResponse is a configuration joined with its catalog labels.
// Labels of missing records read "N/A".
type ConfigurationResponse struct {
	ID              uuid.UUID         `json:"id"`
	Kind            string            `json:"kind"`
	IsCustom        bool              `json:"isCustom"`
	ImageURL        string            `json:"imageUrl"`
	CroppedImageURL string            `json:"croppedImageUrl,omitempty"`
	DisplayImageURL string            `json:"displayImageUrl"`
	Placement       *design.Placement `json:"placement,omitempty"`
	ProductID       *uuid.UUID        `json:"productId,omitempty"`
	Product         string            `json:"product,omitempty"`
	ColorID         *uuid.UUID        `json:"colorId"`
	Color           string            `json:"color"`
	ColorHex        string            `json:"colorHex,omitempty"`
	SizeID          *uuid.UUID        `json:"sizeId"`
	Size            string            `json:"size"`
	FabricID        *uuid.UUID        `json:"fabricId"`
	Fabric          string            `json:"fabric"`
	Quote           *QuoteResponse    `json:"quote,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ToConfigurationResponse renders a resolved configuration
func ToConfigurationResponse(r *design.ResolvedConfiguration) ConfigurationResponse {
	resp := ConfigurationResponse{
		ID:              r.ID,
		Kind:            string(r.Kind()),
		IsCustom:        r.IsCustom(),
		ImageURL:        r.ImageURL(),
		DisplayImageURL: r.DisplayImageURL(),
		ColorID:         r.Color.ID(),
		Color:           r.Color.Display(func(c *catalog.Color) string { return c.Label }),
		SizeID:          r.Size.ID(),
		Size:            r.Size.Display(func(s *catalog.Size) string { return s.Label }),
		FabricID:        r.Fabric.ID(),
		Fabric:          r.Fabric.Display(func(f *catalog.Fabric) string { return f.Label }),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if c, ok := r.Color.Get(); ok {
		resp.ColorHex = c.Hex
	}
	switch v := r.Variant().(type) {
	case design.Custom:
		resp.CroppedImageURL = v.CroppedImageURL
		placement := v.Placement
		resp.Placement = &placement
	case design.CatalogSelection:
		resp.ProductID = r.ProductID()
		resp.Product = r.Product.Display(func(p *catalog.Product) string { return p.Title })
	}
	return resp
}
