package design

import (
	"strings"
	"time"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeConfiguration is the aggregate type for configurations
const AggregateTypeConfiguration = "Configuration"

// Kind tags the configuration variant
type Kind string

const (
	KindCustom  Kind = "custom"
	KindCatalog Kind = "catalog"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	return k == KindCustom || k == KindCatalog
}

// Placement is the artwork geometry on the garment mockup, in pixels
type Placement struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// Variant is the shape-specific part of a configuration.
// It is implemented only by Custom and CatalogSelection.
type Variant interface {
	Kind() Kind
	sealed()
}

// Custom is a customer-supplied design
type Custom struct {
	ImageURL        string
	CroppedImageURL string
	Placement       Placement
}

// Kind implements Variant
func (Custom) Kind() Kind { return KindCustom }
func (Custom) sealed()    {}

// CatalogSelection is a ready-made product pick
type CatalogSelection struct {
	ProductID uuid.UUID
	ImageURL  string
}

// Kind implements Variant
func (CatalogSelection) Kind() Kind { return KindCatalog }
func (CatalogSelection) sealed()    {}

// Options are the garment choices shared by both variants
type Options struct {
	ColorID  *uuid.UUID
	SizeID   *uuid.UUID
	FabricID *uuid.UUID
}

// Configuration is a draft describing what the customer wants to buy
type Configuration struct {
	shared.BaseAggregateRoot
	Options Options
	variant Variant
}

// NewCustom starts a custom design from an uploaded image
func NewCustom(imageURL string, width, height int) (*Configuration, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, shared.NewDomainError("INVALID_IMAGE", "An image is required to start a design")
	}
	if width <= 0 || height <= 0 {
		return nil, shared.NewDomainError("INVALID_DIMENSIONS", "Image dimensions must be positive")
	}
	c := &Configuration{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		variant: Custom{
			ImageURL:  imageURL,
			Placement: Placement{Width: width, Height: height},
		},
	}
	c.AddDomainEvent(NewConfigurationCreatedEvent(c))
	return c, nil
}

// NewCatalogSelection starts a configuration from a catalog product
func NewCatalogSelection(productID uuid.UUID, opts Options, imageURL string) (*Configuration, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "A product is required")
	}
	c := &Configuration{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Options:           opts,
		variant: CatalogSelection{
			ProductID: productID,
			ImageURL:  strings.TrimSpace(imageURL),
		},
	}
	c.AddDomainEvent(NewConfigurationCreatedEvent(c))
	return c, nil
}

// Rehydrate rebuilds a configuration from storage without raising events
func Rehydrate(base shared.BaseAggregateRoot, opts Options, v Variant) *Configuration {
	return &Configuration{BaseAggregateRoot: base, Options: opts, variant: v}
}

// Variant returns the shape-specific part
func (c *Configuration) Variant() Variant {
	return c.variant
}

// Kind returns the variant tag
func (c *Configuration) Kind() Kind {
	if c.variant == nil {
		return ""
	}
	return c.variant.Kind()
}

// IsCustom reports whether this is a custom design
func (c *Configuration) IsCustom() bool {
	return c.Kind() == KindCustom
}

// ProductID returns the catalog product, nil for custom designs
func (c *Configuration) ProductID() *uuid.UUID {
	if sel, ok := c.variant.(CatalogSelection); ok {
		id := sel.ProductID
		return &id
	}
	return nil
}

// ImageURL returns the original image of either variant
func (c *Configuration) ImageURL() string {
	switch v := c.variant.(type) {
	case Custom:
		return v.ImageURL
	case CatalogSelection:
		return v.ImageURL
	}
	return ""
}

// DisplayImageURL prefers the composited image when present
func (c *Configuration) DisplayImageURL() string {
	if v, ok := c.variant.(Custom); ok && v.CroppedImageURL != "" {
		return v.CroppedImageURL
	}
	return c.ImageURL()
}

// UpdateOptions replaces the color, size and fabric selection
func (c *Configuration) UpdateOptions(opts Options) {
	c.Options = opts
	c.touch()
}

// AttachArtwork records the composited preview of a custom design
func (c *Configuration) AttachArtwork(croppedImageURL string, placement Placement) error {
	v, ok := c.variant.(Custom)
	if !ok {
		return shared.NewDomainError("INVALID_STATE", "Artwork can only be attached to a custom design")
	}
	croppedImageURL = strings.TrimSpace(croppedImageURL)
	if croppedImageURL == "" {
		return shared.NewDomainError("INVALID_IMAGE", "Cropped image cannot be empty")
	}
	if placement.Width <= 0 || placement.Height <= 0 {
		return shared.NewDomainError("INVALID_DIMENSIONS", "Placement dimensions must be positive")
	}
	v.CroppedImageURL = croppedImageURL
	v.Placement = placement
	c.variant = v
	c.touch()
	return nil
}

// ValidateForCheckout checks the variant has what an order needs
func (c *Configuration) ValidateForCheckout() error {
	switch v := c.variant.(type) {
	case Custom:
		if strings.TrimSpace(v.ImageURL) == "" {
			return shared.NewDomainError("VALIDATION_ERROR", "Custom design is missing its image")
		}
	case CatalogSelection:
		if v.ProductID == uuid.Nil {
			return shared.NewDomainError("VALIDATION_ERROR", "Catalog selection is missing its product")
		}
	default:
		return shared.NewDomainError("VALIDATION_ERROR", "Configuration has no design")
	}
	return nil
}

func (c *Configuration) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
