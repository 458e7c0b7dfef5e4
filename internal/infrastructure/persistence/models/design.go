package models

import (
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/google/uuid"
)

// ConfigurationModel is the persistence model for configurations.
// Kind selects which of the variant columns are meaningful.
type ConfigurationModel struct {
	AggregateModel
	Kind            design.Kind `gorm:"type:varchar(20);not null"`
	ImageURL        string      `gorm:"type:text"`
	CroppedImageURL string      `gorm:"type:text"`
	Width           int         `gorm:"not null;default:0"`
	Height          int         `gorm:"not null;default:0"`
	OffsetX         int         `gorm:"column:offset_x;not null;default:0"`
	OffsetY         int         `gorm:"column:offset_y;not null;default:0"`
	ColorID         *uuid.UUID  `gorm:"type:uuid;index"`
	SizeID          *uuid.UUID  `gorm:"type:uuid;index"`
	FabricID        *uuid.UUID  `gorm:"type:uuid;index"`
	ProductID       *uuid.UUID  `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ConfigurationModel) TableName() string {
	return "configurations"
}

// ToDomain converts the persistence model to a domain Configuration.
// A catalog row whose product was deleted keeps the catalog variant with a
// nil product id, which checkout rejects as a validation error.
func (m *ConfigurationModel) ToDomain() *design.Configuration {
	opts := design.Options{ColorID: m.ColorID, SizeID: m.SizeID, FabricID: m.FabricID}
	var v design.Variant
	switch m.Kind {
	case design.KindCustom:
		v = design.Custom{
			ImageURL:        m.ImageURL,
			CroppedImageURL: m.CroppedImageURL,
			Placement:       design.Placement{Width: m.Width, Height: m.Height, X: m.OffsetX, Y: m.OffsetY},
		}
	case design.KindCatalog:
		sel := design.CatalogSelection{ImageURL: m.ImageURL}
		if m.ProductID != nil {
			sel.ProductID = *m.ProductID
		}
		v = sel
	}
	return design.Rehydrate(m.aggregate(), opts, v)
}

// FromDomain populates the persistence model from a domain Configuration
func (m *ConfigurationModel) FromDomain(c *design.Configuration) {
	m.setAggregate(c.BaseAggregateRoot)
	m.Kind = c.Kind()
	m.ColorID = c.Options.ColorID
	m.SizeID = c.Options.SizeID
	m.FabricID = c.Options.FabricID
	m.ProductID = nil
	m.CroppedImageURL = ""
	m.Width, m.Height, m.OffsetX, m.OffsetY = 0, 0, 0, 0

	switch v := c.Variant().(type) {
	case design.Custom:
		m.ImageURL = v.ImageURL
		m.CroppedImageURL = v.CroppedImageURL
		m.Width = v.Placement.Width
		m.Height = v.Placement.Height
		m.OffsetX = v.Placement.X
		m.OffsetY = v.Placement.Y
	case design.CatalogSelection:
		id := v.ProductID
		m.ProductID = &id
		m.ImageURL = v.ImageURL
	}
}
