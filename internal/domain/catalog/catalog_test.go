package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewColor(t *testing.T) {
	t.Run("creates color with valid input", func(t *testing.T) {
		c, err := NewColor(" Black ", "black", "#000000", "bg-black")
		require.NoError(t, err)
		assert.Equal(t, "Black", c.Label)
		assert.Equal(t, "black", c.Value)
		assert.NotEqual(t, uuid.Nil, c.ID)
	})

	t.Run("rejects empty label", func(t *testing.T) {
		_, err := NewColor("", "black", "", "")
		assert.Error(t, err)
	})

	t.Run("rejects malformed hex", func(t *testing.T) {
		_, err := NewColor("Black", "black", "000000", "")
		assert.Error(t, err)
	})
}

func TestNewFabric(t *testing.T) {
	t.Run("keeps value case", func(t *testing.T) {
		f, err := NewFabric("Dot Knit", "dotKnit", decimal.NewFromInt(17000))
		require.NoError(t, err)
		assert.Equal(t, "dotKnit", f.Value)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewFabric("Cotton", "cotton", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestNewSizeAndCategory(t *testing.T) {
	s, err := NewSize("Medium", "M")
	require.NoError(t, err)
	assert.Equal(t, "M", s.Value)

	_, err = NewSize("Medium", " ")
	assert.Error(t, err)

	c, err := NewCategory("  Hoodies ")
	require.NoError(t, err)
	assert.Equal(t, "Hoodies", c.Name)

	_, err = NewCategory("")
	assert.Error(t, err)
}

func TestNewProduct(t *testing.T) {
	size := uuid.New()

	t.Run("creates product and raises event", func(t *testing.T) {
		p, err := NewProduct(ProductInput{
			Title:          "Classic Tee",
			RealPrice:      decimal.NewFromInt(50000),
			DiscountPrice:  decimal.NewFromInt(40000),
			Images:         []string{"https://cdn/a.png", " "},
			AvailableSizes: []uuid.UUID{size, size, uuid.Nil},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn/a.png"}, p.Images)
		assert.Equal(t, []uuid.UUID{size}, p.AvailableSizes)
		assert.Equal(t, 1, p.GetVersion())
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProductCreated, p.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects discount above real price", func(t *testing.T) {
		_, err := NewProduct(ProductInput{
			Title:         "Classic Tee",
			RealPrice:     decimal.NewFromInt(100),
			DiscountPrice: decimal.NewFromInt(200),
		})
		assert.Error(t, err)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewProduct(ProductInput{Title: "  "})
		assert.Error(t, err)
	})
}

func TestProduct_Update(t *testing.T) {
	p, err := NewProduct(ProductInput{Title: "Tee", RealPrice: decimal.NewFromInt(500), DiscountPrice: decimal.NewFromInt(400)})
	require.NoError(t, err)
	p.ClearDomainEvents()

	require.NoError(t, p.Update(ProductInput{Title: "Tee", RealPrice: decimal.NewFromInt(500), DiscountPrice: decimal.NewFromInt(300)}))
	assert.Equal(t, 2, p.GetVersion())
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductPriceChanged, p.GetDomainEvents()[0].EventType())

	p.ClearDomainEvents()
	require.NoError(t, p.Update(ProductInput{Title: "Tee v2", RealPrice: decimal.NewFromInt(500), DiscountPrice: decimal.NewFromInt(300)}))
	assert.Empty(t, p.GetDomainEvents())
}

func TestProduct_EffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		real     int64
		discount int64
		want     int64
		wantErr  bool
	}{
		{"discount is authoritative", 50000, 40000, 40000, false},
		{"zero discount falls back to real", 50000, 0, 50000, false},
		{"no price at all", 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{RealPrice: decimal.NewFromInt(tt.real), DiscountPrice: decimal.NewFromInt(tt.discount)}
			got, err := p.EffectivePrice()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)))
		})
	}
}

func TestProduct_Offers(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	p := &Product{AvailableFabrics: []uuid.UUID{a}}
	assert.True(t, p.OffersFabric(a))
	assert.False(t, p.OffersFabric(b))
	assert.True(t, p.OffersSize(b), "empty size list offers every size")
}
