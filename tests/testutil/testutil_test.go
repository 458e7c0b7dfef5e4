package testutil

import (
	"context"
	"net/http"
	"testing"

	"github.com/apparel/storefront/internal/infrastructure/persistence"
	"github.com/apparel/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB_SeedCatalog(t *testing.T) {
	db := NewSQLiteDB(t)

	cat := SeedCatalog(t, db, CatalogSeed{FabricValue: "polyester"})

	got, err := persistence.NewGormProductRepository(db).FindByID(context.Background(), cat.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, cat.Product.Title, got.Title)
	assert.Equal(t, "polyester", cat.Fabric.Value)
	assert.True(t, cat.Product.RealPrice.IsPositive())
}

func TestAsPrincipal(t *testing.T) {
	engine := gin.New()
	engine.GET("/me", AsPrincipal(Customer("u1")), func(c *gin.Context) {
		p := middleware.GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"userId": p.UserID, "email": p.Email}})
	})

	got := DecodeData[map[string]string](t, Do(t, engine, Request{Path: "/me"}))

	assert.Equal(t, "u1", got["userId"])
	assert.Equal(t, "u1@example.com", got["email"])
}

func TestDo_AssertError(t *testing.T) {
	engine := gin.New()
	engine.POST("/echo", AsPrincipal(Admin()), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "missing"},
		})
	})

	w := Do(t, engine, Request{Method: http.MethodPost, Path: "/echo", Body: map[string]string{"a": "b"}})

	AssertError(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestNewTestUUID_Stable(t *testing.T) {
	assert.Equal(t, NewTestUUID("product"), NewTestUUID("product"))
	assert.NotEqual(t, NewTestUUID("product"), NewTestUUID("color"))
}
