package router

import (
	"github.com/apparel/storefront/internal/interfaces/http/handler"
	"github.com/apparel/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers are the storefront API handlers
type Handlers struct {
	Catalog       *handler.CatalogHandler
	Configuration *handler.ConfigurationHandler
	Checkout      *handler.CheckoutHandler
	AdminOrders   *handler.AdminOrderHandler
	Webhooks      *handler.WebhookHandler
}

// StorefrontRoutes builds the API route groups. authenticate guards the
// customer routes; admin routes also require an admin principal.
func StorefrontRoutes(h Handlers, authenticate gin.HandlerFunc) []RouteRegistrar {
	guard := []gin.HandlerFunc{authenticate, middleware.TracingAttributeInjector()}

	catalog := NewRouteGroup("/catalog").
		GET("/colors", h.Catalog.ListColors).
		GET("/sizes", h.Catalog.ListSizes).
		GET("/fabrics", h.Catalog.ListFabrics).
		GET("/categories", h.Catalog.ListCategories).
		GET("/products", h.Catalog.ListProducts).
		GET("/products/:id", h.Catalog.GetProduct)

	webhooks := NewRouteGroup("/webhooks").
		POST("/stripe", h.Webhooks.Stripe).
		POST("/razorpay", h.Webhooks.Razorpay)

	configurations := NewRouteGroup("/configurations").
		Use(guard...).
		POST("/custom", h.Configuration.CreateCustom).
		POST("/catalog", h.Configuration.CreateFromProduct).
		POST("/uploads", h.Configuration.RequestUpload).
		GET("/:id", h.Configuration.Get).
		PUT("/:id/options", h.Configuration.UpdateOptions).
		PUT("/:id/artwork", h.Configuration.AttachArtwork)

	checkout := NewRouteGroup("/checkout").
		Use(guard...).
		POST("", h.Checkout.Checkout)

	orders := NewRouteGroup("/orders").
		Use(guard...).
		GET("/:id/status", h.Checkout.OrderStatus)

	admin := NewRouteGroup("/admin").
		Use(guard...).
		Use(middleware.RequireAdmin())
	for _, kind := range []struct {
		path           string
		create, delete gin.HandlerFunc
	}{
		{"/colors", h.Catalog.CreateColor, h.Catalog.DeleteColor},
		{"/sizes", h.Catalog.CreateSize, h.Catalog.DeleteSize},
		{"/fabrics", h.Catalog.CreateFabric, h.Catalog.DeleteFabric},
		{"/categories", h.Catalog.CreateCategory, h.Catalog.DeleteCategory},
	} {
		admin.POST(kind.path, kind.create).DELETE(kind.path+"/:id", kind.delete)
	}
	admin.POST("/products", h.Catalog.CreateProduct).
		PUT("/products/:id", h.Catalog.UpdateProduct).
		DELETE("/products/:id", h.Catalog.DeleteProduct)
	admin.Sub("/orders").
		GET("", h.AdminOrders.List).
		GET("/revenue", h.AdminOrders.Revenue).
		GET("/export", h.AdminOrders.Export).
		PATCH("/:id/status", h.AdminOrders.UpdateStatus).
		POST("/:id/mark-paid", h.AdminOrders.MarkPaid)

	return []RouteRegistrar{catalog, webhooks, configurations, checkout, orders, admin}
}
