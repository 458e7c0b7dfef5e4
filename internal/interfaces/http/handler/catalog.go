package handler

import (
	"context"

	catalogapp "github.com/apparel/storefront/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler serves the shop's catalog reads and the admin catalog pages
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListColors handles GET /catalog/colors
func (h *CatalogHandler) ListColors(c *gin.Context) {
	list(h, c, h.catalogService.ListColors)
}

// ListSizes handles GET /catalog/sizes
func (h *CatalogHandler) ListSizes(c *gin.Context) {
	list(h, c, h.catalogService.ListSizes)
}

// ListFabrics handles GET /catalog/fabrics
func (h *CatalogHandler) ListFabrics(c *gin.Context) {
	list(h, c, h.catalogService.ListFabrics)
}

// ListCategories handles GET /catalog/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	list(h, c, h.catalogService.ListCategories)
}

// ListProducts handles GET /catalog/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetProduct handles GET /catalog/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// CreateColor handles POST /admin/colors
func (h *CatalogHandler) CreateColor(c *gin.Context) {
	create(h, c, h.catalogService.CreateColor)
}

// CreateSize handles POST /admin/sizes
func (h *CatalogHandler) CreateSize(c *gin.Context) {
	create(h, c, h.catalogService.CreateSize)
}

// CreateFabric handles POST /admin/fabrics
func (h *CatalogHandler) CreateFabric(c *gin.Context) {
	create(h, c, h.catalogService.CreateFabric)
}

// CreateCategory handles POST /admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	create(h, c, h.catalogService.CreateCategory)
}

// CreateProduct handles POST /admin/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	create(h, c, h.catalogService.CreateProduct)
}

// UpdateProduct handles PUT /admin/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// DeleteColor handles DELETE /admin/colors/:id
func (h *CatalogHandler) DeleteColor(c *gin.Context) {
	h.remove(c, h.catalogService.DeleteColor)
}

// DeleteSize handles DELETE /admin/sizes/:id
func (h *CatalogHandler) DeleteSize(c *gin.Context) {
	h.remove(c, h.catalogService.DeleteSize)
}

// DeleteFabric handles DELETE /admin/fabrics/:id
func (h *CatalogHandler) DeleteFabric(c *gin.Context) {
	h.remove(c, h.catalogService.DeleteFabric)
}

// DeleteCategory handles DELETE /admin/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	h.remove(c, h.catalogService.DeleteCategory)
}

// DeleteProduct handles DELETE /admin/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	h.remove(c, h.catalogService.DeleteProduct)
}

func (h *CatalogHandler) remove(c *gin.Context, del func(context.Context, uuid.UUID) error) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func list[T any](h *CatalogHandler, c *gin.Context, fetch func(context.Context) ([]T, error)) {
	items, err := fetch(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

func create[Req, Resp any](h *CatalogHandler, c *gin.Context, save func(context.Context, Req) (*Resp, error)) {
	var req Req
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := save(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
