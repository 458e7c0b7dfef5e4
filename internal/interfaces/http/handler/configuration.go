package handler

import (
	appdesign "github.com/apparel/storefront/internal/application/design"
	"github.com/gin-gonic/gin"
)

// ConfigurationHandler drives the configure pages: start a design, choose
// garment options, attach artwork and preview the price
type ConfigurationHandler struct {
	BaseHandler
	designService *appdesign.Service
}

// NewConfigurationHandler creates a new ConfigurationHandler
func NewConfigurationHandler(designService *appdesign.Service) *ConfigurationHandler {
	return &ConfigurationHandler{designService: designService}
}

// CreateCustom handles POST /configurations/custom
func (h *ConfigurationHandler) CreateCustom(c *gin.Context) {
	var req appdesign.CreateCustomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.designService.CreateCustom(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// CreateFromProduct handles POST /configurations/catalog
func (h *ConfigurationHandler) CreateFromProduct(c *gin.Context) {
	var req appdesign.CreateFromProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.designService.CreateFromProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /configurations/:id
func (h *ConfigurationHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.designService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateOptions handles PUT /configurations/:id/options
func (h *ConfigurationHandler) UpdateOptions(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appdesign.UpdateOptionsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.designService.UpdateOptions(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AttachArtwork handles PUT /configurations/:id/artwork
func (h *ConfigurationHandler) AttachArtwork(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req appdesign.AttachArtworkRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.designService.AttachArtwork(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RequestUpload handles POST /configurations/uploads
func (h *ConfigurationHandler) RequestUpload(c *gin.Context) {
	var req appdesign.UploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.designService.RequestArtworkUpload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
