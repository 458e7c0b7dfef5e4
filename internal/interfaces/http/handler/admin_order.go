package handler

import (
	"fmt"
	"time"

	apporder "github.com/apparel/storefront/internal/application/order"
	"github.com/gin-gonic/gin"
)

// AdminOrderHandler serves the admin order dashboard
type AdminOrderHandler struct {
	BaseHandler
	orderService *apporder.AdminService
}

// NewAdminOrderHandler creates a new AdminOrderHandler
func NewAdminOrderHandler(orderService *apporder.AdminService) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orderService}
}

// List handles GET /admin/orders
func (h *AdminOrderHandler) List(c *gin.Context) {
	var req apporder.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.orderService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp.Items, resp.Total, resp.Page, resp.PageSize)
}

// UpdateStatus handles PATCH /admin/orders/:id/status
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req apporder.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkPaid handles POST /admin/orders/:id/mark-paid
func (h *AdminOrderHandler) MarkPaid(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.orderService.MarkCODPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Revenue handles GET /admin/orders/revenue
func (h *AdminOrderHandler) Revenue(c *gin.Context) {
	resp, err := h.orderService.RevenueSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Export handles GET /admin/orders/export and streams the orders sheet
func (h *AdminOrderHandler) Export(c *gin.Context) {
	var req apporder.ListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	contentType := h.orderService.ContentType()
	if contentType != "" {
		c.Header("Content-Type", contentType)
		c.Header("Content-Disposition",
			fmt.Sprintf(`attachment; filename="orders-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	}
	if err := h.orderService.ExportXLSX(c.Request.Context(), c.Writer, req); err != nil {
		if c.Writer.Written() {
			_ = c.Error(err)
			return
		}
		c.Writer.Header().Del("Content-Disposition")
		h.HandleError(c, err)
	}
}
