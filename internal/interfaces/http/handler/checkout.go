package handler

import (
	"net/http"

	"github.com/apparel/storefront/internal/application/checkout"
	"github.com/apparel/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler places orders and answers the thank-you page poll
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkout.Service
	statusService   *checkout.StatusService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkout.Service, statusService *checkout.StatusService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService, statusService: statusService}
}

// Checkout handles POST /checkout.
// Repeated submissions for the same configuration return the same order.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	caller := principal(c)
	if !caller.IsAuthenticated() {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req checkout.CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.checkoutService.Checkout(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// OrderStatus handles GET /orders/:id/status.
// 202 tells the client to keep polling until the gateway reports.
func (h *CheckoutHandler) OrderStatus(c *gin.Context) {
	caller := principal(c)
	if !caller.IsAuthenticated() {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.statusService.GetOrderStatus(c.Request.Context(), caller.UserID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Resolution == checkout.ResolutionNotResolved {
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(resp))
		return
	}
	h.Success(c, resp)
}
