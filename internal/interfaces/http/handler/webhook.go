package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/apparel/storefront/internal/application/payment"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/apparel/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MaxWebhookBodySize caps gateway payloads
const MaxWebhookBodySize = 64 * 1024

// Gateway signature headers
const (
	StripeSignatureHeader   = "Stripe-Signature"
	RazorpaySignatureHeader = "X-Razorpay-Signature"
	RazorpayEventIDHeader   = "X-Razorpay-Event-Id"
)

// WebhookHandler receives payment gateway callbacks. A non-2xx reply makes
// the gateway redeliver, so only signature failures are rejected with 400.
type WebhookHandler struct {
	BaseHandler
	stripe   *payment.StripeWebhookService
	razorpay *payment.RazorpayWebhookService
}

// NewWebhookHandler creates a new WebhookHandler. Either service may be nil
// when that gateway is not configured.
func NewWebhookHandler(stripe *payment.StripeWebhookService, razorpay *payment.RazorpayWebhookService) *WebhookHandler {
	return &WebhookHandler{stripe: stripe, razorpay: razorpay}
}

// Stripe handles POST /webhooks/stripe
func (h *WebhookHandler) Stripe(c *gin.Context) {
	if h.stripe == nil {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Stripe webhooks are not configured")
		return
	}
	payload, ok := h.readPayload(c)
	if !ok {
		return
	}
	result, err := h.stripe.ProcessWebhook(c.Request.Context(), payload, c.GetHeader(StripeSignatureHeader))
	h.reply(c, "stripe", result, err)
}

// Razorpay handles POST /webhooks/razorpay
func (h *WebhookHandler) Razorpay(c *gin.Context) {
	if h.razorpay == nil {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Razorpay webhooks are not configured")
		return
	}
	payload, ok := h.readPayload(c)
	if !ok {
		return
	}
	result, err := h.razorpay.ProcessWebhook(c.Request.Context(), payload,
		c.GetHeader(RazorpaySignatureHeader), c.GetHeader(RazorpayEventIDHeader))
	h.reply(c, "razorpay", result, err)
}

func (h *WebhookHandler) readPayload(c *gin.Context) ([]byte, bool) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxWebhookBodySize+1))
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Webhook payload too large")
			return nil, false
		}
		h.BadRequest(c, "Failed to read request body")
		return nil, false
	}
	if len(payload) > MaxWebhookBodySize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Webhook payload too large")
		return nil, false
	}
	return payload, true
}

func (h *WebhookHandler) reply(c *gin.Context, gateway string, result *payment.WebhookResult, err error) {
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			logger.GetGinLogger(c).Warn("webhook signature rejected", zap.String("gateway", gateway))
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
