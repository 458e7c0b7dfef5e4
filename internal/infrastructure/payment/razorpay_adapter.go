package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/apparel/storefront/internal/domain/shared"
	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// PaymentLinkCreator is the slice of the Razorpay client the UPI adapter uses
type PaymentLinkCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayConfig holds configuration for the UPI adapter
type RazorpayConfig struct {
	KeyID      string
	KeySecret  string
	LinkExpiry time.Duration
	Redirects  Redirects
}

// Validate validates the Razorpay configuration
func (c *RazorpayConfig) Validate() error {
	if c.KeyID == "" || c.KeySecret == "" {
		return fmt.Errorf("razorpay: key id and key secret are required")
	}
	if c.Redirects.ServerURL == "" {
		return fmt.Errorf("razorpay: server url is required")
	}
	return nil
}

// RazorpayAdapter opens Razorpay payment links restricted to UPI
type RazorpayAdapter struct {
	config RazorpayConfig
	links  PaymentLinkCreator
	logger *zap.Logger
	now    func() time.Time
}

// NewRazorpayAdapter creates a UPI adapter backed by the Razorpay API
func NewRazorpayAdapter(config RazorpayConfig, logger *zap.Logger) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client := razorpay.NewClient(config.KeyID, config.KeySecret)
	return NewRazorpayAdapterWithLinks(config, client.PaymentLink, logger), nil
}

// NewRazorpayAdapterWithLinks creates a UPI adapter over an existing link client
func NewRazorpayAdapterWithLinks(config RazorpayConfig, links PaymentLinkCreator, logger *zap.Logger) *RazorpayAdapter {
	return &RazorpayAdapter{config: config, links: links, logger: logger, now: time.Now}
}

// Method returns upi
func (a *RazorpayAdapter) Method() order.PaymentMethod {
	return order.PaymentMethodUPI
}

// Initiate creates a payment link for the order amount
func (a *RazorpayAdapter) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"amount":          req.Amount.IntPart(),
		"currency":        req.Currency,
		"accept_partial":  false,
		"reference_id":    a.referenceID(req),
		"description":     "Order " + req.OrderID.String(),
		"callback_url":    a.config.Redirects.ThankYou(req.OrderID),
		"callback_method": "get",
		"upi_link":        true,
		"notes": map[string]interface{}{
			"userId":  req.UserID,
			"orderId": req.OrderID.String(),
		},
	}
	if req.Email != "" {
		data["customer"] = map[string]interface{}{"email": req.Email}
	}
	if a.config.LinkExpiry > 0 {
		data["expire_by"] = a.now().Add(a.config.LinkExpiry).Unix()
	}

	link, err := a.links.Create(data, nil)
	if err != nil {
		a.logger.Error("Failed to create Razorpay payment link",
			zap.String("order_id", req.OrderID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("razorpay: failed to create payment link: %w", shared.ErrPaymentGateway)
	}

	id, _ := link["id"].(string)
	shortURL, _ := link["short_url"].(string)
	if id == "" || shortURL == "" {
		a.logger.Error("Razorpay payment link response missing fields",
			zap.String("order_id", req.OrderID.String()))
		return nil, fmt.Errorf("razorpay: incomplete payment link response: %w", shared.ErrPaymentGateway)
	}

	a.logger.Info("Created Razorpay payment link",
		zap.String("order_id", req.OrderID.String()),
		zap.String("link_id", id))

	return &payment.InitiateResult{
		PaymentIntentID: id,
		PaymentStatus:   order.PaymentStatusInitiated,
		RedirectURL:     shortURL,
	}, nil
}

// referenceID is unique per link: Razorpay rejects a reused reference_id, and
// an order may need a new link after an earlier one failed or was abandoned.
// The order id travels in notes.orderId. The result fits the 40 character limit.
func (a *RazorpayAdapter) referenceID(req payment.InitiateRequest) string {
	return strings.ReplaceAll(req.OrderID.String(), "-", "") + "-" + strconv.FormatInt(a.now().Unix(), 36)
}

var _ payment.Adapter = (*RazorpayAdapter)(nil)
