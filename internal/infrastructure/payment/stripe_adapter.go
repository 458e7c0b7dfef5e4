package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"go.uber.org/zap"
)

// DefaultProductName is shown on the hosted checkout page for custom designs
const DefaultProductName = "Custom T-Shirt"

// StripeConfig holds configuration for the card adapter
type StripeConfig struct {
	SecretKey string
	Countries []string
	Redirects Redirects
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") && !strings.HasPrefix(c.SecretKey, "rk_") {
		return fmt.Errorf("stripe: invalid secret key format")
	}
	if c.Redirects.ServerURL == "" {
		return fmt.Errorf("stripe: server url is required")
	}
	return nil
}

// StripeAdapter opens Stripe Checkout sessions for card payments
type StripeAdapter struct {
	config   StripeConfig
	sessions session.Client
	logger   *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter. A nil backend uses the
// default Stripe API backend.
func NewStripeAdapter(config StripeConfig, backend stripe.Backend, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(config.Countries) == 0 {
		config.Countries = []string{"IN", "US"}
	}
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeAdapter{
		config:   config,
		sessions: session.Client{B: backend, Key: config.SecretKey},
		logger:   logger,
	}, nil
}

// Method returns card
func (a *StripeAdapter) Method() order.PaymentMethod {
	return order.PaymentMethodCard
}

// Initiate creates a hosted checkout session for the order amount
func (a *StripeAdapter) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	name := req.ProductName
	if name == "" {
		name = DefaultProductName
	}
	metadata := map[string]string{
		"userId":  req.UserID,
		"orderId": req.OrderID.String(),
	}

	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(name),
	}
	if req.ImageURL != "" {
		productData.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(a.config.Redirects.ThankYou(req.OrderID)),
		CancelURL:          stripe.String(a.config.Redirects.Preview(req.ConfigurationID)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		ClientReferenceID:  stripe.String(req.OrderID.String()),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(a.config.Countries),
		},
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		Metadata:                 metadata,
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(strings.ToLower(req.Currency)),
					ProductData: productData,
					UnitAmount:  stripe.Int64(req.Amount.IntPart()),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	sess, err := a.sessions.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("order_id", req.OrderID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", shared.ErrPaymentGateway)
	}

	a.logger.Info("Created Stripe checkout session",
		zap.String("order_id", req.OrderID.String()),
		zap.String("session_id", sess.ID))

	return &payment.InitiateResult{
		PaymentIntentID: sess.ID,
		PaymentStatus:   order.PaymentStatusInitiated,
		RedirectURL:     sess.URL,
	}, nil
}

var _ payment.Adapter = (*StripeAdapter)(nil)
