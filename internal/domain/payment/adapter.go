// Package payment defines the port payment providers implement and the
// registry that picks one per payment method.
package payment

import (
	"context"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedMethod is returned when no adapter serves a payment method
var ErrUnsupportedMethod = order.ErrUnsupportedPaymentMethod

// InitiateRequest is what an adapter needs to open a payment session
type InitiateRequest struct {
	OrderID         uuid.UUID
	ConfigurationID uuid.UUID
	UserID          string
	Email           string
	Amount          decimal.Decimal
	Currency        string
	ProductName     string
	ImageURL        string
}

// NewInitiateRequest builds a request from the order being paid
func NewInitiateRequest(o *order.Order, email, productName, imageURL string) InitiateRequest {
	return InitiateRequest{
		OrderID:         o.ID,
		ConfigurationID: o.ConfigurationID,
		UserID:          o.UserID,
		Email:           email,
		Amount:          o.Amount,
		Currency:        o.Currency,
		ProductName:     productName,
		ImageURL:        imageURL,
	}
}

// InitiateResult is what an adapter reports back
type InitiateResult struct {
	PaymentIntentID string
	PaymentStatus   order.PaymentStatus
	RedirectURL     string
}

// Adapter initiates payments for exactly one method
type Adapter interface {
	// Method returns the payment method this adapter serves
	Method() order.PaymentMethod
	// Initiate opens a payment session. Gateway failures are returned as
	// PAYMENT_GATEWAY_ERROR and leave nothing recorded.
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
}
