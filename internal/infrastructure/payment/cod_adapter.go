package payment

import (
	"context"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/google/uuid"
)

// CODIntentPrefix marks locally generated cash-on-delivery references
const CODIntentPrefix = "cod_"

// CODAdapter confirms cash-on-delivery orders without an external call
type CODAdapter struct {
	redirects Redirects
}

// NewCODAdapter creates a new CODAdapter
func NewCODAdapter(redirects Redirects) *CODAdapter {
	return &CODAdapter{redirects: redirects}
}

// Method returns cod
func (a *CODAdapter) Method() order.PaymentMethod {
	return order.PaymentMethodCOD
}

// Initiate records a local reference and sends the customer to the thank-you page
func (a *CODAdapter) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &payment.InitiateResult{
		PaymentIntentID: CODIntentPrefix + uuid.NewString(),
		PaymentStatus:   order.PaymentStatusPending,
		RedirectURL:     a.redirects.ThankYou(req.OrderID),
	}, nil
}

var _ payment.Adapter = (*CODAdapter)(nil)
