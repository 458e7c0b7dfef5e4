package checkout

import (
	"time"

	appdesign "github.com/apparel/storefront/internal/application/design"
	"github.com/apparel/storefront/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressRequest is a shipping address entered at checkout
type AddressRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Street      string `json:"street" binding:"required,max=500"`
	City        string `json:"city" binding:"required,max=100"`
	PostalCode  string `json:"postalCode" binding:"required,max=20"`
	Country     string `json:"country" binding:"required,max=100"`
	State       string `json:"state" binding:"max=100"`
	PhoneNumber string `json:"phoneNumber" binding:"max=30"`
}

func (r AddressRequest) toInput() order.AddressInput {
	return order.AddressInput{
		Name:        r.Name,
		Street:      r.Street,
		City:        r.City,
		PostalCode:  r.PostalCode,
		Country:     r.Country,
		State:       r.State,
		PhoneNumber: r.PhoneNumber,
	}
}

// CheckoutRequest places (or resumes) the order for a configuration
type CheckoutRequest struct {
	ConfigurationID uuid.UUID       `json:"configurationId" binding:"required"`
	PaymentMethod   string          `json:"paymentMethod" binding:"required,payment_method"`
	ShippingAddress *AddressRequest `json:"shippingAddress"`
}

// CheckoutResult tells the client where to send the customer next
type CheckoutResult struct {
	OrderID         uuid.UUID           `json:"orderId"`
	RedirectURL     string              `json:"redirectUrl"`
	PaymentStatus   order.PaymentStatus `json:"paymentStatus"`
	PaymentIntentID string              `json:"paymentIntentId,omitempty"`
}

// AddressResponse represents an address in API responses
type AddressResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	PostalCode  string    `json:"postalCode"`
	Country     string    `json:"country"`
	State       string    `json:"state,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
}

// ToAddressResponse converts an order address, nil stays nil
func ToAddressResponse(a *order.Address) *AddressResponse {
	if a == nil {
		return nil
	}
	return &AddressResponse{
		ID:          a.ID,
		Name:        a.Name,
		Street:      a.Street,
		City:        a.City,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		State:       a.State,
		PhoneNumber: a.PhoneNumber,
	}
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          string                  `json:"userId"`
	ConfigurationID uuid.UUID               `json:"configurationId"`
	Amount          decimal.Decimal         `json:"amount"`
	Currency        string                  `json:"currency"`
	IsPaid          bool                    `json:"isPaid"`
	Status          order.FulfillmentStatus `json:"status"`
	PaymentMethod   order.PaymentMethod     `json:"paymentMethod"`
	PaymentStatus   order.PaymentStatus     `json:"paymentStatus"`
	PaymentIntentID string                  `json:"paymentIntentId,omitempty"`
	TrackingID      string                  `json:"trackingId,omitempty"`
	ShippingAddress *AddressResponse        `json:"shippingAddress,omitempty"`
	BillingAddress  *AddressResponse        `json:"billingAddress,omitempty"`
	PaidAt          *time.Time              `json:"paidAt,omitempty"`
	CreatedAt       time.Time               `json:"createdAt"`
	UpdatedAt       time.Time               `json:"updatedAt"`
	Version         int                     `json:"version"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		ConfigurationID: o.ConfigurationID,
		Amount:          o.Amount,
		Currency:        o.Currency,
		IsPaid:          o.IsPaid,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		PaymentIntentID: o.PaymentIntentID,
		TrackingID:      o.TrackingID,
		ShippingAddress: ToAddressResponse(o.ShippingAddress),
		BillingAddress:  ToAddressResponse(o.BillingAddress),
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
}

// Resolution tells a polling client whether the payment outcome is known
type Resolution string

const (
	// ResolutionResolved means the order is confirmed
	ResolutionResolved Resolution = "resolved"
	// ResolutionUnsuccessful means the payment failed or was cancelled
	ResolutionUnsuccessful Resolution = "unsuccessful"
	// ResolutionNotResolved means the gateway has not reported yet
	ResolutionNotResolved Resolution = "not_resolved"
)

// ResolutionOf classifies an order for the thank-you page
func ResolutionOf(o *order.Order) Resolution {
	switch o.PaymentStatus {
	case order.PaymentStatusPaid:
		return ResolutionResolved
	case order.PaymentStatusPending:
		if o.PaymentMethod == order.PaymentMethodCOD {
			return ResolutionResolved
		}
		return ResolutionNotResolved
	case order.PaymentStatusFailed, order.PaymentStatusCancelled:
		return ResolutionUnsuccessful
	default:
		return ResolutionNotResolved
	}
}

// OrderStatusResponse is the joined view shown after checkout
type OrderStatusResponse struct {
	Resolution    Resolution                       `json:"resolution"`
	Order         OrderResponse                    `json:"order"`
	Configuration *appdesign.ConfigurationResponse `json:"configuration,omitempty"`
	Email         string                           `json:"email,omitempty"`
}
