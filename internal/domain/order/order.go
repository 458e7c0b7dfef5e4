package order

import (
	"strings"
	"time"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeOrder is the aggregate type for orders
const AggregateTypeOrder = "Order"

// Order is a priced purchase of one configuration by one user.
// Amount is a snapshot taken at creation and never recomputed.
type Order struct {
	shared.BaseAggregateRoot
	UserID          string
	ConfigurationID uuid.UUID
	Amount          decimal.Decimal
	Currency        string
	IsPaid          bool
	Status          FulfillmentStatus
	PaymentMethod   PaymentMethod
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	TrackingID      string
	ShippingAddress *Address
	BillingAddress  *Address
	PaidAt          *time.Time
}

// NewOrder creates an order with its payment status seeded by method
func NewOrder(userID string, configurationID uuid.UUID, amount decimal.Decimal, currency string, method PaymentMethod, shipping *Address) (*Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, shared.ErrUnauthenticated
	}
	if configurationID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Configuration is required")
	}
	if !method.IsValid() {
		return nil, ErrUnsupportedPaymentMethod
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order amount must be positive")
	}
	if currency == "" {
		currency = "INR"
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ConfigurationID:   configurationID,
		Amount:            amount,
		Currency:          strings.ToUpper(currency),
		Status:            FulfillmentPending,
		PaymentMethod:     method,
		PaymentStatus:     method.InitialPaymentStatus(),
		ShippingAddress:   shipping,
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

// HasActiveIntent reports whether a payment session was already recorded
// and is still usable
func (o *Order) HasActiveIntent() bool {
	if o.PaymentIntentID == "" {
		return false
	}
	if o.PaymentMethod == PaymentMethodCOD {
		return o.PaymentStatus == PaymentStatusPending
	}
	return o.PaymentStatus == PaymentStatusInitiated
}

// RecordPaymentInitiation stores the result of a payment adapter call.
// Re-initiating an unpaid session keeps the status; a failed payment may
// be initiated again.
func (o *Order) RecordPaymentInitiation(intentID string, status PaymentStatus) error {
	if intentID == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Payment intent is required")
	}
	if status != o.PaymentStatus && !o.PaymentStatus.CanTransitionTo(status) {
		return o.invalidTransition(status)
	}
	if o.PaymentStatus.IsTerminal() {
		return o.invalidTransition(status)
	}
	o.PaymentIntentID = intentID
	o.PaymentStatus = status
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderPaymentInitiatedEvent(o))
	return nil
}

// MarkPaid confirms the payment. Marking an already paid order is a no-op.
func (o *Order) MarkPaid() error {
	if o.PaymentStatus == PaymentStatusPaid {
		return nil
	}
	if !o.PaymentStatus.CanTransitionTo(PaymentStatusPaid) {
		return o.invalidTransition(PaymentStatusPaid)
	}
	now := time.Now()
	o.PaymentStatus = PaymentStatusPaid
	o.IsPaid = true
	o.PaidAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderPaidEvent(o))
	return nil
}

// MarkPaymentFailed records a failed or abandoned online payment
func (o *Order) MarkPaymentFailed(reason string) error {
	if o.PaymentStatus == PaymentStatusFailed {
		return nil
	}
	if !o.PaymentStatus.CanTransitionTo(PaymentStatusFailed) {
		return o.invalidTransition(PaymentStatusFailed)
	}
	o.PaymentStatus = PaymentStatusFailed
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderPaymentFailedEvent(o, reason))
	return nil
}

// UpdateFulfillment moves the fulfillment status
func (o *Order) UpdateFulfillment(target FulfillmentStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Unknown order status")
	}
	if o.Status == target {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", "Cannot move order from "+string(o.Status)+" to "+string(target))
	}
	if target == FulfillmentCancelled && o.PaymentStatus.CanTransitionTo(PaymentStatusCancelled) {
		o.PaymentStatus = PaymentStatusCancelled
	}
	old := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// SetTrackingID records the courier tracking number
func (o *Order) SetTrackingID(trackingID string) {
	o.TrackingID = strings.TrimSpace(trackingID)
	o.UpdatedAt = time.Now()
}

// AttachGatewayAddresses keeps addresses collected by the payment gateway.
// A shipping address given at checkout is not replaced.
func (o *Order) AttachGatewayAddresses(shipping, billing *Address) {
	if o.ShippingAddress == nil && shipping != nil {
		o.ShippingAddress = shipping
	}
	if billing != nil {
		o.BillingAddress = billing
	}
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID string) bool {
	return userID != "" && o.UserID == userID
}

func (o *Order) invalidTransition(target PaymentStatus) error {
	return shared.NewDomainError("INVALID_STATE",
		"Cannot change payment status from "+string(o.PaymentStatus)+" to "+string(target))
}
