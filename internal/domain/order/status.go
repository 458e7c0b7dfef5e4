package order

import (
	"strings"

	"github.com/apparel/storefront/internal/domain/shared"
)

// PaymentMethod is how the customer pays. The set is closed.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCOD  PaymentMethod = "cod"
)

// AllPaymentMethods lists every supported method
func AllPaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodCard, PaymentMethodUPI, PaymentMethodCOD}
}

// IsValid checks if the method is one of the supported methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodCOD:
		return true
	}
	return false
}

// IsOnline reports whether the method goes through an external gateway
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodCard || m == PaymentMethodUPI
}

// InitialPaymentStatus is the status a new order with this method starts in
func (m PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if m == PaymentMethodCOD {
		return PaymentStatusPending
	}
	return PaymentStatusInitiated
}

// ParsePaymentMethod normalizes user input into a PaymentMethod
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	return m, m.IsValid()
}

// PaymentStatus tracks payment progress
type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsValid checks if the status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusInitiated, PaymentStatusPending, PaymentStatusPaid,
		PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further payment transition is expected
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusCancelled
}

// CanTransitionTo checks if the status can move to target
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusInitiated:
		return target == PaymentStatusPaid || target == PaymentStatusFailed || target == PaymentStatusCancelled
	case PaymentStatusPending:
		return target == PaymentStatusPaid || target == PaymentStatusCancelled
	case PaymentStatusFailed:
		// A gateway may still confirm a payment after an earlier session failed
		return target == PaymentStatusInitiated || target == PaymentStatusPaid
	}
	return false
}

// FulfillmentStatus tracks the order through production and delivery
type FulfillmentStatus string

const (
	FulfillmentPending    FulfillmentStatus = "pending"
	FulfillmentProcessing FulfillmentStatus = "processing"
	FulfillmentShipped    FulfillmentStatus = "shipped"
	FulfillmentDelivered  FulfillmentStatus = "delivered"
	FulfillmentCancelled  FulfillmentStatus = "cancelled"
)

// IsValid checks if the status is known
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentPending, FulfillmentProcessing, FulfillmentShipped,
		FulfillmentDelivered, FulfillmentCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can move to target
func (s FulfillmentStatus) CanTransitionTo(target FulfillmentStatus) bool {
	switch s {
	case FulfillmentPending:
		return target == FulfillmentProcessing || target == FulfillmentCancelled
	case FulfillmentProcessing:
		return target == FulfillmentShipped || target == FulfillmentCancelled
	case FulfillmentShipped:
		return target == FulfillmentDelivered
	}
	return false
}

// ErrUnsupportedPaymentMethod is returned for methods outside the closed set
// or without a configured adapter
var ErrUnsupportedPaymentMethod = shared.NewDomainError("UNSUPPORTED_PAYMENT_METHOD", "Payment method is not supported")
