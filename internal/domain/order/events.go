package order

import (
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeOrderCreated          = "OrderCreated"
	EventTypeOrderPaymentInitiated = "OrderPaymentInitiated"
	EventTypeOrderPaid             = "OrderPaid"
	EventTypeOrderPaymentFailed    = "OrderPaymentFailed"
	EventTypeOrderStatusChanged    = "OrderStatusChanged"
)

// OrderCreatedEvent is raised when checkout creates an order
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID       `json:"order_id"`
	UserID          string          `json:"user_id"`
	ConfigurationID uuid.UUID       `json:"configuration_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		ConfigurationID: o.ConfigurationID,
		Amount:          o.Amount,
		PaymentMethod:   o.PaymentMethod,
	}
}

// OrderPaymentInitiatedEvent is raised after a payment adapter opened a session
type OrderPaymentInitiatedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID     `json:"order_id"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PaymentIntentID string        `json:"payment_intent_id"`
}

// NewOrderPaymentInitiatedEvent creates a new OrderPaymentInitiatedEvent
func NewOrderPaymentInitiatedEvent(o *Order) *OrderPaymentInitiatedEvent {
	return &OrderPaymentInitiatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentInitiated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		PaymentIntentID: o.PaymentIntentID,
	}
}

// OrderPaidEvent is raised when payment is confirmed
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
}

// NewOrderPaidEvent creates a new OrderPaidEvent
func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		Amount:          o.Amount,
		PaymentMethod:   o.PaymentMethod,
	}
}

// OrderPaymentFailedEvent is raised when an online payment fails or expires
type OrderPaymentFailedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID `json:"order_id"`
	Reason  string    `json:"reason"`
}

// NewOrderPaymentFailedEvent creates a new OrderPaymentFailedEvent
func NewOrderPaymentFailedEvent(o *Order, reason string) *OrderPaymentFailedEvent {
	return &OrderPaymentFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPaymentFailed, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		Reason:          reason,
	}
}

// OrderStatusChangedEvent is raised on fulfillment progress
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID         `json:"order_id"`
	OldStatus FulfillmentStatus `json:"old_status"`
	NewStatus FulfillmentStatus `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, old FulfillmentStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OldStatus:       old,
		NewStatus:       o.Status,
	}
}
