package models

import (
	"time"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddressModel is the persistence model for shipping and billing addresses
type AddressModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Name        string    `gorm:"type:varchar(200);not null;default:''"`
	Street      string    `gorm:"type:varchar(300);not null;default:''"`
	City        string    `gorm:"type:varchar(100);not null;default:''"`
	PostalCode  string    `gorm:"type:varchar(20);not null;default:''"`
	Country     string    `gorm:"type:varchar(100);not null;default:''"`
	State       string    `gorm:"type:varchar(100)"`
	PhoneNumber string    `gorm:"type:varchar(30)"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address
func (m *AddressModel) ToDomain() *order.Address {
	return &order.Address{
		ID:          m.ID,
		Name:        m.Name,
		Street:      m.Street,
		City:        m.City,
		PostalCode:  m.PostalCode,
		Country:     m.Country,
		State:       m.State,
		PhoneNumber: m.PhoneNumber,
	}
}

// AddressModelFromDomain creates a persistence model from a domain Address
func AddressModelFromDomain(a *order.Address) *AddressModel {
	if a == nil {
		return nil
	}
	return &AddressModel{
		ID:          a.ID,
		Name:        a.Name,
		Street:      a.Street,
		City:        a.City,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		State:       a.State,
		PhoneNumber: a.PhoneNumber,
		CreatedAt:   time.Now(),
	}
}

// OrderModel is the persistence model for orders.
// (user_id, configuration_id) is unique.
type OrderModel struct {
	AggregateModel
	UserID            string                  `gorm:"type:varchar(191);not null;uniqueIndex:idx_orders_user_configuration,priority:1"`
	ConfigurationID   uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_orders_user_configuration,priority:2"`
	Amount            decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	Currency          string                  `gorm:"type:varchar(3);not null;default:'INR'"`
	IsPaid            bool                    `gorm:"not null;default:false"`
	Status            order.FulfillmentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod     order.PaymentMethod     `gorm:"type:varchar(20);not null"`
	PaymentStatus     order.PaymentStatus     `gorm:"type:varchar(20);not null;index"`
	PaymentIntentID   string                  `gorm:"type:varchar(255);index"`
	TrackingID        string                  `gorm:"type:varchar(100)"`
	ShippingAddressID *uuid.UUID              `gorm:"type:uuid"`
	BillingAddressID  *uuid.UUID              `gorm:"type:uuid"`
	PaidAt            *time.Time
	ShippingAddress   *AddressModel `gorm:"foreignKey:ShippingAddressID"`
	BillingAddress    *AddressModel `gorm:"foreignKey:BillingAddressID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.aggregate(),
		UserID:            m.UserID,
		ConfigurationID:   m.ConfigurationID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		IsPaid:            m.IsPaid,
		Status:            m.Status,
		PaymentMethod:     m.PaymentMethod,
		PaymentStatus:     m.PaymentStatus,
		PaymentIntentID:   m.PaymentIntentID,
		TrackingID:        m.TrackingID,
		PaidAt:            m.PaidAt,
	}
	if m.ShippingAddress != nil {
		o.ShippingAddress = m.ShippingAddress.ToDomain()
	}
	if m.BillingAddress != nil {
		o.BillingAddress = m.BillingAddress.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order.
// Addresses are referenced by id only; repositories write them separately.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.setAggregate(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.ConfigurationID = o.ConfigurationID
	m.Amount = o.Amount
	m.Currency = o.Currency
	m.IsPaid = o.IsPaid
	m.Status = o.Status
	m.PaymentMethod = o.PaymentMethod
	m.PaymentStatus = o.PaymentStatus
	m.PaymentIntentID = o.PaymentIntentID
	m.TrackingID = o.TrackingID
	m.PaidAt = o.PaidAt
	m.ShippingAddressID = nil
	m.BillingAddressID = nil
	if o.ShippingAddress != nil {
		id := o.ShippingAddress.ID
		m.ShippingAddressID = &id
	}
	if o.BillingAddress != nil {
		id := o.BillingAddress.ID
		m.BillingAddressID = &id
	}
}
