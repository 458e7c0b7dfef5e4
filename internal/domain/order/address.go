package order

import (
	"strings"

	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// Address is a shipping or billing address owned by one order
type Address struct {
	ID          uuid.UUID
	Name        string
	Street      string
	City        string
	PostalCode  string
	Country     string
	State       string
	PhoneNumber string
}

// AddressInput carries unvalidated address fields
type AddressInput struct {
	Name        string
	Street      string
	City        string
	PostalCode  string
	Country     string
	State       string
	PhoneNumber string
}

// NewAddress validates input and creates a fresh address
func NewAddress(in AddressInput) (*Address, error) {
	a := &Address{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Street:      strings.TrimSpace(in.Street),
		City:        strings.TrimSpace(in.City),
		PostalCode:  strings.TrimSpace(in.PostalCode),
		Country:     strings.TrimSpace(in.Country),
		State:       strings.TrimSpace(in.State),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}
	switch {
	case a.Name == "":
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Address name is required")
	case a.Street == "":
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Street is required")
	case a.City == "":
		return nil, shared.NewDomainError("VALIDATION_ERROR", "City is required")
	case a.PostalCode == "":
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Postal code is required")
	case a.Country == "":
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Country is required")
	}
	return a, nil
}

// NewGatewayAddress keeps whatever a payment gateway collected.
// Gateways may omit fields, so nothing is required; nil when all fields are empty.
func NewGatewayAddress(in AddressInput) *Address {
	a := &Address{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Street:      strings.TrimSpace(in.Street),
		City:        strings.TrimSpace(in.City),
		PostalCode:  strings.TrimSpace(in.PostalCode),
		Country:     strings.TrimSpace(in.Country),
		State:       strings.TrimSpace(in.State),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}
	if a.Name == "" && a.Street == "" && a.City == "" && a.PostalCode == "" && a.Country == "" {
		return nil
	}
	return a
}
