package shared

// DomainError is a failure the HTTP layer can map to a status by Code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

// Is matches on Code, so NewDomainError("NOT_FOUND", "order not found")
// satisfies errors.Is(err, ErrNotFound).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError builds a DomainError; reuse a sentinel's code to stay
// matchable against it
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "Validation failed")
	ErrConcurrencyConflict = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrUnauthenticated     = NewDomainError("UNAUTHENTICATED", "Please sign in to continue")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	// ErrPaymentGateway hides provider failures from customers
	ErrPaymentGateway = NewDomainError("PAYMENT_GATEWAY_ERROR", "Payment error, please try again")
)
