package payment

import (
	"fmt"
	"sort"
	"sync"

	"github.com/apparel/storefront/internal/domain/order"
)

// Registry maps each payment method to its adapter
type Registry struct {
	mu       sync.RWMutex
	adapters map[order.PaymentMethod]Adapter
}

// NewRegistry creates a registry holding adapters
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[order.PaymentMethod]Adapter)}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an adapter. One adapter per method.
func (r *Registry) Register(a Adapter) error {
	m := a.Method()
	if !m.IsValid() {
		return fmt.Errorf("payment: adapter for unknown method %q", m)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[m]; exists {
		return fmt.Errorf("payment: adapter for %q already registered", m)
	}
	r.adapters[m] = a
	return nil
}

// Get returns the adapter for m
func (r *Registry) Get(m order.PaymentMethod) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[m]
	if !ok {
		return nil, ErrUnsupportedMethod
	}
	return a, nil
}

// Supports reports whether m has an adapter
func (r *Registry) Supports(m order.PaymentMethod) bool {
	_, err := r.Get(m)
	return err == nil
}

// Methods lists the registered methods in a stable order
func (r *Registry) Methods() []order.PaymentMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]order.PaymentMethod, 0, len(r.adapters))
	for m := range r.adapters {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
