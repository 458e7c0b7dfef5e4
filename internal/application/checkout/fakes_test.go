package checkout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apparel/storefront/internal/domain/catalog"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/identity"
	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memOrders is an order store with the (user, configuration) unique key
type memOrders struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]order.Order
	byKey   map[string]uuid.UUID
	inserts atomic.Int32
	// beforeInsert runs inside CreateIfAbsent, outside the lock
	beforeInsert func()
}

func newMemOrders() *memOrders {
	return &memOrders{byID: map[uuid.UUID]order.Order{}, byKey: map[string]uuid.UUID{}}
}

func orderKey(userID string, cfgID uuid.UUID) string {
	return userID + "|" + cfgID.String()
}

func (r *memOrders) get(id uuid.UUID) (*order.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	o.ClearDomainEvents()
	return &o, nil
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memOrders) FindByIDForUser(_ context.Context, id uuid.UUID, userID string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, err := r.get(id)
	if err != nil || o.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (r *memOrders) FindByUserAndConfiguration(_ context.Context, userID string, cfgID uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byKey[orderKey(userID, cfgID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return r.get(id)
}

func (r *memOrders) FindByPaymentIntentID(_ context.Context, intentID string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.byID {
		if o.PaymentIntentID == intentID && intentID != "" {
			return r.get(id)
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrders) CreateIfAbsent(_ context.Context, o *order.Order) (bool, error) {
	if r.beforeInsert != nil {
		r.beforeInsert()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := orderKey(o.UserID, o.ConfigurationID)
	if _, exists := r.byKey[key]; exists {
		return false, nil
	}
	r.byKey[key] = o.ID
	stored := *o
	stored.ClearDomainEvents()
	r.byID[o.ID] = stored
	r.inserts.Add(1)
	return true, nil
}

func (r *memOrders) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[o.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if current.Version != o.Version {
		return shared.ErrConcurrencyConflict
	}
	o.Version++
	stored := *o
	stored.ClearDomainEvents()
	r.byID[o.ID] = stored
	return nil
}

func (r *memOrders) FindAll(context.Context, order.ListFilter) ([]order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]order.Order, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (r *memOrders) SumPaidSince(context.Context, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *memOrders) ExistsPaidForConfiguration(_ context.Context, cfgID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.byID {
		if o.ConfigurationID == cfgID && o.IsPaid {
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrders) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type memConfigs struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*design.Configuration
}

func (r *memConfigs) FindByID(_ context.Context, id uuid.UUID) (*design.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memConfigs) Save(_ context.Context, c *design.Configuration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]identity.User
}

func (r *memUsers) FindByID(_ context.Context, id string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return &u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memUsers) Upsert(_ context.Context, u *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = *u
	return nil
}

type memCatalog[T any] struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*T
}

func newMemCatalog[T any]() *memCatalog[T] {
	return &memCatalog[T]{byID: map[uuid.UUID]*T{}}
}

func (s *memCatalog[T]) FindByID(_ context.Context, id uuid.UUID) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.byID[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}

func (s *memCatalog[T]) put(id uuid.UUID, v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = v
}

func (s *memCatalog[T]) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// fakeCardAdapter opens numbered sessions, or fails when err is set
type fakeCardAdapter struct {
	calls atomic.Int32
	err   error
}

func (a *fakeCardAdapter) Method() order.PaymentMethod { return order.PaymentMethodCard }

func (a *fakeCardAdapter) Initiate(_ context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	n := a.calls.Add(1)
	if a.err != nil {
		return nil, a.err
	}
	return &payment.InitiateResult{
		PaymentIntentID: "cs_test_" + req.OrderID.String()[:8] + "_" + string(rune('a'+n-1)),
		PaymentStatus:   order.PaymentStatusInitiated,
		RedirectURL:     "https://checkout.stripe.com/c/pay/cs_test",
	}, nil
}

type staticRedirects struct{}

func (staticRedirects) ThankYou(orderID uuid.UUID) string {
	return "https://shop.example.com/thank-you?orderId=" + orderID.String()
}

var errGatewayDown = errors.New("gateway unavailable")

type harness struct {
	orders  *memOrders
	configs *memConfigs
	users   *memUsers
	colors  *memCatalog[catalog.Color]
	sizes   *memCatalog[catalog.Size]
	fabrics *memCatalog[catalog.Fabric]
	prods   *memCatalog[catalog.Product]
	card    *fakeCardAdapter
	cotton  *catalog.Fabric
}

func newHarness() *harness {
	h := &harness{
		orders:  newMemOrders(),
		configs: &memConfigs{byID: map[uuid.UUID]*design.Configuration{}},
		users:   &memUsers{byID: map[string]identity.User{}},
		colors:  newMemCatalog[catalog.Color](),
		sizes:   newMemCatalog[catalog.Size](),
		fabrics: newMemCatalog[catalog.Fabric](),
		prods:   newMemCatalog[catalog.Product](),
		card:    &fakeCardAdapter{},
	}
	h.cotton, _ = catalog.NewFabric("Cotton", "cotton", decimal.NewFromInt(20000))
	h.fabrics.put(h.cotton.ID, h.cotton)
	return h
}

func (h *harness) resolver() *design.Resolver {
	return design.NewResolver(h.colors, h.sizes, h.fabrics, h.prods)
}

func defaultSurcharges() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"polyester":  decimal.NewFromInt(12000),
		"polycotton": decimal.NewFromInt(15000),
		"dotKnit":    decimal.NewFromInt(17000),
		"cotton":     decimal.NewFromInt(20000),
	}
}
