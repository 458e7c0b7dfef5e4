package payment

import (
	"context"
	"sync"
	"time"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// orderStore keeps orders by id with the version check of the real repository
type orderStore struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]order.Order
	saves int
	// failSave is returned by the next Save, then cleared
	failSave error
}

func newOrderStore(orders ...*order.Order) *orderStore {
	s := &orderStore{byID: map[uuid.UUID]order.Order{}}
	for _, o := range orders {
		o.ClearDomainEvents()
		s.byID[o.ID] = *o
	}
	return s
}

func (s *orderStore) get(id uuid.UUID) *order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.byID[id]
	return &o
}

func (s *orderStore) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (s *orderStore) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*order.Order, error) {
	o, err := s.FindByID(ctx, id)
	if err != nil || o.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

func (s *orderStore) FindByUserAndConfiguration(context.Context, string, uuid.UUID) (*order.Order, error) {
	return nil, shared.ErrNotFound
}

func (s *orderStore) FindByPaymentIntentID(_ context.Context, intentID string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.byID {
		if intentID != "" && o.PaymentIntentID == intentID {
			return &o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *orderStore) CreateIfAbsent(context.Context, *order.Order) (bool, error) {
	return false, nil
}

func (s *orderStore) Save(_ context.Context, o *order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failSave; err != nil {
		s.failSave = nil
		return err
	}
	if s.byID[o.ID].Version != o.Version {
		return shared.ErrConcurrencyConflict
	}
	o.Version++
	stored := *o
	stored.ClearDomainEvents()
	s.byID[o.ID] = stored
	s.saves++
	return nil
}

func (s *orderStore) FindAll(context.Context, order.ListFilter) ([]order.Order, int64, error) {
	return nil, 0, nil
}

func (s *orderStore) SumPaidSince(context.Context, time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *orderStore) ExistsPaidForConfiguration(context.Context, uuid.UUID) (bool, error) {
	return false, nil
}

// initiatedOrder is an order with an open gateway session
func initiatedOrder(method order.PaymentMethod, intentID string) *order.Order {
	o, err := order.NewOrder("u1", uuid.New(), decimal.NewFromInt(30000), "INR", method, nil)
	if err != nil {
		panic(err)
	}
	if err := o.RecordPaymentInitiation(intentID, method.InitialPaymentStatus()); err != nil {
		panic(err)
	}
	return o
}
