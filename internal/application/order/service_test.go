package order

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*order.Order, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUserAndConfiguration(ctx context.Context, userID string, cfgID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, userID, cfgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*order.Order, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) CreateIfAbsent(ctx context.Context, o *order.Order) (bool, error) {
	args := m.Called(ctx, o)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) SumPaidSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockOrderRepository) ExistsPaidForConfiguration(ctx context.Context, cfgID uuid.UUID) (bool, error) {
	args := m.Called(ctx, cfgID)
	return args.Bool(0), args.Error(1)
}

type recordingSheet struct {
	orders []order.Order
}

func (r *recordingSheet) ContentType() string { return "application/test" }

func (r *recordingSheet) WriteOrders(w io.Writer, orders []order.Order) error {
	r.orders = orders
	_, err := w.Write([]byte("sheet"))
	return err
}

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestAdminService(repo *MockOrderRepository, sheets SheetWriter) *AdminService {
	svc := NewAdminService(repo, sheets, Dashboard{}, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func newTestOrder(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()
	o, err := order.NewOrder("u1", uuid.New(), decimal.NewFromInt(30000), "INR", method, nil)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestList_DefaultsToLastSevenDays(t *testing.T) {
	repo := new(MockOrderRepository)
	o := newTestOrder(t, order.PaymentMethodCOD)
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f order.ListFilter) bool {
		return f.Since != nil && f.Since.Equal(fixedNow.AddDate(0, 0, -7)) && f.Page == 1 && f.PageSize == 20
	})).Return([]order.Order{*o}, int64(1), nil)

	resp, err := newTestAdminService(repo, nil).List(context.Background(), ListRequest{})

	require.NoError(t, err)
	assert.Equal(t, 7, resp.Days)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, o.ID, resp.Items[0].ID)
	repo.AssertExpectations(t)
}

func TestList_Filters(t *testing.T) {
	repo := new(MockOrderRepository)
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f order.ListFilter) bool {
		return f.Status != nil && *f.Status == order.FulfillmentShipped &&
			f.PaymentStatus != nil && *f.PaymentStatus == order.PaymentStatusPaid &&
			f.Since.Equal(fixedNow.AddDate(0, 0, -30)) && f.Page == 2
	})).Return([]order.Order{}, int64(0), nil)

	resp, err := newTestAdminService(repo, nil).List(context.Background(), ListRequest{
		Days: 30, Status: "shipped", PaymentStatus: "paid", Page: 2,
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 30, resp.Days)
}

func TestList_UnknownStatus(t *testing.T) {
	_, err := newTestAdminService(new(MockOrderRepository), nil).List(context.Background(), ListRequest{Status: "lost"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	o := newTestOrder(t, order.PaymentMethodCOD)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	repo.On("Save", mock.Anything, o).Return(nil)

	resp, err := newTestAdminService(repo, nil).UpdateStatus(context.Background(), o.ID, UpdateStatusRequest{
		Status: "processing", TrackingID: " TRK123 ",
	})

	require.NoError(t, err)
	assert.Equal(t, order.FulfillmentProcessing, resp.Status)
	assert.Equal(t, "TRK123", resp.TrackingID)
	repo.AssertExpectations(t)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	repo := new(MockOrderRepository)
	o := newTestOrder(t, order.PaymentMethodCOD)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := newTestAdminService(repo, nil).UpdateStatus(context.Background(), o.ID, UpdateStatusRequest{Status: "delivered"})

	assert.ErrorIs(t, err, shared.ErrInvalidState)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateStatus_CancelCancelsPendingPayment(t *testing.T) {
	repo := new(MockOrderRepository)
	o := newTestOrder(t, order.PaymentMethodCOD)
	repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	repo.On("Save", mock.Anything, o).Return(nil)

	resp, err := newTestAdminService(repo, nil).UpdateStatus(context.Background(), o.ID, UpdateStatusRequest{Status: "cancelled"})

	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusCancelled, resp.PaymentStatus)
}

func TestMarkCODPaid(t *testing.T) {
	t.Run("cod order", func(t *testing.T) {
		repo := new(MockOrderRepository)
		o := newTestOrder(t, order.PaymentMethodCOD)
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		repo.On("Save", mock.Anything, o).Return(nil)

		resp, err := newTestAdminService(repo, nil).MarkCODPaid(context.Background(), o.ID)

		require.NoError(t, err)
		assert.True(t, resp.IsPaid)
		assert.Equal(t, order.PaymentStatusPaid, resp.PaymentStatus)
	})

	t.Run("card order rejected", func(t *testing.T) {
		repo := new(MockOrderRepository)
		o := newTestOrder(t, order.PaymentMethodCard)
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := newTestAdminService(repo, nil).MarkCODPaid(context.Background(), o.ID)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("conflict surfaces", func(t *testing.T) {
		repo := new(MockOrderRepository)
		o := newTestOrder(t, order.PaymentMethodCOD)
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		repo.On("Save", mock.Anything, o).Return(shared.ErrConcurrencyConflict)

		_, err := newTestAdminService(repo, nil).MarkCODPaid(context.Background(), o.ID)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestRevenueSummary(t *testing.T) {
	repo := new(MockOrderRepository)
	repo.On("SumPaidSince", mock.Anything, fixedNow.AddDate(0, 0, -7)).Return(decimal.NewFromInt(250000), nil)
	repo.On("SumPaidSince", mock.Anything, fixedNow.AddDate(0, 0, -30)).Return(decimal.NewFromInt(3000000), nil)

	sum, err := newTestAdminService(repo, nil).RevenueSummary(context.Background())

	require.NoError(t, err)
	assert.True(t, sum.WeeklyRevenue.Equal(decimal.NewFromInt(2500)))
	assert.True(t, sum.WeeklyGoal.Equal(decimal.NewFromInt(5000)))
	assert.True(t, sum.WeeklyProgress.Equal(decimal.NewFromInt(50)), "got %s", sum.WeeklyProgress)
	assert.True(t, sum.MonthlyRevenue.Equal(decimal.NewFromInt(30000)))
	assert.True(t, sum.MonthlyProgress.Equal(decimal.NewFromInt(100)), "progress is capped")
	assert.Equal(t, "INR", sum.Currency)
}

func TestRevenueSummary_RepositoryError(t *testing.T) {
	repo := new(MockOrderRepository)
	repo.On("SumPaidSince", mock.Anything, mock.Anything).Return(decimal.Zero, errors.New("db down"))

	_, err := newTestAdminService(repo, nil).RevenueSummary(context.Background())

	assert.Error(t, err)
}

func TestExportXLSX_PagesThroughWindow(t *testing.T) {
	repo := new(MockOrderRepository)
	first := make([]order.Order, exportPageSize)
	for i := range first {
		first[i] = *newTestOrder(t, order.PaymentMethodCOD)
	}
	last := []order.Order{*newTestOrder(t, order.PaymentMethodCard)}
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f order.ListFilter) bool { return f.Page == 1 })).
		Return(first, int64(exportPageSize+1), nil)
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f order.ListFilter) bool { return f.Page == 2 })).
		Return(last, int64(exportPageSize+1), nil)
	sheet := &recordingSheet{}
	var buf bytes.Buffer

	err := newTestAdminService(repo, sheet).ExportXLSX(context.Background(), &buf, ListRequest{Days: 30})

	require.NoError(t, err)
	assert.Len(t, sheet.orders, exportPageSize+1)
	assert.Equal(t, "sheet", buf.String())
	repo.AssertExpectations(t)
}

func TestExportXLSX_Disabled(t *testing.T) {
	err := newTestAdminService(new(MockOrderRepository), nil).ExportXLSX(context.Background(), io.Discard, ListRequest{})
	assert.Error(t, err)
}
