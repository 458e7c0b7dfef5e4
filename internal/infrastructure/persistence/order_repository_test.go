package persistence

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestOrder(t *testing.T, userID string, cfgID uuid.UUID, method order.PaymentMethod) *order.Order {
	t.Helper()
	shipping, err := order.NewAddress(order.AddressInput{
		Name:       "Asha Rao",
		Street:     "12 MG Road",
		City:       "Bengaluru",
		PostalCode: "560001",
		Country:    "IN",
	})
	require.NoError(t, err)
	o, err := order.NewOrder(userID, cfgID, decimal.NewFromInt(30000), "inr", method, shipping)
	require.NoError(t, err)
	return o
}

func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewGormOrderRepository(gormDB), mock, mockDB
}

func TestGormOrderRepository_CreateIfAbsent(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	cfgID := uuid.New()

	first := newTestOrder(t, "user-1", cfgID, order.PaymentMethodCard)
	created, err := repo.CreateIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := newTestOrder(t, "user-1", cfgID, order.PaymentMethodCOD)
	created, err = repo.CreateIfAbsent(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.FindByUserAndConfiguration(ctx, "user-1", cfgID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, order.PaymentMethodCard, stored.PaymentMethod)
	assert.Equal(t, order.PaymentStatusInitiated, stored.PaymentStatus)
	assert.Equal(t, "INR", stored.Currency)
	require.NotNil(t, stored.ShippingAddress)
	assert.Equal(t, "Bengaluru", stored.ShippingAddress.City)

	var addresses int64
	require.NoError(t, db.Table("addresses").Count(&addresses).Error)
	assert.Equal(t, int64(1), addresses, "losing insert leaves no address rows")

	other := newTestOrder(t, "user-2", cfgID, order.PaymentMethodCard)
	created, err = repo.CreateIfAbsent(ctx, other)
	require.NoError(t, err)
	assert.True(t, created, "a different user may order the same configuration")
}

func TestGormOrderRepository_CreateIfAbsent_Concurrent(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	cfgID := uuid.New()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]bool, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = repo.CreateIfAbsent(ctx, newTestOrder(t, "user-race", cfgID, order.PaymentMethodUPI))
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i] {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	orders, total, err := repo.FindAll(ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, orders, 1)
}

func TestGormOrderRepository_CreateIfAbsent_SQL(t *testing.T) {
	repo, mock, mockDB := newMockOrderRepository(t)
	defer mockDB.Close()

	o, err := order.NewOrder("user-1", uuid.New(), decimal.NewFromInt(30000), "", order.PaymentMethodCard, nil)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "orders" .* ON CONFLICT \("user_id","configuration_id"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	created, err := repo.CreateIfAbsent(context.Background(), o)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_Save(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, "user-1", uuid.New(), order.PaymentMethodCard)
	_, err := repo.CreateIfAbsent(ctx, o)
	require.NoError(t, err)

	t.Run("bumps version and persists payment fields", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.RecordPaymentInitiation("cs_test_123", order.PaymentStatusInitiated))
		require.NoError(t, repo.Save(ctx, loaded))
		assert.Equal(t, o.Version+1, loaded.Version)

		byIntent, err := repo.FindByPaymentIntentID(ctx, "cs_test_123")
		require.NoError(t, err)
		assert.Equal(t, o.ID, byIntent.ID)
		assert.Equal(t, loaded.Version, byIntent.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		stale, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		fresh, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)

		require.NoError(t, fresh.MarkPaid())
		require.NoError(t, repo.Save(ctx, fresh))

		require.NoError(t, stale.MarkPaymentFailed("card declined"))
		err = repo.Save(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		stored, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsPaid)
		assert.Equal(t, order.PaymentStatusPaid, stored.PaymentStatus)
		assert.NotNil(t, stored.PaidAt)
	})

	t.Run("unknown order", func(t *testing.T) {
		ghost := newTestOrder(t, "user-1", uuid.New(), order.PaymentMethodCard)
		assert.ErrorIs(t, repo.Save(ctx, ghost), shared.ErrNotFound)
	})
}

func TestGormOrderRepository_FindByIDForUser(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, "owner", uuid.New(), order.PaymentMethodCOD)
	_, err := repo.CreateIfAbsent(ctx, o)
	require.NoError(t, err)

	found, err := repo.FindByIDForUser(ctx, o.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPending, found.PaymentStatus)

	_, err = repo.FindByIDForUser(ctx, o.ID, "someone-else")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByPaymentIntentID(ctx, "")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_ListingAndTotals(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	paidCfg := uuid.New()
	paid := newTestOrder(t, "user-1", paidCfg, order.PaymentMethodCard)
	unpaid := newTestOrder(t, "user-2", uuid.New(), order.PaymentMethodCOD)
	for _, o := range []*order.Order{paid, unpaid} {
		_, err := repo.CreateIfAbsent(ctx, o)
		require.NoError(t, err)
	}
	require.NoError(t, paid.MarkPaid())
	require.NoError(t, repo.Save(ctx, paid))

	total, err := repo.SumPaidSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30000).Equal(total), "got %s", total)

	none, err := repo.SumPaidSince(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, none.IsZero())

	status := order.PaymentStatusPending
	orders, count, err := repo.FindAll(ctx, order.ListFilter{
		Filter:        shared.Filter{Page: 1, PageSize: 10},
		PaymentStatus: &status,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	require.Len(t, orders, 1)
	assert.Equal(t, unpaid.ID, orders[0].ID)

	exists, err := repo.ExistsPaidForConfiguration(ctx, paidCfg)
	require.NoError(t, err)
	assert.True(t, exists)
}
