package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/apparel/storefront/internal/application/checkout"
	"github.com/apparel/storefront/internal/domain/design"
	"github.com/apparel/storefront/internal/domain/identity"
	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/apparel/storefront/internal/domain/pricing"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/cache"
	paymentinfra "github.com/apparel/storefront/internal/infrastructure/payment"
	"github.com/apparel/storefront/internal/infrastructure/persistence"
	"github.com/apparel/storefront/internal/infrastructure/persistence/models"
	"github.com/apparel/storefront/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const concurrentCheckouts = 12

type checkoutFixture struct {
	db      *TestDB
	orders  *persistence.GormOrderRepository
	configs *persistence.GormConfigurationRepository
	service *checkout.Service
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := NewTestDB(t)
	colors := persistence.NewGormColorRepository(db.DB)
	sizes := persistence.NewGormSizeRepository(db.DB)
	fabrics := persistence.NewGormFabricRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)
	configs := persistence.NewGormConfigurationRepository(db.DB)
	orders := persistence.NewGormOrderRepository(db.DB)
	users := persistence.NewGormUserRepository(db.DB)

	redirects := paymentinfra.Redirects{ServerURL: "https://shop.example.com"}
	registry, err := payment.NewRegistry(paymentinfra.NewCODAdapter(redirects))
	require.NoError(t, err)

	calculator := pricing.NewCalculator(decimal.NewFromInt(30000), pricing.SurchargeTable{}, decimal.Zero)
	service := checkout.NewService(configs, design.NewResolver(colors, sizes, fabrics, products), calculator,
		orders, users, registry, redirects, checkout.Options{Currency: "INR"}, nil)

	return &checkoutFixture{db: db, orders: orders, configs: configs, service: service}
}

func (f *checkoutFixture) customConfiguration(t *testing.T) *design.Configuration {
	t.Helper()
	cfg, err := design.NewCustom("https://cdn.example.com/"+uuid.NewString()+".png", 500, 600)
	require.NoError(t, err)
	cfg.ClearDomainEvents()
	require.NoError(t, f.configs.Save(context.Background(), cfg))
	return cfg
}

func (f *checkoutFixture) countOrders(t *testing.T, userID string, cfgID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.DB.Model(&models.OrderModel{}).
		Where("user_id = ? AND configuration_id = ?", userID, cfgID).
		Count(&n).Error)
	return n
}

// race runs fn concurrently, released together, and collects its results
func race[T any](n int, fn func() (T, error)) ([]T, []error) {
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]T, n)
		errs    = make([]error, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = fn()
		}(i)
	}
	close(start)
	wg.Wait()
	return results, errs
}

func TestCheckout_ConcurrentRequestsCreateOneOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	cfg := f.customConfiguration(t)
	caller := identity.Principal{UserID: "user-race", Email: "race@example.com"}

	results, errs := race(concurrentCheckouts, func() (*checkout.CheckoutResult, error) {
		return f.service.Checkout(context.Background(), caller, checkout.CheckoutRequest{
			ConfigurationID: cfg.ID,
			PaymentMethod:   "cod",
		})
	})

	for _, err := range errs {
		require.NoError(t, err)
	}
	orderID := results[0].OrderID
	for _, r := range results {
		assert.Equal(t, orderID, r.OrderID)
	}
	assert.EqualValues(t, 1, f.countOrders(t, caller.UserID, cfg.ID))

	stored, err := f.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPending, stored.PaymentStatus)
	assert.Equal(t, "cod_"+orderID.String(), stored.PaymentIntentID)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(30000)))
}

func TestCheckout_ConcurrentRequestsWithLocker(t *testing.T) {
	f := newCheckoutFixture(t)
	locker := cache.NewInMemoryLocker()
	t.Cleanup(func() { _ = locker.Close() })
	f.service.SetLocker(locker)
	cfg := f.customConfiguration(t)
	caller := identity.Principal{UserID: "user-locked", Email: "locked@example.com"}

	orders, errs := race(concurrentCheckouts, func() (*order.Order, error) {
		return f.service.CreateOrGetOrder(context.Background(), caller, checkout.CheckoutRequest{
			ConfigurationID: cfg.ID,
			PaymentMethod:   "cod",
		})
	})

	for _, err := range errs {
		require.NoError(t, err)
	}
	for _, o := range orders {
		assert.Equal(t, orders[0].ID, o.ID)
	}
	assert.EqualValues(t, 1, f.countOrders(t, caller.UserID, cfg.ID))
}

func TestCheckout_DifferentUsersGetSeparateOrders(t *testing.T) {
	f := newCheckoutFixture(t)
	cfg := f.customConfiguration(t)
	ctx := context.Background()

	a, err := f.service.CreateOrGetOrder(ctx, identity.Principal{UserID: "user-a", Email: "a@example.com"},
		checkout.CheckoutRequest{ConfigurationID: cfg.ID, PaymentMethod: "cod"})
	require.NoError(t, err)
	b, err := f.service.CreateOrGetOrder(ctx, identity.Principal{UserID: "user-b", Email: "b@example.com"},
		checkout.CheckoutRequest{ConfigurationID: cfg.ID, PaymentMethod: "cod"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestOrderRepository_ConcurrentSaveDetectsStaleVersion(t *testing.T) {
	f := newCheckoutFixture(t)
	cfg := f.customConfiguration(t)
	ctx := context.Background()

	created, err := f.service.CreateOrGetOrder(ctx, identity.Principal{UserID: "user-v", Email: "v@example.com"},
		checkout.CheckoutRequest{ConfigurationID: cfg.ID, PaymentMethod: "cod"})
	require.NoError(t, err)

	first, err := f.orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := f.orders.FindByID(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, first.MarkPaid())
	require.NoError(t, f.orders.Save(ctx, first))

	require.NoError(t, second.UpdateFulfillment(order.FulfillmentProcessing))
	err = f.orders.Save(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	stored, err := f.orders.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	assert.Equal(t, order.FulfillmentPending, stored.Status)
}

func TestOrderRepository_PaidLookups(t *testing.T) {
	f := newCheckoutFixture(t)
	cfg := f.customConfiguration(t)
	ctx := context.Background()

	o, err := f.service.CreateOrGetOrder(ctx, identity.Principal{UserID: "user-p", Email: "p@example.com"},
		checkout.CheckoutRequest{ConfigurationID: cfg.ID, PaymentMethod: "cod"})
	require.NoError(t, err)

	paid, err := f.orders.ExistsPaidForConfiguration(ctx, cfg.ID)
	require.NoError(t, err)
	assert.False(t, paid)

	require.NoError(t, o.MarkPaid())
	require.NoError(t, f.orders.Save(ctx, o))

	paid, err = f.orders.ExistsPaidForConfiguration(ctx, cfg.ID)
	require.NoError(t, err)
	assert.True(t, paid)

	sum, err := f.orders.SumPaidSince(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(30000)), "got %s", sum)
}

func TestCatalogSeed_OnPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db := NewSharedTestDB(t)
	t.Cleanup(db.CleanTables)

	seeded := testutil.SeedCatalog(t, db.DB, testutil.CatalogSeed{FabricValue: "polyester"})

	got, err := persistence.NewGormProductRepository(db.DB).FindByID(context.Background(), seeded.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.Product.Title, got.Title)
	assert.Equal(t, []uuid.UUID{seeded.Fabric.ID}, got.AvailableFabrics)
}
