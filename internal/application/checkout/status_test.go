package checkout

import (
	"context"
	"testing"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	cfg := h.customConfig(t, &h.cotton.ID)
	res, err := h.service(t, 10000).Checkout(ctx, u1, request(cfg.ID, "cod"))
	require.NoError(t, err)
	status := NewStatusService(h.orders, h.configs, h.resolver(), h.users, nil)

	t.Run("owner sees the joined view", func(t *testing.T) {
		view, err := status.GetOrderStatus(ctx, "u1", res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, ResolutionResolved, view.Resolution)
		assert.Equal(t, res.OrderID, view.Order.ID)
		assert.True(t, view.Order.Amount.Equal(decimal.NewFromInt(30000)))
		assert.Equal(t, "u1@example.com", view.Email)
		require.NotNil(t, view.Configuration)
		assert.Equal(t, "Cotton", view.Configuration.Fabric)
	})

	t.Run("other user gets not found", func(t *testing.T) {
		_, err := status.GetOrderStatus(ctx, "u2", res.OrderID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := status.GetOrderStatus(ctx, "", res.OrderID)
		assert.ErrorIs(t, err, shared.ErrUnauthenticated)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := status.GetOrderStatus(ctx, "u1", uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deleted fabric shows N/A", func(t *testing.T) {
		h.fabrics.remove(h.cotton.ID)
		defer h.fabrics.put(h.cotton.ID, h.cotton)

		view, err := status.GetOrderStatus(ctx, "u1", res.OrderID)
		require.NoError(t, err)
		assert.Equal(t, "N/A", view.Configuration.Fabric)
		assert.True(t, view.Order.Amount.Equal(decimal.NewFromInt(30000)))
	})

	t.Run("missing configuration is omitted", func(t *testing.T) {
		h.configs.mu.Lock()
		saved := h.configs.byID[cfg.ID]
		delete(h.configs.byID, cfg.ID)
		h.configs.mu.Unlock()
		defer func() { _ = h.configs.Save(ctx, saved) }()

		view, err := status.GetOrderStatus(ctx, "u1", res.OrderID)
		require.NoError(t, err)
		assert.Nil(t, view.Configuration)
	})
}

func TestGetOrderStatus_CardAwaitingWebhook(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	cfg := h.customConfig(t, nil)
	res, err := h.service(t, 10000).Checkout(ctx, u1, request(cfg.ID, "card"))
	require.NoError(t, err)
	status := NewStatusService(h.orders, h.configs, h.resolver(), h.users, nil)

	view, err := status.GetOrderStatus(ctx, "u1", res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, ResolutionNotResolved, view.Resolution)
}

func TestResolutionOf(t *testing.T) {
	tests := []struct {
		method order.PaymentMethod
		status order.PaymentStatus
		want   Resolution
	}{
		{order.PaymentMethodCard, order.PaymentStatusPaid, ResolutionResolved},
		{order.PaymentMethodCOD, order.PaymentStatusPending, ResolutionResolved},
		{order.PaymentMethodUPI, order.PaymentStatusPending, ResolutionNotResolved},
		{order.PaymentMethodCard, order.PaymentStatusInitiated, ResolutionNotResolved},
		{order.PaymentMethodCard, order.PaymentStatusFailed, ResolutionUnsuccessful},
		{order.PaymentMethodCOD, order.PaymentStatusCancelled, ResolutionUnsuccessful},
	}
	for _, tt := range tests {
		t.Run(string(tt.method)+"/"+string(tt.status), func(t *testing.T) {
			o := &order.Order{PaymentMethod: tt.method, PaymentStatus: tt.status}
			assert.Equal(t, tt.want, ResolutionOf(o))
		})
	}
}
