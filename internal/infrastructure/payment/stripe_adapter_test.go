package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/payment"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"
	"go.uber.org/zap"
)

// mockBackend implements stripe.Backend for testing
type mockBackend struct {
	handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)
}

func (m *mockBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	data, err := m.handler(method, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (m *mockBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) SetMaxNetworkRetries(maxNetworkRetries int64) {}

func testStripeConfig() StripeConfig {
	return StripeConfig{
		SecretKey: "sk_test_123456789",
		Redirects: Redirects{ServerURL: "https://shop.example.com/"},
	}
}

func testInitiateRequest() payment.InitiateRequest {
	return payment.InitiateRequest{
		OrderID:         uuid.New(),
		ConfigurationID: uuid.New(),
		UserID:          "user-1",
		Email:           "asha@example.com",
		Amount:          decimal.NewFromInt(30000),
		Currency:        "INR",
	}
}

func TestStripeConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  StripeConfig
		wantErr bool
	}{
		{name: "valid", config: testStripeConfig()},
		{name: "missing key", config: StripeConfig{Redirects: Redirects{ServerURL: "https://x"}}, wantErr: true},
		{name: "bad key format", config: StripeConfig{SecretKey: "pk_test_1", Redirects: Redirects{ServerURL: "https://x"}}, wantErr: true},
		{name: "missing server url", config: StripeConfig{SecretKey: "sk_test_1"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStripeAdapter_Initiate(t *testing.T) {
	req := testInitiateRequest()

	var gotPath string
	var gotParams *stripe.CheckoutSessionParams
	backend := &mockBackend{handler: func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		gotPath = path
		gotParams = params.(*stripe.CheckoutSessionParams)
		return json.Marshal(map[string]any{
			"id":  "cs_test_abc",
			"url": "https://checkout.stripe.com/c/pay/cs_test_abc",
		})
	}}

	adapter, err := NewStripeAdapter(testStripeConfig(), backend, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, order.PaymentMethodCard, adapter.Method())

	result, err := adapter.Initiate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "cs_test_abc", result.PaymentIntentID)
	assert.Equal(t, order.PaymentStatusInitiated, result.PaymentStatus)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_abc", result.RedirectURL)

	assert.Equal(t, "/v1/checkout/sessions", gotPath)
	require.NotNil(t, gotParams)
	assert.Equal(t, "https://shop.example.com/thank-you?orderId="+req.OrderID.String(), *gotParams.SuccessURL)
	assert.Equal(t, "https://shop.example.com/configure/preview?id="+req.ConfigurationID.String(), *gotParams.CancelURL)
	assert.Equal(t, req.OrderID.String(), gotParams.Metadata["orderId"])
	assert.Equal(t, "user-1", gotParams.Metadata["userId"])
	require.Len(t, gotParams.LineItems, 1)
	assert.Equal(t, int64(30000), *gotParams.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "inr", *gotParams.LineItems[0].PriceData.Currency)
	assert.Equal(t, DefaultProductName, *gotParams.LineItems[0].PriceData.ProductData.Name)
	assert.Equal(t, []*string{stripe.String("IN"), stripe.String("US")}, gotParams.ShippingAddressCollection.AllowedCountries)
}

func TestStripeAdapter_Initiate_GatewayError(t *testing.T) {
	backend := &mockBackend{handler: func(string, string, stripe.ParamsContainer) ([]byte, error) {
		return nil, &stripe.Error{Type: stripe.ErrorTypeAPI, Msg: "boom"}
	}}
	adapter, err := NewStripeAdapter(testStripeConfig(), backend, zap.NewNop())
	require.NoError(t, err)

	result, err := adapter.Initiate(context.Background(), testInitiateRequest())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrPaymentGateway)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "PAYMENT_GATEWAY_ERROR", domainErr.Code)
}
