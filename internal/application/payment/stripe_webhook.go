package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/apparel/storefront/internal/infrastructure/telemetry"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// ProviderStripe labels Stripe deliveries in metrics and idempotency keys
const ProviderStripe = "stripe"

// StripeWebhookService confirms card payments from Stripe Checkout events
type StripeWebhookService struct {
	confirmer
	secret string
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(secret string, orders order.Repository, idempotency shared.IdempotencyStore, logger *zap.Logger) *StripeWebhookService {
	return &StripeWebhookService{
		confirmer: newConfirmer(orders, idempotency, logger),
		secret:    secret,
	}
}

// SetMetrics sets the metrics recorder
func (s *StripeWebhookService) SetMetrics(metrics *telemetry.Metrics) {
	s.metrics = metrics
}

// SetEventPublisher sets the event publisher
func (s *StripeWebhookService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// sessionShipping is the shipping block collected on the hosted page
type sessionShipping struct {
	ShippingDetails *struct {
		Name    string          `json:"name"`
		Phone   string          `json:"phone"`
		Address *stripe.Address `json:"address"`
	} `json:"shipping_details"`
}

// ProcessWebhook verifies and applies a Stripe webhook delivery
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	return traced(ctx, ProviderStripe, func(ctx context.Context) (*WebhookResult, error) {
		return s.process(ctx, payload, signature)
	})
}

func (s *StripeWebhookService) process(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	log := logger.WithLogger(ctx, s.logger)

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Warn("failed to verify stripe webhook signature", zap.Error(err))
		s.metrics.RecordWebhook(ProviderStripe, OutcomeInvalidSignature)
		return nil, ErrInvalidSignature
	}

	result := &WebhookResult{EventID: event.ID, EventType: string(event.Type), Processed: true}
	conf, handled, err := s.confirmation(event)
	if err != nil {
		s.metrics.RecordWebhook(ProviderStripe, OutcomeError)
		return nil, err
	}
	if !handled {
		log.Debug("unhandled stripe event type", zap.String("event_type", string(event.Type)))
		s.metrics.RecordWebhook(ProviderStripe, OutcomeIgnored)
		result.Message = "Event type not handled"
		return result, nil
	}

	duplicate, err := s.once(ctx, ProviderStripe, event.ID, func(ctx context.Context) error {
		return s.apply(ctx, conf)
	})
	if err != nil {
		log.Error("failed to process stripe webhook",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		s.metrics.RecordWebhook(ProviderStripe, OutcomeError)
		return nil, err
	}
	if duplicate {
		s.metrics.RecordWebhook(ProviderStripe, OutcomeDuplicate)
		result.Duplicate = true
		result.Message = "Event already processed"
		return result, nil
	}
	s.metrics.RecordWebhook(ProviderStripe, OutcomeProcessed)
	return result, nil
}

// confirmation maps a Stripe event onto a payment verdict
func (s *StripeWebhookService) confirmation(event stripe.Event) (confirmation, bool, error) {
	var verdict outcome
	reason := ""
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		verdict = outcomePaid
	case stripe.EventTypeCheckoutSessionExpired:
		verdict, reason = outcomeFailed, "checkout session expired"
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		verdict, reason = outcomeFailed, "async payment failed"
	default:
		return confirmation{}, false, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return confirmation{}, false, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	var shipping sessionShipping
	if err := json.Unmarshal(event.Data.Raw, &shipping); err != nil {
		return confirmation{}, false, fmt.Errorf("failed to unmarshal shipping details: %w", err)
	}
	// Delayed methods complete the session before the money arrives.
	if verdict == outcomePaid && sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return confirmation{}, false, nil
	}

	conf := confirmation{
		orderRef: sess.Metadata["orderId"],
		intentID: sess.ID,
		outcome:  verdict,
		reason:   reason,
	}
	if d := shipping.ShippingDetails; d != nil {
		conf.shipping = stripeAddress(d.Name, d.Phone, d.Address)
	}
	if d := sess.CustomerDetails; d != nil {
		conf.billing = stripeAddress(d.Name, d.Phone, d.Address)
	}
	return conf, true, nil
}

func stripeAddress(name, phone string, a *stripe.Address) *order.Address {
	if a == nil {
		return nil
	}
	street := a.Line1
	if a.Line2 != "" {
		street += ", " + a.Line2
	}
	return order.NewGatewayAddress(order.AddressInput{
		Name:        name,
		Street:      street,
		City:        a.City,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		State:       a.State,
		PhoneNumber: phone,
	})
}
