package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/apparel/storefront/internal/infrastructure/telemetry"
	"github.com/razorpay/razorpay-go/utils"
	"go.uber.org/zap"
)

// ProviderRazorpay labels Razorpay deliveries in metrics and idempotency keys
const ProviderRazorpay = "razorpay"

// Razorpay payment link events
const (
	RazorpayEventLinkPaid      = "payment_link.paid"
	RazorpayEventLinkCancelled = "payment_link.cancelled"
	RazorpayEventLinkExpired   = "payment_link.expired"
)

// RazorpayWebhookService confirms UPI payments from Razorpay payment link events
type RazorpayWebhookService struct {
	confirmer
	secret string
}

// NewRazorpayWebhookService creates a new RazorpayWebhookService
func NewRazorpayWebhookService(secret string, orders order.Repository, idempotency shared.IdempotencyStore, logger *zap.Logger) *RazorpayWebhookService {
	return &RazorpayWebhookService{
		confirmer: newConfirmer(orders, idempotency, logger),
		secret:    secret,
	}
}

// SetMetrics sets the metrics recorder
func (s *RazorpayWebhookService) SetMetrics(metrics *telemetry.Metrics) {
	s.metrics = metrics
}

// SetEventPublisher sets the event publisher
func (s *RazorpayWebhookService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

type razorpayEvent struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink struct {
			Entity struct {
				ID          string          `json:"id"`
				ReferenceID string          `json:"reference_id"`
				Status      string          `json:"status"`
				Notes       json.RawMessage `json:"notes"`
			} `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}

// ProcessWebhook verifies and applies a Razorpay webhook delivery. eventID
// is the X-Razorpay-Event-Id header; without it the payload digest is used.
func (s *RazorpayWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature, eventID string) (*WebhookResult, error) {
	return traced(ctx, ProviderRazorpay, func(ctx context.Context) (*WebhookResult, error) {
		return s.process(ctx, payload, signature, eventID)
	})
}

func (s *RazorpayWebhookService) process(ctx context.Context, payload []byte, signature, eventID string) (*WebhookResult, error) {
	log := logger.WithLogger(ctx, s.logger)

	if signature == "" || !utils.VerifyWebhookSignature(string(payload), signature, s.secret) {
		log.Warn("failed to verify razorpay webhook signature")
		s.metrics.RecordWebhook(ProviderRazorpay, OutcomeInvalidSignature)
		return nil, ErrInvalidSignature
	}

	var event razorpayEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.metrics.RecordWebhook(ProviderRazorpay, OutcomeError)
		return nil, shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Malformed webhook payload: %v", err))
	}
	if eventID == "" {
		sum := sha256.Sum256(payload)
		eventID = "sha256:" + hex.EncodeToString(sum[:])
	}
	result := &WebhookResult{EventID: eventID, EventType: event.Event, Processed: true}

	link := event.Payload.PaymentLink.Entity
	// reference_id carries a per-link suffix, notes.orderId the bare order id
	conf := confirmation{orderRef: noteValue(link.Notes, "orderId"), intentID: link.ID}
	if conf.orderRef == "" {
		conf.orderRef = link.ReferenceID
	}
	switch event.Event {
	case RazorpayEventLinkPaid:
		conf.outcome = outcomePaid
	case RazorpayEventLinkCancelled, RazorpayEventLinkExpired:
		conf.outcome, conf.reason = outcomeFailed, "payment link "+link.Status
	default:
		log.Debug("unhandled razorpay event type", zap.String("event_type", event.Event))
		s.metrics.RecordWebhook(ProviderRazorpay, OutcomeIgnored)
		result.Message = "Event type not handled"
		return result, nil
	}

	duplicate, err := s.once(ctx, ProviderRazorpay, eventID, func(ctx context.Context) error {
		return s.apply(ctx, conf)
	})
	if err != nil {
		log.Error("failed to process razorpay webhook",
			zap.String("event_id", eventID),
			zap.String("event_type", event.Event),
			zap.Error(err),
		)
		s.metrics.RecordWebhook(ProviderRazorpay, OutcomeError)
		return nil, err
	}
	if duplicate {
		s.metrics.RecordWebhook(ProviderRazorpay, OutcomeDuplicate)
		result.Duplicate = true
		result.Message = "Event already processed"
		return result, nil
	}
	s.metrics.RecordWebhook(ProviderRazorpay, OutcomeProcessed)
	return result, nil
}

// noteValue reads a string note. Razorpay sends an empty array when a link
// has no notes.
func noteValue(raw json.RawMessage, key string) string {
	var notes map[string]any
	if err := json.Unmarshal(raw, &notes); err != nil {
		return ""
	}
	v, _ := notes[key].(string)
	return v
}
