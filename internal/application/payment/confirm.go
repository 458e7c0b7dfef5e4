// Package payment applies gateway confirmations to orders.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"github.com/apparel/storefront/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidSignature is returned when a webhook payload fails verification
var ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")

// Webhook outcomes recorded in metrics
const (
	OutcomeProcessed        = "processed"
	OutcomeDuplicate        = "duplicate"
	OutcomeIgnored          = "ignored"
	OutcomeInvalidSignature = "invalid_signature"
	OutcomeError            = "error"
)

const saveAttempts = 3

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Message   string `json:"message,omitempty"`
}

type outcome int

const (
	outcomePaid outcome = iota + 1
	outcomeFailed
)

// confirmation is a gateway's verdict on one payment
type confirmation struct {
	orderRef string
	intentID string
	outcome  outcome
	reason   string
	shipping *order.Address
	billing  *order.Address
}

// confirmer moves orders to paid or failed on behalf of the webhook services
type confirmer struct {
	orders         order.Repository
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        *telemetry.Metrics
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

func newConfirmer(orders order.Repository, idempotency shared.IdempotencyStore, logger *zap.Logger) confirmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return confirmer{
		orders:         orders,
		idempotency:    idempotency,
		idempotencyTTL: shared.DefaultIdempotencyTTL,
		logger:         logger,
	}
}

// once runs fn unless the event was already handled. A failed run releases
// the key so the gateway's retry is processed.
func (c *confirmer) once(ctx context.Context, provider, eventID string, fn func(context.Context) error) (bool, error) {
	if c.idempotency == nil || eventID == "" {
		return false, fn(ctx)
	}
	key := "webhook:" + provider + ":" + eventID
	fresh, err := c.idempotency.MarkProcessed(ctx, key, c.idempotencyTTL)
	if err != nil {
		// Applying a confirmation twice is harmless, losing one is not.
		logger.WithLogger(ctx, c.logger).Warn("idempotency store unavailable", zap.String("key", key), zap.Error(err))
		return false, fn(ctx)
	}
	if !fresh {
		return true, nil
	}
	if err := fn(ctx); err != nil {
		if releaseErr := c.idempotency.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			logger.WithLogger(ctx, c.logger).Warn("failed to release webhook key", zap.String("key", key), zap.Error(releaseErr))
		}
		return false, err
	}
	return false, nil
}

// apply records the confirmation. Unknown orders and transitions the order
// can no longer make are acknowledged without change.
func (c *confirmer) apply(ctx context.Context, conf confirmation) error {
	log := logger.WithLogger(ctx, c.logger).With(
		zap.String("order_ref", conf.orderRef),
		zap.String("payment_intent_id", conf.intentID),
	)

	for attempt := 1; ; attempt++ {
		o, err := c.find(ctx, conf)
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("webhook references an unknown order")
			return nil
		}
		if err != nil {
			return err
		}
		octx, _ := logger.WithOrderID(ctx, logger.FromContext(ctx), o.ID.String())

		if conf.superseded(o) {
			log.Info("ignoring failure of a superseded payment session",
				zap.String("order_id", o.ID.String()),
				zap.String("current_intent_id", o.PaymentIntentID),
			)
			return nil
		}

		changed, err := c.transition(o, conf)
		if err != nil {
			log.Warn("ignoring confirmation the order cannot take",
				zap.String("order_id", o.ID.String()),
				zap.String("payment_status", string(o.PaymentStatus)),
				zap.Error(err),
			)
			return nil
		}
		if !changed {
			return nil
		}

		err = c.orders.Save(octx, o)
		if errors.Is(err, shared.ErrConcurrencyConflict) && attempt < saveAttempts {
			log.Debug("order changed concurrently, retrying confirmation", zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}

		c.metrics.RecordPaymentOutcome(string(o.PaymentMethod), string(o.PaymentStatus))
		if err := shared.PublishPending(octx, c.eventPublisher, o); err != nil {
			log.Warn("failed to publish order events", zap.Error(err))
		}
		log.Info("payment confirmation applied",
			zap.String("order_id", o.ID.String()),
			zap.String("payment_status", string(o.PaymentStatus)),
		)
		return nil
	}
}

func (c *confirmer) find(ctx context.Context, conf confirmation) (*order.Order, error) {
	if id, err := uuid.Parse(conf.orderRef); err == nil {
		o, err := c.orders.FindByID(ctx, id)
		if err == nil || !errors.Is(err, shared.ErrNotFound) {
			return o, err
		}
	}
	if conf.intentID == "" {
		return nil, shared.ErrNotFound
	}
	return c.orders.FindByPaymentIntentID(ctx, conf.intentID)
}

// superseded reports a failure verdict for a session the order has since
// replaced. Paid verdicts always apply: the customer's money was taken.
func (conf confirmation) superseded(o *order.Order) bool {
	return conf.outcome == outcomeFailed &&
		conf.intentID != "" && o.PaymentIntentID != "" &&
		conf.intentID != o.PaymentIntentID
}

func (c *confirmer) transition(o *order.Order, conf confirmation) (bool, error) {
	switch conf.outcome {
	case outcomePaid:
		if o.PaymentStatus == order.PaymentStatusPaid {
			return false, nil
		}
		if err := o.MarkPaid(); err != nil {
			return false, err
		}
		o.AttachGatewayAddresses(conf.shipping, conf.billing)
		return true, nil
	case outcomeFailed:
		if o.PaymentStatus == order.PaymentStatusFailed {
			return false, nil
		}
		if err := o.MarkPaymentFailed(conf.reason); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, fmt.Errorf("unknown payment outcome %d", conf.outcome)
}

// traced runs one webhook delivery inside a span
func traced(ctx context.Context, provider string, process func(context.Context) (*WebhookResult, error)) (result *WebhookResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", provider+"_webhook",
		telemetry.WebhookProviderKey.String(provider))
	defer func() {
		if result != nil {
			span.SetAttributes(
				telemetry.WebhookEventKey.String(result.EventType),
				telemetry.WebhookDuplicate.Bool(result.Duplicate),
			)
		}
		telemetry.EndSpan(span, err)
	}()
	return process(ctx)
}
