// Package event subscribes the storefront's cross-cutting handlers to the
// domain event bus.
package event

import (
	"context"

	"github.com/apparel/storefront/internal/domain/order"
	"github.com/apparel/storefront/internal/domain/shared"
	"github.com/apparel/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes every domain event to the structured log
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// Handle implements shared.EventHandler
func (h *AuditLogHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", ev.EventID().String()),
		zap.String("event_type", ev.EventType()),
		zap.String("aggregate_type", ev.AggregateType()),
		zap.String("aggregate_id", ev.AggregateID().String()),
		zap.Time("occurred_at", ev.OccurredAt()),
	}
	switch e := ev.(type) {
	case *order.OrderPaidEvent:
		fields = append(fields,
			zap.String("user_id", e.UserID),
			zap.String("amount", e.Amount.String()),
			zap.String("payment_method", string(e.PaymentMethod)),
		)
	case *order.OrderPaymentFailedEvent:
		fields = append(fields, zap.String("reason", e.Reason))
	case *order.OrderStatusChangedEvent:
		fields = append(fields,
			zap.String("old_status", string(e.OldStatus)),
			zap.String("new_status", string(e.NewStatus)),
		)
	}
	logger.WithLogger(ctx, h.logger).Info("domain event", fields...)
	return nil
}

// EventTypes returns nil: the audit log receives every event
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// RegisterHandlers subscribes the audit log to bus
func RegisterHandlers(bus shared.EventSubscriber, logger *zap.Logger) {
	bus.Subscribe(NewAuditLogHandler(logger))
}
