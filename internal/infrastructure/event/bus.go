// Package event dispatches domain events raised by the storefront aggregates
// to in-process subscribers (cache invalidation, metrics, audit logging).
package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/apparel/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// DispatchObserver is told about every handler invocation
type DispatchObserver func(eventType string, err error)

// InMemoryEventBus implements EventBus with synchronous in-process dispatch.
// Handler failures are logged and never fail the publisher: events are
// published after the state change was committed.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	observer DispatchObserver
	running  atomic.Bool
}

// Option configures the bus
type Option func(*InMemoryEventBus)

// WithDispatchObserver installs an observer, e.g. a metrics counter
func WithDispatchObserver(o DispatchObserver) Option {
	return func(b *InMemoryEventBus) {
		b.observer = o
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...Option) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish dispatches events to their handlers in order
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		for _, h := range b.registry.HandlersFor(ev.EventType()) {
			err := b.dispatch(ctx, h, ev)
			if b.observer != nil {
				b.observer(ev.EventType(), err)
			}
			if err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.String("aggregate_id", ev.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// PublishFrom publishes and clears the pending events of aggregates
func (b *InMemoryEventBus) PublishFrom(ctx context.Context, aggregates ...shared.AggregateRoot) {
	for _, a := range aggregates {
		if a == nil {
			continue
		}
		events := a.GetDomainEvents()
		a.ClearDomainEvents()
		_ = b.Publish(ctx, events...)
	}
}

// Subscribe registers handler; without explicit types the handler's own list is used
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start marks the bus running
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop marks the bus stopped. Dispatch is synchronous so nothing is in flight.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	b.logger.Info("event bus stopped")
	return nil
}

// Running reports whether Start was called without a later Stop
func (b *InMemoryEventBus) Running() bool {
	return b.running.Load()
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, ev)
}

// HandlerFunc adapts a function to shared.EventHandler
type HandlerFunc struct {
	Types []string
	Fn    func(ctx context.Context, event shared.DomainEvent) error
}

// Handle implements shared.EventHandler
func (f HandlerFunc) Handle(ctx context.Context, event shared.DomainEvent) error {
	return f.Fn(ctx, event)
}

// EventTypes implements shared.EventHandler
func (f HandlerFunc) EventTypes() []string {
	return f.Types
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
