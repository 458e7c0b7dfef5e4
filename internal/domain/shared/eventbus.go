package shared

import "context"

// EventHandler reacts to published domain events. An empty EventTypes
// subscribes to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus is started before the HTTP server and stopped after it
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PublishPending drains the pending events of each aggregate and publishes
// them in one call. Events are dropped when publisher is nil.
func PublishPending(ctx context.Context, publisher EventPublisher, aggregates ...AggregateRoot) error {
	var events []DomainEvent
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return nil
	}
	return publisher.Publish(ctx, events...)
}
