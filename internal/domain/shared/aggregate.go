package shared

// AggregateRoot buffers the domain events raised by its mutations until
// they are published
type AggregateRoot interface {
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot is embedded by products, configurations and orders.
// Version backs optimistic locking in the repositories and starts at 1.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

// NewBaseAggregateRoot returns a fresh aggregate at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// IncrementVersion is called once per state change
func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.pending }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.pending = nil }
