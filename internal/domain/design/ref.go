package design

import "github.com/google/uuid"

// NotAvailable is shown in place of a reference that cannot be displayed
const NotAvailable = "N/A"

// RefState tells how a catalog reference resolved
type RefState int

const (
	// RefAbsent means no record was selected
	RefAbsent RefState = iota
	// RefUnresolved means a record was selected but no longer exists
	RefUnresolved
	// RefResolved means the record was loaded
	RefResolved
)

func (s RefState) String() string {
	switch s {
	case RefUnresolved:
		return "unresolved"
	case RefResolved:
		return "resolved"
	default:
		return "absent"
	}
}

// Ref is a by-id reference to a catalog record after resolution.
// Its zero value is absent.
type Ref[T any] struct {
	id    *uuid.UUID
	value *T
}

// Absent returns a reference with no selection
func Absent[T any]() Ref[T] {
	return Ref[T]{}
}

// Unresolved returns a reference to a record that could not be found
func Unresolved[T any](id uuid.UUID) Ref[T] {
	return Ref[T]{id: &id}
}

// Resolved returns a reference holding the loaded record
func Resolved[T any](id uuid.UUID, value *T) Ref[T] {
	if value == nil {
		return Unresolved[T](id)
	}
	return Ref[T]{id: &id, value: value}
}

// State returns the resolution state
func (r Ref[T]) State() RefState {
	switch {
	case r.value != nil:
		return RefResolved
	case r.id != nil:
		return RefUnresolved
	default:
		return RefAbsent
	}
}

// ID returns the referenced id, nil when absent
func (r Ref[T]) ID() *uuid.UUID {
	return r.id
}

// Get returns the record when resolved
func (r Ref[T]) Get() (*T, bool) {
	return r.value, r.value != nil
}

// Display renders the resolved record with f, or NotAvailable
func (r Ref[T]) Display(f func(*T) string) string {
	if r.value == nil {
		return NotAvailable
	}
	if s := f(r.value); s != "" {
		return s
	}
	return NotAvailable
}
