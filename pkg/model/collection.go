package model

import (
	"encoding/json"
	"log/slog"
	"reflect"

	"github.com/roach88/modelkit/pkg/value"
)

// CollectionConfig configures a Collection.
type CollectionConfig[T Model] struct {
	// Constructor builds each entity. Required.
	Constructor Constructor[T]

	// Owner is an optional back-reference to whatever holds the collection.
	// The collection never dereferences it.
	Owner any

	// Logger receives collection diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// EntityOptions are passed to Constructor for every entity the
	// collection builds, ahead of any per-call options given to Add.
	EntityOptions []Option
}

// Collection is an ordered group of entities built through one constructor.
//
// Insertion order is the canonical order. Duplicates are permitted; identity
// for IndexOf and reference removal is the underlying *Entity pointer.
// Collection performs no locking.
type Collection[T Model] struct {
	items      []T
	ctor       Constructor[T]
	owner      any
	logger     *slog.Logger
	entityOpts []Option
}

// NewCollection builds one entity per raw record, in order. If any
// constructor call fails no collection is returned; the error is a
// CONSTRUCTION_FAILURE wrapping the constructor's error.
func NewCollection[T Model](raws []Raw, cfg CollectionConfig[T]) (*Collection[T], error) {
	if cfg.Constructor == nil {
		return nil, newInvalidConfigError("collection constructor is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Collection[T]{
		ctor:       cfg.Constructor,
		owner:      cfg.Owner,
		logger:     logger,
		entityOpts: cfg.EntityOptions,
	}

	items, err := c.build(raws)
	if err != nil {
		return nil, err
	}
	c.items = items
	return c, nil
}

func (c *Collection[T]) build(raws []Raw) ([]T, error) {
	items := make([]T, 0, len(raws))
	for i, raw := range raws {
		m, err := c.ctor(raw, c.entityOpts...)
		if err != nil {
			return nil, NewConstructionError(i, err)
		}
		items = append(items, m)
	}
	return items, nil
}

// Items returns the live ordered slice. Callers must not append to it or
// reorder it.
func (c *Collection[T]) Items() []T {
	return c.items
}

// Count returns the number of entities.
func (c *Collection[T]) Count() int {
	return len(c.items)
}

// Owner returns the back-reference given at construction.
func (c *Collection[T]) Owner() any {
	return c.owner
}

// First returns the first entity, or false when the collection is empty.
func (c *Collection[T]) First() (T, bool) {
	return c.At(0)
}

// Last returns the last entity, or false when the collection is empty.
func (c *Collection[T]) Last() (T, bool) {
	return c.At(len(c.items) - 1)
}

// At returns the entity at index, or false for any index outside
// [0, Count()).
func (c *Collection[T]) At(index int) (T, bool) {
	if index < 0 || index >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[index], true
}

// IndexOf returns the position of m by reference identity, or -1.
// A nil m is never found.
func (c *Collection[T]) IndexOf(m T) int {
	target := baseOf(m)
	if target == nil {
		return -1
	}
	for i, item := range c.items {
		if item.Base() == target {
			return i
		}
	}
	return -1
}

// baseOf returns m's entity, or nil for a nil m. A derived type embedding
// *Entity panics on Base through a nil receiver, so nil pointers are caught
// before the call.
func baseOf[T Model](m T) *Entity {
	if any(m) == nil {
		return nil
	}
	if rv := reflect.ValueOf(m); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil
	}
	return m.Base()
}

// Contains reports whether m is in the collection.
func (c *Collection[T]) Contains(m T) bool {
	return c.IndexOf(m) >= 0
}

// Add constructs one entity from raw and appends it. The collection's
// entity options are applied first, then opts. On constructor failure
// nothing is appended.
func (c *Collection[T]) Add(raw Raw, opts ...Option) (T, error) {
	all := make([]Option, 0, len(c.entityOpts)+len(opts))
	all = append(all, c.entityOpts...)
	all = append(all, opts...)

	m, err := c.ctor(raw, all...)
	if err != nil {
		var zero T
		return zero, NewConstructionError(len(c.items), err)
	}

	c.items = append(c.items, m)
	c.logger.Debug("entity added",
		"entity_id", m.Base().ID(),
		"count", len(c.items))
	return m, nil
}

// Reset drops every entity, then repopulates from raws exactly as
// NewCollection does. A nil or empty raws leaves the collection empty.
// If any constructor call fails the collection keeps its previous entries.
func (c *Collection[T]) Reset(raws []Raw) error {
	items, err := c.build(raws)
	if err != nil {
		return err
	}

	dropped := len(c.items)
	c.items = items
	c.logger.Debug("collection reset",
		"dropped", dropped,
		"count", len(c.items))
	return nil
}

// FindWhere returns every entity whose attributes deep-equal all pairs in
// attrs, in collection order. An empty attrs matches every entity.
func (c *Collection[T]) FindWhere(attrs value.Object) []T {
	return c.Filter(func(m T) bool {
		return matches(m.Base(), attrs)
	})
}

// Filter returns every entity for which keep returns true, in collection
// order. The result is never nil.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func matches(e *Entity, attrs value.Object) bool {
	for k, want := range attrs {
		got, ok := e.Lookup(k)
		if !ok || !value.Equal(got, want) {
			return false
		}
	}
	return true
}

// CanonicalForm returns each entity's canonical form, in collection order.
func (c *Collection[T]) CanonicalForm() []value.Object {
	out := make([]value.Object, len(c.items))
	for i, item := range c.items {
		out[i] = item.Base().CanonicalForm()
	}
	return out
}

func (c *Collection[T]) canonicalArray() value.Array {
	arr := make(value.Array, len(c.items))
	for i, item := range c.items {
		arr[i] = item.Base().CanonicalForm()
	}
	return arr
}

// MarshalJSON encodes the canonical forms as a JSON array.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	return value.Marshal(c.canonicalArray())
}

// DisplayString renders the canonical forms as JSON with sorted keys.
func (c *Collection[T]) DisplayString() string {
	return string(value.MustMarshal(c.canonicalArray()))
}

// String returns DisplayString.
func (c *Collection[T]) String() string {
	return c.DisplayString()
}

var _ json.Marshaler = (*Collection[*Entity])(nil)
