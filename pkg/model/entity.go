package model

import (
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/roach88/modelkit/pkg/value"
)

// FingerprintDomain separates entity fingerprints from other hashed content.
const FingerprintDomain = "modelkit/entity/v1"

// Model is implemented by *Entity and by every derived entity type that
// embeds one. Collections operate on Models so derived types keep their own
// methods.
type Model interface {
	Base() *Entity
}

// Constructor builds a Model from a raw record. New has this shape for
// *Entity; derived types wrap New.
type Constructor[T Model] func(raw Raw, opts ...Option) (T, error)

// Entity wraps a raw record into two disjoint attribute namespaces.
//
// Every key present at construction resolves to exactly one namespace
// through a static index. Writes go to the owning namespace; writes to
// undeclared keys are admitted into the transient namespace only when the
// entity was built WithAllowUnknown(true).
//
// Entity performs no locking. Callers sharing one across goroutines must
// serialize mutating calls, including cache-populating reads.
type Entity struct {
	id           string
	persisted    value.Object
	transient    value.Object
	index        map[string]Namespace
	cache        map[string]any
	allowUnknown bool
	logger       *slog.Logger
	ids          IDGenerator
}

// New builds an Entity from raw. Both namespaces are deep-copied, nil
// namespaces become empty and nil values become value.Null.
//
// Returns a SCHEMA_VIOLATION error if a key appears in both namespaces and
// a TYPE_MISMATCH error for a NaN or infinite Float.
func New(raw Raw, opts ...Option) (*Entity, error) {
	o := buildOptions(opts)

	var collisions []string
	for k := range raw.Persisted {
		if raw.Transient.Has(k) {
			collisions = append(collisions, k)
		}
	}
	if len(collisions) > 0 {
		slices.SortFunc(collisions, value.CompareKeys)
		return nil, NewSchemaViolationError(collisions)
	}
	for _, obj := range []value.Object{raw.Persisted, raw.Transient} {
		for _, k := range obj.SortedKeys() {
			if err := value.CheckFinite(obj[k]); err != nil {
				return nil, newUnstorableError("", k, err)
			}
		}
	}

	e := &Entity{
		id:           o.ids.Generate(),
		persisted:    normalize(raw.Persisted),
		transient:    normalize(raw.Transient),
		index:        make(map[string]Namespace, len(raw.Persisted)+len(raw.Transient)),
		cache:        make(map[string]any),
		allowUnknown: o.allowUnknown,
		logger:       o.logger,
		ids:          o.ids,
	}
	for k := range e.persisted {
		e.index[k] = Persisted
	}
	for k := range e.transient {
		e.index[k] = Transient
	}
	return e, nil
}

func normalize(obj value.Object) value.Object {
	out := obj.Clone()
	for k, v := range out {
		if v == nil {
			out[k] = value.Null{}
		}
	}
	return out
}

// Base returns e. It lets *Entity satisfy Model.
func (e *Entity) Base() *Entity {
	return e
}

// ID returns the per-instance identifier.
func (e *Entity) ID() string {
	return e.id
}

// AllowsUnknown reports whether undeclared keys may be written.
func (e *Entity) AllowsUnknown() bool {
	return e.allowUnknown
}

func (e *Entity) namespace(ns Namespace) value.Object {
	if ns == Persisted {
		return e.persisted
	}
	return e.transient
}

// Lookup returns a copy of the value stored under key, whichever namespace
// owns it. It never logs.
func (e *Entity) Lookup(key string) (value.Value, bool) {
	ns, ok := e.index[key]
	if !ok {
		return nil, false
	}
	return value.Clone(e.namespace(ns)[key]), true
}

// Get returns the value stored under key. A key absent from both namespaces
// logs a warning and returns (nil, false); zero values such as Int(0),
// String("") and Bool(false) are present values and are returned silently.
func (e *Entity) Get(key string) (value.Value, bool) {
	v, ok := e.Lookup(key)
	if !ok {
		e.logger.Warn("attribute not defined on persisted or transient namespace",
			"entity_id", e.id,
			"key", key,
			"code", CodeMissingAttribute)
	}
	return v, ok
}

// Set writes v under key in the namespace that owns key.
//
// An undeclared key is created in the transient namespace when unknown
// attributes are allowed; otherwise Set logs a warning, leaves the entity
// unchanged and returns an UNKNOWN_ATTRIBUTE error. A nil v stores Null.
// A NaN or infinite Float anywhere in v is a TYPE_MISMATCH.
func (e *Entity) Set(key string, v value.Value) error {
	if v == nil {
		v = value.Null{}
	}
	if err := value.CheckFinite(v); err != nil {
		return newUnstorableError(e.id, key, err)
	}

	ns, ok := e.index[key]
	if !ok {
		if !e.allowUnknown {
			e.logger.Warn("rejected write to undeclared attribute",
				"entity_id", e.id,
				"key", key,
				"code", CodeUnknownAttribute)
			return NewUnknownAttributeError(e.id, key)
		}
		ns = Transient
		e.index[key] = ns
		e.logger.Debug("admitted unknown attribute",
			"entity_id", e.id,
			"key", key,
			"namespace", ns.String())
	}

	e.namespace(ns)[key] = value.Clone(v)
	return nil
}

// SetAny converts v with value.FromAny and stores it under key.
// A conversion error leaves the entity unchanged.
func (e *Entity) SetAny(key string, v any) error {
	converted, err := value.FromAny(v)
	if err != nil {
		return newUnstorableError(e.id, key, err)
	}
	return e.Set(key, converted)
}

// Has reports whether key is declared in either namespace.
func (e *Entity) Has(key string) bool {
	_, ok := e.index[key]
	return ok
}

// NamespaceOf reports which namespace owns key.
func (e *Entity) NamespaceOf(key string) (Namespace, bool) {
	ns, ok := e.index[key]
	return ns, ok
}

// Keys returns every declared key in sorted order.
func (e *Entity) Keys() []string {
	keys := make([]string, 0, len(e.index))
	for k := range e.index {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, value.CompareKeys)
	return keys
}

// PersistedKeys returns the persisted namespace keys in sorted order.
func (e *Entity) PersistedKeys() []string {
	return e.persisted.SortedKeys()
}

// TransientKeys returns the transient namespace keys in sorted order.
func (e *Entity) TransientKeys() []string {
	return e.transient.SortedKeys()
}

// Snapshot returns a deep copy of both namespaces, including any unknown
// keys admitted since construction.
func (e *Entity) Snapshot() Raw {
	return Raw{
		Persisted: e.persisted.Clone(),
		Transient: e.transient.Clone(),
	}
}

// Options returns options that rebuild an entity with e's configuration.
func (e *Entity) Options() []Option {
	return []Option{
		WithAllowUnknown(e.allowUnknown),
		WithLogger(e.logger),
		WithIDGenerator(e.ids),
	}
}

// CanonicalForm returns a deep copy of the persisted namespace. Transient
// attributes never appear in it.
func (e *Entity) CanonicalForm() value.Object {
	return e.persisted.Clone()
}

// MarshalJSON encodes the canonical form.
func (e *Entity) MarshalJSON() ([]byte, error) {
	return value.Marshal(e.CanonicalForm())
}

// DisplayString renders the canonical form as JSON with sorted keys.
func (e *Entity) DisplayString() string {
	return string(value.MustMarshal(e.CanonicalForm()))
}

// SessionString renders the transient namespace as JSON with sorted keys.
func (e *Entity) SessionString() string {
	return string(value.MustMarshal(e.transient.Clone()))
}

// FullString renders both namespaces as {"persisted":...,"transient":...}.
func (e *Entity) FullString() string {
	return string(value.MustMarshal(value.Object{
		"persisted": e.persisted.Clone(),
		"transient": e.transient.Clone(),
	}))
}

// String returns DisplayString.
func (e *Entity) String() string {
	return e.DisplayString()
}

// Fingerprint returns the SHA-256 of the RFC 8785 canonical form.
func (e *Entity) Fingerprint() (string, error) {
	return value.Fingerprint(FingerprintDomain, e.persisted)
}

// Clone returns an independent deep copy with the same options, a fresh ID
// and an empty cache. Unknown keys admitted before the clone stay transient.
func (e *Entity) Clone() *Entity {
	clone := &Entity{
		id:           e.ids.Generate(),
		persisted:    e.persisted.Clone(),
		transient:    e.transient.Clone(),
		index:        make(map[string]Namespace, len(e.index)),
		cache:        make(map[string]any),
		allowUnknown: e.allowUnknown,
		logger:       e.logger,
		ids:          e.ids,
	}
	for k, ns := range e.index {
		clone.index[k] = ns
	}
	return clone
}

// CloneAs rebuilds m through ctor from a deep snapshot and m's options, so a
// derived type clones into the same derived type.
func CloneAs[T Model](m T, ctor Constructor[T]) (T, error) {
	base := m.Base()
	return ctor(base.Snapshot(), base.Options()...)
}

var _ json.Marshaler = (*Entity)(nil)
