package model

import (
	"github.com/roach88/modelkit/pkg/value"
)

// Accessor is a handle bound to one attribute key. It reads and writes the
// key without the caller naming its namespace.
type Accessor struct {
	entity *Entity
	key    string
}

// Attr returns the accessor for key. The key need not be declared: reads of
// an undeclared key warn and writes follow the entity's sealing rule.
func (e *Entity) Attr(key string) Accessor {
	return Accessor{entity: e, key: key}
}

// Accessors returns one accessor per declared key, in sorted key order.
func (e *Entity) Accessors() []Accessor {
	keys := e.Keys()
	out := make([]Accessor, len(keys))
	for i, k := range keys {
		out[i] = Accessor{entity: e, key: k}
	}
	return out
}

// Key returns the bound key.
func (a Accessor) Key() string {
	return a.key
}

// Get reads the bound key. See Entity.Get.
func (a Accessor) Get() (value.Value, bool) {
	return a.entity.Get(a.key)
}

// Set writes the bound key. See Entity.Set.
func (a Accessor) Set(v value.Value) error {
	return a.entity.Set(a.key, v)
}

// Namespace reports which namespace owns the bound key.
func (a Accessor) Namespace() (Namespace, bool) {
	return a.entity.NamespaceOf(a.key)
}

func (e *Entity) typed(key string, want value.Kind) (value.Value, error) {
	v, ok := e.Lookup(key)
	if !ok {
		return nil, NewMissingAttributeError(e.id, key)
	}
	if got := value.KindOf(v); got != want {
		return nil, NewTypeMismatchError(e.id, key, want.String(), got.String())
	}
	return v, nil
}

// GetString reads key as a string.
func (e *Entity) GetString(key string) (string, error) {
	v, err := e.typed(key, value.KindString)
	if err != nil {
		return "", err
	}
	return string(v.(value.String)), nil
}

// GetInt reads key as an int64.
func (e *Entity) GetInt(key string) (int64, error) {
	v, err := e.typed(key, value.KindInt)
	if err != nil {
		return 0, err
	}
	return int64(v.(value.Int)), nil
}

// GetFloat reads key as a float64. Int values widen, so a number that
// happens to be integral still reads.
func (e *Entity) GetFloat(key string) (float64, error) {
	v, ok := e.Lookup(key)
	if !ok {
		return 0, NewMissingAttributeError(e.id, key)
	}
	switch n := v.(type) {
	case value.Float:
		return float64(n), nil
	case value.Int:
		return float64(n), nil
	}
	return 0, NewTypeMismatchError(e.id, key, value.KindFloat.String(), value.KindOf(v).String())
}

// GetBool reads key as a bool.
func (e *Entity) GetBool(key string) (bool, error) {
	v, err := e.typed(key, value.KindBool)
	if err != nil {
		return false, err
	}
	return bool(v.(value.Bool)), nil
}

// GetArray reads key as an array. The result is a copy.
func (e *Entity) GetArray(key string) (value.Array, error) {
	v, err := e.typed(key, value.KindArray)
	if err != nil {
		return nil, err
	}
	return v.(value.Array), nil
}

// GetObject reads key as an object. The result is a copy.
func (e *Entity) GetObject(key string) (value.Object, error) {
	v, err := e.typed(key, value.KindObject)
	if err != nil {
		return nil, err
	}
	return v.(value.Object), nil
}

// IsNull reports whether key is declared and currently holds Null.
func (e *Entity) IsNull(key string) bool {
	v, ok := e.Lookup(key)
	if !ok {
		return false
	}
	_, null := v.(value.Null)
	return null
}
