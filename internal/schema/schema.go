// Package schema compiles CUE entity descriptions into EntitySchema values.
//
// A schema file declares one or more entities under the "entity" field:
//
//	entity: User: {
//		persisted: {
//			userName: string
//			age:      int
//			expires?: string | null
//		}
//		transient: {
//			admin: bool
//		}
//		allow_unknown: false
//		collection:    "Users"
//	}
//
// Field kinds are string, int, float (or number), bool, list (array) and
// struct (object). Schemas drive code generation and the CLI; they do
// not validate record values at runtime.
package schema

import (
	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// EntitySchema describes one entity type.
type EntitySchema struct {
	Name         string  `json:"name"`
	Doc          string  `json:"doc,omitempty"`
	AllowUnknown bool    `json:"allow_unknown"`
	Collection   string  `json:"collection,omitempty"`
	Persisted    []Field `json:"persisted"`
	Transient    []Field `json:"transient"`
}

// Field describes one declared attribute.
type Field struct {
	Name     string     `json:"name"`
	Kind     value.Kind `json:"-"`
	KindName string     `json:"kind"`
	Optional bool       `json:"optional,omitempty"`
	Nullable bool       `json:"nullable,omitempty"`
	Doc      string     `json:"doc,omitempty"`
}

// Namespaced pairs a field with the namespace that declares it.
type Namespaced struct {
	Field
	Namespace model.Namespace
}

// Fields returns persisted fields followed by transient fields, each group
// in declaration order.
func (s *EntitySchema) Fields() []Namespaced {
	out := make([]Namespaced, 0, len(s.Persisted)+len(s.Transient))
	for _, f := range s.Persisted {
		out = append(out, Namespaced{Field: f, Namespace: model.Persisted})
	}
	for _, f := range s.Transient {
		out = append(out, Namespaced{Field: f, Namespace: model.Transient})
	}
	return out
}

// Lookup finds a declared field by name.
func (s *EntitySchema) Lookup(name string) (Namespaced, bool) {
	for _, f := range s.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return Namespaced{}, false
}

// CollectionName returns the declared collection type name, or Name+"s".
func (s *EntitySchema) CollectionName() string {
	if s.Collection != "" {
		return s.Collection
	}
	return s.Name + "s"
}

// Options returns the entity options the schema implies.
func (s *EntitySchema) Options() []model.Option {
	return []model.Option{model.WithAllowUnknown(s.AllowUnknown)}
}

// Template returns a record holding the zero value of every required field.
// Optional fields are left out; nullable required fields hold Null.
func (s *EntitySchema) Template() model.Raw {
	raw := model.Raw{Persisted: value.Object{}, Transient: value.Object{}}
	for _, f := range s.Fields() {
		if f.Optional {
			continue
		}
		target := raw.Persisted
		if f.Namespace == model.Transient {
			target = raw.Transient
		}
		target[f.Name] = zeroValue(f.Field)
	}
	return raw
}

func zeroValue(f Field) value.Value {
	if f.Nullable {
		return value.Null{}
	}
	switch f.Kind {
	case value.KindString:
		return value.String("")
	case value.KindInt, value.KindFloat:
		return value.Int(0)
	case value.KindBool:
		return value.Bool(false)
	case value.KindArray:
		return value.Array{}
	case value.KindObject:
		return value.Object{}
	default:
		return value.Null{}
	}
}
