package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// Assertion validates the final collection.
type Assertion struct {
	// Type specifies the assertion type:
	// - "count": entities matching Where (all when empty) number exactly Count
	// - "order": the Key attribute across the collection equals Values
	// - "canonical": the canonical form of Item equals Expect exactly
	// - "namespace": Key on Item lives in Namespace ("persisted",
	//   "transient" or "absent")
	Type string `yaml:"type"`

	Where     map[string]any `yaml:"where,omitempty"`
	Count     int            `yaml:"count,omitempty"`
	Key       string         `yaml:"key,omitempty"`
	Values    []any          `yaml:"values,omitempty"`
	Item      int            `yaml:"item,omitempty"`
	Expect    map[string]any `yaml:"expect,omitempty"`
	Namespace string         `yaml:"namespace,omitempty"`
}

// Assertion type constants.
const (
	AssertCount     = "count"
	AssertOrder     = "order"
	AssertCanonical = "canonical"
	AssertNamespace = "namespace"
)

// NamespaceAbsent names the namespace of an undeclared key.
const NamespaceAbsent = "absent"

// AssertionError is returned when an assertion fails.
// It includes the final collection to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Final    []value.Object // Canonical forms of the final collection
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal collection:\n")
	for i, obj := range e.Final {
		fmt.Fprintf(&buf, "  [%d] %s\n", i, value.MustMarshal(obj))
	}

	return buf.String()
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCount:
		return nil
	case AssertOrder:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: order requires key", index)
		}
	case AssertCanonical:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: canonical requires expect", index)
		}
	case AssertNamespace:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: namespace requires key", index)
		}
		switch a.Namespace {
		case model.Persisted.String(), model.Transient.String(), NamespaceAbsent:
		default:
			return fmt.Errorf("assertions[%d]: namespace must be persisted, transient or absent, got %q", index, a.Namespace)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// EvaluateAssertions runs every assertion against coll and returns the
// failure messages. An empty result means all assertions passed.
func EvaluateAssertions(coll *model.Collection[*model.Entity], assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertCount:
			err = assertCount(coll, a)
		case AssertOrder:
			err = assertOrder(coll, a)
		case AssertCanonical:
			err = assertCanonical(coll, a)
		case AssertNamespace:
			err = assertNamespace(coll, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// assertCount checks how many entities match the where subset.
func assertCount(coll *model.Collection[*model.Entity], a Assertion) error {
	where, err := value.ObjectFromMap(a.Where)
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}
	got := len(coll.FindWhere(where))
	if got != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d entities where %s", a.Count, value.MustMarshal(where)),
			Actual:   fmt.Sprintf("%d entities", got),
			Final:    coll.CanonicalForm(),
		}
	}
	return nil
}

// assertOrder checks the key's value on every entity in collection order.
// Entities lacking the key contribute null.
func assertOrder(coll *model.Collection[*model.Entity], a Assertion) error {
	want, err := value.FromAny(a.Values)
	if err != nil {
		return fmt.Errorf("values: %w", err)
	}
	if a.Values == nil {
		want = value.Array{}
	}

	got := make(value.Array, 0, coll.Count())
	for _, e := range coll.Items() {
		v, ok := e.Lookup(a.Key)
		if !ok {
			v = value.Null{}
		}
		got = append(got, v)
	}

	if !value.Equal(want, got) {
		return &AssertionError{
			Type:     AssertOrder,
			Expected: fmt.Sprintf("%s values %s", a.Key, value.MustMarshal(want)),
			Actual:   string(value.MustMarshal(got)),
			Final:    coll.CanonicalForm(),
		}
	}
	return nil
}

// assertCanonical checks an entity's canonical form exactly.
func assertCanonical(coll *model.Collection[*model.Entity], a Assertion) error {
	e, ok := coll.At(a.Item)
	if !ok {
		return fmt.Errorf("item %d out of range (count %d)", a.Item, coll.Count())
	}
	want, err := value.ObjectFromMap(a.Expect)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	got := e.CanonicalForm()
	if !value.Equal(want, got) {
		return &AssertionError{
			Type:     AssertCanonical,
			Expected: string(value.MustMarshal(want)),
			Actual:   string(value.MustMarshal(got)),
			Final:    coll.CanonicalForm(),
		}
	}
	return nil
}

// assertNamespace checks which namespace holds a key.
func assertNamespace(coll *model.Collection[*model.Entity], a Assertion) error {
	e, ok := coll.At(a.Item)
	if !ok {
		return fmt.Errorf("item %d out of range (count %d)", a.Item, coll.Count())
	}
	got := NamespaceAbsent
	if ns, ok := e.NamespaceOf(a.Key); ok {
		got = ns.String()
	}
	if got != a.Namespace {
		return &AssertionError{
			Type:     AssertNamespace,
			Expected: fmt.Sprintf("%s in %s", a.Key, a.Namespace),
			Actual:   fmt.Sprintf("%s in %s", a.Key, got),
			Final:    coll.CanonicalForm(),
		}
	}
	return nil
}
