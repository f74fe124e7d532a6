package schema

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/modelkit/pkg/value"
)

// CompileEntity parses a CUE value into an EntitySchema.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the entity struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`entity: User: { persisted: { age: int } }`)
//	s, err := CompileEntity(v.LookupPath(cue.ParsePath("entity.User")))
func CompileEntity(v cue.Value) (*EntitySchema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &EntitySchema{Doc: docText(v)}

	// Entity name is the struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		s.Name = labels[len(labels)-1].String()
	}

	var err error
	if s.Persisted, err = parseFields(v, "persisted"); err != nil {
		return nil, err
	}
	if s.Transient, err = parseFields(v, "transient"); err != nil {
		return nil, err
	}

	allowVal := v.LookupPath(cue.ParsePath("allow_unknown"))
	if allowVal.Exists() {
		allow, err := allowVal.Bool()
		if err != nil {
			return nil, &CompileError{
				Field:   "allow_unknown",
				Message: "allow_unknown must be a bool",
				Pos:     allowVal.Pos(),
			}
		}
		s.AllowUnknown = allow
	}

	collVal := v.LookupPath(cue.ParsePath("collection"))
	if collVal.Exists() {
		coll, err := collVal.String()
		if err != nil {
			return nil, &CompileError{
				Field:   "collection",
				Message: "collection must be a string",
				Pos:     collVal.Pos(),
			}
		}
		s.Collection = coll
	}

	return s, nil
}

// parseFields reads one namespace block. A missing block is an empty
// namespace.
func parseFields(v cue.Value, namespace string) ([]Field, error) {
	nsVal := v.LookupPath(cue.ParsePath(namespace))
	if !nsVal.Exists() {
		return nil, nil
	}

	iter, err := nsVal.Fields(cue.Optional(true))
	if err != nil {
		return nil, formatCUEError(err)
	}

	var fields []Field
	for iter.Next() {
		name := iter.Label()
		kind, nullable, err := extractKind(iter.Value())
		if err != nil {
			var ce *CompileError
			if errors.As(err, &ce) {
				ce.Message = fmt.Sprintf("%s.%s: %s", namespace, name, ce.Message)
			}
			return nil, err
		}
		fields = append(fields, Field{
			Name:     name,
			Kind:     kind,
			KindName: kind.String(),
			Optional: iter.Selector().ConstraintType() == cue.OptionalConstraint,
			Nullable: nullable,
			Doc:      docText(iter.Value()),
		})
	}
	return fields, nil
}

// extractKind converts a CUE type to a value.Kind. A disjunction with null
// ("string | null") yields the non-null kind and nullable=true. float and
// number both map to KindFloat; int stays KindInt.
func extractKind(v cue.Value) (value.Kind, bool, error) {
	k := v.IncompleteKind()
	nullable := k&cue.NullKind != 0 && k != cue.NullKind
	if nullable {
		k &^= cue.NullKind
	}

	switch k {
	case cue.StringKind:
		return value.KindString, nullable, nil
	case cue.IntKind:
		return value.KindInt, nullable, nil
	case cue.BoolKind:
		return value.KindBool, nullable, nil
	case cue.ListKind:
		return value.KindArray, nullable, nil
	case cue.StructKind:
		return value.KindObject, nullable, nil
	case cue.NullKind:
		return value.KindNull, false, nil
	case cue.FloatKind, cue.NumberKind:
		return value.KindFloat, nullable, nil
	default:
		return value.KindInvalid, false, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", k),
			Pos:     v.Pos(),
		}
	}
}

func docText(v cue.Value) string {
	var parts []string
	for _, cg := range v.Doc() {
		if text := strings.TrimSpace(cg.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
