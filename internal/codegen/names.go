package codegen

import (
	"fmt"
	"go/token"
	"reflect"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/modelkit/internal/schema"
	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// Name check error codes (E120-E129)
const (
	ErrEmptyIdentifier  = "E120" // field name has no letters or digits
	ErrReservedName     = "E121" // generated method shadows an Entity method
	ErrGeneratedCollide = "E122" // two fields generate the same method
)

var title = cases.Title(language.Und, cases.NoLower)

// ExportedName converts an attribute key to an exported Go identifier:
// "userName" -> "UserName", "first_name" -> "FirstName".
func ExportedName(key string) string {
	var b strings.Builder
	for _, part := range strings.Split(key, "_") {
		if part == "" {
			continue
		}
		b.WriteString(title.String(part))
	}
	return b.String()
}

// receiverName returns the lowercased first letter of a type name.
func receiverName(typeName string) string {
	for _, r := range typeName {
		return string(unicode.ToLower(r))
	}
	return "x"
}

// reservedNames are the methods and fields a generated wrapper must not
// shadow: everything promoted from *model.Entity plus the embedded field.
var reservedNames = func() map[string]bool {
	names := map[string]bool{"Entity": true}
	t := reflect.TypeOf((*model.Entity)(nil))
	for i := 0; i < t.NumMethod(); i++ {
		names[t.Method(i).Name] = true
	}
	return names
}()

// IsReserved reports whether name would shadow a promoted Entity member.
func IsReserved(name string) bool {
	return reservedNames[name]
}

// methodNames lists the methods generated for one field.
func methodNames(f schema.Namespaced) []string {
	name := ExportedName(f.Name)
	switch {
	case f.Kind == value.KindNull:
		return []string{name, "Clear" + name}
	case f.Nullable:
		return []string{name, "Set" + name, "Clear" + name}
	default:
		return []string{name, "Set" + name}
	}
}

// CheckNames reports fields whose generated methods cannot be emitted.
// Returns all errors found (does not fail-fast).
func CheckNames(s *schema.EntitySchema) []schema.ValidationError {
	var errs []schema.ValidationError
	owner := make(map[string]string)

	for _, f := range s.Fields() {
		path := fmt.Sprintf("entity.%s.%s.%s", s.Name, f.Namespace, f.Name)

		name := ExportedName(f.Name)
		if name == "" || !token.IsIdentifier(name) {
			errs = append(errs, schema.ValidationError{
				Field:   path,
				Message: fmt.Sprintf("field %q does not produce a Go identifier", f.Name),
				Code:    ErrEmptyIdentifier,
			})
			continue
		}

		for _, m := range methodNames(f) {
			if IsReserved(m) {
				errs = append(errs, schema.ValidationError{
					Field:   path,
					Message: fmt.Sprintf("generated method %s would shadow model.Entity.%s", m, m),
					Code:    ErrReservedName,
				})
				continue
			}
			if prev, ok := owner[m]; ok {
				errs = append(errs, schema.ValidationError{
					Field:   path,
					Message: fmt.Sprintf("generated method %s collides with field %q", m, prev),
					Code:    ErrGeneratedCollide,
				})
				continue
			}
			owner[m] = f.Name
		}
	}

	return errs
}
