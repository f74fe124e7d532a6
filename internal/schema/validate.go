package schema

import (
	"fmt"
	"regexp"

	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// Validation error codes (E100-E199)
const (
	ErrEntityNameInvalid  = "E101" // entity name must be an exported identifier
	ErrEntityNoFields     = "E102" // at least one field required
	ErrNamespaceCollision = "E103" // key declared in both namespaces
	ErrInvalidFieldType   = "E104" // invalid kind
	ErrDuplicateName      = "E105" // duplicate entity name
	ErrInvalidFieldName   = "E107" // field name is not an identifier
	ErrInvalidCollection  = "E108" // collection name invalid or equal to entity name
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var (
	typeNamePattern  = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validate checks one entity schema.
// Returns all errors found (does not fail-fast).
func Validate(s *EntitySchema) []ValidationError {
	var errs []ValidationError
	prefix := "entity." + s.Name

	// E101: entity name becomes a Go type name
	if !typeNamePattern.MatchString(s.Name) {
		errs = append(errs, ValidationError{
			Field:   prefix,
			Message: fmt.Sprintf("entity name %q must start with an uppercase letter and contain only letters and digits", s.Name),
			Code:    ErrEntityNameInvalid,
		})
	}

	// E102: at least one field
	if len(s.Persisted) == 0 && len(s.Transient) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix,
			Message: "at least one persisted or transient field is required",
			Code:    ErrEntityNoFields,
		})
	}

	// E108: collection name
	if s.Collection != "" && !typeNamePattern.MatchString(s.Collection) {
		errs = append(errs, ValidationError{
			Field:   prefix + ".collection",
			Message: fmt.Sprintf("collection name %q must start with an uppercase letter and contain only letters and digits", s.Collection),
			Code:    ErrInvalidCollection,
		})
	}
	if s.CollectionName() == s.Name {
		errs = append(errs, ValidationError{
			Field:   prefix + ".collection",
			Message: "collection name must differ from the entity name",
			Code:    ErrInvalidCollection,
		})
	}

	persisted := make(map[string]bool, len(s.Persisted))
	for _, f := range s.Persisted {
		persisted[f.Name] = true
	}

	for _, f := range s.Fields() {
		path := fmt.Sprintf("%s.%s.%s", prefix, f.Namespace, f.Name)

		// E103: the same key in both namespaces is a schema violation at
		// construction time; report it here first
		if f.Namespace == model.Transient && persisted[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("field %q is declared in both persisted and transient", f.Name),
				Code:    ErrNamespaceCollision,
			})
		}

		// E107: field names become method names
		if !fieldNamePattern.MatchString(f.Name) {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("field name %q must be an identifier", f.Name),
				Code:    ErrInvalidFieldName,
			})
		}

		errs = append(errs, validateFieldKind(f.Field, path)...)
	}

	return errs
}

// validateFieldKind returns errors for invalid kinds.
func validateFieldKind(f Field, path string) []ValidationError {
	var errs []ValidationError

	// E104: check for valid kind
	if _, ok := value.ParseKind(f.KindName); !ok || f.Kind == value.KindInvalid {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf("invalid type %q for field %q", f.KindName, f.Name),
			Code:    ErrInvalidFieldType,
		})
	}

	return errs
}

// ValidateAll validates every schema and checks for duplicate entity names.
func ValidateAll(schemas []EntitySchema) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(schemas))
	for i := range schemas {
		s := &schemas[i]
		// E105: duplicate entity names collide as Go types
		if seen[s.Name] {
			errs = append(errs, ValidationError{
				Field:   "entity." + s.Name,
				Message: fmt.Sprintf("duplicate entity name: %q", s.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[s.Name] = true
		errs = append(errs, Validate(s)...)
	}
	return errs
}
