package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents a failure reported by an Entity or a Collection.
//
// Error includes structured fields for diagnostics:
//   - Keys lists the attribute keys involved (sorted when more than one)
//   - EntityID identifies the affected entity, when one exists
//   - Index is the position of the failing raw record for bulk construction
//   - Err is the underlying cause (constructor failures, conversions)
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Keys are the attribute keys involved.
	Keys []string

	// EntityID identifies the affected entity.
	EntityID string

	// Index is the raw record position for collection construction, or -1.
	Index int

	// Err is the wrapped cause.
	Err error
}

// ErrorCode categorizes model errors.
type ErrorCode string

const (
	// CodeSchemaViolation indicates a key declared in both namespaces.
	CodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"

	// CodeUnknownAttribute indicates a write to an undeclared key on a sealed entity.
	CodeUnknownAttribute ErrorCode = "UNKNOWN_ATTRIBUTE"

	// CodeMissingAttribute indicates a typed read of an undeclared key.
	CodeMissingAttribute ErrorCode = "MISSING_ATTRIBUTE"

	// CodeTypeMismatch indicates a typed read of a value of another kind.
	CodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// CodeConstructionFailure indicates an entity constructor returned an error.
	CodeConstructionFailure ErrorCode = "CONSTRUCTION_FAILURE"

	// CodeInvalidConfig indicates an unusable CollectionConfig.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)

	var ctx []string
	if e.EntityID != "" {
		ctx = append(ctx, "entity="+e.EntityID)
	}
	if len(e.Keys) > 0 {
		ctx = append(ctx, "keys="+strings.Join(e.Keys, ","))
	}
	if e.Index >= 0 && e.Code == CodeConstructionFailure {
		ctx = append(ctx, fmt.Sprintf("index=%d", e.Index))
	}
	if len(ctx) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(ctx, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// hasCode walks every *Error in the chain, so a constructor's own error is
// still matched after a collection wraps it.
func hasCode(err error, code ErrorCode) bool {
	for err != nil {
		var me *Error
		if !errors.As(err, &me) {
			return false
		}
		if me.Code == code {
			return true
		}
		err = me.Err
	}
	return false
}

// IsSchemaViolation reports whether err is a namespace collision error.
func IsSchemaViolation(err error) bool {
	return hasCode(err, CodeSchemaViolation)
}

// IsUnknownAttribute reports whether err is a sealed-write rejection.
func IsUnknownAttribute(err error) bool {
	return hasCode(err, CodeUnknownAttribute)
}

// IsMissingAttribute reports whether err is a typed read of an undeclared key.
func IsMissingAttribute(err error) bool {
	return hasCode(err, CodeMissingAttribute)
}

// IsTypeMismatch reports whether err is a typed read of the wrong kind.
func IsTypeMismatch(err error) bool {
	return hasCode(err, CodeTypeMismatch)
}

// IsConstructionFailure reports whether err came from an entity constructor
// invoked by a collection.
func IsConstructionFailure(err error) bool {
	return hasCode(err, CodeConstructionFailure)
}

// NewSchemaViolationError creates an Error for keys present in both namespaces.
func NewSchemaViolationError(keys []string) *Error {
	return &Error{
		Code:    CodeSchemaViolation,
		Message: "keys declared in both persisted and transient namespaces",
		Keys:    keys,
		Index:   -1,
	}
}

// NewUnknownAttributeError creates an Error for a rejected write.
func NewUnknownAttributeError(entityID, key string) *Error {
	return &Error{
		Code:     CodeUnknownAttribute,
		Message:  fmt.Sprintf("attribute %q is not declared and unknown attributes are not allowed", key),
		Keys:     []string{key},
		EntityID: entityID,
		Index:    -1,
	}
}

// NewMissingAttributeError creates an Error for a typed read of an absent key.
func NewMissingAttributeError(entityID, key string) *Error {
	return &Error{
		Code:     CodeMissingAttribute,
		Message:  fmt.Sprintf("attribute %q is not defined in persisted or transient namespace", key),
		Keys:     []string{key},
		EntityID: entityID,
		Index:    -1,
	}
}

// NewTypeMismatchError creates an Error for a typed read of the wrong kind.
func NewTypeMismatchError(entityID, key, want, got string) *Error {
	return &Error{
		Code:     CodeTypeMismatch,
		Message:  fmt.Sprintf("attribute %q is %s, want %s", key, got, want),
		Keys:     []string{key},
		EntityID: entityID,
		Index:    -1,
	}
}

// NewConstructionError wraps a constructor failure for the raw record at index.
func NewConstructionError(index int, err error) *Error {
	return &Error{
		Code:    CodeConstructionFailure,
		Message: "entity constructor failed",
		Index:   index,
		Err:     err,
	}
}

func newUnstorableError(entityID, key string, err error) *Error {
	return &Error{
		Code:     CodeTypeMismatch,
		Message:  "value cannot be stored as an attribute",
		Keys:     []string{key},
		EntityID: entityID,
		Index:    -1,
		Err:      err,
	}
}

func newInvalidConfigError(message string) *Error {
	return &Error{
		Code:    CodeInvalidConfig,
		Message: message,
		Index:   -1,
	}
}
