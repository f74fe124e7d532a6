package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/modelkit/internal/dataset"
	"github.com/roach88/modelkit/pkg/model"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // command completed
	ExitFailure      = 1 // invalid schemas, failing scenarios, entities that cannot be built
	ExitCommandError = 2 // unusable input: bad paths, unreadable records, bad flags or config
)

// ExitError carries the process exit code for a failed command.
// main reads it back with GetExitCode.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure when there is none.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// CLIResponse is the envelope of every JSON result.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error member of a CLIResponse. Code is an E-code for
// command failures or a model.ErrorCode such as SCHEMA_VIOLATION.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorDetails holds the structured fields of a model or records failure.
type ErrorDetails struct {
	Keys      []string `json:"keys,omitempty"`
	EntityID  string   `json:"entity_id,omitempty"`
	Index     *int     `json:"index,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
	Cause     string   `json:"cause,omitempty"`
}

// String renders the details on one line for text output.
func (d *ErrorDetails) String() string {
	var parts []string
	if d.Index != nil {
		if d.Namespace != "" {
			parts = append(parts, fmt.Sprintf("record %d (%s)", *d.Index, d.Namespace))
		} else {
			parts = append(parts, fmt.Sprintf("record %d", *d.Index))
		}
	}
	if len(d.Keys) > 0 {
		parts = append(parts, "keys "+strings.Join(d.Keys, ", "))
	}
	if d.EntityID != "" {
		parts = append(parts, "entity "+d.EntityID)
	}
	if d.Cause != "" {
		parts = append(parts, "cause: "+d.Cause)
	}
	return strings.Join(parts, "; ")
}

// DescribeError converts err into a CLIError. A *model.Error keeps its own
// code and structured fields, a *dataset.RecordError maps to
// ErrCodeBadRecords, and anything else gets fallback with err's text.
func DescribeError(err error, fallback string) *CLIError {
	var me *model.Error
	if errors.As(err, &me) {
		d := &ErrorDetails{Keys: me.Keys, EntityID: me.EntityID}
		if me.Index >= 0 {
			idx := me.Index
			d.Index = &idx
		}
		if me.Err != nil {
			d.Cause = me.Err.Error()
			var inner *model.Error
			if len(d.Keys) == 0 && errors.As(me.Err, &inner) {
				d.Keys = inner.Keys
			}
		}
		return &CLIError{Code: string(me.Code), Message: me.Message, Details: d}
	}

	var re *dataset.RecordError
	if errors.As(err, &re) {
		idx := re.Index
		return &CLIError{
			Code:    ErrCodeBadRecords,
			Message: re.Err.Error(),
			Details: &ErrorDetails{Index: &idx, Namespace: re.Namespace.String()},
		}
	}

	return &CLIError{Code: fallback, Message: err.Error()}
}

// OutputFormatter writes command results as text or as a CLIResponse.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose diagnostics; Writer when nil
	Verbose   bool
}

// Success writes data. Text mode prints it with fmt.Println semantics.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes an error response. In text mode *ErrorDetails are always
// shown; other details only with --verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	return f.writeError(&CLIError{Code: code, Message: message, Details: details})
}

// Fail writes err as an error response using DescribeError.
func (f *OutputFormatter) Fail(err error, fallback string) error {
	return f.writeError(DescribeError(err, fallback))
}

func (f *OutputFormatter) writeError(e *CLIError) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "error", Error: e})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", e.Code, e.Message)
	switch d := e.Details.(type) {
	case nil:
	case *ErrorDetails:
		if s := d.String(); s != "" {
			fmt.Fprintf(f.Writer, "  %s\n", s)
		}
	default:
		if f.Verbose {
			fmt.Fprintf(f.Writer, "Details: %v\n", d)
		}
	}
	return nil
}

// VerboseLog writes a diagnostic line when Verbose is set. It goes to
// ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
