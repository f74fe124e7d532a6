package harness

import (
	"github.com/roach88/modelkit/pkg/value"
)

// Outcomes other than error codes.
const (
	OutcomeOK      = "ok"
	OutcomeMissing = "missing"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Step     int         `json:"step"`
	Op       string      `json:"op"`
	Outcome  string      `json:"outcome"` // "ok", "missing" or an error code
	ID       string      `json:"id,omitempty"`
	Result   value.Value `json:"result,omitempty"`
	Count    int         `json:"count"`    // collection size after the step
	Warnings int         `json:"warnings"` // warn records logged by the step
}

// Object renders the event for canonical serialization. Empty ID and nil
// Result are omitted.
func (e TraceEvent) Object() value.Object {
	obj := value.Object{
		"step":     value.Int(e.Step),
		"op":       value.String(e.Op),
		"outcome":  value.String(e.Outcome),
		"count":    value.Int(e.Count),
		"warnings": value.Int(e.Warnings),
	}
	if e.ID != "" {
		obj["id"] = value.String(e.ID)
	}
	if e.Result != nil {
		obj["result"] = e.Result
	}
	return obj
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order, starting with the
	// initial build as step 0.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the canonical form of the collection after the last step.
	Final []value.Object `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a trace event.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
