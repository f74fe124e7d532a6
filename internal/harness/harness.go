package harness

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/modelkit/internal/dataset"
	"github.com/roach88/modelkit/internal/testutil"
	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// IDPrefix prefixes the sequential entity IDs a scenario assigns.
const IDPrefix = "e"

// Harness executes one scenario against a fresh collection.
// IDs come from a sequence generator and logs are captured in memory, so
// two runs of the same scenario produce identical traces.
type Harness struct {
	coll *model.Collection[*model.Entity]
	logs *testutil.LogRecorder
}

// stepOutcome is the trace event plus the details expect clauses inspect.
type stepOutcome struct {
	event   TraceEvent
	err     error
	removed int
	found   int
	read    value.Value
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Build the initial collection from scenario records (trace step 0)
// 2. Apply each step, checking its expect clause
// 3. Evaluate assertions against the final collection
//
// Run returns an error only for scenarios that cannot execute: records
// that do not convert, an initial collection that fails to build, or a
// step addressing an item that does not exist.
func Run(scenario *Scenario) (*Result, error) {
	logger, logs := testutil.NewLogRecorder()
	ids := model.NewSequenceGenerator(IDPrefix)

	raws, err := convertRecords(scenario.Records)
	if err != nil {
		return nil, fmt.Errorf("records: %w", err)
	}

	coll, err := model.NewCollection(raws, model.CollectionConfig[*model.Entity]{
		Constructor: model.New,
		Owner:       scenario,
		Logger:      logger,
		EntityOptions: []model.Option{
			model.WithAllowUnknown(scenario.AllowUnknown),
			model.WithLogger(logger),
			model.WithIDGenerator(ids),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build initial collection: %w", err)
	}

	h := &Harness{coll: coll, logs: logs}
	result := NewResult()
	result.AddTrace(TraceEvent{
		Step:    0,
		Op:      "init",
		Outcome: OutcomeOK,
		Result:  idList(coll.Items()),
		Count:   coll.Count(),
	})

	for i, step := range scenario.Steps {
		out, err := h.execute(i+1, step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		result.AddTrace(out.event)
		for _, msg := range checkExpect(i, step, out) {
			result.AddError(msg)
		}
	}

	for _, msg := range EvaluateAssertions(coll, scenario.Assertions) {
		result.AddError(msg)
	}

	result.Final = coll.CanonicalForm()
	return result, nil
}

// execute applies one step and records its trace event.
func (h *Harness) execute(n int, step Step) (stepOutcome, error) {
	warnBefore := len(h.logs.AtLevel(slog.LevelWarn))

	out, err := h.apply(step)
	if err != nil {
		return out, err
	}

	out.event.Step = n
	out.event.Op = step.Op
	out.event.Count = h.coll.Count()
	out.event.Warnings = len(h.logs.AtLevel(slog.LevelWarn)) - warnBefore
	if out.event.Outcome == "" {
		out.event.Outcome = outcomeOf(out.err)
	}
	return out, nil
}

func (h *Harness) apply(step Step) (stepOutcome, error) {
	var out stepOutcome

	switch step.Op {
	case OpAdd:
		raw, err := step.Record.Raw(0)
		if err != nil {
			return out, err
		}
		e, err := h.coll.Add(raw)
		out.err = err
		if err == nil {
			out.event.ID = e.ID()
			out.event.Result = e.CanonicalForm()
		}

	case OpRemove:
		opts, err := h.removeOptions(step)
		if err != nil {
			return out, err
		}
		removed := h.coll.Remove(opts)
		out.removed = len(removed)
		out.event.Result = idList(removed)

	case OpReset:
		raws, err := convertRecords(step.Records)
		if err != nil {
			return out, err
		}
		out.err = h.coll.Reset(raws)
		out.event.Result = idList(h.coll.Items())

	case OpFind:
		where, err := value.ObjectFromMap(step.Where)
		if err != nil {
			return out, fmt.Errorf("where: %w", err)
		}
		found := h.coll.FindWhere(where)
		out.found = len(found)
		out.event.Result = idList(found)

	case OpSet:
		e, err := h.target(step.Item)
		if err != nil {
			return out, err
		}
		v, err := value.FromAny(step.Value)
		if err != nil {
			return out, fmt.Errorf("value: %w", err)
		}
		out.event.ID = e.ID()
		out.err = e.Set(step.Key, v)

	case OpGet:
		e, err := h.target(step.Item)
		if err != nil {
			return out, err
		}
		out.event.ID = e.ID()
		v, ok := e.Get(step.Key)
		if !ok {
			out.event.Outcome = OutcomeMissing
			break
		}
		out.read = v
		out.event.Result = v

	case OpClone:
		e, err := h.target(step.Item)
		if err != nil {
			return out, err
		}
		c := e.Clone()
		out.event.ID = c.ID()
		out.event.Result = c.CanonicalForm()

	case OpCache:
		e, err := h.target(step.Item)
		if err != nil {
			return out, err
		}
		out.event.ID = e.ID()
		v := model.Cached(e, step.Name, func() value.Value {
			v, ok := e.Lookup(step.Key)
			if !ok {
				return value.Null{}
			}
			return v
		})
		out.read = v
		out.event.Result = v

	case OpClearCache:
		e, err := h.target(step.Item)
		if err != nil {
			return out, err
		}
		out.event.ID = e.ID()
		if step.Name == "" {
			e.ClearCached()
		} else {
			e.ClearCached(step.Name)
		}

	default:
		return out, fmt.Errorf("unknown op %q", step.Op)
	}

	return out, nil
}

// removeOptions resolves item positions to references before removal.
func (h *Harness) removeOptions(step Step) (model.RemoveOptions[*model.Entity], error) {
	opts := model.RemoveOptions[*model.Entity]{Index: step.Index}

	if step.Match != nil {
		v, err := value.FromAny(step.Match.Value)
		if err != nil {
			return opts, fmt.Errorf("match.value: %w", err)
		}
		opts.Match = &model.Match{Key: step.Match.Key, Value: v}
	}

	for _, pos := range step.Items {
		e, err := h.target(pos)
		if err != nil {
			return opts, err
		}
		opts.Items = append(opts.Items, e)
	}
	return opts, nil
}

func (h *Harness) target(pos int) (*model.Entity, error) {
	e, ok := h.coll.At(pos)
	if !ok {
		return nil, fmt.Errorf("item %d out of range (count %d)", pos, h.coll.Count())
	}
	return e, nil
}

// checkExpect compares a step outcome with its expect clause.
func checkExpect(index int, step Step, out stepOutcome) []string {
	prefix := fmt.Sprintf("steps[%d] (%s)", index, step.Op)
	outcome := out.event.Outcome

	expect := step.Expect
	if expect == nil {
		expect = &Expect{}
	}

	var errs []string
	if expect.Error == "" && out.err != nil {
		return append(errs, fmt.Sprintf("%s: unexpected error: %v", prefix, out.err))
	}
	if expect.Error != "" && outcome != expect.Error {
		errs = append(errs, fmt.Sprintf("%s: expected error %s, got %s", prefix, expect.Error, outcome))
	}
	if expect.Count != nil && *expect.Count != out.event.Count {
		errs = append(errs, fmt.Sprintf("%s: expected count %d, got %d", prefix, *expect.Count, out.event.Count))
	}
	if expect.Removed != nil && *expect.Removed != out.removed {
		errs = append(errs, fmt.Sprintf("%s: expected %d removed, got %d", prefix, *expect.Removed, out.removed))
	}
	if expect.Found != nil && *expect.Found != out.found {
		errs = append(errs, fmt.Sprintf("%s: expected %d found, got %d", prefix, *expect.Found, out.found))
	}
	if expect.Missing != (outcome == OutcomeMissing) && step.Op == OpGet {
		errs = append(errs, fmt.Sprintf("%s: expected missing=%t, got outcome %s", prefix, expect.Missing, outcome))
	}
	if expect.Null && !value.Equal(out.read, value.Null{}) {
		errs = append(errs, fmt.Sprintf("%s: expected null, got %s", prefix, render(out.read)))
	}
	if expect.Value != nil {
		want, err := value.FromAny(expect.Value)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: expect.value: %v", prefix, err))
		} else if !value.Equal(want, out.read) {
			errs = append(errs, fmt.Sprintf("%s: expected value %s, got %s", prefix, render(want), render(out.read)))
		}
	}
	return errs
}

// outcomeOf maps an error to its model error code.
func outcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var me *model.Error
	if errors.As(err, &me) {
		return string(me.Code)
	}
	return "ERROR"
}

// idList renders entity IDs in order. A nil slice renders as null.
func idList(items []*model.Entity) value.Value {
	if items == nil {
		return value.Null{}
	}
	arr := make(value.Array, len(items))
	for i, e := range items {
		arr[i] = value.String(e.ID())
	}
	return arr
}

func render(v value.Value) string {
	if v == nil {
		return "<none>"
	}
	return string(value.MustMarshal(v))
}

func convertRecords(records []dataset.Record) ([]model.Raw, error) {
	raws := make([]model.Raw, 0, len(records))
	for i, rec := range records {
		raw, err := rec.Raw(i)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	return raws, nil
}
