package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/modelkit/internal/dataset"
)

// Scenario defines a collection behavior scenario.
// A scenario builds a collection from Records, applies Steps in order and
// evaluates Assertions against the final collection.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// AllowUnknown opens every entity the scenario builds.
	AllowUnknown bool `yaml:"allow_unknown,omitempty"`

	// Records build the initial collection. May be empty.
	Records []dataset.Record `yaml:"records"`

	// Steps are applied to the collection in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final collection.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step operations.
const (
	OpAdd        = "add"
	OpRemove     = "remove"
	OpReset      = "reset"
	OpFind       = "find"
	OpSet        = "set"
	OpGet        = "get"
	OpClone      = "clone"
	OpCache      = "cache"
	OpClearCache = "clear_cache"
)

var validOps = []string{OpAdd, OpRemove, OpReset, OpFind, OpSet, OpGet, OpClone, OpCache, OpClearCache}

// Step is one operation on the collection or one of its entities.
type Step struct {
	// Op selects the operation.
	Op string `yaml:"op"`

	// Record is the raw input for add.
	Record *dataset.Record `yaml:"record,omitempty"`

	// Records replace the collection for reset.
	Records []dataset.Record `yaml:"records,omitempty"`

	// Index removes by position (remove).
	Index *int `yaml:"index,omitempty"`

	// Match removes every entity whose attribute equals a value (remove).
	Match *MatchClause `yaml:"match,omitempty"`

	// Items lists positions resolved to entity references before removal
	// (remove).
	Items []int `yaml:"items,omitempty"`

	// Where is the attribute subset for find.
	Where map[string]any `yaml:"where,omitempty"`

	// Item is the position of the target entity for set, get, clone, cache
	// and clear_cache.
	Item int `yaml:"item,omitempty"`

	// Key is the attribute for set, get and cache.
	Key string `yaml:"key,omitempty"`

	// Value is written by set.
	Value any `yaml:"value,omitempty"`

	// Name is the cache entry for cache and clear_cache. An empty name
	// clears every entry.
	Name string `yaml:"name,omitempty"`

	// Expect validates the step outcome. Without it the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// MatchClause selects entities by one attribute value.
type MatchClause struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Expect specifies the expected step outcome.
type Expect struct {
	// Error is the expected error code (e.g., "UNKNOWN_ATTRIBUTE").
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Count is the collection size after the step.
	Count *int `yaml:"count,omitempty"`

	// Removed is the number of entities removed (remove).
	Removed *int `yaml:"removed,omitempty"`

	// Found is the number of entities found (find).
	Found *int `yaml:"found,omitempty"`

	// Value is the value read (get, cache). Use Null to expect null.
	Value any `yaml:"value,omitempty"`

	// Null expects the value read to be null.
	Null bool `yaml:"null,omitempty"`

	// Missing expects get to find no such attribute.
	Missing bool `yaml:"missing,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "asserts:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(&s.Steps[i]); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks the fields each operation requires.
func validateStep(step *Step) error {
	if !slices.Contains(validOps, step.Op) {
		return fmt.Errorf("unknown op %q: must be one of %v", step.Op, validOps)
	}

	switch step.Op {
	case OpAdd:
		if step.Record == nil {
			return fmt.Errorf("add: record is required")
		}
	case OpRemove:
		if step.Index == nil && step.Match == nil && len(step.Items) == 0 {
			return fmt.Errorf("remove: one of index, match or items is required")
		}
		if step.Match != nil && step.Match.Key == "" {
			return fmt.Errorf("remove: match.key is required")
		}
	case OpSet:
		if step.Key == "" {
			return fmt.Errorf("set: key is required")
		}
	case OpGet:
		if step.Key == "" {
			return fmt.Errorf("get: key is required")
		}
	case OpCache:
		if step.Key == "" || step.Name == "" {
			return fmt.Errorf("cache: key and name are required")
		}
	}

	if step.Expect != nil && step.Expect.Null && step.Expect.Value != nil {
		return fmt.Errorf("expect: value and null are mutually exclusive")
	}

	return nil
}
