package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/modelkit/internal/dataset"
	"github.com/roach88/modelkit/pkg/model"
	"github.com/roach88/modelkit/pkg/value"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Where        []string // key=value filters, all must match
	Full         bool     // include the transient namespace
	Fingerprint  bool     // include canonical fingerprints
	AllowUnknown bool     // open entities regardless of the file
}

// InspectedEntity is one entity in inspect output.
type InspectedEntity struct {
	Index       int          `json:"index"`
	ID          string       `json:"id"`
	Persisted   value.Object `json:"persisted"`
	Transient   value.Object `json:"transient,omitempty"`
	Fingerprint string       `json:"fingerprint,omitempty"`
}

// InspectResult is the JSON payload of inspect.
type InspectResult struct {
	File     string            `json:"file"`
	Count    int               `json:"count"`
	Matched  int               `json:"matched"`
	Entities []InspectedEntity `json:"entities"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <records.yaml>",
		Short: "Load a records file as a collection and print it",
		Long: `Load a YAML records file into an entity collection and print the
canonical form of each entity, optionally filtered with --where.

Where values are parsed as YAML scalars: age=22 matches an integer,
admin=true a boolean and userName=ada a string.

Examples:
  modelkit inspect users.yaml
  modelkit inspect users.yaml --where admin=true --full
  modelkit inspect users.yaml --format json --fingerprint`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "filter key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "include transient attributes")
	cmd.Flags().BoolVar(&opts.Fingerprint, "fingerprint", false, "include canonical fingerprints")
	cmd.Flags().BoolVar(&opts.AllowUnknown, "allow-unknown", false, "open entities to undeclared attributes")

	return cmd
}

func runInspect(opts *InspectOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	where, err := parseWhere(opts.Where)
	if err != nil {
		_ = formatter.Fail(err, ErrCodeGeneric)
		return WrapExitError(ExitCommandError, "invalid --where", err)
	}

	ds, err := dataset.Load(path)
	if err != nil {
		_ = formatter.Fail(err, ErrCodeBadRecords)
		return WrapExitError(ExitCommandError, "failed to load records", err)
	}

	var extra []model.Option
	if opts.AllowUnknown || opts.settings().AllowUnknown {
		extra = append(extra, model.WithAllowUnknown(true))
	}
	extra = append(extra, model.WithLogger(opts.logger()))

	coll, err := ds.Collection(opts.logger(), extra...)
	if err != nil {
		_ = formatter.Fail(err, ErrCodeBadRecords)
		return WrapExitError(ExitFailure, "failed to build collection", err)
	}
	formatter.VerboseLog("Loaded %d record(s) from %s", coll.Count(), path)

	result := InspectResult{
		File:     path,
		Count:    coll.Count(),
		Entities: []InspectedEntity{},
	}
	for _, e := range coll.FindWhere(where) {
		item := InspectedEntity{
			Index:     coll.IndexOf(e),
			ID:        e.ID(),
			Persisted: e.CanonicalForm(),
		}
		if opts.Full {
			item.Transient = e.Snapshot().Transient
		}
		if opts.Fingerprint {
			if item.Fingerprint, err = e.Fingerprint(); err != nil {
				_ = formatter.Fail(err, ErrCodeGeneric)
				return WrapExitError(ExitFailure, "failed to fingerprint entity", err)
			}
		}
		result.Entities = append(result.Entities, item)
	}
	result.Matched = len(result.Entities)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputInspectText(formatter, result, opts.Full)
}

// parseWhere turns key=value filters into an attribute subset.
func parseWhere(filters []string) (value.Object, error) {
	where := value.Object{}
	for _, f := range filters {
		key, raw, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("filter %q: expected key=value", f)
		}

		var parsed any
		if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("filter %q: %w", f, err)
		}
		v, err := value.FromAny(parsed)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", f, err)
		}
		where[key] = v
	}
	return where, nil
}

func outputInspectText(formatter *OutputFormatter, result InspectResult, full bool) error {
	w := formatter.Writer
	for _, e := range result.Entities {
		fmt.Fprintf(w, "[%d] %s\n", e.Index, value.MustMarshal(e.Persisted))
		if full {
			fmt.Fprintf(w, "    transient: %s\n", value.MustMarshal(e.Transient))
		}
		if e.Fingerprint != "" {
			fmt.Fprintf(w, "    fingerprint: %s\n", e.Fingerprint)
		}
	}
	fmt.Fprintf(w, "%d of %d entities\n", result.Matched, result.Count)
	return nil
}
