package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/modelkit/internal/codegen"
)

// GenOptions holds flags for the gen command.
type GenOptions struct {
	*RootOptions
	Package string // Go package name; defaults to the CUE package name
	Out     string // output file; empty writes to stdout
}

// GenResult is the JSON payload of a successful gen run.
type GenResult struct {
	Package  string   `json:"package"`
	Entities []string `json:"entities"`
	Output   string   `json:"output,omitempty"`
	Bytes    int      `json:"bytes"`
}

// NewGenCommand creates the gen command.
func NewGenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "gen [schema-dir]",
		Short: "Generate typed Go wrappers from entity schemas",
		Long: `Generate typed Go wrappers for every entity in a CUE schema package.

Each entity gets a struct embedding *model.Entity with typed getters and
setters, and a collection type. Schemas are validated first; nothing is
written when validation fails.

Examples:
  modelkit gen ./examples/users --package users --out user_gen.go
  modelkit gen . > models_gen.go`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(opts, schemaDirArg(rootOpts, args), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Package, "package", "p", "", "Go package name (default: CUE package name)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default: stdout)")

	return cmd
}

func runGen(opts *GenOptions, schemaDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	loadResult, loadErrors := LoadSchemas(schemaDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
		return WrapExitError(ExitCommandError, "failed to load schemas", loadErrors[0])
	}

	pkg := opts.Package
	if pkg == "" {
		pkg = loadResult.Package
	}
	if pkg == "" {
		_ = formatter.Error(ErrCodeGeneric, "package name required: pass --package or declare a CUE package", nil)
		return NewExitError(ExitCommandError, "package name required")
	}

	src, err := codegen.Generate(loadResult.Schemas, codegen.Options{
		Package: pkg,
		Source:  strings.Join(loadResult.Files, ", "),
	})
	if err != nil {
		var genErr *codegen.Error
		if errors.As(err, &genErr) {
			return outputValidationErrors(formatter, genErr.Errors)
		}
		_ = formatter.Fail(err, ErrCodeGeneric)
		return WrapExitError(ExitCommandError, "generation failed", err)
	}

	result := GenResult{
		Package:  pkg,
		Entities: entityNames(loadResult.Schemas),
		Output:   opts.Out,
		Bytes:    len(src),
	}

	if opts.Out == "" {
		// Generated source is the output; JSON mode would corrupt it
		_, err := cmd.OutOrStdout().Write(src)
		return err
	}

	if err := os.WriteFile(opts.Out, src, 0644); err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("failed to write %s: %v", opts.Out, err), nil)
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	logger.Info("generated wrappers",
		"package", pkg,
		"entities", len(loadResult.Schemas),
		"out", opts.Out)

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Generated %d entities into %s\n", len(result.Entities), opts.Out)
	return nil
}
