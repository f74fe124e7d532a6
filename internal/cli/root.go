package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/modelkit/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	LogLevel   string
	ConfigFile string

	// Config and Logger are resolved before any subcommand runs.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.ValidFormats

// NewRootCommand creates the root command for the modelkit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "modelkit",
		Short: "modelkit - entities with persisted and transient attributes",
		Long: `Tools for modelkit entity schemas and data.

Validate CUE entity schemas, generate typed Go wrappers, inspect record
files as collections and run collection scenarios against golden traces.

Settings come from flags, MODELKIT_* environment variables and an
optional .modelkit.yaml, in that order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints the error once
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default .modelkit.yaml)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// resolve merges flags, environment and config file into opts.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return WrapExitError(ExitCommandError, "failed to bind flags", err)
	}

	cfg, err := config.Load(v, o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	o.Config = cfg
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose
	o.LogLevel = cfg.LogLevel
	o.Logger = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

// settings returns the resolved config, or one derived from the flag
// fields when a command runs without the root.
func (o *RootOptions) settings() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	level := o.LogLevel
	if level == "" {
		level = "warn"
	}
	return &config.Config{
		Format:    o.Format,
		Verbose:   o.Verbose,
		LogLevel:  level,
		SchemaDir: ".",
	}
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// schemaDirArg returns the directory argument or the schema_dir setting.
func schemaDirArg(o *RootOptions, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.settings().SchemaDir
}
