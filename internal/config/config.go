// Package config loads CLI settings with viper.
//
// Sources, lowest to highest precedence:
//  1. built-in defaults (SetDefaults)
//  2. the config file: --config, MODELKIT_CONFIG_FILE, or .modelkit.yaml
//     in the working directory when present
//  3. MODELKIT_<KEY> environment variables (MODELKIT_LOG_LEVEL, ...)
//  4. command-line flags bound with BindFlags
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "MODELKIT"

	// EnvConfigFile names an explicit config file path.
	EnvConfigFile = "MODELKIT_CONFIG_FILE"

	// DefaultName is the config file searched for in the working directory.
	DefaultName = ".modelkit"
)

// Keys.
const (
	KeyFormat       = "format"
	KeyVerbose      = "verbose"
	KeyLogLevel     = "log_level"
	KeyAllowUnknown = "allow_unknown"
	KeySchemaDir    = "schema_dir"
	KeyGoldenDir    = "golden_dir"
)

var keys = []string{KeyFormat, KeyVerbose, KeyLogLevel, KeyAllowUnknown, KeySchemaDir, KeyGoldenDir}

// ValidFormats lists the accepted output formats.
var ValidFormats = []string{"text", "json"}

// Config holds resolved CLI settings.
type Config struct {
	Format       string `mapstructure:"format"`
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	AllowUnknown bool   `mapstructure:"allow_unknown"`
	SchemaDir    string `mapstructure:"schema_dir"`
	GoldenDir    string `mapstructure:"golden_dir"` // empty: <scenarios>/golden
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyAllowUnknown, false)
	v.SetDefault(KeySchemaDir, ".")
	v.SetDefault(KeyGoldenDir, "")
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds each flag in fs whose name, with dashes replaced by
// underscores, is a config key. Unbound flags are left alone.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !slices.Contains(keys, key) || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// Load reads the config file and unmarshals every source into a Config.
// An explicit path (argument or MODELKIT_CONFIG_FILE) must exist; the
// default .modelkit.yaml is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultName)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level: debug when Verbose, otherwise LogLevel.
func (c *Config) Level() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// Logger returns a text logger writing to w at Level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Level()}))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return level, nil
}
