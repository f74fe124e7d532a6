package model

import (
	"log/slog"

	"github.com/roach88/modelkit/pkg/value"
)

// Option configures an Entity at construction.
type Option func(*options)

type options struct {
	allowUnknown bool
	logger       *slog.Logger
	ids          IDGenerator
}

func defaultOptions() options {
	return options{
		allowUnknown: false,
		logger:       slog.Default(),
		ids:          UUIDv7Generator{},
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithAllowUnknown controls whether writes to undeclared keys are admitted
// (into the transient namespace) or rejected. The default is false: the
// entity is sealed to the keys present at construction.
func WithAllowUnknown(allow bool) Option {
	return func(o *options) {
		o.allowUnknown = allow
	}
}

// WithLogger sets the logger for entity diagnostics. A nil logger keeps
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithIDGenerator sets the generator for entity IDs.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.ids = gen
		}
	}
}

// Namespace tags which attribute mapping owns a key.
type Namespace int

const (
	// Persisted holds canonical, server-origin attributes.
	Persisted Namespace = iota + 1

	// Transient holds session attributes that never reach canonical form.
	Transient
)

// String returns "persisted" or "transient".
func (n Namespace) String() string {
	switch n {
	case Persisted:
		return "persisted"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Raw is the two-namespace input record an Entity is built from.
type Raw struct {
	Persisted value.Object `json:"persisted"`
	Transient value.Object `json:"transient"`
}

// Clone returns a deep copy of r with nil namespaces replaced by empty ones.
func (r Raw) Clone() Raw {
	return Raw{
		Persisted: r.Persisted.Clone(),
		Transient: r.Transient.Clone(),
	}
}
