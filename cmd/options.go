package cmd

import (
	"github.com/spiffcs/ghusers/config"
)

// Options holds the shared command-line options for the ghusers CLI.
type Options struct {
	Format     string
	Verbosity  int
	MetricsOut string

	// Listing options
	Pages    int
	Sort     string
	Order    string
	Language string
	Filter   string
	Repos    bool

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file

	// loadConfig reads the configuration. Tests replace it.
	loadConfig func() (*config.Config, error)
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		Pages:      1,
		loadConfig: config.Load,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (table, json).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithMetricsOut writes Prometheus metrics to path when a command finishes.
func WithMetricsOut(path string) Option {
	return func(o *Options) {
		o.MetricsOut = path
	}
}

// WithConfig uses cfg instead of loading the configuration from disk.
func WithConfig(cfg *config.Config) Option {
	return func(o *Options) {
		o.loadConfig = func() (*config.Config, error) {
			return cfg, nil
		}
	}
}

// WithCPUProfile sets the CPU profile output file.
func WithCPUProfile(path string) Option {
	return func(o *Options) {
		o.CPUProfile = path
	}
}

// WithMemProfile sets the memory profile output file.
func WithMemProfile(path string) Option {
	return func(o *Options) {
		o.MemProfile = path
	}
}

// WithTrace sets the execution trace output file.
func WithTrace(path string) Option {
	return func(o *Options) {
		o.Trace = path
	}
}
