// Package config loads the YAML settings shared by the psr command-line tools.
//
// A configuration file looks like:
//
//	log_level: debug
//	trace: /tmp/read.plog
//	keep_commented: true
//	parameters:
//	  MYPARAM: numeric
//	  NOTE: string
//	indexed:
//	  MYFAM_: numeric
//	writer:
//	  name_width: 12
//	  value_width: 20
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/psrutils/psrutils-go/pkg/log"
	"github.com/psrutils/psrutils-go/pkg/parfile"
)

// Config holds tool settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Trace is the path of a binary trace file; empty disables tracing.
	Trace string `yaml:"trace"`

	// KeepCommented returns commented-out TOAs from .tim files.
	KeepCommented bool `yaml:"keep_commented"`

	// Parameters maps extra parameter names to value type names.
	Parameters map[string]string `yaml:"parameters"`

	// Indexed maps extra indexed family prefixes to value type names.
	Indexed map[string]string `yaml:"indexed"`

	Writer WriterConfig `yaml:"writer"`
}

// WriterConfig sets the .par column widths.
type WriterConfig struct {
	NameWidth  int `yaml:"name_width"`
	ValueWidth int `yaml:"value_width"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Writer: WriterConfig{
			NameWidth:  parfile.DefaultNameWidth,
			ValueWidth: parfile.DefaultValueWidth,
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns
// Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the level, the widths and every type name.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Writer.NameWidth < 0 || c.Writer.ValueWidth < 0 {
		return fmt.Errorf("writer widths must not be negative")
	}
	for _, name := range sortedKeys(c.Parameters) {
		if _, err := parfile.ParseValueType(c.Parameters[name]); err != nil {
			return fmt.Errorf("parameter %s: %w", name, err)
		}
	}
	for _, prefix := range sortedKeys(c.Indexed) {
		if _, err := parfile.ParseValueType(c.Indexed[prefix]); err != nil {
			return fmt.Errorf("indexed %s: %w", prefix, err)
		}
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
}

// Types returns the default type table extended with the configured
// parameters and families.
func (c Config) Types() (*parfile.TypeTable, error) {
	types := parfile.DefaultTypes()
	for _, name := range sortedKeys(c.Parameters) {
		t, err := parfile.ParseValueType(c.Parameters[name])
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", name, err)
		}
		if err := types.Register(parfile.ParamSpec{Name: name, Type: t}); err != nil {
			return nil, err
		}
	}
	for _, prefix := range sortedKeys(c.Indexed) {
		t, err := parfile.ParseValueType(c.Indexed[prefix])
		if err != nil {
			return nil, fmt.Errorf("indexed %s: %w", prefix, err)
		}
		if err := types.RegisterIndexed(parfile.IndexedSpec{Prefix: prefix, Type: t}); err != nil {
			return nil, err
		}
	}
	return types, nil
}

// ParWriter returns a .par writer using the configured widths.
func (c Config) ParWriter() *parfile.Writer {
	w := parfile.NewWriter()
	if c.Writer.NameWidth > 0 {
		w.NameWidth = c.Writer.NameWidth
	}
	if c.Writer.ValueWidth > 0 {
		w.ValueWidth = c.Writer.ValueWidth
	}
	return w
}

// NewLogger returns a text slog logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Tracer returns the trace logger for a read. Events go to the trace file
// when one is configured and to logger at debug level. The returned
// close function must be called when the read is done.
func (c Config) Tracer(logger *slog.Logger) (log.Logger, func() error, error) {
	var loggers []log.Logger
	closeFn := func() error { return nil }

	if c.Trace != "" {
		fl, err := log.NewFileLogger(c.Trace)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeFn = fl.Close
	}
	if logger != nil && logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	switch len(loggers) {
	case 0:
		return nil, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
