package config

import (
	"flag"
	"io"
	"log/slog"
)

// Flags are the command-line options every tool accepts. Set values
// override the configuration file.
type Flags struct {
	ConfigFile string
	LogLevel   string
	Trace      string
}

// Register adds -config, -log-level and -trace to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigFile, "config", "", "Configuration file path")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.Trace, "trace", "", "Write a binary read trace to this file")
}

// Load reads the configuration file, applies the flag overrides and builds
// a logger writing to stderr.
func (f *Flags) Load(stderr io.Writer) (Config, *slog.Logger, error) {
	cfg, err := Load(f.ConfigFile)
	if err != nil {
		return Config{}, nil, err
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.Trace != "" {
		cfg.Trace = f.Trace
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, cfg.NewLogger(stderr), nil
}
