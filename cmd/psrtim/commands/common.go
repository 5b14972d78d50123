// Package commands implements the psrtim CLI commands.
package commands

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/psrutils/psrutils-go/internal/config"
	"github.com/psrutils/psrutils-go/pkg/diag"
	"github.com/psrutils/psrutils-go/pkg/timfile"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// readOptions are accepted by every command that reads a .tim file.
type readOptions struct {
	Flags         config.Flags
	KeepCommented bool
	Quiet         bool
}

func (o *readOptions) register(fs *flag.FlagSet) {
	fs.BoolVar(&o.KeepCommented, "commented", false, "Include TOAs commented out with C")
	fs.BoolVar(&o.Quiet, "q", false, "Do not report skipped lines")
	o.Flags.Register(fs)
}

type session struct {
	cfg    config.Config
	logger *slog.Logger
	opts   readOptions
}

func newSession(opts readOptions, stderr io.Writer) (*session, error) {
	cfg, logger, err := opts.Flags.Load(stderr)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, opts: opts}, nil
}

// read reads a .tim file with its includes and reports skipped lines to
// stderr.
func (s *session) read(path string, stderr io.Writer) (*timfile.Result, error) {
	tracer, closeTrace, err := s.cfg.Tracer(s.logger)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer closeTrace()

	r := &timfile.Reader{
		Logger:        tracer,
		KeepCommented: s.opts.KeepCommented || s.cfg.KeepCommented,
	}
	res, err := r.Read(path)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("read TOA file",
		slog.String("file", path),
		slog.Int("toas", len(res.TOAs)),
		slog.Int("diagnostics", len(res.Diagnostics)))

	if len(res.Diagnostics) > 0 && !s.opts.Quiet {
		fmt.Fprintf(stderr, "%s: %d lines skipped or suspicious\n", path, len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			label := "WARNING"
			if d.Severity == diag.SeverityError {
				label = "ERROR"
			}
			fmt.Fprintf(stderr, "  %s %s\n", label, d.Error())
		}
	}
	return res, nil
}

// openOutput returns stdout or the named file.
func openOutput(name string, stdout io.Writer) (io.Writer, func() error, error) {
	if name == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
