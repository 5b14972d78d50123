// Package commands implements the psrpar CLI commands.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/psrutils/psrutils-go/internal/config"
	"github.com/psrutils/psrutils-go/pkg/diag"
	"github.com/psrutils/psrutils-go/pkg/parfile"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// session is the loaded configuration of one command run.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	types  *parfile.TypeTable
}

func newSession(flags *config.Flags, stderr io.Writer) (*session, error) {
	cfg, logger, err := flags.Load(stderr)
	if err != nil {
		return nil, err
	}
	types, err := cfg.Types()
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, types: types}, nil
}

// parse reads one .par file, tracing the read when configured.
func (s *session) parse(path string) (*parfile.Parfile, diag.List, error) {
	tracer, closeTrace, err := s.cfg.Tracer(s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening trace: %w", err)
	}
	defer closeTrace()

	p := &parfile.Parser{Types: s.types, Logger: tracer}
	pf, diags, err := p.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("parsed parameter file",
		slog.String("file", path),
		slog.Int("params", pf.Len()),
		slog.Int("jumps", len(pf.Jumps())),
		slog.Int("diagnostics", len(diags)))
	return pf, diags, nil
}

func printDiagnostics(w io.Writer, diags diag.List) {
	for _, d := range diags {
		fmt.Fprintf(w, "  %s %s\n", severityLabel(d.Severity), d.Error())
	}
}

func severityLabel(s diag.Severity) string {
	if s == diag.SeverityError {
		return "ERROR"
	}
	return "WARNING"
}
