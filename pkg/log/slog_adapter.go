package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns a SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("kind", event.Kind.String()),
		slog.String("format", event.Format.String()),
	}

	if event.File != "" {
		attrs = append(attrs, slog.String("file", event.File))
	}
	if event.Line > 0 {
		attrs = append(attrs, slog.Int("line", event.Line))
	}
	if event.Depth > 0 {
		attrs = append(attrs, slog.Int("depth", event.Depth))
	}
	if event.Message != "" {
		attrs = append(attrs, slog.String("message", event.Message))
	}

	switch {
	case event.Record != nil:
		attrs = append(attrs,
			slog.String("name", event.Record.Name),
			slog.String("value", event.Record.Value),
		)
		if event.Record.Replaced {
			attrs = append(attrs, slog.Bool("replaced", true))
		}
	case event.Diagnostic != nil:
		attrs = append(attrs,
			slog.String("diag_kind", event.Diagnostic.Kind),
			slog.String("severity", event.Diagnostic.Severity),
		)
		if event.Diagnostic.Message != "" {
			attrs = append(attrs, slog.String("diag_msg", event.Diagnostic.Message))
		}
	case event.Failure != nil:
		attrs = append(attrs, slog.String("error", event.Failure.Message))
		if len(event.Failure.Chain) > 0 {
			attrs = append(attrs, slog.Any("chain", event.Failure.Chain))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
