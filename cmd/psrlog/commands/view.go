// Package commands implements the psrlog CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Kind      *log.Kind
	Format    *log.Format
	SessionID string
}

func (f ViewFilter) matches(e log.Event) bool {
	if f.Kind != nil && e.Kind != *f.Kind {
		return false
	}
	if f.Format != nil && e.Format != *f.Format {
		return false
	}
	if f.SessionID != "" && !strings.HasPrefix(e.SessionID, f.SessionID) {
		return false
	}
	return true
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session] FORMAT KIND file:line
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	indent := strings.Repeat("  ", event.Depth)

	fmt.Fprintf(w, "%s [%s] %s %s%-10s %s\n", ts, shortenSessionID(event.SessionID),
		event.Format, indent, event.Kind, location(event.File, event.Line))

	switch {
	case event.Record != nil:
		r := event.Record
		if r.Replaced {
			fmt.Fprintf(w, "  %s%s = %s (replaces earlier value)\n", indent, r.Name, r.Value)
		} else {
			fmt.Fprintf(w, "  %s%s = %s\n", indent, r.Name, r.Value)
		}
	case event.Diagnostic != nil:
		d := event.Diagnostic
		fmt.Fprintf(w, "  %s%s %s: %s\n", indent, d.Severity, d.Kind, d.Message)
		if d.Text != "" {
			fmt.Fprintf(w, "  %s| %s\n", indent, d.Text)
		}
	case event.Failure != nil:
		fmt.Fprintf(w, "  %sError: %s\n", indent, event.Failure.Message)
		if len(event.Failure.Chain) > 1 {
			fmt.Fprintf(w, "  %sChain: %s\n", indent, strings.Join(event.Failure.Chain, " -> "))
		}
	case event.Message != "":
		fmt.Fprintf(w, "  %s-> %s\n", indent, event.Message)
	}
}

func location(file string, line int) string {
	if line > 0 {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return file
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// ParseKindFlag parses an event kind from a command-line flag (case-insensitive).
func ParseKindFlag(s string) (log.Kind, error) {
	k, ok := log.ParseKind(strings.ToUpper(strings.ReplaceAll(s, "-", "_")))
	if !ok {
		return 0, fmt.Errorf("invalid kind: %s (must be file_open, file_close, include, record, diagnostic, or failure)", s)
	}
	return k, nil
}

// ParseFormatFlag parses a file format from a command-line flag (case-insensitive).
func ParseFormatFlag(s string) (log.Format, error) {
	switch strings.ToLower(s) {
	case "par":
		return log.FormatPar, nil
	case "tim":
		return log.FormatTim, nil
	default:
		return 0, fmt.Errorf("invalid format: %s (must be par or tim)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if !filter.matches(event) {
			continue
		}
		formatEvent(output, event)
	}

	return nil
}
