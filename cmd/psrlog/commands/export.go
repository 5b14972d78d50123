package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/psrutils/psrutils-go/pkg/log"
)

// exportedEvent is the JSON shape of a trace event.
type exportedEvent struct {
	Timestamp  string               `json:"timestamp"`
	SessionID  string               `json:"session_id"`
	Kind       string               `json:"kind"`
	Format     string               `json:"format"`
	File       string               `json:"file,omitempty"`
	Line       int                  `json:"line,omitempty"`
	Depth      int                  `json:"depth,omitempty"`
	Message    string               `json:"message,omitempty"`
	Record     *log.RecordEvent     `json:"record,omitempty"`
	Diagnostic *log.DiagnosticEvent `json:"diagnostic,omitempty"`
	Failure    *log.FailureEvent    `json:"failure,omitempty"`
}

const timestampLayout = "2006-01-02T15:04:05.000000Z"

func export(event log.Event) exportedEvent {
	return exportedEvent{
		Timestamp:  event.Timestamp.UTC().Format(timestampLayout),
		SessionID:  event.SessionID,
		Kind:       event.Kind.String(),
		Format:     event.Format.String(),
		File:       event.File,
		Line:       event.Line,
		Depth:      event.Depth,
		Message:    event.Message,
		Record:     event.Record,
		Diagnostic: event.Diagnostic,
		Failure:    event.Failure,
	}
}

// RunExport exports the trace file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(export(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "format", "kind", "file", "line", "depth", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		detail := event.Message
		switch {
		case event.Record != nil:
			detail = event.Record.Name + "=" + event.Record.Value
		case event.Diagnostic != nil:
			detail = event.Diagnostic.Kind + ": " + event.Diagnostic.Message
		case event.Failure != nil:
			detail = event.Failure.Message
		}

		row := []string{
			event.Timestamp.UTC().Format(timestampLayout),
			event.SessionID,
			event.Format.String(),
			event.Kind.String(),
			event.File,
			strconv.Itoa(event.Line),
			strconv.Itoa(event.Depth),
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
