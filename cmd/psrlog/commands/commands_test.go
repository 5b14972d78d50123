package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/psrutils/psrutils-go/pkg/log"
	"github.com/psrutils/psrutils-go/pkg/parfile"
)

func createTestTraceFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.plog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

var testTime = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func sampleEvents() []log.Event {
	return []log.Event{
		{Timestamp: testTime, SessionID: "aaaaaaaa-1111", Kind: log.KindFileOpen, Format: log.FormatTim, File: "main.tim"},
		{Timestamp: testTime.Add(time.Millisecond), SessionID: "aaaaaaaa-1111", Kind: log.KindInclude, Format: log.FormatTim,
			File: "main.tim", Line: 3, Message: "sub.tim"},
		{Timestamp: testTime.Add(2 * time.Millisecond), SessionID: "aaaaaaaa-1111", Kind: log.KindFileOpen, Format: log.FormatTim,
			File: "sub.tim", Depth: 1},
		{Timestamp: testTime.Add(3 * time.Millisecond), SessionID: "aaaaaaaa-1111", Kind: log.KindRecord, Format: log.FormatTim,
			File: "sub.tim", Line: 1, Depth: 1, Record: &log.RecordEvent{Name: "fake", Value: "55000.1"}},
		{Timestamp: testTime.Add(4 * time.Millisecond), SessionID: "aaaaaaaa-1111", Kind: log.KindDiagnostic, Format: log.FormatTim,
			File: "sub.tim", Line: 2, Depth: 1, Diagnostic: &log.DiagnosticEvent{
				Kind: "MALFORMED_LINE", Severity: "error", Text: "bad", Message: "expected tag"}},
		{Timestamp: testTime.Add(time.Second), SessionID: "bbbbbbbb-2222", Kind: log.KindFileOpen, Format: log.FormatPar, File: "a.par"},
		{Timestamp: testTime.Add(time.Second), SessionID: "bbbbbbbb-2222", Kind: log.KindRecord, Format: log.FormatPar,
			File: "a.par", Line: 2, Record: &log.RecordEvent{Name: "F0", Value: "2", Replaced: true}},
		{Timestamp: testTime.Add(2 * time.Second), SessionID: "bbbbbbbb-2222", Kind: log.KindFailure, Format: log.FormatPar,
			File: "a.par", Failure: &log.FailureEvent{Message: "disk on fire"}},
	}
}

func TestRunViewShowsAllEvents(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"2026-03-02T09:30:00.000000Z [aaaaaaaa] TIM FILE_OPEN",
		"-> sub.tim",
		"fake = 55000.1",
		"error MALFORMED_LINE: expected tag",
		"| bad",
		"F0 = 2 (replaces earlier value)",
		"Error: disk on fire",
		"sub.tim:1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestRunViewFilters(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())

	kind := log.KindRecord
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Kind: &kind}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if got := strings.Count(buf.String(), " RECORD"); got != 2 {
		t.Errorf("expected 2 records, got %d:\n%s", got, buf.String())
	}
	if strings.Contains(buf.String(), "FILE_OPEN") {
		t.Error("kind filter let FILE_OPEN through")
	}

	format := log.FormatPar
	buf.Reset()
	if err := RunView(path, ViewFilter{Format: &format, SessionID: "bbbb"}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if strings.Contains(buf.String(), "TIM") {
		t.Errorf("format filter let TIM through:\n%s", buf.String())
	}
}

func TestRunViewMissingFile(t *testing.T) {
	err := RunView(filepath.Join(t.TempDir(), "none.plog"), ViewFilter{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "failed to open trace file") {
		t.Errorf("expected open error, got %v", err)
	}
}

func TestParseFlags(t *testing.T) {
	k, err := ParseKindFlag("file-open")
	if err != nil || k != log.KindFileOpen {
		t.Errorf("ParseKindFlag(file-open) = %v, %v", k, err)
	}
	k, err = ParseKindFlag("Diagnostic")
	if err != nil || k != log.KindDiagnostic {
		t.Errorf("ParseKindFlag(Diagnostic) = %v, %v", k, err)
	}
	if _, err := ParseKindFlag("frame"); err == nil {
		t.Error("expected error for unknown kind")
	}

	f, err := ParseFormatFlag("TIM")
	if err != nil || f != log.FormatTim {
		t.Errorf("ParseFormatFlag(TIM) = %v, %v", f, err)
	}
	if _, err := ParseFormatFlag("mlog"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunStats(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 8",
		"FILE_OPEN:   3",
		"TIM:         5",
		"PAR:         3",
		"Sessions: 2",
		"[aaaaaaaa] main.tim ok",
		"Files: 2 (max depth 1)",
		"[bbbbbbbb] a.par FAILED",
		"Records: 1 (1 replaced)",
		"Diagnostics: 1",
		"Failures: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
}

func TestRunStatsEmpty(t *testing.T) {
	path := createTestTraceFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRunFilter(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.plog")

	var buf bytes.Buffer
	opts := FilterOptions{Output: out, SessionID: "aaaaaaaa-1111", Kind: "file_open"}
	if err := RunFilter(path, opts, &buf); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Filtered 2 events") {
		t.Errorf("unexpected summary: %s", buf.String())
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("reading filtered trace: %v", err)
	}
	defer reader.Close()
	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, e := range events {
		if e.Kind != log.KindFileOpen {
			t.Errorf("unexpected kind %s", e.Kind)
		}
	}
}

func TestRunFilterTimeRange(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.plog")

	opts := FilterOptions{
		Output:    out,
		TimeStart: testTime.Add(time.Second).Format(time.RFC3339),
		TimeEnd:   testTime.Add(2 * time.Second).Format(time.RFC3339),
	}
	var buf bytes.Buffer
	if err := RunFilter(path, opts, &buf); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Filtered 2 events") {
		t.Errorf("unexpected summary: %s", buf.String())
	}
}

func TestRunFilterInvalidOptions(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.plog")

	for _, opts := range []FilterOptions{
		{Output: out, TimeStart: "yesterday"},
		{Output: out, TimeEnd: "tomorrow"},
		{Output: out, Kind: "frame"},
		{Output: out, Format: "mlog"},
	} {
		if err := RunFilter(path, opts, &bytes.Buffer{}); err == nil {
			t.Errorf("expected error for %+v", opts)
		}
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[3]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first["kind"] != "RECORD" || first["format"] != "TIM" {
		t.Errorf("unexpected event: %v", first)
	}
	record, ok := first["record"].(map[string]any)
	if !ok || record["name"] != "fake" {
		t.Errorf("unexpected record payload: %v", first["record"])
	}
}

func TestRunExportCSV(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	output := string(data)
	if !strings.HasPrefix(output, "timestamp,session_id,format,kind,file,line,depth,detail\n") {
		t.Errorf("unexpected header:\n%s", output)
	}
	if !strings.Contains(output, "RECORD,sub.tim,1,1,fake=55000.1") {
		t.Errorf("expected record row, got:\n%s", output)
	}
	if !strings.Contains(output, "MALFORMED_LINE: expected tag") {
		t.Errorf("expected diagnostic row, got:\n%s", output)
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := createTestTraceFile(t, sampleEvents())
	if err := RunExport(path, "xml", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestViewRealParseTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "real.plog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}

	p := &parfile.Parser{Logger: logger}
	if _, _, err := p.ParseString("PSR J1\nF0 1\nF0 2\n"); err != nil {
		t.Fatalf("parse: %v", err)
	}
	logger.Close()

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Records: 3 (1 replaced)") {
		t.Errorf("unexpected stats:\n%s", buf.String())
	}
}
