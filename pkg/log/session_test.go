package log

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/psrutils/psrutils-go/pkg/diag"
)

func TestNilSessionIsSafe(t *testing.T) {
	s := NewSession(nil, FormatPar)
	if s != nil {
		t.Fatal("NewSession(nil) should return nil")
	}
	s.FileOpen("a.par", 0)
	s.Record("a.par", 1, 0, "F0", "1", false)
	s.Failure("a.par", 0, errors.New("boom"), nil)
	if s.ID() != "" {
		t.Errorf("ID() = %q", s.ID())
	}
}

func TestSessionStampsEvents(t *testing.T) {
	rec := &recorder{}
	s := NewSession(rec, FormatTim)

	if _, err := uuid.Parse(s.ID()); err != nil {
		t.Fatalf("session ID %q is not a UUID: %v", s.ID(), err)
	}

	s.FileOpen("a.tim", 0)
	s.Include("a.tim", 3, 0, "b.tim")
	s.Diagnostic(1, diag.Diagnostic{
		Kind:     diag.KindMalformedLine,
		Severity: diag.SeverityError,
		File:     "b.tim",
		Line:     7,
		Text:     "junk",
	})
	s.FileClose("a.tim", 0)

	if len(rec.events) != 4 {
		t.Fatalf("got %d events, want 4", len(rec.events))
	}
	for i, e := range rec.events {
		if e.SessionID != s.ID() {
			t.Errorf("event %d SessionID = %q", i, e.SessionID)
		}
		if e.Format != FormatTim {
			t.Errorf("event %d Format = %v", i, e.Format)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("event %d has zero timestamp", i)
		}
	}

	inc := rec.events[1]
	if inc.Kind != KindInclude || inc.Message != "b.tim" || inc.Line != 3 {
		t.Errorf("include event = %+v", inc)
	}

	d := rec.events[2]
	if d.Diagnostic == nil || d.Diagnostic.Kind != "MALFORMED_LINE" || d.Diagnostic.Severity != "error" {
		t.Errorf("diagnostic event = %+v", d.Diagnostic)
	}
	if d.Depth != 1 || d.File != "b.tim" || d.Line != 7 {
		t.Errorf("diagnostic location = %s:%d depth %d", d.File, d.Line, d.Depth)
	}
}

func TestSessionsHaveDistinctIDs(t *testing.T) {
	a := NewSession(NoopLogger{}, FormatPar)
	b := NewSession(NoopLogger{}, FormatPar)
	if a.ID() == b.ID() {
		t.Error("sessions share an ID")
	}
}
