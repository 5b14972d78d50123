package log

import (
	"time"

	"github.com/google/uuid"

	"github.com/psrutils/psrutils-go/pkg/diag"
)

// Session stamps the events of one top-level parse with a shared session ID.
// A Session over a nil Logger does nothing; all methods are safe on a nil
// *Session.
type Session struct {
	logger Logger
	id     string
	format Format
}

// NewSession starts a session. It returns nil when logger is nil.
func NewSession(logger Logger, format Format) *Session {
	if logger == nil {
		return nil
	}
	return &Session{logger: logger, id: uuid.New().String(), format: format}
}

// ID returns the session ID, or "" for a nil session.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Emit fills in the timestamp, session ID and format and logs the event.
func (s *Session) Emit(event Event) {
	if s == nil {
		return
	}
	event.Timestamp = time.Now()
	event.SessionID = s.id
	event.Format = s.format
	s.logger.Log(event)
}

// FileOpen logs that file was opened at the given include depth.
func (s *Session) FileOpen(file string, depth int) {
	s.Emit(Event{Kind: KindFileOpen, File: file, Depth: depth})
}

// FileClose logs that file was fully read.
func (s *Session) FileClose(file string, depth int) {
	s.Emit(Event{Kind: KindFileClose, File: file, Depth: depth})
}

// Include logs an INCLUDE directive in file pointing at target.
func (s *Session) Include(file string, line, depth int, target string) {
	s.Emit(Event{Kind: KindInclude, File: file, Line: line, Depth: depth, Message: target})
}

// Record logs an accepted record.
func (s *Session) Record(file string, line, depth int, name, value string, replaced bool) {
	s.Emit(Event{
		Kind:   KindRecord,
		File:   file,
		Line:   line,
		Depth:  depth,
		Record: &RecordEvent{Name: name, Value: value, Replaced: replaced},
	})
}

// Diagnostic logs a recoverable problem.
func (s *Session) Diagnostic(depth int, d diag.Diagnostic) {
	s.Emit(Event{
		Kind:  KindDiagnostic,
		File:  d.File,
		Line:  d.Line,
		Depth: depth,
		Diagnostic: &DiagnosticEvent{
			Kind:     d.Kind.String(),
			Severity: d.Severity.String(),
			Text:     d.Text,
			Message:  d.Message,
		},
	})
}

// Failure logs an error that aborted reading.
func (s *Session) Failure(file string, line int, err error, chain []string) {
	s.Emit(Event{
		Kind:    KindFailure,
		File:    file,
		Line:    line,
		Failure: &FailureEvent{Message: err.Error(), Chain: chain},
	})
}
