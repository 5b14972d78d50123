package log

import "time"

// Event is one step of a parse trace.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID groups the events of one top-level parse (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Kind classifies the event.
	Kind Kind `cbor:"3,keyasint"`

	// Format is the file format being read.
	Format Format `cbor:"4,keyasint"`

	// File is the path of the file the event belongs to.
	File string `cbor:"5,keyasint,omitempty"`

	// Line is the 1-based line number, 0 when not tied to a line.
	Line int `cbor:"6,keyasint,omitempty"`

	// Depth is the include depth, 0 for the top-level file.
	Depth int `cbor:"7,keyasint,omitempty"`

	// Message is free-form detail, e.g. the target of an INCLUDE.
	Message string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (at most one of these is set).
	Record     *RecordEvent     `cbor:"9,keyasint,omitempty"`
	Diagnostic *DiagnosticEvent `cbor:"10,keyasint,omitempty"`
	Failure    *FailureEvent    `cbor:"11,keyasint,omitempty"`
}

// Kind classifies an event.
type Kind uint8

const (
	// KindFileOpen is emitted when a file is opened for reading.
	KindFileOpen Kind = 0
	// KindFileClose is emitted when a file has been fully consumed.
	KindFileClose Kind = 1
	// KindInclude is emitted when an INCLUDE directive is followed.
	KindInclude Kind = 2
	// KindRecord is emitted for every parameter, jump or TOA accepted.
	KindRecord Kind = 3
	// KindDiagnostic is emitted for every recoverable problem.
	KindDiagnostic Kind = 4
	// KindFailure is emitted when reading aborts.
	KindFailure Kind = 5
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFileOpen:
		return "FILE_OPEN"
	case KindFileClose:
		return "FILE_CLOSE"
	case KindInclude:
		return "INCLUDE"
	case KindRecord:
		return "RECORD"
	case KindDiagnostic:
		return "DIAGNOSTIC"
	case KindFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := KindFileOpen; k <= KindFailure; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Format identifies the file format being read.
type Format uint8

const (
	// FormatPar is a tempo2 parameter file.
	FormatPar Format = 0
	// FormatTim is a tempo2 TOA file.
	FormatTim Format = 1
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPar:
		return "PAR"
	case FormatTim:
		return "TIM"
	default:
		return "UNKNOWN"
	}
}

// RecordEvent describes an accepted record.
type RecordEvent struct {
	// Name is the parameter name or the TOA tag.
	Name string `json:"name" cbor:"1,keyasint"`

	// Value is the value as written.
	Value string `json:"value,omitempty" cbor:"2,keyasint,omitempty"`

	// Replaced is set when the record replaced an earlier duplicate.
	Replaced bool `json:"replaced,omitempty" cbor:"3,keyasint,omitempty"`
}

// DiagnosticEvent mirrors a diag.Diagnostic.
type DiagnosticEvent struct {
	// Kind is the diagnostic kind name, e.g. MALFORMED_LINE.
	Kind string `json:"kind" cbor:"1,keyasint"`

	// Severity is "error" or "warning".
	Severity string `json:"severity" cbor:"2,keyasint"`

	// Text is the offending source line.
	Text string `json:"text,omitempty" cbor:"3,keyasint,omitempty"`

	// Message explains the problem.
	Message string `json:"message,omitempty" cbor:"4,keyasint,omitempty"`
}

// FailureEvent captures a structural error that aborted reading.
type FailureEvent struct {
	// Message is the error text.
	Message string `json:"message" cbor:"1,keyasint"`

	// Chain is the include chain from the top-level file to the failing one.
	Chain []string `json:"chain,omitempty" cbor:"2,keyasint,omitempty"`
}
