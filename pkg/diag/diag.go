package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, one per Kind.
var (
	ErrMalformedLine      = errors.New("malformed line")
	ErrDuplicateParameter = errors.New("duplicate parameter")
	ErrUnresolvedInclude  = errors.New("unresolved include")
	ErrCyclicInclude      = errors.New("cyclic include")
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
	ErrInvalidNumber      = errors.New("invalid number")
	ErrInvalidRecord      = errors.New("invalid record")
	ErrMissingParameter   = errors.New("missing parameter")
	ErrUnknownValue       = errors.New("unknown value")
)

// Kind classifies a diagnostic.
type Kind uint8

const (
	KindMalformedLine Kind = iota
	KindDuplicateParameter
	KindUnresolvedInclude
	KindCyclicInclude
	KindInvalidCoordinate
	KindInvalidNumber
	KindInvalidRecord
	KindMissingParameter
	KindUnknownValue
)

var kindNames = [...]string{
	KindMalformedLine:      "MALFORMED_LINE",
	KindDuplicateParameter: "DUPLICATE_PARAMETER",
	KindUnresolvedInclude:  "UNRESOLVED_INCLUDE",
	KindCyclicInclude:      "CYCLIC_INCLUDE",
	KindInvalidCoordinate:  "INVALID_COORDINATE",
	KindInvalidNumber:      "INVALID_NUMBER",
	KindInvalidRecord:      "INVALID_RECORD",
	KindMissingParameter:   "MISSING_PARAMETER",
	KindUnknownValue:       "UNKNOWN_VALUE",
}

var kindErrors = [...]error{
	KindMalformedLine:      ErrMalformedLine,
	KindDuplicateParameter: ErrDuplicateParameter,
	KindUnresolvedInclude:  ErrUnresolvedInclude,
	KindCyclicInclude:      ErrCyclicInclude,
	KindInvalidCoordinate:  ErrInvalidCoordinate,
	KindInvalidNumber:      ErrInvalidNumber,
	KindInvalidRecord:      ErrInvalidRecord,
	KindMissingParameter:   ErrMissingParameter,
	KindUnknownValue:       ErrUnknownValue,
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// Err returns the sentinel error for the kind.
func (k Kind) Err() error {
	if int(k) < len(kindErrors) {
		return kindErrors[k]
	}
	return nil
}

// KindOf maps an error back to its Kind by walking the wrap chain.
// The second result is false when err wraps none of the sentinels.
func KindOf(err error) (Kind, bool) {
	var d Diagnostic
	if errors.As(err, &d) {
		return d.Kind, true
	}
	for k, sentinel := range kindErrors {
		if errors.Is(err, sentinel) {
			return Kind(k), true
		}
	}
	return 0, false
}

// Severity tells whether a diagnostic lost data.
type Severity uint8

const (
	// SeverityError means the line was dropped from the model.
	SeverityError Severity = iota
	// SeverityWarning means the model is complete but suspicious.
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a recoverable problem found while reading a file.
type Diagnostic struct {
	Kind     Kind
	Severity Severity

	// File is the path of the file the line came from, empty for in-memory input.
	File string

	// Line is the 1-based line number, 0 when not tied to a line.
	Line int

	// Text is the offending source line.
	Text string

	Message string
}

func (d Diagnostic) Error() string {
	var sb strings.Builder
	if d.File != "" {
		sb.WriteString(d.File)
		sb.WriteString(":")
	}
	if d.Line > 0 {
		fmt.Fprintf(&sb, "%d:", d.Line)
	}
	if sb.Len() > 0 {
		sb.WriteString(" ")
	}
	sb.WriteString(d.Kind.Err().Error())
	if d.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(d.Message)
	}
	return sb.String()
}

// Unwrap returns the sentinel for the diagnostic's kind.
func (d Diagnostic) Unwrap() error {
	return d.Kind.Err()
}

// List accumulates diagnostics in the order they were found.
type List []Diagnostic

// Add appends a diagnostic.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// AddError records a problem that dropped a line.
func (l *List) AddError(kind Kind, file string, line int, text, message string) {
	l.Add(Diagnostic{Kind: kind, Severity: SeverityError, File: file, Line: line, Text: text, Message: message})
}

// AddWarning records a problem that kept a line.
func (l *List) AddWarning(kind Kind, file string, line int, text, message string) {
	l.Add(Diagnostic{Kind: kind, Severity: SeverityWarning, File: file, Line: line, Text: text, Message: message})
}

// Errors returns the diagnostics with SeverityError.
func (l List) Errors() List {
	return l.filter(SeverityError)
}

// Warnings returns the diagnostics with SeverityWarning.
func (l List) Warnings() List {
	return l.filter(SeverityWarning)
}

func (l List) filter(s Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Has reports whether any diagnostic has the given kind.
func (l List) Has(kind Kind) bool {
	for _, d := range l {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with the given kind.
func (l List) Count(kind Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Err joins all diagnostics into one error, or returns nil for an empty list.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	errs := make([]error, len(l))
	for i, d := range l {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// Detail returns the message of err without the leading sentinel text, for
// use as Diagnostic.Message when the diagnostic already names the kind.
func Detail(err error) string {
	msg := err.Error()
	if k, ok := KindOf(err); ok {
		if rest, cut := strings.CutPrefix(msg, k.Err().Error()+": "); cut {
			return rest
		}
	}
	return msg
}
