package parfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/diag"
	"github.com/psrutils/psrutils-go/pkg/log"
)

const maxLineSize = 1 << 20

var errShortSelector = errors.New("selector is missing arguments")

// Parser reads parameter files.
type Parser struct {
	// Types maps names to value types; nil uses the built-in table.
	Types *TypeTable

	// Logger receives a trace of the parse; nil disables tracing.
	Logger log.Logger
}

// NewParser returns a parser using the built-in type table.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a parameter file from r. Line-level problems are returned as
// diagnostics; the error is non-nil only when reading r fails.
func Parse(r io.Reader) (*Parfile, diag.List, error) {
	return NewParser().Parse(r)
}

// ParseString parses a parameter file held in a string.
func ParseString(s string) (*Parfile, diag.List, error) {
	return NewParser().Parse(strings.NewReader(s))
}

// ParseBytes parses a parameter file held in memory.
func ParseBytes(data []byte) (*Parfile, diag.List, error) {
	return NewParser().Parse(bytes.NewReader(data))
}

// ParseFile parses the parameter file at path.
func ParseFile(path string) (*Parfile, diag.List, error) {
	return NewParser().ParseFile(path)
}

// Parse reads a parameter file from r.
func (p *Parser) Parse(r io.Reader) (*Parfile, diag.List, error) {
	return p.parse(r, "")
}

// ParseFile parses the parameter file at path. Diagnostics carry the path.
func (p *Parser) ParseFile(path string) (*Parfile, diag.List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return p.parse(f, path)
}

// ParseString parses a parameter file held in a string.
func (p *Parser) ParseString(s string) (*Parfile, diag.List, error) {
	return p.parse(strings.NewReader(s), "")
}

type parseState struct {
	types   *TypeTable
	file    string
	session *log.Session
	pf      *Parfile
	diags   diag.List

	// seen maps canonical names to their entry index.
	seen map[string]int
}

func (s *parseState) warn(kind diag.Kind, line int, text, msg string) {
	d := diag.Diagnostic{Kind: kind, Severity: diag.SeverityWarning, File: s.file, Line: line, Text: text, Message: msg}
	s.diags.Add(d)
	s.session.Diagnostic(0, d)
}

// reject records a diagnostic for a line that stays in the file verbatim but
// is not part of the model.
func (s *parseState) reject(kind diag.Kind, line int, text, msg string) {
	d := diag.Diagnostic{Kind: kind, Severity: diag.SeverityError, File: s.file, Line: line, Text: text, Message: msg}
	s.diags.Add(d)
	s.session.Diagnostic(0, d)
	s.pf.Entries = append(s.pf.Entries, Entry{Text: text})
}

func (p *Parser) parse(r io.Reader, file string) (*Parfile, diag.List, error) {
	types := p.Types
	if types == nil {
		types = defaultTypes
	}
	st := &parseState{
		types:   types,
		file:    file,
		session: log.NewSession(p.Logger, log.FormatPar),
		pf:      &Parfile{Types: p.Types},
		seen:    make(map[string]int),
	}

	st.session.FileOpen(file, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		st.parseLine(lineNum, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		err = fmt.Errorf("reading parameter file %s: %w", displayName(file), err)
		st.session.Failure(file, lineNum+1, err, nil)
		return nil, st.diags, err
	}

	st.session.FileClose(file, 0)
	return st.pf, st.diags, nil
}

func displayName(file string) string {
	if file == "" {
		return "<input>"
	}
	return file
}

// field is a whitespace-separated token and its byte offset in the line.
type field struct {
	text  string
	start int
}

func splitFields(s string) []field {
	var out []field
	start := -1
	for i := 0; i <= len(s); i++ {
		space := i == len(s) || s[i] == ' ' || s[i] == '\t' || s[i] == '\v' || s[i] == '\f'
		switch {
		case space && start >= 0:
			out = append(out, field{text: s[start:i], start: start})
			start = -1
		case !space && start < 0:
			start = i
		}
	}
	return out
}

func (s *parseState) parseLine(lineNum int, line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		s.pf.Entries = append(s.pf.Entries, Entry{Text: line})
		return
	}

	all := splitFields(line)
	cut := len(all)
	for i, f := range all {
		if strings.HasPrefix(f.text, "#") {
			cut = i
			break
		}
	}
	cols := make([]string, cut)
	for i := range cols {
		cols[i] = all[i].text
	}
	// comment returns the rest of the line from field i on.
	comment := func(i int) string {
		if i >= len(all) {
			return ""
		}
		return strings.TrimRight(line[all[i].start:], " \t")
	}

	if len(cols) < 2 {
		s.reject(diag.KindMalformedLine, lineNum, line, fmt.Sprintf("%q has no value", cols[0]))
		return
	}

	name := cols[0]
	if selectorParams[strings.ToUpper(name)] {
		if s.parseJump(lineNum, line, cols, comment) {
			return
		}
	}

	typ := s.types.TypeOf(name)
	value, err := ParseValue(typ, cols[1])
	if err != nil {
		s.rejectErr(lineNum, line, name, err)
		return
	}

	param := &Parameter{Name: name, Value: value, Line: lineNum}
	next := 2
	if typ.NumericClass() {
		param.Fit, param.Uncertainty, next, err = parseFitUncertainty(cols, next)
		if err != nil {
			s.rejectErr(lineNum, line, name, err)
			return
		}
	}
	param.Comment = comment(next)

	s.add(param, line)
}

func (s *parseState) rejectErr(lineNum int, line, name string, err error) {
	kind, ok := diag.KindOf(err)
	if !ok {
		kind = diag.KindMalformedLine
	}
	s.reject(kind, lineNum, line, fmt.Sprintf("%s: %s", name, diag.Detail(err)))
}

func (s *parseState) add(param *Parameter, line string) {
	key := s.types.Canonical(param.Name)
	if i, dup := s.seen[key]; dup {
		prev := s.pf.Entries[i].Param
		s.pf.Entries[i].Param = param
		s.warn(diag.KindDuplicateParameter, param.Line, line,
			fmt.Sprintf("%s redefined, replacing line %d", param.Name, prev.Line))
		s.session.Record(s.file, param.Line, 0, param.Name, param.Value.String(), true)
		return
	}
	s.seen[key] = len(s.pf.Entries)
	s.pf.Entries = append(s.pf.Entries, Entry{Param: param})
	s.session.Record(s.file, param.Line, 0, param.Name, param.Value.String(), false)
}

// parseJump handles selector lines. It returns false when the line has no
// selector and should be read as an ordinary parameter.
func (s *parseState) parseJump(lineNum int, line string, cols []string, comment func(int) string) bool {
	name := cols[0]
	kind, key, args, n, ok, err := parseSelector(cols[1:])
	if !ok {
		if strings.EqualFold(name, "JUMP") {
			s.reject(diag.KindMalformedLine, lineNum, line, fmt.Sprintf("JUMP selector %q not recognized", cols[1]))
			return true
		}
		return false
	}
	if err != nil {
		s.rejectErr(lineNum, line, name, err)
		return true
	}

	next := 1 + n
	if next >= len(cols) {
		s.reject(diag.KindMalformedLine, lineNum, line, fmt.Sprintf("%s has no value", name))
		return true
	}
	value, err := ParseValue(Numeric, cols[next])
	if err != nil {
		s.rejectErr(lineNum, line, name, err)
		return true
	}

	j := &Jump{Name: name, Selector: kind, Key: key, Args: args, Value: value, Line: lineNum}
	j.Fit, j.Uncertainty, next, err = parseFitUncertainty(cols, next+1)
	if err != nil {
		s.rejectErr(lineNum, line, name, err)
		return true
	}
	j.Comment = comment(next)

	s.pf.Entries = append(s.pf.Entries, Entry{Jump: j})
	s.session.Record(s.file, lineNum, 0, name, value.String(), false)
	return true
}

// parseFitUncertainty reads the optional columns after a numeric value
// starting at cols[i]: a lone 0 or 1 is the fit flag, followed by an optional
// uncertainty; anything else is the uncertainty. It returns the index of the
// first unconsumed column.
func parseFitUncertainty(cols []string, i int) (fit *bool, unc *float64, next int, err error) {
	if i >= len(cols) {
		return nil, nil, i, nil
	}
	if cols[i] == "0" || cols[i] == "1" {
		fit = Bool(cols[i] == "1")
		i++
		if i >= len(cols) {
			return fit, nil, i, nil
		}
	}
	u, err := parseNumber(cols[i])
	if err != nil {
		return nil, nil, i, fmt.Errorf("uncertainty: %w", err)
	}
	return fit, &u, i + 1, nil
}
