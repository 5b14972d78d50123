package timfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/diag"
	"github.com/psrutils/psrutils-go/pkg/log"
)

const maxLineSize = 1 << 20

// skippedDirectives are tempo2 commands that change how TOAs are processed.
// They are reported and otherwise ignored.
var skippedDirectives = map[string]bool{
	"TIME": true, "EFAC": true, "EQUAD": true, "T2EFAC": true, "T2EQUAD": true,
	"JUMP": true, "SKIP": true, "NOSKIP": true, "PHASE": true, "TRACK": true,
	"EMIN": true, "EMAX": true, "FMIN": true, "FMAX": true, "SIGMA": true,
	"INFO": true, "END": true,
}

// Result is the outcome of a successful read.
type Result struct {
	// TOAs in include-expanded file order.
	TOAs []TOA

	// Diagnostics for the lines that were skipped or suspicious.
	Diagnostics diag.List
}

// ReadError is a structural failure that aborted a read: an unreadable
// top-level file, an INCLUDE that cannot be resolved, or an include cycle.
type ReadError struct {
	// File and Line locate the failing directive; Line is 0 for the
	// top-level file itself.
	File string
	Line int

	// Chain lists the files being expanded, outermost first.
	Chain []string

	Err error
}

func (e *ReadError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&sb, ":%d", e.Line)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	if len(e.Chain) > 1 {
		sb.WriteString(" (include chain: ")
		sb.WriteString(strings.Join(e.Chain, " -> "))
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Reader reads tempo2 TOA files, following INCLUDE directives.
type Reader struct {
	// Logger receives a trace of the read; nil disables tracing.
	Logger log.Logger

	// KeepCommented returns TOA lines commented out with a leading C,
	// marked Commented, instead of skipping them.
	KeepCommented bool
}

// NewReader returns a reader with default settings.
func NewReader() *Reader {
	return &Reader{}
}

// Read reads the TOA file at path. INCLUDE paths are resolved relative to
// the directory of the file containing them.
func Read(path string) (*Result, error) {
	return NewReader().Read(path)
}

// ReadFS reads the TOA file name from fsys.
func ReadFS(fsys fs.FS, name string) (*Result, error) {
	return NewReader().ReadFS(fsys, name)
}

// Read reads the TOA file at path from the operating system.
func (r *Reader) Read(path string) (*Result, error) {
	return r.read(osSource{}, path)
}

// ReadFS reads the TOA file name from fsys. Names follow io/fs rules.
func (r *Reader) ReadFS(fsys fs.FS, name string) (*Result, error) {
	return r.read(fsSource{fsys: fsys}, name)
}

// source abstracts the file namespace so INCLUDE resolution works the same
// over the OS and over an fs.FS.
type source interface {
	open(name string) (io.ReadCloser, error)
	// canonical returns the identity used for cycle detection.
	canonical(name string) (string, error)
	// resolve returns target relative to the directory of parent.
	resolve(parent, target string) string
}

type osSource struct{}

func (osSource) open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

func (osSource) canonical(name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

func (osSource) resolve(parent, target string) string {
	if filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(filepath.Dir(parent), target)
}

type fsSource struct {
	fsys fs.FS
}

func (s fsSource) open(name string) (io.ReadCloser, error) {
	return s.fsys.Open(name)
}

func (fsSource) canonical(name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return name, nil
}

func (fsSource) resolve(parent, target string) string {
	return path.Join(path.Dir(parent), target)
}

// includeStack holds the canonical paths of the files being expanded.
type includeStack struct {
	names  []string
	paths  []string
	active map[string]bool
}

func newIncludeStack() *includeStack {
	return &includeStack{active: make(map[string]bool)}
}

func (s *includeStack) push(name, canonical string) {
	s.names = append(s.names, name)
	s.paths = append(s.paths, canonical)
	s.active[canonical] = true
}

func (s *includeStack) pop() {
	last := len(s.paths) - 1
	delete(s.active, s.paths[last])
	s.names = s.names[:last]
	s.paths = s.paths[:last]
}

func (s *includeStack) contains(canonical string) bool {
	return s.active[canonical]
}

func (s *includeStack) depth() int {
	return len(s.paths) - 1
}

// chain returns the file names on the stack, plus extra.
func (s *includeStack) chain(extra ...string) []string {
	out := make([]string, 0, len(s.names)+len(extra))
	out = append(out, s.names...)
	return append(out, extra...)
}

type readState struct {
	src     source
	reader  *Reader
	stack   *includeStack
	session *log.Session
	result  *Result
}

func (r *Reader) read(src source, name string) (*Result, error) {
	st := &readState{
		src:     src,
		reader:  r,
		stack:   newIncludeStack(),
		session: log.NewSession(r.Logger, log.FormatTim),
		result:  &Result{},
	}

	canonical, err := src.canonical(name)
	if err != nil {
		return nil, st.fail(&ReadError{File: name, Chain: []string{name}, Err: err})
	}
	f, err := src.open(name)
	if err != nil {
		return nil, st.fail(&ReadError{File: name, Chain: []string{name}, Err: err})
	}

	st.stack.push(name, canonical)
	if err := st.readFile(f, name); err != nil {
		return nil, st.fail(err)
	}
	return st.result, nil
}

func (st *readState) fail(err error) error {
	var re *ReadError
	if errors.As(err, &re) {
		st.session.Failure(re.File, re.Line, re, re.Chain)
	}
	return err
}

func (st *readState) diagnose(d diag.Diagnostic) {
	st.result.Diagnostics.Add(d)
	st.session.Diagnostic(st.stack.depth(), d)
}

// readFile consumes f, which is already on top of the include stack.
func (st *readState) readFile(f io.ReadCloser, name string) error {
	defer f.Close()

	depth := st.stack.depth()
	st.session.FileOpen(name, depth)
	defer st.session.FileClose(name, depth)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := st.readLine(name, lineNum, strings.TrimSuffix(scanner.Text(), "\r")); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return &ReadError{File: name, Line: lineNum + 1, Chain: st.stack.chain(), Err: err}
	}
	return nil
}

func (st *readState) readLine(name string, lineNum int, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}

	cols, comment := splitComment(line)
	if len(cols) == 0 {
		return nil
	}

	switch keyword := cols[0]; {
	case keyword == "INCLUDE":
		return st.include(name, lineNum, cols)
	case keyword == "MODE" || keyword == "FORMAT":
		return nil
	case keyword == "C" || keyword == "c":
		if st.reader.KeepCommented {
			if toa, err := parseTOA(cols[1:]); err == nil {
				toa.Commented = true
				st.accept(toa, name, lineNum, comment)
			}
		}
		return nil
	case skippedDirectives[keyword]:
		st.diagnose(diag.Diagnostic{
			Kind: diag.KindUnknownValue, Severity: diag.SeverityWarning,
			File: name, Line: lineNum, Text: line,
			Message: fmt.Sprintf("directive %s is not applied", keyword),
		})
		return nil
	}

	toa, err := parseTOA(cols)
	if err != nil {
		kind, ok := diag.KindOf(err)
		if !ok {
			kind = diag.KindMalformedLine
		}
		st.diagnose(diag.Diagnostic{
			Kind: kind, Severity: diag.SeverityError,
			File: name, Line: lineNum, Text: line,
			Message: diag.Detail(err),
		})
		return nil
	}
	st.accept(toa, name, lineNum, comment)
	return nil
}

func (st *readState) accept(toa TOA, name string, lineNum int, comment string) {
	toa.SourceFile = name
	toa.Line = lineNum
	toa.Comment = comment
	st.result.TOAs = append(st.result.TOAs, toa)
	st.session.Record(name, lineNum, st.stack.depth(), toa.Tag, toa.MJD.String(), false)
}

func (st *readState) include(name string, lineNum int, cols []string) error {
	if len(cols) != 2 {
		return &ReadError{
			File: name, Line: lineNum, Chain: st.stack.chain(),
			Err: fmt.Errorf("%w: INCLUDE takes exactly one path, got %q", diag.ErrUnresolvedInclude, strings.Join(cols[1:], " ")),
		}
	}

	target := st.src.resolve(name, cols[1])
	canonical, err := st.src.canonical(target)
	if err != nil {
		return &ReadError{
			File: name, Line: lineNum, Chain: st.stack.chain(target),
			Err: fmt.Errorf("%w: %s: %v", diag.ErrUnresolvedInclude, cols[1], err),
		}
	}
	if st.stack.contains(canonical) {
		return &ReadError{
			File: name, Line: lineNum, Chain: st.stack.chain(target),
			Err: fmt.Errorf("%w: %s is already being read", diag.ErrCyclicInclude, cols[1]),
		}
	}

	f, err := st.src.open(target)
	if err != nil {
		return &ReadError{
			File: name, Line: lineNum, Chain: st.stack.chain(target),
			Err: fmt.Errorf("%w: %s: %v", diag.ErrUnresolvedInclude, cols[1], err),
		}
	}

	st.session.Include(name, lineNum, st.stack.depth(), target)
	st.stack.push(target, canonical)
	defer st.stack.pop()
	return st.readFile(f, target)
}
