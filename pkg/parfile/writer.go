package parfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/diag"
)

// Default column widths, as written by tempo2.
const (
	DefaultNameWidth  = 15
	DefaultValueWidth = 25
)

// Writer formats parameter files.
type Writer struct {
	// NameWidth pads the name column.
	NameWidth int

	// ValueWidth pads the value column when more columns follow.
	ValueWidth int
}

// NewWriter returns a writer with the default column widths.
func NewWriter() *Writer {
	return &Writer{NameWidth: DefaultNameWidth, ValueWidth: DefaultValueWidth}
}

// Write writes p to w with the default column widths.
func Write(w io.Writer, p *Parfile) error {
	return NewWriter().Write(w, p)
}

// Write writes every entry of p in order. It fails with an error wrapping
// diag.ErrInvalidRecord, before writing anything, when an entry would not
// read back as itself.
func (wr *Writer) Write(w io.Writer, p *Parfile) error {
	lines := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		var err error
		switch e.Kind() {
		case EntryParam:
			lines[i], err = wr.formatParam(p.types(), e.Param)
		case EntryJump:
			lines[i], err = wr.formatJump(e.Jump)
		default:
			if strings.ContainsAny(e.Text, "\r\n") {
				err = fmt.Errorf("%w: verbatim entry spans several lines", diag.ErrInvalidRecord)
			}
			lines[i] = e.Text
		}
		if err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteTo implements io.WriterTo with the default column widths.
func (p *Parfile) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := Write(cw, p)
	return cw.n, err
}

// String returns the file text, or "" when an entry is invalid.
func (p *Parfile) String() string {
	var sb strings.Builder
	if err := Write(&sb, p); err != nil {
		return ""
	}
	return sb.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

func invalid(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", diag.ErrInvalidRecord, name, fmt.Sprintf(format, args...))
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n") || strings.HasPrefix(name, "#") {
		return invalid(name, "name is not a single token")
	}
	return nil
}

func checkTrailing(name string, unc *float64, comment string) error {
	if unc != nil && (math.IsNaN(*unc) || math.IsInf(*unc, 0)) {
		return invalid(name, "uncertainty %v is not finite", *unc)
	}
	if strings.ContainsAny(comment, "\r\n") {
		return invalid(name, "comment spans several lines")
	}
	return nil
}

func (wr *Writer) formatParam(types *TypeTable, p *Parameter) (string, error) {
	if err := checkName(p.Name); err != nil {
		return "", err
	}
	if err := p.Value.validate(); err != nil {
		return "", invalid(p.Name, "%v", err)
	}
	if err := checkTrailing(p.Name, p.Uncertainty, p.Comment); err != nil {
		return "", err
	}

	tableType := types.TypeOf(p.Name)
	valueText := p.Value.String()
	if _, err := ParseValue(tableType, valueText); err != nil {
		return "", invalid(p.Name, "value %q does not read back as %v", valueText, tableType)
	}

	hasColumns := p.Fit != nil || p.Uncertainty != nil
	if hasColumns && !p.Value.Type.NumericClass() {
		return "", invalid(p.Name, "%v value cannot carry a fit flag or uncertainty", p.Value.Type)
	}
	if hasColumns && !tableType.NumericClass() {
		return "", invalid(p.Name, "fit flag or uncertainty on a %v parameter", tableType)
	}

	// Without an uncertainty, a bare comment would read back as a column.
	guard := tableType.NumericClass() && p.Uncertainty == nil
	return wr.formatLine(p.Name, []string{valueText}, p.Fit, p.Uncertainty, p.Comment, guard), nil
}

func (wr *Writer) formatJump(j *Jump) (string, error) {
	if err := checkName(j.Name); err != nil {
		return "", err
	}
	if j.Value.Type != Numeric {
		return "", invalid(j.Name, "jump value must be numeric")
	}
	if err := j.Value.validate(); err != nil {
		return "", invalid(j.Name, "%v", err)
	}
	if err := checkTrailing(j.Name, j.Uncertainty, j.Comment); err != nil {
		return "", err
	}

	want := 1
	switch j.Selector {
	case SelectMJD, SelectFreq:
		want = 2
		if _, _, ok := j.Range(); !ok {
			return "", invalid(j.Name, "%v range %v is not numeric", j.Selector, j.Args)
		}
	case SelectFlag:
		if j.Key == "" || strings.ContainsAny(j.Key, " \t") || isNumberStart(j.Key[0]) {
			return "", invalid(j.Name, "flag selector key %q", j.Key)
		}
	case SelectTel, SelectName:
	default:
		return "", invalid(j.Name, "unknown selector %d", j.Selector)
	}
	if len(j.Args) != want {
		return "", invalid(j.Name, "%v selector takes %d arguments, got %d", j.Selector, want, len(j.Args))
	}
	for _, a := range j.Args {
		if a == "" || strings.ContainsAny(a, " \t\r\n") || strings.HasPrefix(a, "#") {
			return "", invalid(j.Name, "selector argument %q is not a single token", a)
		}
	}

	cols := append(j.selectorTokens(), j.Value.String())
	return wr.formatLine(j.Name, cols, j.Fit, j.Uncertainty, j.Comment, j.Uncertainty == nil), nil
}

// formatLine lays out NAME COLS... [FIT] [UNC] [COMMENT]. The last of cols
// is padded to ValueWidth when more columns follow. guard prefixes a comment
// with "# " when it does not already start with '#'.
func (wr *Writer) formatLine(name string, cols []string, fit *bool, unc *float64, comment string, guard bool) string {
	var rest []string
	if fit != nil {
		if *fit {
			rest = append(rest, "1")
		} else {
			rest = append(rest, "0")
		}
	}
	if unc != nil {
		u := formatNumber(*unc)
		if fit == nil && (u == "0" || u == "1") {
			// A lone 0 or 1 reads back as a fit flag.
			u += ".0"
		}
		rest = append(rest, u)
	}
	if comment != "" {
		if guard && !strings.HasPrefix(comment, "#") {
			comment = "# " + comment
		}
		rest = append(rest, comment)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s ", wr.NameWidth, name)
	last := len(cols) - 1
	for i, c := range cols[:last] {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c)
	}
	if last > 0 {
		sb.WriteByte(' ')
	}
	if len(rest) == 0 {
		sb.WriteString(cols[last])
		return sb.String()
	}
	fmt.Fprintf(&sb, "%-*s ", wr.ValueWidth, cols[last])
	sb.WriteString(strings.Join(rest, " "))
	return sb.String()
}
