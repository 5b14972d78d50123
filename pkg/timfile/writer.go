package timfile

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/diag"
	"github.com/psrutils/psrutils-go/pkg/mjd"
)

// Write writes toas as a flat tempo2 file. Source files and line numbers are
// not written; INCLUDE structure is not reproduced. Every TOA is validated
// before anything is written.
func Write(w io.Writer, toas []TOA) error {
	lines := make([]string, len(toas))
	for i := range toas {
		line, err := formatTOA(&toas[i])
		if err != nil {
			return fmt.Errorf("TOA %d: %w", i+1, err)
		}
		lines[i] = line
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("FORMAT 1\n")
	for _, line := range lines {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// FormatTOA returns the tempo2 line for t, without a trailing newline.
func FormatTOA(t TOA) (string, error) {
	return formatTOA(&t)
}

func formatTOA(t *TOA) (string, error) {
	if err := checkToken("tag", t.Tag); err != nil {
		return "", err
	}
	if isKeyword(t.Tag) {
		return "", fmt.Errorf("%w: tag %q reads back as a directive", diag.ErrInvalidRecord, t.Tag)
	}
	if err := checkToken("observatory", t.Observatory); err != nil {
		return "", err
	}
	if !finite(t.Frequency) || !finite(t.Uncertainty) {
		return "", fmt.Errorf("%w: frequency and uncertainty must be finite", diag.ErrInvalidRecord)
	}
	if err := t.MJD.Validate(); err != nil {
		return "", fmt.Errorf("%w: %s", diag.ErrInvalidRecord, diag.Detail(err))
	}
	if back, err := mjd.Parse(t.MJD.String()); err != nil || !back.Equal(t.MJD) {
		return "", fmt.Errorf("%w: MJD %q does not read back", diag.ErrInvalidRecord, t.MJD.String())
	}
	if strings.ContainsAny(t.Comment, "\r\n") {
		return "", fmt.Errorf("%w: comment spans lines", diag.ErrInvalidRecord)
	}

	var sb strings.Builder
	if t.Commented {
		sb.WriteString("C ")
	}
	sb.WriteString(t.Tag)
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatFloat(t.Frequency, 'f', -1, 64))
	sb.WriteByte(' ')
	sb.WriteString(t.MJD.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatFloat(t.Uncertainty, 'f', -1, 64))
	sb.WriteByte(' ')
	sb.WriteString(t.Observatory)
	for _, f := range t.Flags {
		if err := checkToken("flag key", f.Key); err != nil {
			return "", err
		}
		if err := checkToken("flag "+f.Key, f.Value); err != nil {
			return "", err
		}
		sb.WriteString(" -")
		sb.WriteString(f.Key)
		sb.WriteByte(' ')
		sb.WriteString(f.Value)
	}
	if t.Comment != "" {
		sb.WriteString(" # ")
		sb.WriteString(t.Comment)
	}
	return sb.String(), nil
}

func checkToken(what, s string) error {
	switch {
	case s == "":
		return fmt.Errorf("%w: empty %s", diag.ErrInvalidRecord, what)
	case strings.ContainsAny(s, " \t\r\n\v\f"):
		return fmt.Errorf("%w: %s %q contains whitespace", diag.ErrInvalidRecord, what, s)
	case s[0] == '#':
		return fmt.Errorf("%w: %s %q starts a comment", diag.ErrInvalidRecord, what, s)
	}
	return nil
}

func isKeyword(s string) bool {
	switch s {
	case "INCLUDE", "FORMAT", "MODE", "C", "c":
		return true
	}
	return skippedDirectives[s]
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
