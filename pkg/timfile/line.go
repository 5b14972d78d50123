package timfile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/diag"
	"github.com/psrutils/psrutils-go/pkg/mjd"
)

// tempo2 TOA columns before the flags.
const fixedColumns = 5

// splitComment cuts the line at the first token starting with '#' and
// returns the tokens before it and the comment text after the marker.
func splitComment(line string) ([]string, string) {
	for i := 0; i < len(line); i++ {
		if line[i] == '#' && (i == 0 || isSpace(line[i-1])) {
			return strings.Fields(line[:i]), strings.TrimSpace(line[i+1:])
		}
	}
	return strings.Fields(line), ""
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f' || c == '\r'
}

// parseTOA parses the columns of a tempo2 TOA line:
//
//	TAG FREQ MJD UNCERTAINTY OBSERVATORY [-key value]...
func parseTOA(cols []string) (TOA, error) {
	if len(cols) < fixedColumns {
		return TOA{}, fmt.Errorf("%w: expected tag, frequency, MJD, uncertainty and observatory, got %d columns",
			diag.ErrMalformedLine, len(cols))
	}

	var t TOA
	var err error
	t.Tag = cols[0]
	if t.Frequency, err = parseFloat("frequency", cols[1]); err != nil {
		return TOA{}, err
	}
	if t.MJD, err = mjd.Parse(cols[2]); err != nil {
		return TOA{}, err
	}
	if t.Uncertainty, err = parseFloat("uncertainty", cols[3]); err != nil {
		return TOA{}, err
	}
	t.Observatory = cols[4]

	flags := cols[fixedColumns:]
	if len(flags)%2 != 0 {
		return TOA{}, fmt.Errorf("%w: flag %s has no value", diag.ErrMalformedLine, flags[len(flags)-1])
	}
	for i := 0; i < len(flags); i += 2 {
		key := flags[i]
		if len(key) < 2 || key[0] != '-' {
			return TOA{}, fmt.Errorf("%w: expected a -flag, got %q", diag.ErrMalformedLine, key)
		}
		t.Flags = append(t.Flags, Flag{Key: key[1:], Value: flags[i+1]})
	}
	return t, nil
}

func parseFloat(what, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s %q", diag.ErrInvalidNumber, what, s)
	}
	return f, nil
}
