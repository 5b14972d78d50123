// Package mjd holds modified Julian dates split into an integer day and a
// fractional day.
//
// A single float64 carries about 16 significant digits, which at MJD 55000
// leaves roughly ten nanoseconds of resolution. Keeping the day and the
// fraction apart gives the fraction the full float64 mantissa, well below a
// nanosecond.
package mjd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/diag"
)

// SecondsPerDay is the length of an MJD day in seconds.
const SecondsPerDay = 86400

// MJD is a modified Julian date.
type MJD struct {
	// Day is the integer day number.
	Day int64 `json:"day" yaml:"day" cbor:"1,keyasint"`

	// Frac is the fractional day in [0, 1).
	Frac float64 `json:"frac" yaml:"frac" cbor:"2,keyasint"`

	// Digits is the fractional part as written in the source, without the
	// decimal point. It is used by String when it still denotes Frac.
	Digits string `json:"digits,omitempty" yaml:"digits,omitempty" cbor:"3,keyasint,omitempty"`
}

// New returns an MJD, rejecting fractions outside [0, 1).
func New(day int64, frac float64) (MJD, error) {
	if !(frac >= 0 && frac < 1) {
		return MJD{}, fmt.Errorf("%w: fractional day %v outside [0, 1)", diag.ErrInvalidNumber, frac)
	}
	return MJD{Day: day, Frac: frac}, nil
}

// Validate reports whether String would parse back to m: Day must not be
// negative and Frac must lie in [0, 1).
func (m MJD) Validate() error {
	if m.Day < 0 {
		return fmt.Errorf("%w: negative MJD day %d", diag.ErrInvalidNumber, m.Day)
	}
	if !(m.Frac >= 0 && m.Frac < 1) {
		return fmt.Errorf("%w: fractional day %v outside [0, 1)", diag.ErrInvalidNumber, m.Frac)
	}
	return nil
}

// Parse parses decimal text such as "55000.123456789012". The integer and
// fractional parts are parsed separately so that no digit is lost.
func Parse(s string) (MJD, error) {
	dayText, digits, hasPoint := strings.Cut(s, ".")
	if !isDigits(dayText) {
		return MJD{}, fmt.Errorf("%w: MJD %q must be an unsigned decimal", diag.ErrInvalidNumber, s)
	}

	day, err := strconv.ParseInt(dayText, 10, 64)
	if err != nil {
		return MJD{}, fmt.Errorf("%w: MJD %q: %v", diag.ErrInvalidNumber, s, err)
	}

	m := MJD{Day: day}
	if !hasPoint {
		return m, nil
	}
	if !isDigits(digits) {
		return MJD{}, fmt.Errorf("%w: MJD %q must be decimal", diag.ErrInvalidNumber, s)
	}
	if m.Frac, err = strconv.ParseFloat("0."+digits, 64); err != nil {
		return MJD{}, fmt.Errorf("%w: MJD %q: %v", diag.ErrInvalidNumber, s, err)
	}
	m.Digits = digits
	if m.Frac >= 1 {
		// More nines than a float64 can hold.
		m.Day++
		m.Frac = 0
	}
	return m, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the date as decimal days. Source digits are reused when
// they still parse to Frac, so unmodified values keep their exact text.
func (m MJD) String() string {
	day := strconv.FormatInt(m.Day, 10)
	if m.Digits != "" {
		if f, err := strconv.ParseFloat("0."+m.Digits, 64); err == nil && f == m.Frac {
			return day + "." + m.Digits
		}
	}
	if m.Frac == 0 {
		return day
	}
	frac := strconv.FormatFloat(m.Frac, 'f', -1, 64)
	return day + strings.TrimPrefix(frac, "0")
}

// Float64 collapses the date into one float64, losing precision.
func (m MJD) Float64() float64 {
	return float64(m.Day) + m.Frac
}

// Compare returns -1, 0 or +1 as m is before, equal to, or after o.
func (m MJD) Compare(o MJD) int {
	switch {
	case m.Day < o.Day:
		return -1
	case m.Day > o.Day:
		return 1
	case m.Frac < o.Frac:
		return -1
	case m.Frac > o.Frac:
		return 1
	default:
		return 0
	}
}

// Before reports whether m is earlier than o.
func (m MJD) Before(o MJD) bool {
	return m.Compare(o) < 0
}

// Sub returns m - o in seconds. The day difference and the fraction
// difference are scaled separately.
func (m MJD) Sub(o MJD) float64 {
	return float64(m.Day-o.Day)*SecondsPerDay + (m.Frac-o.Frac)*SecondsPerDay
}

// Equal compares day and fraction, ignoring source digits.
func (m MJD) Equal(o MJD) bool {
	return m.Day == o.Day && m.Frac == o.Frac
}
