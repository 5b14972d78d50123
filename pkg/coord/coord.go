// Package coord parses and formats J2000 sexagesimal coordinates as they
// appear in tempo2 parameter files.
//
// Right ascension is written HH:MM:SS[.sss] and declination [±]DD:MM:SS[.sss].
// A parsed Coordinate remembers the digit widths of each field, so formatting
// an unmodified value reproduces the input text exactly:
//
//	c, _ := coord.ParseRA("04:37:15.8961737")
//	c.String() // "04:37:15.8961737"
package coord

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/diag"
)

// Kind distinguishes right ascension from declination.
type Kind uint8

const (
	RightAscension Kind = iota
	Declination
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case RightAscension:
		return "RA"
	case Declination:
		return "DEC"
	default:
		return "UNKNOWN"
	}
}

// ShortestDecimals formats seconds with the fewest digits that round-trip.
const ShortestDecimals = -1

// Layout records how each field was written.
type Layout struct {
	// MajorDigits is the zero-padded width of the hours or degrees field.
	MajorDigits int
	// MinuteDigits is the zero-padded width of the minutes field.
	MinuteDigits int
	// SecondDigits is the zero-padded width of the integer part of seconds.
	SecondDigits int
	// Decimals is the number of fractional digits of seconds, 0 for none,
	// or ShortestDecimals.
	Decimals int
	// ExplicitPlus is set when a declination was written with a leading '+'.
	ExplicitPlus bool
	// SecondsText is the seconds field as written. Format uses it while it
	// still parses to Seconds.
	SecondsText string
}

// DefaultLayout is used by NewRA and NewDec.
var DefaultLayout = Layout{MajorDigits: 2, MinuteDigits: 2, SecondDigits: 2, Decimals: ShortestDecimals}

// Coordinate is a sexagesimal angle. Major is the magnitude of the hours or
// degrees field; the sign is held in Negative so that -00:30:00 survives.
type Coordinate struct {
	Kind     Kind
	Negative bool
	Major    int
	Minutes  int
	Seconds  float64
	Layout   Layout
}

// NewRA returns a validated right ascension.
func NewRA(hours, minutes int, seconds float64) (Coordinate, error) {
	c := Coordinate{Kind: RightAscension, Major: hours, Minutes: minutes, Seconds: seconds, Layout: DefaultLayout}
	if hours < 0 {
		return Coordinate{}, fmt.Errorf("%w: hours %d out of range", diag.ErrInvalidCoordinate, hours)
	}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// NewDec returns a validated declination. A negative degrees value sets
// Negative; use the Negative field directly for declinations in (-1, 0).
func NewDec(degrees, minutes int, seconds float64) (Coordinate, error) {
	c := Coordinate{Kind: Declination, Minutes: minutes, Seconds: seconds, Layout: DefaultLayout}
	if degrees < 0 {
		c.Negative = true
		degrees = -degrees
	}
	c.Major = degrees
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Parse parses s as a coordinate of the given kind.
func Parse(kind Kind, s string) (Coordinate, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return Coordinate{}, fmt.Errorf("%w: %q: expected three ':'-separated fields", diag.ErrInvalidCoordinate, s)
	}

	c := Coordinate{Kind: kind}

	major := fields[0]
	if major != "" && (major[0] == '+' || major[0] == '-') {
		if kind != Declination {
			return Coordinate{}, fmt.Errorf("%w: %q: sign not allowed on right ascension", diag.ErrInvalidCoordinate, s)
		}
		c.Negative = major[0] == '-'
		c.Layout.ExplicitPlus = major[0] == '+'
		major = major[1:]
	}

	var err error
	if c.Major, err = parseDigits(major); err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q: major field: %v", diag.ErrInvalidCoordinate, s, err)
	}
	c.Layout.MajorDigits = len(major)

	if c.Minutes, err = parseDigits(fields[1]); err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q: minutes: %v", diag.ErrInvalidCoordinate, s, err)
	}
	c.Layout.MinuteDigits = len(fields[1])

	intPart, frac, hasPoint := strings.Cut(fields[2], ".")
	if _, err := parseDigits(intPart); err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q: seconds: %v", diag.ErrInvalidCoordinate, s, err)
	}
	if hasPoint {
		if _, err := parseDigits(frac); err != nil {
			return Coordinate{}, fmt.Errorf("%w: %q: seconds fraction: %v", diag.ErrInvalidCoordinate, s, err)
		}
	}
	if c.Seconds, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q: seconds: %v", diag.ErrInvalidCoordinate, s, err)
	}
	c.Layout.SecondDigits = len(intPart)
	c.Layout.Decimals = len(frac)
	c.Layout.SecondsText = fields[2]

	if err := c.Validate(); err != nil {
		return Coordinate{}, fmt.Errorf("%w (%q)", err, s)
	}
	return c, nil
}

// ParseRA parses a right ascension.
func ParseRA(s string) (Coordinate, error) {
	return Parse(RightAscension, s)
}

// ParseDec parses a declination.
func ParseDec(s string) (Coordinate, error) {
	return Parse(Declination, s)
}

// parseDigits accepts a non-empty run of ASCII digits.
func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%q is not a digit string", s)
		}
	}
	return strconv.Atoi(s)
}

// Validate checks field ranges: hours [0,24), degrees [-90,90], minutes and
// seconds [0,60).
func (c Coordinate) Validate() error {
	if c.Minutes < 0 || c.Minutes >= 60 {
		return fmt.Errorf("%w: minutes %d out of range", diag.ErrInvalidCoordinate, c.Minutes)
	}
	if c.Seconds < 0 || c.Seconds >= 60 {
		return fmt.Errorf("%w: seconds %v out of range", diag.ErrInvalidCoordinate, c.Seconds)
	}
	if c.Major < 0 {
		return fmt.Errorf("%w: negative major field %d", diag.ErrInvalidCoordinate, c.Major)
	}

	switch c.Kind {
	case RightAscension:
		if c.Negative {
			return fmt.Errorf("%w: negative right ascension", diag.ErrInvalidCoordinate)
		}
		if c.Major >= 24 {
			return fmt.Errorf("%w: hours %d out of range", diag.ErrInvalidCoordinate, c.Major)
		}
	case Declination:
		if c.Major > 90 || c.Major == 90 && (c.Minutes > 0 || c.Seconds > 0) {
			return fmt.Errorf("%w: declination beyond 90 degrees", diag.ErrInvalidCoordinate)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", diag.ErrInvalidCoordinate, c.Kind)
	}
	return nil
}

// String formats the coordinate using its Layout.
func (c Coordinate) String() string {
	return Format(c)
}

// Format formats c using its Layout. For any string s accepted by Parse,
// Format(Parse(s)) == s.
func Format(c Coordinate) string {
	var sb strings.Builder
	switch {
	case c.Negative:
		sb.WriteByte('-')
	case c.Layout.ExplicitPlus:
		sb.WriteByte('+')
	}
	sb.WriteString(pad(strconv.Itoa(c.Major), c.Layout.MajorDigits))
	sb.WriteByte(':')
	sb.WriteString(pad(strconv.Itoa(c.Minutes), c.Layout.MinuteDigits))
	sb.WriteByte(':')

	if t := c.Layout.SecondsText; t != "" {
		if f, err := strconv.ParseFloat(t, 64); err == nil && f == c.Seconds {
			sb.WriteString(t)
			return sb.String()
		}
	}
	sec := strconv.FormatFloat(c.Seconds, 'f', c.Layout.Decimals, 64)
	intPart, frac, hasPoint := strings.Cut(sec, ".")
	sb.WriteString(pad(intPart, c.Layout.SecondDigits))
	if hasPoint {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	return sb.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Float64 returns the value in decimal units of the major field: hours for
// right ascension, signed degrees for declination.
func (c Coordinate) Float64() float64 {
	v := float64(c.Major) + float64(c.Minutes)/60 + c.Seconds/3600
	if c.Negative {
		return -v
	}
	return v
}

// Degrees returns the angle in decimal degrees.
func (c Coordinate) Degrees() float64 {
	if c.Kind == RightAscension {
		return c.Float64() * 15
	}
	return c.Float64()
}

// Equal reports whether two coordinates denote the same angle with the same
// kind, ignoring layout.
func (c Coordinate) Equal(o Coordinate) bool {
	return c.Kind == o.Kind &&
		c.Negative == o.Negative &&
		c.Major == o.Major &&
		c.Minutes == o.Minutes &&
		c.Seconds == o.Seconds
}
