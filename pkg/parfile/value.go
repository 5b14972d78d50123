package parfile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/psrutils/psrutils-go/pkg/coord"
	"github.com/psrutils/psrutils-go/pkg/diag"
)

// ValueType is the type of a parameter's value column.
type ValueType uint8

const (
	// String is used for names, model identifiers and unknown parameters.
	String ValueType = iota
	// Numeric is a float64.
	Numeric
	// Integer is an int64 count.
	Integer
	// RightAscension is a J2000 RA coordinate.
	RightAscension
	// Declination is a J2000 DEC coordinate.
	Declination
	// Flag is a boolean written 1/0 or Y/N.
	Flag
)

var valueTypeNames = [...]string{
	String:         "string",
	Numeric:        "numeric",
	Integer:        "integer",
	RightAscension: "ra",
	Declination:    "dec",
	Flag:           "flag",
}

// String returns the name used in type tables.
func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return "unknown"
}

// ParseValueType is the inverse of ValueType.String.
func ParseValueType(s string) (ValueType, error) {
	for i, name := range valueTypeNames {
		if strings.EqualFold(s, name) {
			return ValueType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown value type %q", s)
}

// NumericClass reports whether values of this type may carry a fit flag and
// an uncertainty.
func (t ValueType) NumericClass() bool {
	return t == Numeric || t == RightAscension || t == Declination
}

// MarshalText implements encoding.TextMarshaler.
func (t ValueType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ValueType) UnmarshalText(b []byte) error {
	v, err := ParseValueType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value is a typed parameter value. Only the field matching Type is
// meaningful.
type Value struct {
	Type   ValueType
	Number float64
	Int    int64
	Text   string
	Coord  coord.Coordinate
	Bool   bool

	// Raw is the token as written in the source, empty for constructed values.
	Raw string
}

// NumberValue returns a Numeric value.
func NumberValue(f float64) Value { return Value{Type: Numeric, Number: f} }

// IntValue returns an Integer value.
func IntValue(n int64) Value { return Value{Type: Integer, Int: n} }

// StringValue returns a String value.
func StringValue(s string) Value { return Value{Type: String, Text: s} }

// FlagValue returns a Flag value.
func FlagValue(b bool) Value { return Value{Type: Flag, Bool: b} }

// CoordValue returns a RightAscension or Declination value.
func CoordValue(c coord.Coordinate) Value {
	t := RightAscension
	if c.Kind == coord.Declination {
		t = Declination
	}
	return Value{Type: t, Coord: c}
}

// ParseValue parses a token as the given type.
func ParseValue(t ValueType, s string) (Value, error) {
	v := Value{Type: t, Raw: s}
	var err error
	switch t {
	case Numeric:
		v.Number, err = parseNumber(s)
	case Integer:
		v.Int, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			err = fmt.Errorf("%w: %q is not an integer", diag.ErrInvalidNumber, s)
		}
	case RightAscension:
		v.Coord, err = coord.ParseRA(s)
	case Declination:
		v.Coord, err = coord.ParseDec(s)
	case Flag:
		v.Bool, err = parseFlag(s)
	default:
		v.Type = String
		v.Text = s
	}
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// parseNumber accepts Go float syntax plus Fortran D exponents (1.5D-12).
func parseNumber(s string) (float64, error) {
	t := strings.Map(func(r rune) rune {
		if r == 'D' || r == 'd' {
			return 'e'
		}
		return r
	}, s)
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || strings.ContainsAny(s, "_xXpP") {
		return 0, fmt.Errorf("%w: %q is not a decimal number", diag.ErrInvalidNumber, s)
	}
	return f, nil
}

func parseFlag(s string) (bool, error) {
	switch s {
	case "1", "Y", "y":
		return true, nil
	case "0", "N", "n":
		return false, nil
	}
	return false, fmt.Errorf("%w: flag %q must be one of 1, 0, Y, N", diag.ErrInvalidNumber, s)
}

// formatNumber prints the shortest text that parses back to f.
func formatNumber(f float64) string {
	if abs := math.Abs(f); abs == 0 || (abs >= 1e-6 && abs < 1e15) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// String formats the value. The raw source token is returned while it still
// denotes the stored value.
func (v Value) String() string {
	if v.Raw != "" {
		if same, err := ParseValue(v.Type, v.Raw); err == nil && same.Equal(v) {
			return v.Raw
		}
	}
	switch v.Type {
	case Numeric:
		return formatNumber(v.Number)
	case Integer:
		return strconv.FormatInt(v.Int, 10)
	case RightAscension, Declination:
		return v.Coord.String()
	case Flag:
		if v.Bool {
			return "Y"
		}
		return "N"
	default:
		return v.Text
	}
}

// Float64 returns the value as a number: Number, Int, or the coordinate in
// decimal hours or degrees. ok is false for String and Flag values.
func (v Value) Float64() (f float64, ok bool) {
	switch v.Type {
	case Numeric:
		return v.Number, true
	case Integer:
		return float64(v.Int), true
	case RightAscension, Declination:
		return v.Coord.Float64(), true
	default:
		return 0, false
	}
}

// Equal compares type and payload, ignoring Raw and coordinate layout.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case Numeric:
		return v.Number == o.Number
	case Integer:
		return v.Int == o.Int
	case RightAscension, Declination:
		return v.Coord.Equal(o.Coord)
	case Flag:
		return v.Bool == o.Bool
	default:
		return v.Text == o.Text
	}
}

// validate reports whether v written as a single token would parse back to
// itself.
func (v Value) validate() error {
	switch v.Type {
	case String:
		if v.Text == "" || strings.ContainsAny(v.Text, " \t\r\n") || strings.HasPrefix(v.Text, "#") {
			return fmt.Errorf("string value %q is not a single token", v.Text)
		}
	case Numeric:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return fmt.Errorf("numeric value %v is not finite", v.Number)
		}
	case RightAscension, Declination:
		wantKind := coord.RightAscension
		if v.Type == Declination {
			wantKind = coord.Declination
		}
		if v.Coord.Kind != wantKind {
			return fmt.Errorf("coordinate kind %v does not match value type %v", v.Coord.Kind, v.Type)
		}
		if err := v.Coord.Validate(); err != nil {
			return err
		}
	case Integer, Flag:
	default:
		return fmt.Errorf("unknown value type %d", v.Type)
	}
	return nil
}
