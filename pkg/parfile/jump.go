package parfile

import (
	"strings"
)

// SelectorKind is the way a jump picks its TOAs.
type SelectorKind uint8

const (
	// SelectMJD selects TOAs with lo <= MJD <= hi.
	SelectMJD SelectorKind = iota
	// SelectFreq selects TOAs with lo <= frequency <= hi (MHz).
	SelectFreq
	// SelectTel selects TOAs from one observatory.
	SelectTel
	// SelectName selects TOAs by tag.
	SelectName
	// SelectFlag selects TOAs carrying -key value.
	SelectFlag
)

// String returns the selector keyword.
func (k SelectorKind) String() string {
	switch k {
	case SelectMJD:
		return "MJD"
	case SelectFreq:
		return "FREQ"
	case SelectTel:
		return "TEL"
	case SelectName:
		return "NAME"
	case SelectFlag:
		return "FLAG"
	default:
		return "UNKNOWN"
	}
}

// selectorParams share the JUMP syntax: NAME SELECTOR ARGS VALUE [FIT] [UNC].
// Only JUMP is required to have a selector; for the others a line without one
// is an ordinary parameter.
var selectorParams = map[string]bool{
	"JUMP":    true,
	"T2EFAC":  true,
	"T2EQUAD": true,
	"T2ECORR": true,
	"ECORR":   true,
	"TNECORR": true,
	"EFAC":    true,
	"EQUAD":   true,
	"TNEF":    true,
	"TNEQ":    true,
}

// Jump is a value applied to a subset of TOAs. JUMP is the common case; noise
// parameters such as T2EFAC and ECORR use the same syntax. Unlike ordinary
// parameters, a file may hold any number of them.
type Jump struct {
	// Name is JUMP, T2EFAC, etc. as written.
	Name string

	Selector SelectorKind

	// Key is the flag name without '-' for SelectFlag.
	Key string

	// Args are the selector arguments: two bounds for MJD and FREQ, one
	// value otherwise.
	Args []string

	// Value is the jump offset or noise parameter value; always Numeric.
	Value Value

	Fit         *bool
	Uncertainty *float64
	Comment     string
	Line        int
}

// Target is the subset of a TOA that selectors look at.
type Target struct {
	MJD         float64
	Frequency   float64
	Observatory string
	Tag         string

	// Flag returns the value of the first -key flag.
	Flag func(key string) (string, bool)
}

// Selects reports whether the jump applies to t.
func (j *Jump) Selects(t Target) bool {
	switch j.Selector {
	case SelectMJD, SelectFreq:
		lo, hi, ok := j.Range()
		if !ok {
			return false
		}
		v := t.MJD
		if j.Selector == SelectFreq {
			v = t.Frequency
		}
		return lo <= v && v <= hi
	case SelectTel:
		return len(j.Args) == 1 && strings.EqualFold(j.Args[0], t.Observatory)
	case SelectName:
		return len(j.Args) == 1 && j.Args[0] == t.Tag
	case SelectFlag:
		if t.Flag == nil || len(j.Args) != 1 {
			return false
		}
		v, ok := t.Flag(j.Key)
		return ok && v == j.Args[0]
	default:
		return false
	}
}

// Range returns the bounds of an MJD or FREQ selector.
func (j *Jump) Range() (lo, hi float64, ok bool) {
	if (j.Selector != SelectMJD && j.Selector != SelectFreq) || len(j.Args) != 2 {
		return 0, 0, false
	}
	lo, err := parseNumber(j.Args[0])
	if err != nil {
		return 0, 0, false
	}
	hi, err = parseNumber(j.Args[1])
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// selectorTokens returns the tokens of the selector as written.
func (j *Jump) selectorTokens() []string {
	var head string
	switch j.Selector {
	case SelectFlag:
		head = "-" + j.Key
	default:
		head = j.Selector.String()
	}
	return append([]string{head}, j.Args...)
}

// parseSelector reads the selector at the start of tokens and returns it with
// the number of tokens consumed. ok is false when tokens do not start with a
// selector keyword; n is 0 and err non-nil when the keyword is present but
// its arguments are not.
func parseSelector(tokens []string) (kind SelectorKind, key string, args []string, n int, ok bool, err error) {
	if len(tokens) == 0 {
		return 0, "", nil, 0, false, nil
	}

	head := tokens[0]
	want := 1
	switch {
	case strings.EqualFold(head, "MJD"):
		kind, want = SelectMJD, 2
	case strings.EqualFold(head, "FREQ"):
		kind, want = SelectFreq, 2
	case strings.EqualFold(head, "TEL"):
		kind = SelectTel
	case strings.EqualFold(head, "NAME"):
		kind = SelectName
	case len(head) > 1 && head[0] == '-' && !isNumberStart(head[1]):
		kind, key = SelectFlag, head[1:]
	default:
		return 0, "", nil, 0, false, nil
	}

	if len(tokens) < 1+want {
		return kind, key, nil, 0, true, errShortSelector
	}
	args = append([]string(nil), tokens[1:1+want]...)
	if want == 2 {
		for _, a := range args {
			if _, err := parseNumber(a); err != nil {
				return kind, key, nil, 0, true, err
			}
		}
	}
	return kind, key, args, 1 + want, true, nil
}

func isNumberStart(c byte) bool {
	return c == '.' || (c >= '0' && c <= '9')
}
