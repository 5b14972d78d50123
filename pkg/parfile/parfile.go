package parfile

import (
	"strings"
)

// Parameter is one NAME VALUE [FIT] [UNCERTAINTY] line.
type Parameter struct {
	// Name is the parameter name as written.
	Name string

	Value Value

	// Fit is the fit flag column; nil when absent.
	Fit *bool

	// Uncertainty is nil when absent.
	Uncertainty *float64

	// Comment is the rest of the line after the recognized columns,
	// including any leading '#'.
	Comment string

	// Line is the 1-based source line, 0 for constructed parameters.
	Line int
}

// Fitted reports whether the fit flag is present and set.
func (p *Parameter) Fitted() bool {
	return p.Fit != nil && *p.Fit
}

// Float64 returns the value as a number, see Value.Float64.
func (p *Parameter) Float64() (float64, bool) {
	return p.Value.Float64()
}

// Bool returns a pointer to b, for the Fit field.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f, for the Uncertainty field.
func Float(f float64) *float64 { return &f }

// EntryKind tells which field of an Entry is set.
type EntryKind uint8

const (
	// EntryLine is a comment, blank or unparseable line kept verbatim.
	EntryLine EntryKind = iota
	EntryParam
	EntryJump
)

// Entry is one line of a parameter file.
type Entry struct {
	Param *Parameter
	Jump  *Jump

	// Text holds the verbatim line when neither Param nor Jump is set.
	Text string
}

// Kind returns what the entry holds.
func (e Entry) Kind() EntryKind {
	switch {
	case e.Param != nil:
		return EntryParam
	case e.Jump != nil:
		return EntryJump
	default:
		return EntryLine
	}
}

// Parfile is an ordered parameter file. Parameter names are unique by
// canonical name; comments, blank lines and jumps keep their position.
type Parfile struct {
	Entries []Entry

	// Types resolves aliases for lookups, nil for the default table.
	Types *TypeTable
}

func (p *Parfile) types() *TypeTable {
	if p.Types != nil {
		return p.Types
	}
	return defaultTypes
}

func (p *Parfile) index(name string) int {
	key := p.types().Canonical(name)
	for i, e := range p.Entries {
		if e.Param != nil && p.types().Canonical(e.Param.Name) == key {
			return i
		}
	}
	return -1
}

// Get returns the parameter with the given name or alias, case-insensitive.
func (p *Parfile) Get(name string) (*Parameter, bool) {
	if i := p.index(name); i >= 0 {
		return p.Entries[i].Param, true
	}
	return nil, false
}

// Has reports whether the parameter is present.
func (p *Parfile) Has(name string) bool {
	return p.index(name) >= 0
}

// Set replaces the parameter with the same canonical name in place, or
// appends it. It returns the stored parameter.
func (p *Parfile) Set(param Parameter) *Parameter {
	stored := &param
	if i := p.index(param.Name); i >= 0 {
		p.Entries[i].Param = stored
		return stored
	}
	p.Entries = append(p.Entries, Entry{Param: stored})
	return stored
}

// Delete removes the parameter and reports whether it was present.
func (p *Parfile) Delete(name string) bool {
	i := p.index(name)
	if i < 0 {
		return false
	}
	p.Entries = append(p.Entries[:i], p.Entries[i+1:]...)
	return true
}

// Params returns the parameters in file order.
func (p *Parfile) Params() []*Parameter {
	var out []*Parameter
	for _, e := range p.Entries {
		if e.Param != nil {
			out = append(out, e.Param)
		}
	}
	return out
}

// Jumps returns the jump lines in file order.
func (p *Parfile) Jumps() []*Jump {
	var out []*Jump
	for _, e := range p.Entries {
		if e.Jump != nil {
			out = append(out, e.Jump)
		}
	}
	return out
}

// Names returns the parameter names in file order.
func (p *Parfile) Names() []string {
	var out []string
	for _, e := range p.Entries {
		if e.Param != nil {
			out = append(out, e.Param.Name)
		}
	}
	return out
}

// Len returns the number of parameters.
func (p *Parfile) Len() int {
	n := 0
	for _, e := range p.Entries {
		if e.Param != nil {
			n++
		}
	}
	return n
}

// PulsarName returns the PSR value, or "" when absent.
func (p *Parfile) PulsarName() string {
	if psr, ok := p.Get("PSR"); ok {
		return strings.TrimSpace(psr.Value.String())
	}
	return ""
}
