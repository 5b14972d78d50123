package parfile

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed parameters.yaml
var parametersYAML []byte

// defaultTypes is read-only after init.
var defaultTypes = mustLoadTypes(parametersYAML)

// ParamSpec describes a known parameter.
type ParamSpec struct {
	Name        string    `yaml:"name"`
	Aliases     []string  `yaml:"aliases,omitempty"`
	Type        ValueType `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
}

// IndexedSpec describes a family of parameters named by a prefix followed by
// a decimal index, such as GLEP_1, GLEP_2.
type IndexedSpec struct {
	Prefix      string    `yaml:"prefix"`
	Type        ValueType `yaml:"type"`
	Description string    `yaml:"description,omitempty"`
}

type typeFile struct {
	Parameters []ParamSpec   `yaml:"parameters"`
	Indexed    []IndexedSpec `yaml:"indexed"`
}

// TypeTable maps parameter names to value types. Names are matched
// case-insensitively and aliases resolve to their canonical name.
type TypeTable struct {
	params  []ParamSpec
	indexed []IndexedSpec
	byName  map[string]int
}

// NewTypeTable returns an empty table. Every name reads as String.
func NewTypeTable() *TypeTable {
	return &TypeTable{byName: make(map[string]int)}
}

// DefaultTypes returns a copy of the built-in tempo2 parameter table.
func DefaultTypes() *TypeTable {
	return defaultTypes.Clone()
}

// LoadTypes reads a table in the parameters.yaml format.
func LoadTypes(r io.Reader) (*TypeTable, error) {
	var f typeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding type table: %w", err)
	}

	t := NewTypeTable()
	for _, spec := range f.Parameters {
		if err := t.Register(spec); err != nil {
			return nil, err
		}
	}
	for _, spec := range f.Indexed {
		if err := t.RegisterIndexed(spec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func mustLoadTypes(data []byte) *TypeTable {
	t, err := LoadTypes(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("built-in parameter table: %v", err))
	}
	return t
}

// Clone returns an independent copy.
func (t *TypeTable) Clone() *TypeTable {
	c := &TypeTable{
		params:  make([]ParamSpec, len(t.params)),
		indexed: append([]IndexedSpec(nil), t.indexed...),
		byName:  make(map[string]int, len(t.byName)),
	}
	for i, p := range t.params {
		p.Aliases = append([]string(nil), p.Aliases...)
		c.params[i] = p
	}
	for k, v := range t.byName {
		c.byName[k] = v
	}
	return c
}

// Register adds a parameter, or updates the type of an existing one when
// spec.Name is already known under any of its names.
func (t *TypeTable) Register(spec ParamSpec) error {
	name := strings.ToUpper(strings.TrimSpace(spec.Name))
	if name == "" {
		return fmt.Errorf("parameter spec without a name")
	}

	i, known := t.byName[name]
	if !known {
		i = len(t.params)
		t.params = append(t.params, ParamSpec{Name: name})
		t.byName[name] = i
	}

	existing := &t.params[i]
	existing.Type = spec.Type
	if spec.Description != "" {
		existing.Description = spec.Description
	}
	for _, alias := range spec.Aliases {
		alias = strings.ToUpper(strings.TrimSpace(alias))
		if alias == "" {
			continue
		}
		if j, ok := t.byName[alias]; ok {
			if j != i {
				return fmt.Errorf("alias %s of %s is already bound to %s", alias, existing.Name, t.params[j].Name)
			}
			continue
		}
		t.byName[alias] = i
		existing.Aliases = append(existing.Aliases, alias)
	}
	return nil
}

// RegisterIndexed adds a parameter family. Longer prefixes are matched first.
func (t *TypeTable) RegisterIndexed(spec IndexedSpec) error {
	spec.Prefix = strings.ToUpper(strings.TrimSpace(spec.Prefix))
	if spec.Prefix == "" {
		return fmt.Errorf("indexed spec without a prefix")
	}
	for i := range t.indexed {
		if t.indexed[i].Prefix == spec.Prefix {
			t.indexed[i] = spec
			return nil
		}
	}
	t.indexed = append(t.indexed, spec)
	sort.SliceStable(t.indexed, func(a, b int) bool {
		return len(t.indexed[a].Prefix) > len(t.indexed[b].Prefix)
	})
	return nil
}

// Lookup returns the spec for name. Indexed families yield a spec named
// after the upper-cased input.
func (t *TypeTable) Lookup(name string) (ParamSpec, bool) {
	upper := strings.ToUpper(name)
	if i, ok := t.byName[upper]; ok {
		return t.params[i], true
	}
	for _, ix := range t.indexed {
		if rest, ok := strings.CutPrefix(upper, ix.Prefix); ok && isIndex(rest) {
			return ParamSpec{Name: upper, Type: ix.Type, Description: ix.Description}, true
		}
	}
	return ParamSpec{}, false
}

func isIndex(s string) bool {
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

// TypeOf returns the value type for name, String when unknown.
func (t *TypeTable) TypeOf(name string) ValueType {
	if spec, ok := t.Lookup(name); ok {
		return spec.Type
	}
	return String
}

// Canonical returns the key used for duplicate detection: the registered
// name for known parameters and aliases, otherwise the upper-cased name.
func (t *TypeTable) Canonical(name string) string {
	if spec, ok := t.Lookup(name); ok {
		return spec.Name
	}
	return strings.ToUpper(name)
}

// Specs returns the registered parameters in registration order.
func (t *TypeTable) Specs() []ParamSpec {
	out := make([]ParamSpec, len(t.params))
	copy(out, t.params)
	return out
}

// Indexed returns the registered parameter families.
func (t *TypeTable) Indexed() []IndexedSpec {
	return append([]IndexedSpec(nil), t.indexed...)
}
