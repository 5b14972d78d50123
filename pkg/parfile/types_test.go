package parfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTypes(t *testing.T) {
	types := DefaultTypes()

	tests := []struct {
		name string
		want ValueType
	}{
		{"F0", Numeric},
		{"f0", Numeric},
		{"RAJ", RightAscension},
		{"RA", RightAscension},
		{"DEC", Declination},
		{"NITS", Integer},
		{"TEMPO1", Flag},
		{"DILATE_FREQ", Flag},
		{"PSRJ", String},
		{"BINARY", String},
		{"GLEP_1", Numeric},
		{"GLF0D_12", Numeric},
		{"GLF0D_", String},
		{"GLEP_x", String},
		{"DMX_0001", Numeric},
		{"DMXR1_0001", Numeric},
		{"FD3", Numeric},
		{"FDD", Numeric},
		{"WAVE12", Numeric},
		{"WAVE_OM", Numeric},
		{"NOT_A_PARAM", String},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types.TypeOf(tt.name))
		})
	}
}

func TestCanonical(t *testing.T) {
	types := DefaultTypes()
	assert.Equal(t, "RAJ", types.Canonical("ra"))
	assert.Equal(t, "PSR", types.Canonical("PSRB"))
	assert.Equal(t, "BINARY", types.Canonical("model"))
	assert.Equal(t, "GLEP_2", types.Canonical("glep_2"))
	assert.Equal(t, "MYSTERY", types.Canonical("Mystery"))
}

func TestDefaultTypesIsACopy(t *testing.T) {
	a := DefaultTypes()
	require.NoError(t, a.Register(ParamSpec{Name: "F0", Type: String}))

	assert.Equal(t, String, a.TypeOf("F0"))
	assert.Equal(t, Numeric, DefaultTypes().TypeOf("F0"))
}

func TestRegister(t *testing.T) {
	types := NewTypeTable()

	require.NoError(t, types.Register(ParamSpec{Name: "xyz", Aliases: []string{"abc"}, Type: Integer}))
	assert.Equal(t, Integer, types.TypeOf("ABC"))
	assert.Equal(t, "XYZ", types.Canonical("abc"))

	// Updating through an alias keeps the canonical name.
	require.NoError(t, types.Register(ParamSpec{Name: "abc", Type: Numeric, Description: "renamed"}))
	spec, ok := types.Lookup("xyz")
	require.True(t, ok)
	assert.Equal(t, Numeric, spec.Type)
	assert.Equal(t, "renamed", spec.Description)
	assert.Len(t, types.Specs(), 1)

	require.NoError(t, types.Register(ParamSpec{Name: "other"}))
	err := types.Register(ParamSpec{Name: "other", Aliases: []string{"abc"}})
	assert.ErrorContains(t, err, "already bound")

	assert.Error(t, types.Register(ParamSpec{Name: "  "}))
}

func TestRegisterIndexedPrefersLongestPrefix(t *testing.T) {
	types := NewTypeTable()
	require.NoError(t, types.RegisterIndexed(IndexedSpec{Prefix: "X", Type: Integer}))
	require.NoError(t, types.RegisterIndexed(IndexedSpec{Prefix: "X_", Type: Numeric}))

	assert.Equal(t, Numeric, types.TypeOf("X_1"))
	assert.Equal(t, Integer, types.TypeOf("X1"))

	require.NoError(t, types.RegisterIndexed(IndexedSpec{Prefix: "x_", Type: Flag}))
	assert.Equal(t, Flag, types.TypeOf("X_1"))
	assert.Len(t, types.Indexed(), 2)
}

func TestLoadTypes(t *testing.T) {
	yamlText := `
parameters:
  - {name: SPIN, aliases: [NU], type: numeric}
  - {name: SITE, type: string, description: "Observatory"}
indexed:
  - {prefix: OFF_, type: numeric}
`
	types, err := LoadTypes(strings.NewReader(yamlText))
	require.NoError(t, err)

	assert.Equal(t, Numeric, types.TypeOf("nu"))
	assert.Equal(t, Numeric, types.TypeOf("OFF_3"))
	assert.Equal(t, String, types.TypeOf("F0"))

	_, err = LoadTypes(strings.NewReader("parameters:\n  - {name: A, type: complex}\n"))
	assert.Error(t, err)

	_, err = LoadTypes(strings.NewReader("params: []\n"))
	assert.Error(t, err, "unknown keys are rejected")

	empty, err := LoadTypes(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Specs())
}

func TestValueTypeText(t *testing.T) {
	for _, vt := range []ValueType{String, Numeric, Integer, RightAscension, Declination, Flag} {
		text, err := vt.MarshalText()
		require.NoError(t, err)

		var back ValueType
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, vt, back)
	}
	_, err := ParseValueType("vector")
	assert.Error(t, err)
	assert.Equal(t, "unknown", ValueType(42).String())
}

func TestNumericClass(t *testing.T) {
	assert.True(t, Numeric.NumericClass())
	assert.True(t, RightAscension.NumericClass())
	assert.True(t, Declination.NumericClass())
	assert.False(t, Integer.NumericClass())
	assert.False(t, String.NumericClass())
	assert.False(t, Flag.NumericClass())
}
