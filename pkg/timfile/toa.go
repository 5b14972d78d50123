package timfile

import (
	"strconv"

	"github.com/psrutils/psrutils-go/pkg/mjd"
)

// Flag is a -key value pair from the end of a TOA line.
type Flag struct {
	// Key is the flag name without the leading '-'.
	Key   string `json:"key" yaml:"key" cbor:"1,keyasint"`
	Value string `json:"value" yaml:"value" cbor:"2,keyasint"`
}

// TOA is one time of arrival.
type TOA struct {
	// Tag is the first column, usually the archive file name.
	Tag string `json:"tag" yaml:"tag" cbor:"1,keyasint"`

	// Frequency is the observing frequency in MHz.
	Frequency float64 `json:"frequency" yaml:"frequency" cbor:"2,keyasint"`

	MJD mjd.MJD `json:"mjd" yaml:"mjd" cbor:"3,keyasint"`

	// Uncertainty is the TOA uncertainty in microseconds.
	Uncertainty float64 `json:"uncertainty" yaml:"uncertainty" cbor:"4,keyasint"`

	// Observatory is the site code as written.
	Observatory string `json:"observatory" yaml:"observatory" cbor:"5,keyasint"`

	// Flags are kept in line order, duplicates included.
	Flags []Flag `json:"flags,omitempty" yaml:"flags,omitempty" cbor:"6,keyasint,omitempty"`

	// SourceFile is the path of the file the line came from.
	SourceFile string `json:"source_file" yaml:"source_file" cbor:"7,keyasint"`

	// Line is the 1-based line number within SourceFile.
	Line int `json:"line" yaml:"line" cbor:"8,keyasint"`

	// Comment is the text after an inline '#', without the marker.
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty" cbor:"9,keyasint,omitempty"`

	// Commented marks a TOA that was commented out with a leading C.
	// Only returned when Reader.KeepCommented is set.
	Commented bool `json:"commented,omitempty" yaml:"commented,omitempty" cbor:"10,keyasint,omitempty"`
}

// Flag returns the value of the first flag with the given key.
func (t *TOA) Flag(key string) (string, bool) {
	for _, f := range t.Flags {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// FlagFloat returns the first flag with the given key parsed as a number.
// ok is false when the flag is absent or not numeric.
func (t *TOA) FlagFloat(key string) (float64, bool) {
	v, ok := t.Flag(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FlagAll returns the values of every flag with the given key.
func (t *TOA) FlagAll(key string) []string {
	var out []string
	for _, f := range t.Flags {
		if f.Key == key {
			out = append(out, f.Value)
		}
	}
	return out
}
