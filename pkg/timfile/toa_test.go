package timfile

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOAFlags(t *testing.T) {
	toa := TOA{Flags: []Flag{
		{Key: "sys", Value: "AO"},
		{Key: "snr", Value: "42.5"},
		{Key: "sys", Value: "GBT"},
		{Key: "fe", Value: "L-wide"},
	}}

	v, ok := toa.Flag("sys")
	assert.True(t, ok)
	assert.Equal(t, "AO", v, "first occurrence")

	_, ok = toa.Flag("be")
	assert.False(t, ok)

	assert.Equal(t, []string{"AO", "GBT"}, toa.FlagAll("sys"))
	assert.Nil(t, toa.FlagAll("be"))

	snr, ok := toa.FlagFloat("snr")
	assert.True(t, ok)
	assert.Equal(t, 42.5, snr)

	_, ok = toa.FlagFloat("fe")
	assert.False(t, ok)
}

func TestSplitComment(t *testing.T) {
	tests := []struct {
		line    string
		cols    []string
		comment string
	}{
		{"a b c", []string{"a", "b", "c"}, ""},
		{"a b # note here", []string{"a", "b"}, "note here"},
		{"a b#c d", []string{"a", "b#c", "d"}, ""},
		{"a\t#x", []string{"a"}, "x"},
		{"# all", []string{}, "all"},
	}

	for _, tt := range tests {
		cols, comment := splitComment(tt.line)
		assert.Equal(t, tt.cols, cols, tt.line)
		assert.Equal(t, tt.comment, comment, tt.line)
	}
}

func TestCBORRoundTrip(t *testing.T) {
	res := readString(t, &Reader{KeepCommented: true}, sampleTim)

	data, err := MarshalCBOR(res.TOAs)
	require.NoError(t, err)

	back, err := UnmarshalCBOR(data)
	require.NoError(t, err)
	if diff := cmp.Diff(res.TOAs, back); diff != "" {
		t.Errorf("CBOR round trip (-want +got):\n%s", diff)
	}
	assert.Equal(t, "55000.123456789012345", back[0].MJD.String(), "source digits survive")
}

func TestCBORStream(t *testing.T) {
	res := readString(t, NewReader(), sampleTim)

	var buf bytes.Buffer
	enc := NewCBOREncoder(&buf)
	for _, toa := range res.TOAs {
		require.NoError(t, enc.Encode(toa))
	}

	dec := NewCBORDecoder(&buf)
	var got []TOA
	for {
		var toa TOA
		err := dec.Decode(&toa)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, toa)
	}
	assert.Equal(t, tags(res.TOAs), tags(got))
}

func TestUnmarshalCBORRejectsGarbage(t *testing.T) {
	_, err := UnmarshalCBOR([]byte{0xff, 0x00})
	assert.ErrorContains(t, err, "decoding TOAs")
}
