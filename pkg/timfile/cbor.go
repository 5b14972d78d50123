package timfile

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("timfile CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("timfile CBOR decoder mode: %v", err))
	}
}

// MarshalCBOR encodes toas as a CBOR array of integer-keyed maps.
func MarshalCBOR(toas []TOA) ([]byte, error) {
	return encMode.Marshal(toas)
}

// UnmarshalCBOR decodes data produced by MarshalCBOR.
func UnmarshalCBOR(data []byte) ([]TOA, error) {
	var toas []TOA
	if err := decMode.Unmarshal(data, &toas); err != nil {
		return nil, fmt.Errorf("decoding TOAs: %w", err)
	}
	return toas, nil
}

// NewCBOREncoder returns an encoder writing one TOA per CBOR item.
func NewCBOREncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewCBORDecoder returns a decoder for streams from NewCBOREncoder.
func NewCBORDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
