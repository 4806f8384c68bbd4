// codec.go - text, JSON and CBOR encodings of Element.
//
// CBOR is encoded using Core Deterministic Encoding (RFC 8949 §4.2.1) and the decoder
// rejects duplicate map keys and tags, the same profile used for proof-system inputs.

package field

import (
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-errors/errors"
)

const (
	MaxArrayElements = 1024 * 256
	MaxMapPairs      = 1024 * 256
)

var (
	encOptions = cbor.EncOptions{
		InfConvert:    cbor.InfConvertFloat16,
		IndefLength:   cbor.IndefLengthForbidden,
		NaNConvert:    cbor.NaNConvert7e00,
		ShortestFloat: cbor.ShortestFloat16,
		Sort:          cbor.SortCoreDeterministic,
		TagsMd:        cbor.TagsForbidden,
	}

	decOptions = cbor.DecOptions{
		IndefLength:       cbor.IndefLengthForbidden,
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements:  MaxArrayElements,
		MaxMapPairs:       MaxMapPairs,
		TagsMd:            cbor.TagsForbidden,
		TimeTag:           cbor.DecTagIgnored,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}

	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = encOptions.EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = decOptions.DecMode(); err != nil {
		panic(err)
	}
}

// EncodeCBOR encodes src with the deterministic profile. Elements nested in src are
// encoded as 32-byte byte strings.
func EncodeCBOR(src interface{}) ([]byte, error) {
	return encMode.Marshal(src)
}

// DecodeCBOR decodes data into dst with the strict decoding profile.
func DecodeCBOR(data []byte, dst interface{}) error {
	return decMode.Unmarshal(data, dst)
}

// NewCBORDecoder returns a decoder using the strict decoding profile.
func NewCBORDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// NewCBOREncoder returns an encoder using the deterministic profile.
func NewCBOREncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// MarshalText implements encoding.TextMarshaler; JSON uses it as well.
func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Decoding is strict.
func (e *Element) UnmarshalText(text []byte) error {
	v, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// MarshalCBOR implements cbor.Marshaler.
func (e Element) MarshalCBOR() ([]byte, error) {
	b := e.Bytes()
	return encMode.Marshal(b[:])
}

// UnmarshalCBOR implements cbor.Unmarshaler. The byte string must be exactly 32 bytes
// and encode a value below Modulus.
func (e *Element) UnmarshalCBOR(data []byte) error {
	var b []byte
	if err := decMode.Unmarshal(data, &b); err != nil {
		return badEncoding("cbor", err)
	}
	if len(b) != Bytes {
		return badEncoding("cbor", errors.Errorf("expected %d bytes, got %d", Bytes, len(b)))
	}
	v, err := FromBytes(b)
	if err != nil {
		return err
	}
	*e = v
	return nil
}
