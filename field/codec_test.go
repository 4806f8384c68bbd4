package field

import (
	"encoding/json"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Root Element   `json:"root" cbor:"1,keyasint"`
	Path []Element `json:"path" cbor:"2,keyasint"`
}

func TestJSONRoundTrip(t *testing.T) {
	in := envelope{
		Root: MustHex("0x0dd6d785caa3fe1ad139a40b6bd26fccbd6c8697573b0e34489c740533db5cc8"),
		Path: []Element{Zero(), One(), FromUint64(42)},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"root":"0x0dd6d785caa3fe1ad139a40b6bd26fccbd6c8697573b0e34489c740533db5cc8"`)

	var out envelope
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, in.Root.Equal(out.Root))
	require.Len(t, out.Path, 3)
	for i := range in.Path {
		assert.True(t, in.Path[i].Equal(out.Path[i]))
	}
}

func TestJSONRejectsOutOfRange(t *testing.T) {
	var out envelope
	err := json.Unmarshal([]byte(`{"root":"`+Modulus+`"}`), &out)
	require.Error(t, err)
	var oor *OutOfRangeError
	assert.True(t, errors.As(err, &oor))
}

func TestCBORRoundTrip(t *testing.T) {
	in := envelope{
		Root: MustHex("0x038682aa1cb5ae4e0a3f13da432a95c77c5c111f6f030faf9cad641ce1ed7383"),
		Path: []Element{One(), FromUint64(7)},
	}
	data, err := EncodeCBOR(in)
	require.NoError(t, err)

	var out envelope
	require.NoError(t, DecodeCBOR(data, &out))
	assert.True(t, in.Root.Equal(out.Root))
	require.Len(t, out.Path, 2)
	assert.True(t, out.Path[1].Equal(FromUint64(7)))

	again, err := EncodeCBOR(out)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding must be deterministic")
}

func TestCBORElementIsByteString(t *testing.T) {
	data, err := One().MarshalCBOR()
	require.NoError(t, err)
	require.Len(t, data, 2+Bytes)
	// major type 2, one-byte length 32
	assert.Equal(t, byte(0x58), data[0])
	assert.Equal(t, byte(Bytes), data[1])
	assert.Equal(t, byte(0x01), data[len(data)-1])
}

func TestCBORRejectsMalformed(t *testing.T) {
	short, err := EncodeCBOR(make([]byte, 31))
	require.NoError(t, err)
	var e Element
	err = e.UnmarshalCBOR(short)
	var enc *EncodingError
	require.True(t, errors.As(err, &enc))

	tooBig := make([]byte, 32)
	ModulusBig().FillBytes(tooBig)
	data, err := EncodeCBOR(tooBig)
	require.NoError(t, err)
	err = e.UnmarshalCBOR(data)
	var oor *OutOfRangeError
	require.True(t, errors.As(err, &oor))

	notBytes, err := EncodeCBOR("0x01")
	require.NoError(t, err)
	require.Error(t, e.UnmarshalCBOR(notBytes))
}
