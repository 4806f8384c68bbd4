// hasher.go - hash.Hash adapter over the fixed-length sponge.

package poseidon2

import (
	"hash"

	gnarkhash "github.com/consensys/gnark-crypto/hash"
	"github.com/go-errors/errors"

	"honkdrop/field"
)

// HashName is the name under which NewHasher is registered with gnark-crypto.
const HashName = "POSEIDON2_BN254_T4"

func init() {
	gnarkhash.RegisterCustomHash(HashName, func() hash.Hash {
		return NewHasher()
	})
}

// Hasher buffers 32-byte big-endian field elements and returns their fixed-length
// digest on Sum. A trailing block shorter than 32 bytes is read as a left-padded
// value.
type Hasher struct {
	blocks  []field.Element
	pending []byte
}

var _ gnarkhash.StateStorer = (*Hasher)(nil)

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Write implements io.Writer. Each completed block must encode a value below the
// field modulus; on error the offending block is discarded and the bytes consumed
// so far are reported.
func (h *Hasher) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := min(field.Bytes-len(h.pending), len(p))
		h.pending = append(h.pending, p[:k]...)
		p = p[k:]
		n += k
		if len(h.pending) < field.Bytes {
			break
		}
		x, err := field.FromBytes(h.pending)
		h.pending = h.pending[:0]
		if err != nil {
			return n, errors.WrapPrefix(err, "poseidon2: hasher block", 0)
		}
		h.blocks = append(h.blocks, x)
	}
	return n, nil
}

// Sum appends the digest of the buffered blocks to b. The state is left unchanged.
func (h *Hasher) Sum(b []byte) []byte {
	input := h.blocks
	if len(h.pending) > 0 {
		input = append(append([]field.Element(nil), h.blocks...), field.FromBytesReduced(h.pending))
	}
	d := HashFixed(input...).Bytes()
	return append(b, d[:]...)
}

// Reset discards all buffered input.
func (h *Hasher) Reset() {
	h.blocks = h.blocks[:0]
	h.pending = h.pending[:0]
}

// Size returns the digest size in bytes.
func (h *Hasher) Size() int {
	return field.Bytes
}

// BlockSize returns the size of one input element in bytes.
func (h *Hasher) BlockSize() int {
	return field.Bytes
}

// State returns the buffered input, full blocks first then the pending bytes.
func (h *Hasher) State() []byte {
	out := make([]byte, 0, len(h.blocks)*field.Bytes+len(h.pending))
	for _, x := range h.blocks {
		b := x.Bytes()
		out = append(out, b[:]...)
	}
	return append(out, h.pending...)
}

// SetState replaces the buffered input with a value returned by State.
func (h *Hasher) SetState(state []byte) error {
	h.Reset()
	if _, err := h.Write(state); err != nil {
		h.Reset()
		return err
	}
	return nil
}
