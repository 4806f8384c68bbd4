// hash.go - sponge hash entry points.

package poseidon2

import (
	"math/big"

	"honkdrop/field"
)

// Hash absorbs input and squeezes outLen lanes using the default permutation.
func Hash(input []field.Element, outLen int, variableLength bool) ([]field.Element, error) {
	return Default().Hash(input, outLen, variableLength)
}

// Hash absorbs input and squeezes outLen lanes.
//
// The sponge is seeded with the IV (len(input) << 64) + outLen - 1. When
// variableLength is set a trailing 1 is absorbed after the input, so fixed- and
// variable-length digests of the same input differ.
func (h *Permutation) Hash(input []field.Element, outLen int, variableLength bool) ([]field.Element, error) {
	if outLen < 1 {
		return nil, ErrInvalidOutputLength
	}

	sponge := NewSponge(h, iv(len(input), outLen))
	for _, x := range input {
		if err := sponge.Absorb(x); err != nil {
			return nil, err
		}
	}
	if variableLength {
		if err := sponge.Absorb(field.One()); err != nil {
			return nil, err
		}
	}

	out := make([]field.Element, outLen)
	for i := range out {
		x, err := sponge.Squeeze()
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func iv(inLen, outLen int) field.Element {
	v := new(big.Int).Lsh(big.NewInt(int64(inLen)), 64)
	v.Add(v, big.NewInt(int64(outLen-1)))
	return field.NewElementReduced(v)
}

// HashFixed returns the single-lane fixed-length digest of input.
func HashFixed(input ...field.Element) field.Element {
	return mustSingle(Hash(input, 1, false))
}

// HashVariable returns the single-lane variable-length digest of input.
func HashVariable(input ...field.Element) field.Element {
	return mustSingle(Hash(input, 1, true))
}

// HashTwo compresses two field elements into one. It is the node hash of the
// accumulator tree.
func HashTwo(a, b field.Element) field.Element {
	return mustSingle(Hash([]field.Element{a, b}, 1, false))
}

// HashBytes decodes every chunk as a big-endian field element and returns their
// fixed-length digest. A chunk encoding a value outside the field is an error.
func HashBytes(data ...[]byte) (field.Element, error) {
	input := make([]field.Element, len(data))
	for i, b := range data {
		x, err := field.FromBytes(b)
		if err != nil {
			return field.Element{}, err
		}
		input[i] = x
	}
	return HashFixed(input...), nil
}

// mustSingle unwraps a digest computed with the default permutation, which has a
// width the external matrix supports.
func mustSingle(out []field.Element, err error) field.Element {
	if err != nil {
		logger.Error().Err(err).Msg("default permutation failed")
		panic(err)
	}
	return out[0]
}
