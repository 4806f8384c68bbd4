// circuit.go - Poseidon2 permutation and sponge as gnark constraints.
//
// The gadget mirrors the native permutation and sponge lane for lane so a digest
// computed off-circuit can be asserted in-circuit. It only supports the default
// BN254 width-4 parameters and must be used with a BN254 scalar field builder.

package poseidon2

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
)

// CircuitHasher computes the fixed-length sponge digest inside a circuit.
type CircuitHasher struct {
	api   frontend.API
	rc    [][]*big.Int
	diag  []*big.Int
	rf    int
	rp    int
	width int

	data []frontend.Variable
}

var _ hash.FieldHasher = (*CircuitHasher)(nil)

// NewCircuitHasher returns a gadget bound to api.
func NewCircuitHasher(api frontend.API) *CircuitHasher {
	p := defaultTables()
	h := &CircuitHasher{
		api:   api,
		rc:    make([][]*big.Int, len(p.RoundConstants)),
		diag:  make([]*big.Int, len(p.InternalDiagonal)),
		rf:    p.RoundsF,
		rp:    p.RoundsP,
		width: p.Width,
	}
	for i, row := range p.RoundConstants {
		h.rc[i] = make([]*big.Int, len(row))
		for j, c := range row {
			h.rc[i][j] = c.BigInt()
		}
	}
	for i, d := range p.InternalDiagonal {
		h.diag[i] = d.BigInt()
	}
	return h
}

// Write appends inputs to the data to hash.
func (h *CircuitHasher) Write(data ...frontend.Variable) {
	h.data = append(h.data, data...)
}

// Reset clears the data to hash.
func (h *CircuitHasher) Reset() {
	h.data = nil
}

// Sum returns the fixed-length digest of the written data. The data is kept.
func (h *CircuitHasher) Sum() frontend.Variable {
	return h.Hash(h.data, 1, false)[0]
}

// HashTwo is the in-circuit counterpart of HashTwo.
func (h *CircuitHasher) HashTwo(a, b frontend.Variable) frontend.Variable {
	return h.Hash([]frontend.Variable{a, b}, 1, false)[0]
}

// Hash is the in-circuit counterpart of Hash. It panics if outLen < 1, as the
// circuit shape is a compile-time property.
func (h *CircuitHasher) Hash(input []frontend.Variable, outLen int, variableLength bool) []frontend.Variable {
	if outLen < 1 {
		panic(ErrInvalidOutputLength)
	}
	rate := h.width - 1

	state := make([]frontend.Variable, h.width)
	for i := range state {
		state[i] = 0
	}
	state[h.width-1] = iv(len(input), outLen).BigInt()

	if variableLength {
		input = append(append([]frontend.Variable(nil), input...), 1)
	}

	// absorbing in chunks of rate; the last chunk is duplexed on the first squeeze
	// and an empty input still costs one permutation.
	for start := 0; start < len(input) || start == 0; start += rate {
		end := min(start+rate, len(input))
		for i, x := range input[start:end] {
			state[i] = h.api.Add(state[i], x)
		}
		state = h.Permute(state)
		if end == len(input) {
			break
		}
	}

	out := make([]frontend.Variable, 0, outLen)
	for {
		for i := 0; i < rate && len(out) < outLen; i++ {
			out = append(out, state[i])
		}
		if len(out) == outLen {
			return out
		}
		state = h.Permute(state)
	}
}

// Permute applies the permutation to a copy of state. len(state) must be 4.
func (h *CircuitHasher) Permute(state []frontend.Variable) []frontend.Variable {
	if len(state) != h.width {
		panic(unsupportedWidth(len(state)))
	}
	s := make([]frontend.Variable, len(state))
	copy(s, state)

	h.matMulExternal(s)
	half := h.rf / 2
	for r := 0; r < h.rf+h.rp; r++ {
		if r < half || r >= half+h.rp {
			for j := range s {
				s[j] = h.sBox(h.api.Add(s[j], h.rc[r][j]))
			}
			h.matMulExternal(s)
			continue
		}
		s[0] = h.sBox(h.api.Add(s[0], h.rc[r][0]))
		h.matMulInternal(s)
	}
	return s
}

func (h *CircuitHasher) sBox(x frontend.Variable) frontend.Variable {
	x2 := h.api.Mul(x, x)
	x4 := h.api.Mul(x2, x2)
	return h.api.Mul(x4, x)
}

func (h *CircuitHasher) matMulExternal(s []frontend.Variable) {
	api := h.api
	t0 := api.Add(s[0], s[1])
	t1 := api.Add(s[2], s[3])
	t2 := api.Add(api.Mul(s[1], 2), t1)
	t3 := api.Add(api.Mul(s[3], 2), t0)
	t4 := api.Add(api.Mul(t1, 4), t3)
	t5 := api.Add(api.Mul(t0, 4), t2)
	s[0] = api.Add(t3, t5)
	s[1] = t5
	s[2] = api.Add(t2, t4)
	s[3] = t4
}

func (h *CircuitHasher) matMulInternal(s []frontend.Variable) {
	sum := h.api.Add(s[0], s[1], s[2:]...)
	for i := range s {
		s[i] = h.api.Add(h.api.Mul(s[i], h.diag[i]), sum)
	}
}
