// permutation.go - Poseidon2 permutation over the BN254 scalar field.
//
// One permutation call is: external linear layer; rF/2 full rounds; rP partial rounds;
// rF/2 full rounds. Full rounds add the round constants to every lane, apply the
// S-box x^5 to every lane and mix with the external matrix. Partial rounds add the
// constant and apply the S-box to lane 0 only, then mix with the internal
// (diagonal plus all-ones) matrix. Full rounds sit strictly at both ends.
//
// reference implementation: https://github.com/HorizenLabs/poseidon2
// Poseidon2 paper: https://eprint.iacr.org/2023/323.pdf

package poseidon2

import (
	"sync"

	"honkdrop/field"
)

// Parameters describing a Poseidon2 instance.
type Parameters struct {
	// Width is the number of lanes of the permutation state.
	Width int

	// RoundsF is the number of full rounds, split evenly before and after the
	// partial rounds. Must be even.
	RoundsF int

	// RoundsP is the number of partial rounds.
	RoundsP int

	// RoundConstants holds RoundsF+RoundsP rows of Width constants. Only lane 0 of a
	// partial-round row is used.
	RoundConstants [][]field.Element

	// InternalDiagonal holds the diagonal of the internal matrix minus the identity:
	// the internal layer computes out[i] = in[i]*InternalDiagonal[i] + sum(in).
	InternalDiagonal []field.Element
}

var defaultTables = sync.OnceValue(func() *Parameters {
	p := &Parameters{
		Width:            defaultWidth,
		RoundsF:          defaultRoundsF,
		RoundsP:          defaultRoundsP,
		RoundConstants:   make([][]field.Element, len(roundConstantsHex)),
		InternalDiagonal: make([]field.Element, len(internalDiagonalHex)),
	}
	for i, row := range roundConstantsHex {
		p.RoundConstants[i] = make([]field.Element, len(row))
		for j, c := range row {
			p.RoundConstants[i][j] = field.MustHex(c)
		}
	}
	for i, c := range internalDiagonalHex {
		p.InternalDiagonal[i] = field.MustHex(c)
	}
	return p
})

// DefaultParameters returns a copy of the BN254 width-4 parameter set
// (see ParameterSetVersion).
func DefaultParameters() *Parameters {
	return defaultTables().clone()
}

func (p *Parameters) clone() *Parameters {
	c := &Parameters{
		Width:            p.Width,
		RoundsF:          p.RoundsF,
		RoundsP:          p.RoundsP,
		RoundConstants:   make([][]field.Element, len(p.RoundConstants)),
		InternalDiagonal: append([]field.Element(nil), p.InternalDiagonal...),
	}
	for i, row := range p.RoundConstants {
		c.RoundConstants[i] = append([]field.Element(nil), row...)
	}
	return c
}

func (p *Parameters) validate() error {
	if p.Width < 2 {
		return invalidParameters("width %d", p.Width)
	}
	if p.RoundsF <= 0 || p.RoundsF%2 != 0 {
		return invalidParameters("full rounds %d must be positive and even", p.RoundsF)
	}
	if p.RoundsP < 0 {
		return invalidParameters("partial rounds %d", p.RoundsP)
	}
	if len(p.RoundConstants) != p.RoundsF+p.RoundsP {
		return invalidParameters("got %d round constant rows, want %d", len(p.RoundConstants), p.RoundsF+p.RoundsP)
	}
	for i, row := range p.RoundConstants {
		if len(row) != p.Width {
			return invalidParameters("round constant row %d has %d lanes, want %d", i, len(row), p.Width)
		}
	}
	if len(p.InternalDiagonal) != p.Width {
		return invalidParameters("internal diagonal has %d lanes, want %d", len(p.InternalDiagonal), p.Width)
	}
	return nil
}

// Permutation applies the Poseidon2 permutation. It is immutable after construction
// and safe for concurrent use.
type Permutation struct {
	params *Parameters
}

// NewPermutation returns a permutation for the given parameters. The tables are
// copied. Widths for which no external matrix exists are accepted here and rejected
// by Permute.
func NewPermutation(p *Parameters) (*Permutation, error) {
	if p == nil {
		return nil, invalidParameters("nil parameters")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	logger.Debug().
		Int("width", p.Width).
		Int("rounds_f", p.RoundsF).
		Int("rounds_p", p.RoundsP).
		Msg("permutation initialised")
	return &Permutation{params: p.clone()}, nil
}

var defaultPermutation = sync.OnceValue(func() *Permutation {
	return &Permutation{params: defaultTables()}
})

// Default returns the shared BN254 width-4 permutation.
func Default() *Permutation {
	return defaultPermutation()
}

// Width returns the number of lanes of the state.
func (h *Permutation) Width() int {
	return h.params.Width
}

// Permute applies the permutation to a copy of state and returns it. It fails with
// *UnsupportedWidthError, before doing any arithmetic, when the state width does not
// match the parameters or has no external matrix.
func (h *Permutation) Permute(state []field.Element) ([]field.Element, error) {
	if len(state) != h.params.Width {
		return nil, unsupportedWidth(len(state))
	}
	s := make([]field.Element, len(state))
	copy(s, state)

	if err := matMulExternal(s); err != nil {
		return nil, err
	}

	rf := h.params.RoundsF / 2
	pEnd := rf + h.params.RoundsP

	for i := 0; i < rf; i++ {
		if err := h.fullRound(i, s); err != nil {
			return nil, err
		}
	}
	for i := rf; i < pEnd; i++ {
		h.partialRound(i, s)
	}
	for i := pEnd; i < h.params.RoundsF+h.params.RoundsP; i++ {
		if err := h.fullRound(i, s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (h *Permutation) fullRound(round int, s []field.Element) error {
	rc := h.params.RoundConstants[round]
	for j := range s {
		s[j] = s[j].Add(rc[j]).Pow5()
	}
	return matMulExternal(s)
}

func (h *Permutation) partialRound(round int, s []field.Element) {
	s[0] = s[0].Add(h.params.RoundConstants[round][0]).Pow5()
	h.matMulInternal(s)
}

// matMulInternal computes out[i] = in[i]*diag[i] + sum(in).
func (h *Permutation) matMulInternal(s []field.Element) {
	sum := field.Zero()
	for _, x := range s {
		sum = sum.Add(x)
	}
	for i := range s {
		s[i] = s[i].Mul(h.params.InternalDiagonal[i]).Add(sum)
	}
}

// matMulExternal multiplies the state by the external MDS matrix. Only width 4 has
// one; any other width is rejected before the state is touched.
func matMulExternal(s []field.Element) error {
	if len(s) != 4 {
		return unsupportedWidth(len(s))
	}
	matMul4(s)
	return nil
}

// matMul4 multiplies by
//
//	[5 7 1 3]
//	[4 6 1 1]
//	[1 3 5 7]
//	[1 1 4 6]
//
// with 8 additions and 4 doublings (https://eprint.iacr.org/2023/323.pdf, page 14).
func matMul4(s []field.Element) {
	t0 := s[0].Add(s[1])
	t1 := s[2].Add(s[3])
	t2 := s[1].Double().Add(t1)
	t3 := s[3].Double().Add(t0)
	t4 := t1.Double().Double().Add(t3)
	t5 := t0.Double().Double().Add(t2)
	t6 := t3.Add(t5)
	t7 := t2.Add(t4)
	s[0] = t6
	s[1] = t5
	s[2] = t7
	s[3] = t4
}
