package poseidon2

import (
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honkdrop/field"
)

func elements(vs ...uint64) []field.Element {
	out := make([]field.Element, len(vs))
	for i, v := range vs {
		out[i] = field.FromUint64(v)
	}
	return out
}

func hexes(t *testing.T, xs []field.Element) []string {
	t.Helper()
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = x.Hex()
	}
	return out
}

func TestPermuteKnownAnswers(t *testing.T) {
	tests := []struct {
		name string
		in   []field.Element
		want []string
	}{
		{
			name: "0,1,2,3",
			in:   elements(0, 1, 2, 3),
			want: []string{
				"0x01bd538c2ee014ed5141b29e9ae240bf8db3fe5b9a38629a9647cf8d76c01737",
				"0x239b62e7db98aa3a2a8f6a0d2fa1709e7a35959aa6c7034814d9daa90cbac662",
				"0x04cbb44c61d928ed06808456bf758cbf0c18d1e15a7b6dbc8245fa7515d5e3cb",
				"0x2e11c5cff2a22c64d01304b778d78f6998eff1ab73163a35603f54794c30847a",
			},
		},
		{
			name: "zero state",
			in:   elements(0, 0, 0, 0),
			want: []string{
				"0x18dfb8dc9b82229cff974efefc8df78b1ce96d9d844236b496785c698bc6732e",
				"0x095c230d1d37a246e8d2d5a63b165fe0fade040d442f61e25f0590e5fb76f839",
				"0x0bb9545846e1afa4fa3c97414a60a20fc4949f537a68cceca34c5ce71e28aa59",
				"0x18a4f34c9c6f99335ff7638b82aeed9018026618358873c982bbdde265b2ed6d",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Default().Permute(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hexes(t, out))
		})
	}
}

func TestPermuteDoesNotModifyInput(t *testing.T) {
	in := elements(0, 1, 2, 3)
	_, err := Default().Permute(in)
	require.NoError(t, err)
	assert.Equal(t, hexes(t, elements(0, 1, 2, 3)), hexes(t, in))
}

func TestPermuteRejectsWrongStateLength(t *testing.T) {
	for _, n := range []int{0, 3, 5} {
		_, err := Default().Permute(make([]field.Element, n))
		var uw *UnsupportedWidthError
		require.True(t, errors.As(err, &uw), "len %d: %v", n, err)
		assert.Equal(t, n, uw.Width)
	}
}

func widthThreeParameters() *Parameters {
	p := DefaultParameters()
	p.Width = 3
	for i := range p.RoundConstants {
		p.RoundConstants[i] = p.RoundConstants[i][:3]
	}
	p.InternalDiagonal = p.InternalDiagonal[:3]
	return p
}

func TestWidthThreeFailsAtPermutationTime(t *testing.T) {
	perm, err := NewPermutation(widthThreeParameters())
	require.NoError(t, err, "width 3 parameters are well formed")
	assert.Equal(t, 3, perm.Width())

	_, err = perm.Permute(elements(1, 2, 3))
	var uw *UnsupportedWidthError
	require.True(t, errors.As(err, &uw))
	assert.Equal(t, 3, uw.Width)
	assert.Contains(t, err.Error(), "width 3")

	_, err = perm.Hash(elements(1, 2), 1, false)
	require.True(t, errors.As(err, &uw), "sponge must surface the width error")
}

func TestMatMulExternalRejectsBeforeArithmetic(t *testing.T) {
	s := elements(1, 2, 3)
	err := matMulExternal(s)
	var uw *UnsupportedWidthError
	require.True(t, errors.As(err, &uw))
	assert.Equal(t, hexes(t, elements(1, 2, 3)), hexes(t, s))
}

func TestMatMul4(t *testing.T) {
	// rows of the external matrix applied to unit vectors give its columns
	cols := [][]uint64{
		{5, 4, 1, 1},
		{7, 6, 3, 1},
		{1, 1, 5, 4},
		{3, 1, 7, 6},
	}
	for j, col := range cols {
		s := make([]field.Element, 4)
		s[j] = field.One()
		matMul4(s)
		assert.Equal(t, hexes(t, elements(col...)), hexes(t, s), "column %d", j)
	}
}

func TestNewPermutationValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Parameters)
	}{
		{"width too small", func(p *Parameters) { p.Width = 1 }},
		{"odd full rounds", func(p *Parameters) { p.RoundsF = 7 }},
		{"negative partial rounds", func(p *Parameters) { p.RoundsP = -1 }},
		{"missing row", func(p *Parameters) { p.RoundConstants = p.RoundConstants[1:] }},
		{"short row", func(p *Parameters) { p.RoundConstants[10] = p.RoundConstants[10][:2] }},
		{"short diagonal", func(p *Parameters) { p.InternalDiagonal = p.InternalDiagonal[:3] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(p)
			_, err := NewPermutation(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))
		})
	}

	_, err := NewPermutation(nil)
	assert.True(t, errors.Is(err, ErrInvalidParameters))
}

func TestNewPermutationCopiesTables(t *testing.T) {
	p := DefaultParameters()
	perm, err := NewPermutation(p)
	require.NoError(t, err)

	p.RoundConstants[0][0] = field.FromUint64(1)
	p.InternalDiagonal[0] = field.FromUint64(1)

	out, err := perm.Permute(elements(0, 1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, "0x01bd538c2ee014ed5141b29e9ae240bf8db3fe5b9a38629a9647cf8d76c01737", out[0].Hex())

	// DefaultParameters hands out independent copies
	assert.False(t, DefaultParameters().InternalDiagonal[0].Equal(field.FromUint64(1)))
}

func TestDefaultParameterShape(t *testing.T) {
	p := DefaultParameters()
	assert.Equal(t, 4, p.Width)
	assert.Equal(t, 8, p.RoundsF)
	assert.Equal(t, 56, p.RoundsP)
	require.Len(t, p.RoundConstants, 64)
	for r := 4; r < 60; r++ {
		for j := 1; j < 4; j++ {
			assert.True(t, p.RoundConstants[r][j].IsZero(), "partial row %d lane %d", r, j)
		}
	}
	assert.Equal(t, "0x10dc6e9c006ea38b04b1e03b4bd9490c0d03f98929ca1d7fb56821fd19d3b6e7", p.InternalDiagonal[0].Hex())
}
