package poseidon2

import (
	"math/big"
	"sync"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honkdrop/field"
)

const hashTwoZeroOne = "0x0dd6d785caa3fe1ad139a40b6bd26fccbd6c8697573b0e34489c740533db5cc8"

func TestHashTwoKnownAnswer(t *testing.T) {
	got := HashTwo(field.Zero(), field.One())
	assert.Equal(t, hashTwoZeroOne, got.Hex())

	want := [32]byte{
		0x0d, 0xd6, 0xd7, 0x85, 0xca, 0xa3, 0xfe, 0x1a, 0xd1, 0x39, 0xa4, 0x0b, 0x6b, 0xd2, 0x6f, 0xcc,
		0xbd, 0x6c, 0x86, 0x97, 0x57, 0x3b, 0x0e, 0x34, 0x48, 0x9c, 0x74, 0x05, 0x33, 0xdb, 0x5c, 0xc8,
	}
	assert.Equal(t, want, got.Bytes())
}

func TestHashKnownAnswers(t *testing.T) {
	tests := []struct {
		name     string
		input    []field.Element
		outLen   int
		variable bool
		want     []string
	}{
		{"empty", nil, 1, false, []string{"0x18dfb8dc9b82229cff974efefc8df78b1ce96d9d844236b496785c698bc6732e"}},
		{"empty variable", nil, 1, true, []string{"0x02a04ea402711ced2d4bc39608cc5350a7db4af98ec2950d4d1ec30334d6c2b4"}},
		{"single zero", elements(0), 1, false, []string{"0x2710144414c3a5f2354f4c08d52ed655b9fe253b4bf12cb9ad3de693d9b1db11"}},
		{"single zero variable", elements(0), 1, true, []string{"0x057985cb452f268c650a6600d9410f49ebd2fd9756b8c89f38cf80a72e5a4f1a"}},
		{"pair variable", elements(0, 1), 1, true, []string{"0x200b35d9d61143fbb704182a052aa2f8a2f7bdc7730757de834f389a5c685170"}},
		{"one two", elements(1, 2), 1, false, []string{"0x038682aa1cb5ae4e0a3f13da432a95c77c5c111f6f030faf9cad641ce1ed7383"}},
		{"full rate", elements(1, 2, 3), 1, false, []string{"0x23864adb160dddf590f1d3303683ebcb914f828e2635f6e85a32f0a1aecd3dd8"}},
		{"rate plus one", elements(1, 2, 3, 4), 1, false, []string{"0x130bf204a32cac1f0ace56c78b731aa3809f06df2731ebcf6b3464a15788b1b9"}},
		{"seven", elements(1, 2, 3, 4, 5, 6, 7), 1, false, []string{"0x16f929bc0d216df4b05bdc44222463edf2b9791bd949ab926eebda06a502d238"}},
		{"four lanes out", elements(1, 2), 4, false, []string{
			"0x0821861557f858f3d8907ad0965427f36c963bc90064476471ed3cc945b28d5f",
			"0x0468e303c0d35429c55458929b2bbe69a83de2b5ae9f37956ff88f9bf8e2deb4",
			"0x0d3f83411978a171d1e01124068da229f1e81d9fbf4b08ff09c133b0b2c22c36",
			"0x124a99793a195c6e1b6499eac9f5528d5e3acde38ed0a6e6611c822df4c7812b",
		}},
		{"five lanes out", elements(1, 2, 3), 5, false, []string{
			"0x2265e89a3c7272c961d9aeb75aed9872fa350412e253df13548c969d00fca6b9",
			"0x0cf855122b56b3416e2d74941c1331ca00d0ce52da147467fc6e847cd74513b2",
			"0x1fcb88de995f359b2e4de44bc3a9c6212c22b93f6e648eea1ad797a023ed516d",
			"0x2e7c3f29e6a9d1e66978507e9de092fd5e2c0472d1c2887c0146c6657c85cf2c",
			"0x2ac5d51f96de7856031bea18f4a1cc598a0f8708802c3a78223707e09122b44a",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Hash(tt.input, tt.outLen, tt.variable)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hexes(t, out))
		})
	}
}

func TestHashEmptyIsPermutationOfZero(t *testing.T) {
	perm, err := Default().Permute(make([]field.Element, 4))
	require.NoError(t, err)
	assert.True(t, HashFixed().Equal(perm[0]))
}

func TestBarretenbergFourElements(t *testing.T) {
	a := field.NewElementReduced(mustBig(t, "0x9a807b615c4d3e2fa0b1c2d3e4f56789fedcba9876543210abcdef0123456789"))
	got := HashFixed(a, a, a, a)
	assert.Equal(t, "0x2f43a0f83b51a6f5fc839dea0ecec74947637802a579fa9841930a25a0bcec11", got.Hex())
}

func TestHashTwoComposition(t *testing.T) {
	left := HashTwo(field.FromUint64(0), field.FromUint64(1))
	right := HashTwo(field.FromUint64(2), field.FromUint64(3))
	assert.Equal(t, "0x2bc00d90b885b09d12764e764410f7f693f514f7f3ca14d916741ff3968b3079", right.Hex())
	assert.Equal(t, "0x132756d3b036721c09b6e427f31f27974cb765d2532f441a56bbc9a2649590c1", HashTwo(left, right).Hex())
}

func TestHashTwoLargestElements(t *testing.T) {
	top := field.NewElementReduced(big.NewInt(-1))
	assert.Equal(t, "0x16ab2bdbff8e66f191cd6d39f6ad3af51d8a7e41f4c59942dd21713e4aebcc2d", HashTwo(top, top).Hex())
}

func TestHashDeterministic(t *testing.T) {
	in := elements(9, 8, 7, 6, 5)
	a, err := Hash(in, 3, true)
	require.NoError(t, err)
	b, err := Hash(in, 3, true)
	require.NoError(t, err)
	assert.Equal(t, hexes(t, a), hexes(t, b))
	assert.True(t, HashTwo(field.FromUint64(5), field.FromUint64(6)).Equal(HashTwo(field.FromUint64(5), field.FromUint64(6))))
}

func TestHashDomainSeparation(t *testing.T) {
	for n := 1; n <= 7; n++ {
		in := make([]field.Element, n)
		for i := range in {
			in[i] = field.FromUint64(uint64(i * 31))
		}
		assert.False(t, HashFixed(in...).Equal(HashVariable(in...)), "len %d", n)
	}
}

func TestHashLengthSensitivity(t *testing.T) {
	// trailing zeros only differ through the IV
	seen := map[string]int{}
	for n := 0; n <= 8; n++ {
		d := HashFixed(make([]field.Element, n)...).Hex()
		prev, dup := seen[d]
		require.False(t, dup, "len %d collides with len %d", n, prev)
		seen[d] = n
	}
}

func TestHashOutLenSeparation(t *testing.T) {
	one, err := Hash(elements(1, 2), 1, false)
	require.NoError(t, err)
	two, err := Hash(elements(1, 2), 2, false)
	require.NoError(t, err)
	assert.False(t, one[0].Equal(two[0]), "the IV encodes outLen")
}

func TestHashRejectsOutLen(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := Hash(elements(1), n, false)
		assert.True(t, errors.Is(err, ErrInvalidOutputLength))
	}
}

func TestHashBytes(t *testing.T) {
	one := field.One().Bytes()
	two := field.FromUint64(2).Bytes()
	got, err := HashBytes(one[:], two[:])
	require.NoError(t, err)
	assert.Equal(t, "0x038682aa1cb5ae4e0a3f13da432a95c77c5c111f6f030faf9cad641ce1ed7383", got.Hex())

	got, err = HashBytes([]byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, "0x14dc45d93064bb69c8774c4b194323e6b519627a641c13e11ea2525844b22de2", got.Hex())

	p := make([]byte, 32)
	field.ModulusBig().FillBytes(p)
	_, err = HashBytes(one[:], p)
	var oor *field.OutOfRangeError
	require.True(t, errors.As(err, &oor))
}

func TestHashConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = HashTwo(field.Zero(), field.One()).Hex()
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, hashTwoZeroOne, r)
	}
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 0)
	require.True(t, ok)
	return v
}

func BenchmarkPermute(b *testing.B) {
	perm := Default()
	s := elements(0, 1, 2, 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, _ = perm.Permute(s)
	}
}

func BenchmarkHashTwo(b *testing.B) {
	x, y := field.Zero(), field.One()
	for i := 0; i < b.N; i++ {
		x = HashTwo(x, y)
	}
}

func TestSelfTest(t *testing.T) {
	require.NoError(t, SelfTest())

	saved := knownAnswers
	t.Cleanup(func() { knownAnswers = saved })
	knownAnswers = append([]knownAnswer{{
		name: "broken",
		run:  func() (field.Element, error) { return field.One(), nil },
		want: field.Zero().Hex(),
	}}, saved...)

	err := SelfTest()
	var ka *KnownAnswerError
	require.True(t, errors.As(err, &ka))
	assert.Equal(t, "broken", ka.Name)
}
