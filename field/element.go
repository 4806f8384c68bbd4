// element.go - BN254 scalar field element with strict and reducing constructors.
//
// Element wraps gnark-crypto's fr.Element so that the rest of the module never
// manipulates raw integers directly. Values are immutable: every operation returns
// a fresh Element.

package field

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/go-errors/errors"
)

// Modulus is the order of the BN254 scalar field. External code uses it to reduce
// values produced by unrelated algebraic structures (for example an elliptic curve
// x-coordinate) before hashing them.
const Modulus = "0x30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000001"

// Bytes is the length of the canonical big-endian encoding.
const Bytes = fr.Bytes

var modulus = fr.Modulus()

// ModulusBig returns Modulus as a freshly allocated *big.Int.
func ModulusBig() *big.Int {
	return new(big.Int).Set(modulus)
}

// Element is an element of the BN254 scalar field. The zero value is 0.
type Element struct {
	v fr.Element
}

// Zero returns the additive identity.
func Zero() Element {
	return Element{}
}

// One returns the multiplicative identity.
func One() Element {
	return Element{v: fr.One()}
}

// FromUint64 returns v as a field element. Every uint64 is in range.
func FromUint64(v uint64) Element {
	var e Element
	e.v.SetUint64(v)
	return e
}

// NewElement is the strict constructor: it fails with *OutOfRangeError when v is
// negative or v >= Modulus.
func NewElement(v *big.Int) (Element, error) {
	if v == nil {
		return Element{}, ErrNilInteger
	}
	if v.Sign() < 0 || v.Cmp(modulus) >= 0 {
		return Element{}, outOfRange(v)
	}
	var e Element
	e.v.SetBigInt(v)
	return e, nil
}

// NewElementReduced is the reducing constructor: it returns v mod Modulus. Negative
// values wrap into range.
func NewElementReduced(v *big.Int) Element {
	var e Element
	if v != nil {
		e.v.SetBigInt(v)
	}
	return e
}

// FromBytes interprets b as a big-endian integer and applies the strict constructor.
func FromBytes(b []byte) (Element, error) {
	if len(b) == Bytes {
		var e Element
		if err := e.v.SetBytesCanonical(b); err == nil {
			return e, nil
		}
	}
	return NewElement(new(big.Int).SetBytes(b))
}

// FromBytesReduced interprets b as a big-endian integer and reduces it modulo Modulus.
func FromBytesReduced(b []byte) Element {
	var e Element
	e.v.SetBytes(b)
	return e
}

// FromHex parses a hex string, with or without a 0x prefix, and applies the strict
// constructor.
func FromHex(s string) (Element, error) {
	v, err := parseHex(s)
	if err != nil {
		return Element{}, err
	}
	return NewElement(v)
}

// FromHexReduced parses a hex string and reduces it modulo Modulus.
func FromHexReduced(s string) (Element, error) {
	v, err := parseHex(s)
	if err != nil {
		return Element{}, err
	}
	return NewElementReduced(v), nil
}

// MustHex is FromHex for package-level constants; it panics on invalid input.
func MustHex(s string) Element {
	e, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return e
}

func parseHex(s string) (*big.Int, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return nil, badEncoding("hex", errors.Errorf("empty string"))
	}
	if digits[0] == '-' || digits[0] == '+' {
		return nil, badEncoding("hex", errors.Errorf("%q is signed", s))
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, badEncoding("hex", errors.Errorf("%q is not a hex number", s))
	}
	return v, nil
}

// Bytes returns the canonical 32-byte big-endian encoding.
func (e Element) Bytes() [Bytes]byte {
	return e.v.Bytes()
}

// Hex returns the 0x-prefixed, zero-padded hex encoding of the canonical bytes.
func (e Element) Hex() string {
	b := e.v.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

func (e Element) String() string {
	return e.Hex()
}

// BigInt returns the value as a newly allocated *big.Int.
func (e Element) BigInt() *big.Int {
	return e.v.BigInt(new(big.Int))
}

func (e Element) IsZero() bool {
	return e.v.IsZero()
}

func (e Element) Equal(other Element) bool {
	return e.v.Equal(&other.v)
}

// Add returns e + o mod Modulus.
func (e Element) Add(o Element) Element {
	var r Element
	r.v.Add(&e.v, &o.v)
	return r
}

// Sub returns e - o mod Modulus.
func (e Element) Sub(o Element) Element {
	var r Element
	r.v.Sub(&e.v, &o.v)
	return r
}

// Mul returns e * o mod Modulus.
func (e Element) Mul(o Element) Element {
	var r Element
	r.v.Mul(&e.v, &o.v)
	return r
}

// Double returns 2e mod Modulus.
func (e Element) Double() Element {
	var r Element
	r.v.Double(&e.v)
	return r
}

// Square returns e^2 mod Modulus.
func (e Element) Square() Element {
	var r Element
	r.v.Square(&e.v)
	return r
}

// MulUint64 returns k*e mod Modulus.
func (e Element) MulUint64(k uint64) Element {
	var kk, r Element
	kk.v.SetUint64(k)
	r.v.Mul(&e.v, &kk.v)
	return r
}

// Pow5 returns e^5, computed as two squarings followed by one multiplication.
func (e Element) Pow5() Element {
	var r Element
	r.v.Square(&e.v)
	r.v.Square(&r.v)
	r.v.Mul(&r.v, &e.v)
	return r
}
