// Package field implements elements of the BN254 scalar field, the prime field the
// Poseidon2 sponge in package poseidon2 operates over.
//
// Overview:
//   - Element is an immutable value with the invariant 0 <= value < Modulus
//   - Construction is explicit about range handling: NewElement, FromBytes and FromHex
//     reject out-of-range integers with *OutOfRangeError, while NewElementReduced,
//     FromBytesReduced and FromHexReduced reduce modulo Modulus
//   - The canonical external form is 32 bytes, big-endian (Bytes), or its 0x-prefixed hex
//   - Arithmetic is delegated to gnark-crypto's fixed-width Montgomery representation,
//     so intermediate products are never truncated
//
// Codecs:
//   - encoding.TextMarshaler (and therefore JSON) as a 0x-prefixed hex string
//   - CBOR as a 32-byte byte string, using Core Deterministic Encoding
//
// Field arithmetic is not guaranteed to be constant time.
package field
