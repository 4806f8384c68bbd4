// Package poseidon2 implements the Poseidon2 permutation and a duplex sponge hash over
// the BN254 scalar field.
//
// Overview:
//   - Permutation: width 4, 8 full rounds and 56 partial rounds, S-box x^5
//   - Sponge: rate 3, capacity 1, IV (inputLength << 64) + outLen - 1 in the capacity lane
//   - Hash, HashFixed, HashVariable, HashTwo and HashBytes build one sponge per call
//   - Hasher adapts the fixed-length hash to hash.Hash and is registered with
//     gnark-crypto as POSEIDON2_BN254_T4
//   - CircuitHasher computes the same digests as gnark constraints
//
// Digests match Barretenberg's poseidon2 hash for the same inputs, so HashTwo can be
// used as the node hash of trees shared with Noir circuits.
//
// The rate is Width-1, not Width. The IV is written to the last lane, which input
// never touches, so that lane is a capacity lane of its own. With rate 4 the IV
// would be overwritten by the first absorbed block. Barretenberg uses the same
// layout, and the pinned digests in SelfTest depend on it.
//
// Concurrency:
//   - Permutation values are immutable and safe to share
//   - A Sponge is owned by a single goroutine; the package-level hash functions never
//     share one
//
// Security:
//   - Arithmetic is not constant time. Inputs are assumed to be public values
//     such as tree nodes and commitments.
//
// References:
//   - Poseidon2: A Faster Version of the Poseidon Hash Function (Grassi, Khovratovich, Schofnegger, 2023)
//   - https://eprint.iacr.org/2023/323.pdf
package poseidon2
