// sponge.go - duplex sponge over the Poseidon2 permutation.
//
// The sponge keeps its rate lanes in a cache and only permutes when the cache is full
// and more input arrives, or when output is requested. The last lane of the state is
// the capacity and carries the IV.

package poseidon2

import (
	"honkdrop/field"
)

// Mode is the phase of a Sponge.
type Mode uint8

const (
	Absorbing Mode = iota
	Squeezing
)

func (m Mode) String() string {
	switch m {
	case Absorbing:
		return "absorbing"
	case Squeezing:
		return "squeezing"
	default:
		return "unknown"
	}
}

// Sponge is a duplex sponge with rate Width-1 and capacity 1.
//
// A Sponge is not safe for concurrent use. Use one instance per hash computation.
type Sponge struct {
	perm  *Permutation
	state []field.Element
	cache []field.Element
	size  int
	mode  Mode
}

// NewSponge returns a sponge in the Absorbing mode whose capacity lane holds iv.
func NewSponge(perm *Permutation, iv field.Element) *Sponge {
	w := perm.Width()
	s := &Sponge{
		perm:  perm,
		state: make([]field.Element, w),
		cache: make([]field.Element, w-1),
		mode:  Absorbing,
	}
	s.state[w-1] = iv
	return s
}

// Rate returns the number of lanes absorbed or squeezed per permutation call.
func (s *Sponge) Rate() int {
	return len(s.cache)
}

// Mode returns the current phase.
func (s *Sponge) Mode() Mode {
	return s.mode
}

// Absorb feeds x into the sponge.
func (s *Sponge) Absorb(x field.Element) error {
	switch {
	case s.mode == Squeezing:
		s.mode = Absorbing
		s.resetCache(x)
	case s.size == len(s.cache):
		if _, err := s.duplex(); err != nil {
			return err
		}
		s.resetCache(x)
	default:
		s.cache[s.size] = x
		s.size++
	}
	return nil
}

// Squeeze returns the next output lane, permuting when no buffered output is left.
func (s *Sponge) Squeeze() (field.Element, error) {
	if s.mode == Squeezing && s.size == 0 {
		s.mode = Absorbing
	}
	if s.mode == Absorbing {
		out, err := s.duplex()
		if err != nil {
			return field.Element{}, err
		}
		copy(s.cache, out)
		s.size = len(s.cache)
		s.mode = Squeezing
	}

	x := s.cache[0]
	copy(s.cache, s.cache[1:s.size])
	s.size--
	s.cache[s.size] = field.Zero()
	return x, nil
}

// duplex adds the zero-padded cache into the rate lanes, permutes and returns the
// rate lanes of the new state. The cache is emptied.
func (s *Sponge) duplex() ([]field.Element, error) {
	for i := s.size; i < len(s.cache); i++ {
		s.cache[i] = field.Zero()
	}
	for i := range s.cache {
		s.state[i] = s.state[i].Add(s.cache[i])
	}
	next, err := s.perm.Permute(s.state)
	if err != nil {
		return nil, err
	}
	s.state = next
	s.size = 0
	for i := range s.cache {
		s.cache[i] = field.Zero()
	}
	return next[:len(s.cache)], nil
}

func (s *Sponge) resetCache(x field.Element) {
	for i := range s.cache {
		s.cache[i] = field.Zero()
	}
	s.cache[0] = x
	s.size = 1
}
