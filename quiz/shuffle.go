package quiz

import (
	"math"
	"math/bits"
	"unicode/utf16"
)

// rng is a 32-bit xorshift-multiply generator seeded from a string hash.
// Output must stay bit-exact with quizzes already handed out to players.
type rng struct {
	state uint32
}

func newRNG(seed string) *rng {
	units := utf16.Encode([]rune(seed))
	h := uint32(1779033703) ^ uint32(len(units))
	for _, u := range units {
		h = (h ^ uint32(u)) * 3432918353
		h = bits.RotateLeft32(h, 13)
	}
	return &rng{state: h}
}

// next returns a value in [0, 1).
func (r *rng) next() float64 {
	s := r.state
	s = (s ^ (s >> 16)) * 2246822507
	s = (s ^ (s >> 13)) * 3266489909
	s ^= s >> 16
	r.state = s
	return float64(s) / 4294967296
}

// Shuffle returns a permutation of items that depends only on seed.
// items is not modified.
func Shuffle[T any](items []T, seed string) []T {
	out := make([]T, len(items))
	copy(out, items)
	r := newRNG(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(math.Floor(r.next() * float64(i+1)))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
