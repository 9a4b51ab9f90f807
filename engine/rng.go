package engine

// RNG is an xorshift64 generator. Its whole state is the uint64 value, so it
// persists with the game and a restored game replays the same shuffles.
type RNG uint64

// NewRNG seeds a generator. xorshift cannot start at 0, so 0 becomes 1.
func NewRNG(seed uint64) RNG {
	if seed == 0 {
		seed = 1
	}
	return RNG(seed)
}

// Uint64 advances the generator and returns the next value.
func (r *RNG) Uint64() uint64 {
	x := uint64(*r)
	if x == 0 {
		x = 1
	}
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*r = RNG(x)
	return x
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		panic("engine: IntN called with non-positive n")
	}
	bound := uint64(n)
	// Reject the low values that would bias x % bound.
	threshold := -bound % bound
	for {
		x := r.Uint64()
		if x >= threshold {
			return int(x % bound)
		}
	}
}

// Shuffle permutes s in place with a Fisher-Yates walk from the last index
// down, swapping each index i with a uniform j in [0, i].
func Shuffle[T any](s []T, rng *RNG) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
