package rng

import "math/rand"

// seededSource implements Source using a seeded math/rand generator.
// Not safe for concurrent use; each battle run should own its source.
type seededSource struct {
	r *rand.Rand
}

// NewSeededSource returns a deterministic Source for the given seed.
//
// Postcondition: Two sources with the same seed produce identical sequences.
func NewSeededSource(seed int64) Source {
	return &seededSource{r: rand.New(rand.NewSource(seed))}
}

// Intn returns a deterministic pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	return s.r.Intn(n)
}

// Float64 returns a deterministic pseudo-random float64 in [0.0, 1.0).
func (s *seededSource) Float64() float64 {
	return s.r.Float64()
}
