// Package rng provides the random sources used by battle resolution.
//
// Production code uses the crypto-backed source; tests use NewSeededSource
// for reproducible battles.
package rng

import (
	"crypto/rand"
	"math/big"
)

// Source produces the random values battle resolution needs.
type Source interface {
	// Intn returns a uniform int in [0, n). Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a uniform float64 in [0.0, 1.0).
	Float64() float64
}

// Chance rolls a probability p in [0,1] against src.
//
// Postcondition: Always false for p <= 0; always true for p >= 1.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Uniform returns a uniform float64 in [lo, hi).
//
// Precondition: lo <= hi.
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are cryptographically secure and uniformly
// distributed in their documented ranges.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
// Panics with "rng: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// float64Denom is 2^53, the largest power of two a float64 mantissa holds exactly.
const float64Denom = 1 << 53

// Float64 returns a cryptographically secure float64 in [0.0, 1.0).
func (c *cryptoSource) Float64() float64 {
	val, err := rand.Int(rand.Reader, big.NewInt(float64Denom))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return float64(val.Int64()) / float64Denom
}
