/*
Package game
File: rng.go
Description:
    Randomness helpers shared by every stochastic rule in the run (decay, mining,
    market drift, encounters, warp obstacles). The source is always injected so
    a seeded generator replays a run exactly.
*/

package game

import (
	"math/rand"
	"time"
)

// Rand is the randomness provider consumed by the rules engine.
// *rand.Rand satisfies it.
type Rand interface {
	// Intn returns a value in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// NewRand returns a seeded source. A zero seed means "seed from the wall clock".
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RandRange returns a uniform integer in [lo, hi], both inclusive.
// Swapped bounds are tolerated.
func RandRange(r Rand, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return r.Intn(hi-lo+1) + lo
}

// RandFloatRange returns a uniform float in [lo, hi).
func RandFloatRange(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Clamp bounds value to [lo, hi].
func Clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
