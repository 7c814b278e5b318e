package forecast

import (
	"math/rand"
	"time"
)

// Rand is the randomness the engine draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a generator seeded with seed
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}

// clockRand seeds from the wall clock
func clockRand() Rand {
	return NewRand(time.Now().UnixNano())
}
