package randomutil

import (
	"math/rand"
)

// RandomGenerator is the source of the passback cache-buster values.
type RandomGenerator interface {
	// GenerateInt63n returns a non-negative pseudo-random number in [0, n).
	GenerateInt63n(n int64) int64
}

type RandomNumberGenerator struct{}

func (RandomNumberGenerator) GenerateInt63n(n int64) int64 {
	return rand.Int63n(n)
}
