package mlmodel

import "math/rand"

// newSeededRand returns a deterministic source for the given seed
func newSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
