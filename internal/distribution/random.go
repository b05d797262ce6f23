package distribution

import "math/rand/v2"

// RandomSource picks an index in [0, n). Implementations must be safe for concurrent use.
type RandomSource interface {
	IntN(n int) int
}

// globalSource draws from the runtime-seeded math/rand/v2 top-level generator.
type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultRandomSource returns the process-wide random source.
func DefaultRandomSource() RandomSource {
	return globalSource{}
}
