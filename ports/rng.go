package ports

import (
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic
// resampling. Fixing the base seed reproduces a run exactly.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation.
	SeededStream(name string, seed int64) *rand.Rand

	// DrawStream creates an independent generator for one resampling draw.
	// Streams for distinct draw indices are non-overlapping, so permutation
	// and bootstrap results are reproducible regardless of worker count or
	// draw completion order.
	DrawStream(name string, baseSeed int64, draw int) *rand.Rand
}
