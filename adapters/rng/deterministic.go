// Package rng implements the RNG port with deterministic, per-draw seeded
// streams.
package rng

import (
	"encoding/binary"
	"hash/fnv"
	"math/rand"
)

// Deterministic derives independent rand sources by hashing the operation
// name, base seed, and draw index together. Two distinct draws of the same
// operation never share a source.
type Deterministic struct{}

// NewDeterministic creates the deterministic RNG adapter
func NewDeterministic() *Deterministic {
	return &Deterministic{}
}

// SeededStream returns a generator for a named operation
func (d *Deterministic) SeededStream(name string, seed int64) *rand.Rand {
	return rand.New(rand.NewSource(deriveSeed(name, seed, -1)))
}

// DrawStream returns an independent generator for one draw of an operation
func (d *Deterministic) DrawStream(name string, baseSeed int64, draw int) *rand.Rand {
	return rand.New(rand.NewSource(deriveSeed(name, baseSeed, draw)))
}

func deriveSeed(name string, seed int64, draw int) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))

	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(int64(draw)))
	h.Write(buf[:])

	return int64(h.Sum64())
}
