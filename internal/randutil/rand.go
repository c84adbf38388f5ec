// Package randutil derives reproducible math/rand/v2 generators from int64 seeds.
package randutil

import (
	"fmt"
	rand "math/rand/v2"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// NewSource returns the PCG source behind New. Keep hold of it when the
// generator state has to be checkpointed: *rand.PCG marshals to 20 bytes.
func NewSource(seed int64) *rand.PCG {
	u := uint64(seed)
	return rand.NewPCG(mix(u), mix(u+goldenRatio64))
}

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	return rand.New(NewSource(seed))
}

// Restore rebuilds a source from MarshalBinary output.
func Restore(state []byte) (*rand.PCG, error) {
	src := &rand.PCG{}
	if err := src.UnmarshalBinary(state); err != nil {
		return nil, fmt.Errorf("restore rng state: %w", err)
	}
	return src, nil
}

// Split draws a child seed from rng, for handing independent streams to workers.
func Split(rng *rand.Rand) int64 {
	return int64(rng.Uint64())
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
