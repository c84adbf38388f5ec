package randutil

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, b := New(42), New(42)
	for range 100 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestRestoreContinuesSequence(t *testing.T) {
	t.Parallel()

	src := NewSource(7)
	rng := rand.New(src)
	for range 10 {
		rng.IntN(52)
	}
	state, err := src.MarshalBinary()
	require.NoError(t, err)

	restored, err := Restore(state)
	require.NoError(t, err)
	resumed := rand.New(restored)
	for range 100 {
		assert.Equal(t, rng.Uint64(), resumed.Uint64())
	}

	_, err = Restore([]byte("garbage"))
	require.Error(t, err)
}

func TestSplitGivesIndependentStreams(t *testing.T) {
	t.Parallel()

	master := New(3)
	a := New(Split(master))
	b := New(Split(master))
	assert.NotEqual(t, a.Uint64(), b.Uint64())
}
