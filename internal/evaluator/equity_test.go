package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pushfold/poker"
)

func hole(t *testing.T, s string) [2]poker.Card {
	t.Helper()
	cards, err := poker.ParseCards(s)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	return [2]poker.Card{cards[0], cards[1]}
}

func TestEquityAcesAgainstRandom(t *testing.T) {
	t.Parallel()

	eq, err := Equity(context.Background(), Direct{}, hole(t, "AsAh"), RandomRange, EquityConfig{
		Samples: 40000,
		Workers: 4,
		Seed:    7,
	})
	require.NoError(t, err)
	// Exact equity of aces against a random hand is 85.2%.
	assert.InDelta(t, 0.852, eq, 0.01)
}

func TestEquityWeightsRange(t *testing.T) {
	t.Parallel()

	kings := RangeFunc(func(c1, c2 poker.Card) float64 {
		if c1.Rank() == 11 && c2.Rank() == 11 {
			return 1
		}
		return 0
	})
	eq, err := Equity(context.Background(), Direct{}, hole(t, "AsAh"), kings, EquityConfig{
		Samples: 300000,
		Workers: 4,
		Seed:    11,
	})
	require.NoError(t, err)
	// Aces hold roughly 82% against kings.
	assert.InDelta(t, 0.82, eq, 0.05)

	// A range with no weight anywhere cannot be estimated.
	none := RangeFunc(func(poker.Card, poker.Card) float64 { return 0 })
	_, err = Equity(context.Background(), Direct{}, hole(t, "AsAh"), none, EquityConfig{Samples: 1000, Workers: 2, Seed: 1})
	require.Error(t, err)
}

func TestEquityDeterministic(t *testing.T) {
	t.Parallel()

	cfg := EquityConfig{Samples: 5000, Workers: 3, Seed: 99}
	a, err := Equity(context.Background(), Direct{}, hole(t, "7c2d"), RandomRange, cfg)
	require.NoError(t, err)
	b, err := Equity(context.Background(), Direct{}, hole(t, "7c2d"), RandomRange, cfg)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Less(t, a, 0.4)
}

func TestEquityValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, err := Equity(ctx, nil, hole(t, "AsKs"), RandomRange, EquityConfig{Samples: 10})
	require.Error(t, err)
	_, err = Equity(ctx, Direct{}, [2]poker.Card{1, 1}, RandomRange, EquityConfig{Samples: 10})
	require.Error(t, err)
	_, err = Equity(ctx, Direct{}, hole(t, "AsKs"), RandomRange, EquityConfig{})
	require.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Equity(cancelled, Direct{}, hole(t, "AsKs"), RandomRange, EquityConfig{Samples: 10, Workers: 2})
	require.ErrorIs(t, err, context.Canceled)
}
