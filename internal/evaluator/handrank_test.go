package evaluator

import (
	"bytes"
	"math/bits"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pushfold/poker"
)

// tableBuilder lays out a small chained table the way the real asset is
// organised: one 53-slot node per set of cards seen so far, so the walk result
// does not depend on the order cards are fed in.
type tableBuilder struct {
	values []int32
	nodes  map[uint64]int32
}

func newTableBuilder() *tableBuilder {
	return &tableBuilder{
		values: make([]int32, rootIndex+53),
		nodes:  map[uint64]int32{0: rootIndex},
	}
}

func (b *tableBuilder) node(set uint64) int32 {
	if base, ok := b.nodes[set]; ok {
		return base
	}
	base := int32(len(b.values))
	b.values = append(b.values, make([]int32, 53)...)
	b.nodes[set] = base
	return base
}

func (b *tableBuilder) add(hand [7]poker.Card, score int32) {
	for mask := 0; mask < 1<<7; mask++ {
		if bits.OnesCount(uint(mask)) == 7 {
			continue
		}
		var set uint64
		for i := range 7 {
			if mask&(1<<i) != 0 {
				set |= 1 << hand[i]
			}
		}
		base := b.node(set)
		last := bits.OnesCount(uint(mask)) == 6
		for i := range 7 {
			if mask&(1<<i) != 0 {
				continue
			}
			c := hand[i]
			if last {
				b.values[base+int32(c)] = score
			} else {
				b.values[base+int32(c)] = b.node(set | 1<<c)
			}
		}
	}
}

func (b *tableBuilder) build() HandRanks {
	return NewHandRanks(append([]int32(nil), b.values...))
}

func hand7(t *testing.T, s string) [7]poker.Card {
	t.Helper()
	cards, err := poker.ParseCards(s)
	require.NoError(t, err)
	require.Len(t, cards, 7)
	var out [7]poker.Card
	copy(out[:], cards)
	return out
}

func syntheticTable(t *testing.T, hands ...string) (HandRanks, [][7]poker.Card) {
	t.Helper()
	b := newTableBuilder()
	out := make([][7]poker.Card, 0, len(hands))
	for _, s := range hands {
		h := hand7(t, s)
		b.add(h, Direct{}.Rank7(&h))
		out = append(out, h)
	}
	return b.build(), out
}

func TestHandRanksWalksChain(t *testing.T) {
	t.Parallel()

	// Hand-built chain: root -> 100 -> 200 -> ... for cards 1..7.
	values := make([]int32, 800)
	values[rootIndex+1] = 100
	values[100+2] = 200
	values[200+3] = 300
	values[300+4] = 400
	values[400+5] = 500
	values[500+6] = 600
	values[600+7] = 4242
	table := NewHandRanks(values)

	cards := [7]poker.Card{1, 2, 3, 4, 5, 6, 7}
	assert.Equal(t, int32(4242), table.Rank7(&cards))
}

func TestHandRanksDeterministic(t *testing.T) {
	t.Parallel()

	table, hands := syntheticTable(t, "AsAhAdAc2h3d4s")
	first := table.Rank7(&hands[0])
	for range 10 {
		assert.Equal(t, first, table.Rank7(&hands[0]))
	}
}

func TestHandRanksOrderIndependent(t *testing.T) {
	t.Parallel()

	table, hands := syntheticTable(t, "7h7s7c7dKc2h9s")
	want := table.Rank7(&hands[0])

	count := 0
	permute(hands[0], func(p [7]poker.Card) {
		count++
		require.Equal(t, want, table.Rank7(&p), "permutation %v", p)
	})
	assert.Equal(t, 5040, count)
}

func TestHandRanksKnownOrdering(t *testing.T) {
	t.Parallel()

	// Shared board 7c7d2h9sKc.
	table, hands := syntheticTable(t,
		"7c7d2h9sKc7h7s", // quads
		"7c7d2h9sKc2c2d", // full house
		"7c7d2h9sKcKd4s", // two pair
		"7c7d2h9sKcAhQh", // one pair
	)
	quads := table.Rank7(&hands[0])
	fullHouse := table.Rank7(&hands[1])
	twoPair := table.Rank7(&hands[2])
	pair := table.Rank7(&hands[3])

	assert.Greater(t, quads, fullHouse)
	assert.Greater(t, fullHouse, twoPair)
	assert.Greater(t, twoPair, pair)
}

func TestShowdownOutcomes(t *testing.T) {
	t.Parallel()

	table, _ := syntheticTable(t,
		"7c7d2h9sKc7h7s",
		"7c7d2h9sKcAhQh",
		"7c7d2h9sKcAdQd",
	)
	board := [5]poker.Card{}
	copy(board[:], poker.MustParseCards("7c7d2h9sKc"))
	quads := [2]poker.Card(poker.MustParseCards("7h7s"))
	aqHearts := [2]poker.Card(poker.MustParseCards("AhQh"))
	aqDiamonds := [2]poker.Card(poker.MustParseCards("AdQd"))

	assert.Equal(t, Win, Showdown(table, quads, aqHearts, &board))
	assert.Equal(t, Lose, Showdown(table, aqHearts, quads, &board))
	assert.Equal(t, Tie, Showdown(table, aqHearts, aqDiamonds, &board))
}

func TestCompare(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Win, Compare(10, 9))
	assert.Equal(t, Lose, Compare(9, 10))
	assert.Equal(t, Tie, Compare(10, 10))
	assert.Equal(t, "tie", Tie.String())
}

func TestReadHandRanksRoundTrip(t *testing.T) {
	t.Parallel()

	values := HandRanks{0, 1, -1, 53, 1 << 30, 7}
	var buf bytes.Buffer
	require.NoError(t, WriteHandRanks(&buf, values))
	assert.Equal(t, 4*len(values), buf.Len())

	got, err := ReadHandRanks(bytes.NewReader(buf.Bytes()), len(values))
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestReadHandRanksRejectsTruncation(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteHandRanks(&buf, make(HandRanks, 5)))

	_, err := ReadHandRanks(bytes.NewReader(buf.Bytes()), 6)
	require.ErrorIs(t, err, ErrTruncated)

	// A partial trailing entry is truncation as well.
	_, err = ReadHandRanks(bytes.NewReader(buf.Bytes()[:buf.Len()-1]), 5)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReadHandRanksRejectsTrailingData(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteHandRanks(&buf, make(HandRanks, 5)))
	_, err := ReadHandRanks(bytes.NewReader(buf.Bytes()), 4)
	require.Error(t, err)
}

func TestLoadHandRanksMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadHandRanks(filepath.Join(t.TempDir(), DefaultHandRanksFile))
	require.Error(t, err)
}

func permute(cards [7]poker.Card, fn func([7]poker.Card)) {
	var rec func(k int)
	rec = func(k int) {
		if k == len(cards) {
			fn(cards)
			return
		}
		for i := k; i < len(cards); i++ {
			cards[k], cards[i] = cards[i], cards[k]
			rec(k + 1)
			cards[k], cards[i] = cards[i], cards[k]
		}
	}
	rec(0)
}
