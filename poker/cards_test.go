package poker

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		card Card
		want string
	}{
		{1, "2c"},
		{2, "2d"},
		{3, "2h"},
		{4, "2s"},
		{5, "3c"},
		{7, "3h"},
		{48, "Ks"},
		{49, "Ac"},
		{50, "Ad"},
		{51, "Ah"},
		{52, "As"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.card.String())
			parsed, err := ParseCard(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.card, parsed)
			assert.Equal(t, tt.card, NewCard(tt.card.Rank(), tt.card.Suit()))
		})
	}
}

func TestCardRankAndSuit(t *testing.T) {
	t.Parallel()

	aceSpades := NewCard(Ace, Spades)
	assert.Equal(t, Card(52), aceSpades)
	assert.Equal(t, Ace, aceSpades.Rank())
	assert.Equal(t, Spades, aceSpades.Suit())

	twoClubs := NewCard(Two, Clubs)
	assert.Equal(t, Card(1), twoClubs)
	assert.True(t, twoClubs.Valid())
	assert.False(t, Card(0).Valid())
	assert.False(t, Card(53).Valid())
}

func TestParseCard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Card
		wantErr bool
	}{
		{"ace of spades", "As", NewCard(Ace, Spades), false},
		{"lowercase rank", "td", NewCard(Ten, Diamonds), false},
		{"uppercase suit", "9H", NewCard(Nine, Hearts), false},
		{"bad rank", "1s", 0, true},
		{"bad suit", "Ax", 0, true},
		{"too long", "Asd", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCardsRejectsDuplicates(t *testing.T) {
	t.Parallel()

	cards, err := ParseCards("As Kh 2c")
	require.NoError(t, err)
	assert.Equal(t, []Card{52, 47, 1}, cards)

	_, err = ParseCards("AsAs")
	require.Error(t, err)

	_, err = ParseCards("AsK")
	require.Error(t, err)
}

func TestDeckDealsDistinctCards(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(1, 2)))
	var deal HeadsUpDeal
	for range 1000 {
		d.DealHeadsUp(&deal)
		var seen uint64
		all := append(append(append([]Card{}, deal.Pusher[:]...), deal.Caller[:]...), deal.Board[:]...)
		require.Len(t, all, 9)
		for _, c := range all {
			require.True(t, c.Valid(), "invalid card %d", c)
			require.Zero(t, seen&(1<<c), "duplicate card %s", c)
			seen |= 1 << c
		}
	}
}

func TestDeckDealIsDeterministic(t *testing.T) {
	t.Parallel()

	a := NewDeck(rand.New(rand.NewPCG(7, 7)))
	b := NewDeck(rand.New(rand.NewPCG(7, 7)))
	for range 50 {
		assert.Equal(t, a.Deal(9), b.Deal(9))
	}
}

func TestDeckDealCoversWholeDeck(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(3, 4)))
	var counts [NumCards + 1]int
	for range 5000 {
		for _, c := range d.Deal(9) {
			counts[c]++
		}
	}
	// 45000 draws over 52 cards: each card expected ~865 times.
	for c := 1; c <= NumCards; c++ {
		assert.InDelta(t, 865, counts[c], 200, "card %s drawn %d times", Card(c), counts[c])
	}
}

func TestDeckDealAll(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(5, 6)))
	cards := d.Deal(NumCards)
	var seen uint64
	for _, c := range cards {
		seen |= 1 << c
	}
	assert.Equal(t, uint64(1<<53-2), seen)
	assert.Panics(t, func() { d.Deal(NumCards + 1) })
}

func TestDeckRestoresOrderBetweenDeals(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(9, 9)))
	d.Deal(9)
	d.Deal(NumCards)
	for i, c := range d.cards {
		require.Equal(t, Card(i+1), c)
	}
}
