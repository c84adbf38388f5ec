package poker

import (
	rand "math/rand/v2"
)

// Deck represents a standard 52-card deck
type Deck struct {
	cards [NumCards]Card // Fixed size array
	rng   *rand.Rand     // Random source for deterministic dealing
}

// NewDeck creates a deck in encoding order that deals from rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	for i := range d.cards {
		d.cards[i] = Card(i + 1)
	}
	return d
}

// DealInto fills dst with len(dst) distinct cards drawn uniformly without
// replacement. Only the first len(dst) positions are shuffled (partial
// Fisher-Yates), so dealing 9 cards costs 9 swaps instead of 51. The swaps are
// undone afterwards: the deck is always in encoding order between calls, so
// the dealt sequence depends on nothing but the rng state.
func (d *Deck) DealInto(dst []Card) {
	n := len(dst)
	if n > NumCards {
		panic("poker: cannot deal more than 52 cards")
	}
	var swaps [NumCards]uint8
	for i := 0; i < n; i++ {
		j := i + d.rng.IntN(NumCards-i)
		swaps[i] = uint8(j)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
		dst[i] = d.cards[i]
	}
	for i := n - 1; i >= 0; i-- {
		j := swaps[i]
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal returns n freshly drawn cards.
func (d *Deck) Deal(n int) []Card {
	out := make([]Card, n)
	d.DealInto(out)
	return out
}

// HeadsUpDeal is one push/fold hand: two hole cards each and a full board.
type HeadsUpDeal struct {
	Pusher [2]Card
	Caller [2]Card
	Board  [5]Card
}

// DealHeadsUp draws 9 distinct cards into deal without allocating.
func (d *Deck) DealHeadsUp(deal *HeadsUpDeal) {
	var buf [9]Card
	d.DealInto(buf[:])
	deal.Pusher = [2]Card{buf[0], buf[1]}
	deal.Caller = [2]Card{buf[2], buf[3]}
	copy(deal.Board[:], buf[4:])
}
