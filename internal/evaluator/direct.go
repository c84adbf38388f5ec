package evaluator

import (
	"fmt"

	ph "github.com/paulhankin/poker"

	"github.com/lox/pushfold/poker"
)

// Direct ranks hands with github.com/paulhankin/poker instead of the lookup
// asset. It is slower than HandRanks but needs no 130MB file, which makes it
// the ranker of choice for tests and quick experiments.
type Direct struct{}

// phCards maps our 1..52 encoding onto the library's cards. Index 0 is unused.
var phCards = func() [poker.NumCards + 1]ph.Card {
	var out [poker.NumCards + 1]ph.Card
	suits := [4]ph.Suit{ph.Club, ph.Diamond, ph.Heart, ph.Spade}
	for c := poker.Card(1); c <= poker.NumCards; c++ {
		// The library numbers ranks 1..13 with the ace low.
		rank := ph.Rank(c.Rank() + 2)
		if c.Rank() == poker.Ace {
			rank = 1
		}
		card, err := ph.MakeCard(suits[c.Suit()], rank)
		if err != nil {
			panic(fmt.Sprintf("evaluator: map card %s: %v", c, err))
		}
		out[c] = card
	}
	return out
}()

// Rank7 implements Ranker.
func (Direct) Rank7(cards *[7]poker.Card) int32 {
	var hand [7]ph.Card
	for i, c := range cards {
		hand[i] = phCards[c]
	}
	return int32(ph.Eval7(&hand))
}

// Describe names the best five-card hand, e.g. "four of a kind".
func Describe(cards []poker.Card) (string, error) {
	hand := make([]ph.Card, len(cards))
	for i, c := range cards {
		if !c.Valid() {
			return "", fmt.Errorf("invalid card %d", c)
		}
		hand[i] = phCards[c]
	}
	return ph.Describe(hand)
}
