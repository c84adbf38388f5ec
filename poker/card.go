package poker

import (
	"fmt"
	"strings"
)

// Card is a playing card numbered 1..52, rank-major and suit-minor:
// 1=2c, 2=2d, 3=2h, 4=2s, 5=3c, ..., 49=Ac, 50=Ad, 51=Ah, 52=As.
// The zero value is not a card.
type Card uint8

// Ranks, 0 is the deuce and 12 the ace.
const (
	Two uint8 = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Suits in encoding order.
const (
	Clubs uint8 = iota
	Diamonds
	Hearts
	Spades
)

const (
	// NumCards is the size of the deck.
	NumCards = 52
	// NumRanks is the number of distinct ranks.
	NumRanks = 13

	rankChars = "23456789TJQKA"
	suitChars = "cdhs"
)

// NewCard builds a card from a rank (0..12) and suit (0..3).
func NewCard(rank, suit uint8) Card {
	return Card(rank*4 + suit + 1)
}

// Rank returns the card's rank, 0 (deuce) through 12 (ace).
func (c Card) Rank() uint8 {
	return uint8(c-1) / 4
}

// Suit returns the card's suit, 0 (clubs) through 3 (spades).
func (c Card) Suit() uint8 {
	return uint8(c-1) % 4
}

// Valid reports whether c is one of the 52 cards.
func (c Card) Valid() bool {
	return c >= 1 && c <= NumCards
}

// String returns the two character notation, e.g. "As".
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{rankChars[c.Rank()], suitChars[c.Suit()]})
}

// RankChar returns the rank character for r, e.g. 'A'.
func RankChar(r uint8) byte {
	if r >= NumRanks {
		return '?'
	}
	return rankChars[r]
}

// ParseCard parses two character notation such as "As" or "td".
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card %q: must be 2 characters", s)
	}
	rank, err := parseRank(s[0])
	if err != nil {
		return 0, fmt.Errorf("invalid card %q: %w", s, err)
	}
	suit := strings.IndexByte(suitChars, lower(s[1]))
	if suit < 0 {
		return 0, fmt.Errorf("invalid card %q: unknown suit '%c'", s, s[1])
	}
	return NewCard(rank, uint8(suit)), nil
}

// ParseCards parses concatenated card notation like "AsKh2c", ignoring spaces.
// Duplicate cards are rejected.
func ParseCards(s string) ([]Card, error) {
	s = strings.ReplaceAll(s, " ", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}
	cards := make([]Card, 0, len(s)/2)
	var seen uint64
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		if seen&(1<<c) != 0 {
			return nil, fmt.Errorf("duplicate card %s", c)
		}
		seen |= 1 << c
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

func parseRank(b byte) (uint8, error) {
	i := strings.IndexByte(rankChars, upper(b))
	if i < 0 {
		return 0, fmt.Errorf("unknown rank '%c'", b)
	}
	return uint8(i), nil
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
