package poker

import (
	"fmt"
	"strings"
)

// HoleIndex is the canonical 13x13 category of a two-card starting hand.
//
//	Row == Col  pocket pair
//	Row >  Col  suited, higher rank first
//	Row <  Col  unsuited, lower rank first
//
// Suit identities are discarded: Ac2d and Ah2s share a cell.
type HoleIndex struct {
	Row uint8
	Col uint8
}

// NumHoleIndices is the number of canonical starting-hand categories.
const NumHoleIndices = NumRanks * NumRanks

// Canonicalize maps a specific pair of hole cards to its category. The cards
// must be valid and distinct; violating that is a programming error and panics.
func Canonicalize(c1, c2 Card) HoleIndex {
	if c1 == c2 || !c1.Valid() || !c2.Valid() {
		panic(fmt.Sprintf("poker: invalid hole cards %d, %d", c1, c2))
	}
	v1, v2 := c1.Rank(), c2.Rank()
	if v1 == v2 {
		return HoleIndex{Row: v1, Col: v1}
	}
	hi, lo := max(v1, v2), min(v1, v2)
	if c1.Suit() == c2.Suit() {
		return HoleIndex{Row: hi, Col: lo}
	}
	return HoleIndex{Row: lo, Col: hi}
}

// IsPair reports whether the category is a pocket pair.
func (h HoleIndex) IsPair() bool { return h.Row == h.Col }

// IsSuited reports whether the category holds suited hands.
func (h HoleIndex) IsSuited() bool { return h.Row > h.Col }

// IsOffsuit reports whether the category holds unsuited, unpaired hands.
func (h HoleIndex) IsOffsuit() bool { return h.Row < h.Col }

// Valid reports whether both coordinates are inside the grid.
func (h HoleIndex) Valid() bool {
	return h.Row < NumRanks && h.Col < NumRanks
}

// Combos returns how many specific card pairs collapse into this category.
func (h HoleIndex) Combos() int {
	switch {
	case h.IsPair():
		return 6
	case h.IsSuited():
		return 4
	default:
		return 12
	}
}

// Example returns one concrete holding in the category.
func (h HoleIndex) Example() (Card, Card) {
	switch {
	case h.IsPair():
		return NewCard(h.Row, 0), NewCard(h.Row, 1)
	case h.IsSuited():
		return NewCard(h.HighRank(), 0), NewCard(h.LowRank(), 0)
	default:
		return NewCard(h.HighRank(), 0), NewCard(h.LowRank(), 1)
	}
}

// HighRank returns the higher of the two ranks.
func (h HoleIndex) HighRank() uint8 { return max(h.Row, h.Col) }

// LowRank returns the lower of the two ranks.
func (h HoleIndex) LowRank() uint8 { return min(h.Row, h.Col) }

// String returns the conventional name: "AA", "AKs" or "AKo".
func (h HoleIndex) String() string {
	if !h.Valid() {
		return "??"
	}
	name := []byte{RankChar(h.HighRank()), RankChar(h.LowRank())}
	switch {
	case h.IsSuited():
		name = append(name, 's')
	case h.IsOffsuit():
		name = append(name, 'o')
	}
	return string(name)
}

// ParseHoleIndex parses "AA", "AKs", "AKo" (case-insensitive). Unpaired hands
// without a suffix are rejected since they name two categories.
func ParseHoleIndex(s string) (HoleIndex, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || len(s) > 3 {
		return HoleIndex{}, fmt.Errorf("invalid hand %q", s)
	}
	r1, err := parseRank(s[0])
	if err != nil {
		return HoleIndex{}, fmt.Errorf("invalid hand %q: %w", s, err)
	}
	r2, err := parseRank(s[1])
	if err != nil {
		return HoleIndex{}, fmt.Errorf("invalid hand %q: %w", s, err)
	}
	hi, lo := max(r1, r2), min(r1, r2)
	if hi == lo {
		if len(s) == 3 {
			return HoleIndex{}, fmt.Errorf("invalid hand %q: pairs take no suffix", s)
		}
		return HoleIndex{Row: hi, Col: hi}, nil
	}
	if len(s) != 3 {
		return HoleIndex{}, fmt.Errorf("invalid hand %q: missing s/o suffix", s)
	}
	switch lower(s[2]) {
	case 's':
		return HoleIndex{Row: hi, Col: lo}, nil
	case 'o':
		return HoleIndex{Row: lo, Col: hi}, nil
	default:
		return HoleIndex{}, fmt.Errorf("invalid hand %q: unknown suffix '%c'", s, s[2])
	}
}

// AllHoleIndices returns the 169 categories in row-major order.
func AllHoleIndices() []HoleIndex {
	out := make([]HoleIndex, 0, NumHoleIndices)
	for r := range uint8(NumRanks) {
		for c := range uint8(NumRanks) {
			out = append(out, HoleIndex{Row: r, Col: c})
		}
	}
	return out
}
