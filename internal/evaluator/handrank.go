// Package evaluator scores 7-card hands for showdowns.
//
// The primary implementation walks a precomputed two-plus-two style lookup
// table: each card advances an index into the table and the value reached after
// the seventh card is the hand's strength. Higher values are stronger hands and
// equal values tie.
package evaluator

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lox/pushfold/poker"
)

const (
	// HandRanksSize is the number of int32 entries in the full lookup asset.
	HandRanksSize = 32487834

	// DefaultHandRanksFile is the asset's conventional file name.
	DefaultHandRanksFile = "handranks.dat"

	// rootIndex is where every 7-card walk starts.
	rootIndex = 53
)

// Ranker scores a 7-card hand. Higher is stronger; equal values are a tie.
// Implementations must be safe for concurrent use and must not allocate.
type Ranker interface {
	Rank7(cards *[7]poker.Card) int32
}

// HandRanks is the chained lookup table. It is never mutated after loading and
// is shared by reference between every caller.
type HandRanks []int32

// NewHandRanks wraps an in-memory table, typically a small synthetic one.
func NewHandRanks(values []int32) HandRanks {
	return HandRanks(values)
}

// Rank7 walks the table over the seven cards. Cards are not re-validated: the
// caller guarantees seven distinct cards in 1..52.
func (h HandRanks) Rank7(cards *[7]poker.Card) int32 {
	idx := int32(rootIndex)
	idx = h[idx+int32(cards[0])]
	idx = h[idx+int32(cards[1])]
	idx = h[idx+int32(cards[2])]
	idx = h[idx+int32(cards[3])]
	idx = h[idx+int32(cards[4])]
	idx = h[idx+int32(cards[5])]
	return h[idx+int32(cards[6])]
}

// ErrTruncated reports an asset shorter than HandRanksSize entries.
var ErrTruncated = errors.New("hand rank table truncated")

// LoadHandRanks reads the full lookup asset from disk.
func LoadHandRanks(path string) (HandRanks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hand ranks: %w", err)
	}
	defer f.Close()

	table, err := ReadHandRanks(f, HandRanksSize)
	if err != nil {
		return nil, fmt.Errorf("read hand ranks %s: %w", path, err)
	}
	return table, nil
}

// ReadHandRanks decodes exactly n little-endian int32 values from r. Input
// shorter than that fails with ErrTruncated; trailing bytes are an error too
// since they mean the file is not the asset we expect.
func ReadHandRanks(r io.Reader, n int) (HandRanks, error) {
	table := make(HandRanks, n)
	br := bufio.NewReaderSize(r, 1<<20)
	var chunk [4096]byte
	for i := 0; i < n; {
		want := min(len(chunk)/4, n-i) * 4
		if _, err := io.ReadFull(br, chunk[:want]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: got %d of %d entries", ErrTruncated, i, n)
			}
			return nil, err
		}
		for off := 0; off < want; off += 4 {
			table[i] = int32(binary.LittleEndian.Uint32(chunk[off:]))
			i++
		}
	}
	if _, err := br.ReadByte(); err == nil {
		return nil, fmt.Errorf("hand rank table longer than %d entries", n)
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}
	return table, nil
}

// WriteHandRanks encodes the table in the on-disk layout read by ReadHandRanks.
func WriteHandRanks(w io.Writer, h HandRanks) error {
	bw := bufio.NewWriterSize(w, 1<<20)
	var buf [4]byte
	for _, v := range h {
		binary.LittleEndian.PutUint32(buf[:], uint32(v))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Outcome is a showdown result from the pusher's point of view.
type Outcome uint8

const (
	Win Outcome = iota
	Lose
	Tie
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Lose:
		return "lose"
	case Tie:
		return "tie"
	default:
		return "unknown"
	}
}

// Compare turns two strengths into an outcome for the first hand.
func Compare(a, b int32) Outcome {
	switch {
	case a > b:
		return Win
	case a < b:
		return Lose
	default:
		return Tie
	}
}

// Showdown ranks both players' hole cards against the shared board.
func Showdown(r Ranker, pusher, caller [2]poker.Card, board *[5]poker.Card) Outcome {
	var hand [7]poker.Card
	copy(hand[:5], board[:])
	hand[5], hand[6] = pusher[0], pusher[1]
	a := r.Rank7(&hand)
	hand[5], hand[6] = caller[0], caller[1]
	b := r.Rank7(&hand)
	return Compare(a, b)
}
