package solver

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/lox/pushfold/poker"
)

// StrategyTable is a 13x13 grid of values, one per starting-hand category.
// It is addressed either by HoleIndex or by a concrete pair of cards, which is
// canonicalised first. The zero value is a table of zeros.
type StrategyTable struct {
	cells [poker.NumRanks][poker.NumRanks]float64
}

// NewStrategyTable returns a table with every cell set to initial.
func NewStrategyTable(initial float64) *StrategyTable {
	t := &StrategyTable{}
	t.Fill(initial)
	return t
}

// At reads the cell for a canonical index.
func (t *StrategyTable) At(idx poker.HoleIndex) float64 {
	return t.cells[idx.Row][idx.Col]
}

// SetAt writes the cell for a canonical index.
func (t *StrategyTable) SetAt(idx poker.HoleIndex, v float64) {
	t.cells[idx.Row][idx.Col] = v
}

// Hand reads the cell the two hole cards belong to.
func (t *StrategyTable) Hand(c1, c2 poker.Card) float64 {
	return t.At(poker.Canonicalize(c1, c2))
}

// SetHand writes the cell the two hole cards belong to.
func (t *StrategyTable) SetHand(c1, c2 poker.Card, v float64) {
	t.SetAt(poker.Canonicalize(c1, c2), v)
}

// Get reads a cell from raw ints. With specific set, a and b are card ids
// (1..52) and are canonicalised; otherwise they are row and column.
func (t *StrategyTable) Get(a, b int, specific bool) float64 {
	if specific {
		return t.Hand(poker.Card(a), poker.Card(b))
	}
	return t.cells[a][b]
}

// Set is the write counterpart of Get.
func (t *StrategyTable) Set(a, b int, v float64, specific bool) {
	if specific {
		t.SetHand(poker.Card(a), poker.Card(b), v)
		return
	}
	t.cells[a][b] = v
}

// Fill sets every cell to v.
func (t *StrategyTable) Fill(v float64) {
	for r := range t.cells {
		for c := range t.cells[r] {
			t.cells[r][c] = v
		}
	}
}

// Clone returns an independent copy.
func (t *StrategyTable) Clone() *StrategyTable {
	out := *t
	return &out
}

// Each visits every cell in row-major order.
func (t *StrategyTable) Each(fn func(idx poker.HoleIndex, v float64)) {
	for r := range t.cells {
		for c := range t.cells[r] {
			fn(poker.HoleIndex{Row: uint8(r), Col: uint8(c)}, t.cells[r][c])
		}
	}
}

// Add sums other into t cell by cell.
func (t *StrategyTable) Add(other *StrategyTable) {
	for r := range t.cells {
		for c := range t.cells[r] {
			t.cells[r][c] += other.cells[r][c]
		}
	}
}

// MeanAbsDiff is the mean absolute difference between two tables.
func (t *StrategyTable) MeanAbsDiff(other *StrategyTable) float64 {
	var sum float64
	for r := range t.cells {
		for c := range t.cells[r] {
			sum += math.Abs(t.cells[r][c] - other.cells[r][c])
		}
	}
	return sum / poker.NumHoleIndices
}

// Range returns the fraction of the 1,326 starting hands whose cell value is
// taken, weighting each category by its combo count. For a push table this
// is how often the hand is played.
func (t *StrategyTable) Range() float64 {
	var sum float64
	t.Each(func(idx poker.HoleIndex, v float64) {
		sum += v * float64(idx.Combos())
	})
	return sum / 1326
}

// Equal reports whether both tables hold identical values.
func (t *StrategyTable) Equal(other *StrategyTable) bool {
	return t.cells == other.cells
}

// MarshalJSON encodes the table as a 13x13 array indexed [row][col].
func (t *StrategyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.cells)
}

// UnmarshalJSON requires exactly 13 rows of 13 finite values.
func (t *StrategyTable) UnmarshalJSON(data []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != poker.NumRanks {
		return fmt.Errorf("strategy table has %d rows, want %d", len(rows), poker.NumRanks)
	}
	for r, row := range rows {
		if len(row) != poker.NumRanks {
			return fmt.Errorf("strategy table row %d has %d columns, want %d", r, len(row), poker.NumRanks)
		}
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("strategy table cell [%d][%d] is not finite", r, c)
			}
			t.cells[r][c] = v
		}
	}
	return nil
}
