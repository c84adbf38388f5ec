package solver

import (
	"github.com/lox/pushfold/poker"
)

// RegretUpdateOptions configures how regrets and strategy sums are accumulated.
type RegretUpdateOptions struct {
	ClampNegativeRegrets bool
	LinearAveraging      bool
}

func (v Variant) updateOptions() RegretUpdateOptions {
	if v == VariantCFRPlus {
		return RegretUpdateOptions{ClampNegativeRegrets: true, LinearAveraging: true}
	}
	return RegretUpdateOptions{}
}

// iterationWeight is the average-strategy weight of iteration iter (1-based).
func (o RegretUpdateOptions) iterationWeight(iter int64) float64 {
	if !o.LinearAveraging {
		return 1
	}
	if iter <= 0 {
		iter = 1
	}
	return float64(iter)
}

// RegretMatch turns accumulated push and fold regret into a push probability:
// positive regrets normalised, or fallback when neither action has any.
func RegretMatch(pushRegret, foldRegret, fallback float64) float64 {
	push := max(pushRegret, 0)
	fold := max(foldRegret, 0)
	total := push + fold
	if total <= 0 {
		return fallback
	}
	return push / total
}

// playerState is the per-category training state of one role. The tables are
// only touched by the trainer goroutine, or by a single worker for the
// private deltas used in parallel rounds.
type playerState struct {
	current    *StrategyTable // regret-matched push probability
	pushRegret *StrategyTable
	foldRegret *StrategyTable
	pushWeight *StrategyTable // sum of weight * push probability
	weight     *StrategyTable // sum of weight
	visits     [poker.NumRanks][poker.NumRanks]int64
}

func newPlayerState(initial float64) *playerState {
	return &playerState{
		current:    NewStrategyTable(initial),
		pushRegret: &StrategyTable{},
		foldRegret: &StrategyTable{},
		pushWeight: &StrategyTable{},
		weight:     &StrategyTable{},
	}
}

// newDelta returns an accumulator with no current table, for worker-private
// sums that are merged after a round.
func newDelta() *playerState {
	return &playerState{
		pushRegret: &StrategyTable{},
		foldRegret: &StrategyTable{},
		pushWeight: &StrategyTable{},
		weight:     &StrategyTable{},
	}
}

// accumulate records one visit of idx: instantaneous regrets for both actions
// and the push probability p played with average-strategy weight w.
func (s *playerState) accumulate(idx poker.HoleIndex, rPush, rFold, p, w float64) {
	r, c := idx.Row, idx.Col
	s.pushRegret.cells[r][c] += rPush
	s.foldRegret.cells[r][c] += rFold
	s.pushWeight.cells[r][c] += w * p
	s.weight.cells[r][c] += w
	s.visits[r][c]++
}

// rematch recomputes the current push probability of idx from its regrets,
// flooring them at zero first under CFR+.
func (s *playerState) rematch(idx poker.HoleIndex, opts RegretUpdateOptions, fallback float64) {
	r, c := idx.Row, idx.Col
	if opts.ClampNegativeRegrets {
		s.pushRegret.cells[r][c] = max(s.pushRegret.cells[r][c], 0)
		s.foldRegret.cells[r][c] = max(s.foldRegret.cells[r][c], 0)
	}
	s.current.cells[r][c] = RegretMatch(s.pushRegret.cells[r][c], s.foldRegret.cells[r][c], fallback)
}

func (s *playerState) rematchAll(opts RegretUpdateOptions, fallback float64) {
	for _, idx := range poker.AllHoleIndices() {
		s.rematch(idx, opts, fallback)
	}
}

// merge adds a worker delta into s. The current table is left alone.
func (s *playerState) merge(d *playerState) {
	s.pushRegret.Add(d.pushRegret)
	s.foldRegret.Add(d.foldRegret)
	s.pushWeight.Add(d.pushWeight)
	s.weight.Add(d.weight)
	for r := range s.visits {
		for c := range s.visits[r] {
			s.visits[r][c] += d.visits[r][c]
		}
	}
}

func (s *playerState) reset() {
	s.pushRegret.Fill(0)
	s.foldRegret.Fill(0)
	s.pushWeight.Fill(0)
	s.weight.Fill(0)
	s.visits = [poker.NumRanks][poker.NumRanks]int64{}
}

// average is the average push probability of idx, or fallback if the
// category has never been visited.
func (s *playerState) average(idx poker.HoleIndex, fallback float64) float64 {
	w := s.weight.At(idx)
	if w <= 0 {
		return fallback
	}
	return s.pushWeight.At(idx) / w
}

func (s *playerState) averageTable(fallback float64) *StrategyTable {
	out := &StrategyTable{}
	for _, idx := range poker.AllHoleIndices() {
		out.SetAt(idx, s.average(idx, fallback))
	}
	return out
}

func (s *playerState) totalVisits() int64 {
	var n int64
	for r := range s.visits {
		for c := range s.visits[r] {
			n += s.visits[r][c]
		}
	}
	return n
}

type playerSnapshot struct {
	Current    *StrategyTable `json:"current"`
	PushRegret *StrategyTable `json:"push_regret"`
	FoldRegret *StrategyTable `json:"fold_regret"`
	PushWeight *StrategyTable `json:"push_weight"`
	Weight     *StrategyTable `json:"weight"`

	Visits [poker.NumRanks][poker.NumRanks]int64 `json:"visits"`
}

func (s *playerState) snapshot() playerSnapshot {
	return playerSnapshot{
		Current:    s.current.Clone(),
		PushRegret: s.pushRegret.Clone(),
		FoldRegret: s.foldRegret.Clone(),
		PushWeight: s.pushWeight.Clone(),
		Weight:     s.weight.Clone(),
		Visits:     s.visits,
	}
}

func newPlayerStateFromSnapshot(snap playerSnapshot) *playerState {
	orZero := func(t *StrategyTable) *StrategyTable {
		if t == nil {
			return &StrategyTable{}
		}
		return t
	}
	return &playerState{
		current:    orZero(snap.Current),
		pushRegret: orZero(snap.PushRegret),
		foldRegret: orZero(snap.FoldRegret),
		pushWeight: orZero(snap.PushWeight),
		weight:     orZero(snap.Weight),
		visits:     snap.Visits,
	}
}
