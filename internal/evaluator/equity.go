package evaluator

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lox/pushfold/internal/randutil"
	"github.com/lox/pushfold/poker"
)

// Range weights the holdings an opponent can have. A weight of zero excludes
// the holding.
type Range interface {
	Weight(c1, c2 poker.Card) float64
}

// RangeFunc adapts a function, such as StrategyTable.Hand, to a Range.
type RangeFunc func(c1, c2 poker.Card) float64

func (f RangeFunc) Weight(c1, c2 poker.Card) float64 { return f(c1, c2) }

// RandomRange gives every holding the same weight.
var RandomRange Range = RangeFunc(func(poker.Card, poker.Card) float64 { return 1 })

// EquityConfig controls a Monte Carlo equity estimate.
type EquityConfig struct {
	Samples int
	Workers int
	Seed    int64
}

type workerResult struct {
	won    float64
	weight float64
}

// Equity estimates hero's share of the pot at showdown against a villain
// holding drawn from villain, with the whole board still to come. Each
// sampled holding counts in proportion to its range weight and ties count
// half. Results depend only on the config, not on scheduling.
func Equity(ctx context.Context, r Ranker, hero [2]poker.Card, villain Range, cfg EquityConfig) (float64, error) {
	if r == nil {
		return 0, errors.New("hand ranker is required")
	}
	if !hero[0].Valid() || !hero[1].Valid() || hero[0] == hero[1] {
		return 0, fmt.Errorf("invalid hero hand %s%s", hero[0], hero[1])
	}
	if cfg.Samples <= 0 {
		return 0, errors.New("samples must be > 0")
	}
	workers := min(max(cfg.Workers, 1), cfg.Samples)

	available := make([]poker.Card, 0, poker.NumCards-2)
	for c := poker.Card(1); c <= poker.NumCards; c++ {
		if c != hero[0] && c != hero[1] {
			available = append(available, c)
		}
	}

	results := make([]workerResult, workers)
	g, gctx := errgroup.WithContext(ctx)
	per, extra := cfg.Samples/workers, cfg.Samples%workers
	for w := range workers {
		n := per
		if w < extra {
			n++
		}
		seed := cfg.Seed + int64(w)
		g.Go(func() error {
			res, err := runEquityWorker(gctx, r, hero, villain, available, n, seed)
			results[w] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total workerResult
	for _, res := range results {
		total.won += res.won
		total.weight += res.weight
	}
	if total.weight == 0 {
		return 0, errors.New("villain range is empty")
	}
	return total.won / total.weight, nil
}

// runEquityWorker deals n villain holdings and boards from its own copy of
// the remaining cards.
func runEquityWorker(ctx context.Context, r Ranker, hero [2]poker.Card, villain Range,
	available []poker.Card, n int, seed int64) (workerResult, error) {

	rng := randutil.New(seed)
	cards := make([]poker.Card, len(available))
	copy(cards, available)

	var (
		res   workerResult
		opp   [2]poker.Card
		board [5]poker.Card
	)
	for i := range n {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		// Partial Fisher-Yates: the first seven slots become the sample.
		for j := range 7 {
			k := j + rng.IntN(len(cards)-j)
			cards[j], cards[k] = cards[k], cards[j]
		}
		opp[0], opp[1] = cards[0], cards[1]
		w := villain.Weight(opp[0], opp[1])
		if w <= 0 {
			continue
		}
		copy(board[:], cards[2:7])

		res.weight += w
		switch Showdown(r, hero, opp, &board) {
		case Win:
			res.won += w
		case Tie:
			res.won += w / 2
		}
	}
	return res, nil
}
