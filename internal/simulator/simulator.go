// Package simulator plays push/fold charts against each other and measures
// the result in big blinds per hand.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pushfold/internal/evaluator"
	"github.com/lox/pushfold/internal/randutil"
	"github.com/lox/pushfold/internal/statistics"
	"github.com/lox/pushfold/poker"
	"github.com/lox/pushfold/sdk/solver"
	"github.com/lox/pushfold/sdk/solver/runtime"
)

// Config holds configuration for running simulations
type Config struct {
	Hands   int
	Seed    int64
	Workers int
	// Duplicate plays every deal twice with the same cards in the same seats,
	// hero and villain trading places, which removes most of the card luck
	// from the comparison.
	Duplicate bool
	Ranker    evaluator.Ranker
	Logger    *log.Logger
}

// Simulator runs hero against villain
type Simulator struct {
	config  Config
	hero    *runtime.Policy
	villain *runtime.Policy
	game    solver.GameConfig
}

// New creates a simulator. Passing the same policy twice is mirror mode. The
// game (blinds and stacks) is taken from the hero's chart.
func New(config Config, hero, villain *runtime.Policy) (*Simulator, error) {
	if hero == nil || villain == nil {
		return nil, errors.New("hero and villain policies are required")
	}
	if config.Hands <= 0 {
		return nil, errors.New("hands must be > 0")
	}
	if config.Ranker == nil {
		return nil, errors.New("hand ranker is required")
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}

	game := hero.Chart().Game
	if villainGame := villain.Chart().Game; villainGame != game {
		config.Logger.Warn("Charts were solved for different games; using the hero's",
			"hero", fmt.Sprintf("%+v", game), "villain", fmt.Sprintf("%+v", villainGame))
	}
	return &Simulator{config: config, hero: hero, villain: villain, game: game}, nil
}

// Opponent describes who the hero is playing.
func (s *Simulator) Opponent() string {
	if s.hero == s.villain {
		return "mirror(" + s.hero.Name() + ")"
	}
	return s.villain.Name()
}

// Run executes the simulation and returns the hero's results. Deal i uses
// seed Seed+i, so results do not depend on the worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	start := time.Now()
	workers := min(s.config.Workers, s.config.Hands)
	parts := make([]*statistics.Statistics, workers)

	g, gctx := errgroup.WithContext(ctx)
	per, extra := s.config.Hands/workers, s.config.Hands%workers
	first := 0
	for w := range workers {
		count := per
		if w < extra {
			count++
		}
		from, to := first, first+count
		first = to
		parts[w] = &statistics.Statistics{}

		g.Go(func() error {
			s.config.Logger.Debug("Worker started", "worker", w, "from", from, "to", to)
			for hand := from; hand < to; hand++ {
				if hand%1024 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				s.playDeal(hand, parts[w])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, part := range parts {
		stats.Merge(part)
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.config.Logger.Info("Simulation complete",
		"hands", stats.Hands,
		"opponent", s.Opponent(),
		"bb_per_hand", fmt.Sprintf("%.4f", stats.Mean()),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return stats, nil
}

// playDeal plays deal number hand. Without duplicate mode the hero alternates
// seats between deals.
func (s *Simulator) playDeal(hand int, stats *statistics.Statistics) {
	seed := s.config.Seed + int64(hand)
	rng := randutil.New(seed)
	var deal poker.HeadsUpDeal
	poker.NewDeck(rng).DealHeadsUp(&deal)

	if s.config.Duplicate {
		stats.Add(s.playHand(deal, statistics.SeatPusher, seed, rng))
		stats.Add(s.playHand(deal, statistics.SeatCaller, seed, rng))
		return
	}
	stats.Add(s.playHand(deal, hand%2, seed, rng))
}

// playHand plays one hand with the hero in heroSeat. Hole cards belong to the
// seat: the hero holds deal.Pusher when pushing and deal.Caller when calling.
func (s *Simulator) playHand(deal poker.HeadsUpDeal, heroSeat int, seed int64, rng *rand.Rand) statistics.HandResult {
	pusher, caller := s.hero, s.villain
	if heroSeat == statistics.SeatCaller {
		pusher, caller = s.villain, s.hero
	}

	push := pusher.Act(solver.RolePusher, deal.Pusher[0], deal.Pusher[1], rng) == solver.ActionPush
	call := push && caller.Act(solver.RoleCaller, deal.Caller[0], deal.Caller[1], rng) == solver.ActionPush

	outcome := evaluator.Tie
	if call {
		outcome = evaluator.Showdown(s.config.Ranker, deal.Pusher, deal.Caller, &deal.Board)
	}
	net := s.game.Payoff(push, call, outcome)
	if heroSeat == statistics.SeatCaller {
		net = -net
	}
	return statistics.HandResult{
		NetBB:          net,
		Seed:           seed,
		Seat:           heroSeat,
		Pushed:         push,
		Called:         call,
		WentToShowdown: call,
	}
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, stats *statistics.Statistics, opponent string) {
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS vs %s ===\n", opponent)
	fmt.Fprintf(w, "Hands played: %d\n", stats.Hands)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f bb/hand\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f bb/hand\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f bb\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f bb\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bb/hand\n", low, high)

	fmt.Fprintf(w, "\n=== ACTION FREQUENCIES ===\n")
	fmt.Fprintf(w, "Pushes: %.1f%% of hands, called %.1f%% of the time\n",
		stats.PushRate()*100, stats.CallRate()*100)

	meanNSD := stats.NonShowdownBB / float64(stats.Hands)
	meanSD := stats.ShowdownBB / float64(stats.Hands)
	fmt.Fprintf(w, "Non-showdown: %.3f bb/hand avg (all hands)\n", meanNSD)
	fmt.Fprintf(w, "Showdown: %.3f bb/hand avg (all hands)\n", meanSD)

	fmt.Fprintf(w, "\n=== SEAT ANALYSIS ===\n")
	for seat, name := range []string{"Pusher (SB)", "Caller (BB)"} {
		ps := stats.SeatResults[seat]
		if ps.Hands > 0 {
			fmt.Fprintf(w, "%s: %d hands, %.4f bb/hand\n", name, ps.Hands, ps.Mean())
		}
	}
}
