package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/lox/pushfold/internal/display"
	"github.com/lox/pushfold/internal/evaluator"
	"github.com/lox/pushfold/poker"
	"github.com/lox/pushfold/sdk/solver"
)

type ShowCmd struct {
	Chart string `arg:"" help:"chart file written by train" type:"existingfile"`
	Hand  string `help:"show one hand instead of the grids, e.g. AKs, 72o or AhKh"`

	EquitySamples int   `help:"Monte Carlo samples for the hand's equity when called (0 disables)" default:"50000"`
	Seed          int64 `help:"random seed for the equity estimate" default:"1"`
}

func (cmd *ShowCmd) Run(g *Globals) error {
	chart, err := solver.LoadChart(cmd.Chart)
	if err != nil {
		return fmt.Errorf("load chart: %w", err)
	}
	g.Logger.Debug().
		Str("path", cmd.Chart).
		Time("generated", chart.GeneratedAt).
		Int("iterations", chart.Iterations).
		Msg("chart loaded")

	if cmd.Hand == "" {
		fmt.Println(display.Chart(chart))
		return nil
	}
	idx, err := parseHand(cmd.Hand)
	if err != nil {
		return err
	}
	fmt.Print(display.Hand(chart, idx))

	if cmd.EquitySamples > 0 {
		// Equity is estimated with a representative holding of the category
		// against the chart's calling range.
		c1, c2 := idx.Example()
		eq, err := evaluator.Equity(context.Background(), evaluator.Direct{}, [2]poker.Card{c1, c2},
			evaluator.RangeFunc(chart.Strategy(solver.RoleCaller).Hand),
			evaluator.EquityConfig{Samples: cmd.EquitySamples, Workers: runtime.NumCPU(), Seed: cmd.Seed})
		if err != nil {
			g.Logger.Warn().Err(err).Msg("equity unavailable")
			return nil
		}
		fmt.Print(display.Equity(eq))
	}
	return nil
}

// parseHand accepts either a category ("AKs") or two concrete cards ("AhKh").
func parseHand(s string) (poker.HoleIndex, error) {
	if idx, err := poker.ParseHoleIndex(s); err == nil {
		return idx, nil
	}
	cards, err := poker.ParseCards(s)
	if err != nil || len(cards) != 2 || cards[0] == cards[1] {
		return poker.HoleIndex{}, fmt.Errorf("invalid hand %q: want a category like AKs or two cards like AhKh", s)
	}
	return poker.Canonicalize(cards[0], cards[1]), nil
}
