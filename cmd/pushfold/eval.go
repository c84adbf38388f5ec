package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/lox/pushfold/cmd/pushfold/shared"
	"github.com/lox/pushfold/internal/config"
	"github.com/lox/pushfold/internal/simulator"
	solverruntime "github.com/lox/pushfold/sdk/solver/runtime"
)

type EvalCmd struct {
	Chart     string `arg:"" help:"chart file to evaluate" type:"existingfile"`
	Opponent  string `help:"opponent chart file or baseline (always-push, always-call, always-fold); empty plays the chart against itself"`
	Hands     int    `help:"number of deals to simulate" default:"100000"`
	Seed      int64  `help:"random seed; deal i uses seed+i" default:"1"`
	Workers   int    `help:"simulation workers (0 => number of CPUs)" default:"0"`
	Duplicate bool   `help:"play every deal from both seats to cancel card luck" default:"true" negatable:""`

	EvaluatorFlags `embed:""`
	Config         string `help:"HCL file whose evaluator block to use" default:"pushfold.hcl" type:"path"`
}

func (cmd *EvalCmd) Run(g *Globals) error {
	if cmd.Hands <= 0 {
		return fmt.Errorf("hands must be positive (got %d)", cmd.Hands)
	}
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return err
	}
	cmd.EvaluatorFlags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cmd.Config, err)
	}

	hero, err := solverruntime.Load(cmd.Chart)
	if err != nil {
		return fmt.Errorf("load chart: %w", err)
	}
	villain, err := cmd.opponent(hero)
	if err != nil {
		return err
	}

	ranker, err := loadRanker(cfg.Evaluator, g.Logger)
	if err != nil {
		g.Logger.Fatal().Err(err).Str("path", cfg.Evaluator.HandRanks).Msg("failed to load hand-rank table")
	}

	workers := cmd.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sim, err := simulator.New(simulator.Config{
		Hands:     cmd.Hands,
		Seed:      cmd.Seed,
		Workers:   workers,
		Duplicate: cmd.Duplicate,
		Ranker:    ranker,
		Logger:    shared.SimulatorLogger(os.Stderr, g.Debug),
	}, hero, villain)
	if err != nil {
		return err
	}

	g.Logger.Info().
		Str("chart", cmd.Chart).
		Str("opponent", sim.Opponent()).
		Int("hands", cmd.Hands).
		Int("workers", workers).
		Bool("duplicate", cmd.Duplicate).
		Msg("starting evaluation")

	ctx, stop := shared.SetupSignalHandlerWithLogger(context.Background(), g.Logger)
	defer stop()

	stats, err := sim.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return errors.New("evaluation interrupted")
	}
	if err != nil {
		return fmt.Errorf("run evaluation: %w", err)
	}

	simulator.PrintSummary(os.Stdout, stats, sim.Opponent())
	return nil
}

// opponent resolves --opponent. The hero itself is returned for mirror play.
func (cmd *EvalCmd) opponent(hero *solverruntime.Policy) (*solverruntime.Policy, error) {
	switch cmd.Opponent {
	case "":
		return hero, nil
	case solverruntime.BaselineAlwaysPush, solverruntime.BaselineAlwaysCall, solverruntime.BaselineAlwaysFold:
		return solverruntime.NewBaseline(cmd.Opponent, hero.Chart().Game)
	default:
		villain, err := solverruntime.Load(cmd.Opponent)
		if err != nil {
			return nil, fmt.Errorf("load opponent: %w", err)
		}
		return villain, nil
	}
}
