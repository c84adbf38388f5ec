package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/pushfold/internal/config"
	"github.com/lox/pushfold/internal/evaluator"
)

// EvaluatorFlags selects the showdown ranker for commands that deal hands.
type EvaluatorFlags struct {
	Evaluator string `help:"hand ranker: table or direct (default from config, else table)"`
	HandRanks string `name:"handranks" help:"path to the hand-rank table" env:"PUSHFOLD_HANDRANKS" type:"path"`
}

// apply overrides the config's evaluator block with any flags given.
func (f EvaluatorFlags) apply(cfg *config.Config) {
	if f.Evaluator != "" {
		cfg.Evaluator.Kind = f.Evaluator
	}
	if f.HandRanks != "" {
		cfg.Evaluator.HandRanks = f.HandRanks
	}
}

// loadRanker builds the ranker described by the evaluator block. Loading the
// table reads roughly 130MB, so its duration is logged.
func loadRanker(block *config.EvaluatorBlock, logger zerolog.Logger) (evaluator.Ranker, error) {
	switch block.Kind {
	case config.EvaluatorDirect:
		logger.Info().Msg("using direct hand evaluator")
		return evaluator.Direct{}, nil
	case config.EvaluatorTable:
		start := time.Now()
		table, err := evaluator.LoadHandRanks(block.HandRanks)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Str("path", block.HandRanks).
			Int("entries", len(table)).
			Dur("elapsed", time.Since(start)).
			Msg("hand-rank table loaded")
		return table, nil
	default:
		return nil, fmt.Errorf("unknown evaluator %q", block.Kind)
	}
}
