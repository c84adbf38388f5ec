package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rs/zerolog"

	"github.com/lox/pushfold/cmd/pushfold/shared"
	"github.com/lox/pushfold/internal/config"
	"github.com/lox/pushfold/internal/display"
	"github.com/lox/pushfold/internal/evaluator"
	"github.com/lox/pushfold/sdk/solver"
)

type TrainCmd struct {
	Config string `help:"HCL file describing the run; missing means defaults" default:"pushfold.hcl" type:"path"`
	Out    string `help:"path to write the chart (overrides output in config)" type:"path"`

	Iterations      int      `help:"number of CFR iterations (0 keeps config)" default:"0"`
	Seed            *int64   `help:"random seed; 0 uses time seed"`
	Parallel        int      `help:"number of training workers (0 keeps config)" default:"0"`
	RoundSize       int      `help:"hands per worker per parallel round (0 keeps config)" default:"0"`
	ProgressEvery   int      `help:"log progress every N iterations (0 => iterations/100)" default:"0"`
	Variant         string   `help:"regret rule: cfr or cfr+"`
	Sampling        string   `help:"sampling mode: full or external"`
	InitialStrategy *float64 `help:"starting push/call probability for every hand"`

	SmallBlind float64 `help:"small blind in chips (0 keeps config)" default:"0"`
	BigBlind   float64 `help:"big blind in chips (0 keeps config)" default:"0"`
	Stack      float64 `help:"starting stack for both players in chips (0 keeps config)" default:"0"`

	EvaluatorFlags `embed:""`

	CheckpointPath     string        `help:"path to write periodic checkpoints" type:"path"`
	CheckpointEvery    int           `help:"checkpoint interval in iterations (0 keeps config)" default:"0"`
	CheckpointInterval time.Duration `help:"checkpoint interval in wall time, e.g. 10m (0 keeps config)" default:"0s"`
	ResumeFrom         string        `help:"resume training from checkpoint file" type:"path"`

	CPUProfile string `help:"write CPU profile to file" type:"path"`
	Print      bool   `help:"render the chart when training finishes"`
}

// resolve loads the config file and layers explicit flags over it.
func (cmd *TrainCmd) resolve() (*config.Config, error) {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return nil, err
	}

	if cmd.Out != "" {
		cfg.Output = cmd.Out
	}
	if cmd.Iterations > 0 {
		cfg.Training.Iterations = cmd.Iterations
	}
	if cmd.Seed != nil {
		cfg.Training.Seed = cmd.Seed
	}
	if cmd.Parallel > 0 {
		cfg.Training.Parallel = cmd.Parallel
	}
	if cmd.RoundSize > 0 {
		cfg.Training.RoundSize = cmd.RoundSize
	}
	if cmd.ProgressEvery > 0 {
		cfg.Training.ProgressEvery = cmd.ProgressEvery
	}
	if cmd.Variant != "" {
		cfg.Training.Variant = cmd.Variant
	}
	if cmd.Sampling != "" {
		cfg.Training.Sampling = cmd.Sampling
	}
	if cmd.InitialStrategy != nil {
		cfg.Training.InitialStrategy = cmd.InitialStrategy
	}
	if cmd.SmallBlind > 0 {
		cfg.Game.SmallBlind = cmd.SmallBlind
	}
	if cmd.BigBlind > 0 {
		cfg.Game.BigBlind = cmd.BigBlind
	}
	if cmd.Stack > 0 {
		cfg.Game.Stack = cmd.Stack
		cfg.Game.PusherStack = cmd.Stack
		cfg.Game.CallerStack = cmd.Stack
	}
	cmd.EvaluatorFlags.apply(cfg)
	if cmd.CheckpointPath != "" {
		cfg.Checkpoint.Path = cmd.CheckpointPath
	}
	if cmd.CheckpointEvery > 0 {
		cfg.Checkpoint.Every = cmd.CheckpointEvery
	}
	if cmd.CheckpointInterval > 0 {
		cfg.Checkpoint.Interval = cmd.CheckpointInterval.String()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cmd.Config, err)
	}
	return cfg, nil
}

func (cmd *TrainCmd) Run(g *Globals) error {
	logger := g.Logger
	cfg, err := cmd.resolve()
	if err != nil {
		return err
	}

	// Set up CPU profiling if requested
	if cmd.CPUProfile != "" {
		f, err := os.Create(cmd.CPUProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", cmd.CPUProfile).Msg("CPU profiling enabled")
	}

	ranker, err := loadRanker(cfg.Evaluator, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Evaluator.HandRanks).Msg("failed to load hand-rank table")
	}

	trainer, err := cmd.newTrainer(cfg, ranker, logger)
	if err != nil {
		return err
	}
	interval, _ := cfg.CheckpointInterval()
	if cfg.Checkpoint.Path != "" {
		trainer.EnableCheckpoints(cfg.Checkpoint.Path, cfg.Checkpoint.Every, interval)
	}

	ctx, stop := shared.SetupSignalHandlerWithLogger(context.Background(), logger)
	defer stop()

	start := time.Now()
	total := trainer.TrainingConfig().Iterations
	err = trainer.Run(ctx, func(p solver.Progress) {
		logProgress(logger, p, total)
	})
	if errors.Is(err, context.Canceled) {
		return cmd.interrupted(trainer, cfg, logger)
	}
	if err != nil {
		return err
	}

	chart := trainer.Chart()
	stats := trainer.Stats()
	logger.Info().
		Dur("duration", time.Since(start)).
		Int64("hands", stats.Hands).
		Int("checkpoints", stats.Checkpoints).
		Float64("push_range", chart.Pusher.Range()).
		Float64("call_range", chart.Caller.Range()).
		Msg("training completed")

	if err := chart.Save(cfg.Output); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	logger.Info().Str("path", cfg.Output).Msg("chart saved")

	if cmd.Print {
		fmt.Println(display.Chart(chart))
	}
	return nil
}

// newTrainer starts a fresh run, or resumes one when --resume-from is set.
// A resumed run keeps the checkpoint's game and regret rules; only the
// iteration target, progress interval and parallelism may change.
func (cmd *TrainCmd) newTrainer(cfg *config.Config, ranker evaluator.Ranker, logger zerolog.Logger) (*solver.Trainer, error) {
	train, err := cfg.TrainingConfig()
	if err != nil {
		return nil, err
	}

	if cmd.ResumeFrom == "" {
		trainer, err := solver.NewTrainer(cfg.GameConfig(), train, ranker)
		if err != nil {
			return nil, err
		}
		logger.Info().
			Int("iterations", train.Iterations).
			Int64("seed", train.Seed).
			Int("parallel", train.Parallel).
			Str("variant", train.Variant.String()).
			Str("sampling", train.Sampling.String()).
			Float64("effective_bb", cfg.GameConfig().EffectiveBB()).
			Msg("starting training run")
		return trainer, nil
	}

	trainer, err := solver.LoadTrainerFromCheckpoint(cmd.ResumeFrom, ranker)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	resumed := trainer.TrainingConfig()
	if cmd.Iterations > 0 {
		if err := trainer.SetTotalIterations(cmd.Iterations); err != nil {
			return nil, err
		}
	}
	if cmd.ProgressEvery > 0 {
		trainer.SetProgressEvery(cmd.ProgressEvery)
	}
	if cmd.Parallel > 0 || cmd.RoundSize > 0 {
		workers := cmd.Parallel
		if workers == 0 {
			workers = resumed.Parallel
		}
		if err := trainer.SetParallel(workers, cmd.RoundSize); err != nil {
			return nil, err
		}
	}
	if train.Variant != resumed.Variant {
		logger.Warn().Str("requested", train.Variant.String()).Str("checkpoint", resumed.Variant.String()).Msg("cannot change variant when resuming from checkpoint; keeping original")
	}
	if train.Sampling != resumed.Sampling {
		logger.Warn().Str("requested", train.Sampling.String()).Str("checkpoint", resumed.Sampling.String()).Msg("cannot change sampling mode when resuming from checkpoint; keeping original")
	}
	if cfg.GameConfig() != trainer.Game() {
		logger.Warn().Msg("cannot change blinds or stacks when resuming from checkpoint; keeping original game")
	}

	current := trainer.TrainingConfig()
	logger.Info().
		Int("iterations", current.Iterations).
		Int64("resume_iteration", trainer.Iteration()).
		Int("parallel", current.Parallel).
		Str("variant", current.Variant.String()).
		Str("sampling", current.Sampling.String()).
		Str("checkpoint", cmd.ResumeFrom).
		Msg("resuming training run")
	return trainer, nil
}

// interrupted saves what it can after the run was cancelled.
func (cmd *TrainCmd) interrupted(trainer *solver.Trainer, cfg *config.Config, logger zerolog.Logger) error {
	iter := trainer.Iteration()
	if cfg.Checkpoint.Path == "" {
		return fmt.Errorf("training interrupted at iteration %d (no checkpoint path set)", iter)
	}
	if err := trainer.SaveCheckpoint(cfg.Checkpoint.Path); err != nil {
		return fmt.Errorf("save checkpoint after interrupt: %w", err)
	}
	logger.Info().
		Int64("iteration", iter).
		Str("path", cfg.Checkpoint.Path).
		Msg("training interrupted; checkpoint saved, continue with --resume-from")
	return nil
}

func logProgress(logger zerolog.Logger, p solver.Progress, total int) {
	logger.Info().
		Int("iteration", p.Iteration).
		Str("done", fmt.Sprintf("%.1f%%", 100*float64(p.Iteration)/float64(max(total, 1)))).
		Float64("delta", p.Delta).
		Str("push_range", fmt.Sprintf("%.1f%%", p.PushRange*100)).
		Str("call_range", fmt.Sprintf("%.1f%%", p.CallRange*100)).
		Int64("showdowns", p.Stats.Showdowns).
		Str("hands_per_sec", fmt.Sprintf("%.0f", p.Stats.HandsPerSecond())).
		Msg("progress")
}
