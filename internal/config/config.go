// Package config loads training runs described in HCL.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pushfold/sdk/solver"
)

// Evaluator kinds.
const (
	EvaluatorTable  = "table"
	EvaluatorDirect = "direct"
)

// DefaultHandRanksPath is where the hand-rank table is looked for when
// neither the file nor the environment names one.
const DefaultHandRanksPath = "handranks.dat"

// Config represents a complete training run
type Config struct {
	Game       *GameBlock       `hcl:"game,block"`
	Training   *TrainingBlock   `hcl:"training,block"`
	Evaluator  *EvaluatorBlock  `hcl:"evaluator,block"`
	Checkpoint *CheckpointBlock `hcl:"checkpoint,block"`
	Output     string           `hcl:"output,optional"`
}

// GameBlock sets blinds and stacks in chips. Stack sets both stacks unless
// they are given individually.
type GameBlock struct {
	SmallBlind  float64 `hcl:"small_blind,optional"`
	BigBlind    float64 `hcl:"big_blind,optional"`
	Stack       float64 `hcl:"stack,optional"`
	PusherStack float64 `hcl:"pusher_stack,optional"`
	CallerStack float64 `hcl:"caller_stack,optional"`
}

// TrainingBlock controls the CFR run. Seed and InitialStrategy are pointers
// because zero is a meaningful value for both.
type TrainingBlock struct {
	Iterations      int      `hcl:"iterations,optional"`
	Seed            *int64   `hcl:"seed,optional"`
	Parallel        int      `hcl:"parallel,optional"`
	RoundSize       int      `hcl:"round_size,optional"`
	ProgressEvery   int      `hcl:"progress_every,optional"`
	Variant         string   `hcl:"variant,optional"`
	Sampling        string   `hcl:"sampling,optional"`
	InitialStrategy *float64 `hcl:"initial_strategy,optional"`
}

// EvaluatorBlock picks the showdown ranker.
type EvaluatorBlock struct {
	Kind      string `hcl:"kind,optional"`
	HandRanks string `hcl:"handranks,optional"`
}

// CheckpointBlock enables periodic checkpoints. Interval is a Go duration
// string such as "10m".
type CheckpointBlock struct {
	Path     string `hcl:"path,optional"`
	Every    int    `hcl:"every,optional"`
	Interval string `hcl:"interval,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads configuration from an HCL file. A missing file yields the
// defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes HCL source held in memory; filename is only used in
// diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var config Config
	if diags := gohcl.DecodeBody(body, nil, &config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills missing blocks and zero values from the solver
// defaults.
func (c *Config) applyDefaults() {
	game := solver.DefaultGameConfig()
	train := solver.DefaultTrainingConfig()

	if c.Game == nil {
		c.Game = &GameBlock{}
	}
	if c.Game.SmallBlind == 0 {
		c.Game.SmallBlind = game.SmallBlind
	}
	if c.Game.BigBlind == 0 {
		c.Game.BigBlind = game.BigBlind
	}
	if c.Game.Stack == 0 {
		c.Game.Stack = game.PusherStack
	}
	if c.Game.PusherStack == 0 {
		c.Game.PusherStack = c.Game.Stack
	}
	if c.Game.CallerStack == 0 {
		c.Game.CallerStack = c.Game.Stack
	}

	if c.Training == nil {
		c.Training = &TrainingBlock{}
	}
	if c.Training.Iterations == 0 {
		c.Training.Iterations = train.Iterations
	}
	if c.Training.Seed == nil {
		c.Training.Seed = &train.Seed
	}
	if c.Training.Parallel == 0 {
		c.Training.Parallel = train.Parallel
	}
	if c.Training.RoundSize == 0 {
		c.Training.RoundSize = train.RoundSize
	}
	if c.Training.Variant == "" {
		c.Training.Variant = train.Variant.String()
	}
	if c.Training.Sampling == "" {
		c.Training.Sampling = train.Sampling.String()
	}
	if c.Training.InitialStrategy == nil {
		c.Training.InitialStrategy = &train.InitialStrategy
	}

	if c.Evaluator == nil {
		c.Evaluator = &EvaluatorBlock{}
	}
	if c.Evaluator.Kind == "" {
		c.Evaluator.Kind = EvaluatorTable
	}
	if c.Evaluator.HandRanks == "" {
		c.Evaluator.HandRanks = DefaultHandRanksPath
	}

	if c.Checkpoint == nil {
		c.Checkpoint = &CheckpointBlock{}
	}
	if c.Output == "" {
		c.Output = "chart.json"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.GameConfig().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	train, err := c.TrainingConfig()
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if err := train.Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}

	switch c.Evaluator.Kind {
	case EvaluatorTable:
		if c.Evaluator.HandRanks == "" {
			return errors.New("evaluator: handranks path is required for the table evaluator")
		}
	case EvaluatorDirect:
	default:
		return fmt.Errorf("evaluator: invalid kind %q (want %s or %s)", c.Evaluator.Kind, EvaluatorTable, EvaluatorDirect)
	}

	if c.Checkpoint.Every < 0 {
		return errors.New("checkpoint: every cannot be negative")
	}
	interval, err := c.CheckpointInterval()
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if c.Checkpoint.Path == "" && (c.Checkpoint.Every > 0 || interval > 0) {
		return errors.New("checkpoint: path is required when every or interval is set")
	}
	if c.Output == "" {
		return errors.New("output path is required")
	}
	return nil
}

// GameConfig returns the game block as a solver config.
func (c *Config) GameConfig() solver.GameConfig {
	return solver.GameConfig{
		SmallBlind:  c.Game.SmallBlind,
		BigBlind:    c.Game.BigBlind,
		PusherStack: c.Game.PusherStack,
		CallerStack: c.Game.CallerStack,
	}
}

// TrainingConfig returns the training block as a solver config, failing on
// unknown variant or sampling names.
func (c *Config) TrainingConfig() (solver.TrainingConfig, error) {
	variant, err := solver.ParseVariant(c.Training.Variant)
	if err != nil {
		return solver.TrainingConfig{}, err
	}
	sampling, err := solver.ParseSamplingMode(c.Training.Sampling)
	if err != nil {
		return solver.TrainingConfig{}, err
	}
	return solver.TrainingConfig{
		Iterations:      c.Training.Iterations,
		Seed:            *c.Training.Seed,
		Parallel:        c.Training.Parallel,
		RoundSize:       c.Training.RoundSize,
		ProgressEvery:   c.Training.ProgressEvery,
		Variant:         variant,
		Sampling:        sampling,
		InitialStrategy: *c.Training.InitialStrategy,
	}, nil
}

// CheckpointInterval parses the checkpoint interval; empty means disabled.
func (c *Config) CheckpointInterval() (time.Duration, error) {
	if c.Checkpoint.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Checkpoint.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", c.Checkpoint.Interval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("interval cannot be negative: %s", d)
	}
	return d, nil
}
