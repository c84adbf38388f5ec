package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pushfold/internal/config"
	"github.com/lox/pushfold/poker"
	"github.com/lox/pushfold/sdk/solver"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("pushfold"), kong.Vars{"version": "test"}, kong.Exit(func(int) {
		t.Fatalf("unexpected exit parsing %v", args)
	}))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func globals() *Globals {
	return &Globals{Logger: zerolog.Nop()}
}

func TestTrainFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pushfold.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
game { stack = 20 }
training {
  iterations = 5000
  variant    = "cfr+"
}
`), 0o644))

	cli, _ := parseCLI(t, "train",
		"--config", cfgPath,
		"--iterations", "1234",
		"--seed", "0",
		"--stack", "12",
		"--evaluator", "direct",
		"--checkpoint-path", filepath.Join(dir, "train.ckpt"),
		"--checkpoint-interval", "90s",
	)
	cfg, err := cli.Train.resolve()
	require.NoError(t, err)

	train, err := cfg.TrainingConfig()
	require.NoError(t, err)
	assert.Equal(t, 1234, train.Iterations)
	assert.Equal(t, int64(0), train.Seed)
	assert.Equal(t, solver.VariantCFRPlus, train.Variant, "file value kept when no flag is given")
	assert.Equal(t, 12.0, cfg.GameConfig().PusherStack)
	assert.Equal(t, 12.0, cfg.GameConfig().CallerStack)
	assert.Equal(t, config.EvaluatorDirect, cfg.Evaluator.Kind)

	interval, err := cfg.CheckpointInterval()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, interval)
}

func TestTrainRejectsInvalidFlags(t *testing.T) {
	cli, _ := parseCLI(t, "train",
		"--config", filepath.Join(t.TempDir(), "none.hcl"),
		"--variant", "dcfr",
	)
	_, err := cli.Train.resolve()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variant")
}

func TestTrainWritesChartAndResumes(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "chart.json")
	ckpt := filepath.Join(dir, "train.ckpt")

	_, ctx := parseCLI(t, "train",
		"--config", filepath.Join(dir, "none.hcl"),
		"--out", out,
		"--iterations", "3000",
		"--evaluator", "direct",
		"--checkpoint-path", ckpt,
		"--checkpoint-every", "1000",
	)
	require.NoError(t, ctx.Run(globals()))

	chart, err := solver.LoadChart(out)
	require.NoError(t, err)
	assert.Equal(t, 3000, chart.Iterations)
	assert.FileExists(t, ckpt)

	// Extending the run from its checkpoint keeps counting from 3000.
	_, ctx = parseCLI(t, "train",
		"--config", filepath.Join(dir, "none.hcl"),
		"--out", out,
		"--iterations", "4000",
		"--evaluator", "direct",
		"--resume-from", ckpt,
	)
	require.NoError(t, ctx.Run(globals()))

	chart, err = solver.LoadChart(out)
	require.NoError(t, err)
	assert.Equal(t, 4000, chart.Iterations)
}

func TestShowAndEval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.json")
	chart := solver.NewChart(solver.DefaultGameConfig(), solver.NewStrategyTable(0.5), solver.NewStrategyTable(0.5))
	require.NoError(t, chart.Save(path))

	_, ctx := parseCLI(t, "show", path, "--hand", "AhKh")
	require.NoError(t, ctx.Run(globals()))

	_, ctx = parseCLI(t, "eval", path,
		"--config", filepath.Join(dir, "none.hcl"),
		"--opponent", "always-push",
		"--hands", "500",
		"--workers", "2",
		"--evaluator", "direct",
	)
	require.NoError(t, ctx.Run(globals()))

	_, ctx = parseCLI(t, "eval", path,
		"--config", filepath.Join(dir, "none.hcl"),
		"--opponent", filepath.Join(dir, "missing.json"),
		"--evaluator", "direct",
	)
	require.Error(t, ctx.Run(globals()))
}

func TestParseHand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AKs", "AKs"},
		{"72o", "72o"},
		{"TT", "TT"},
		{"AhKh", "AKs"},
		{"Kd2c", "K2o"},
		{"7s7d", "77"},
	}
	for _, tt := range tests {
		idx, err := parseHand(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, idx.String(), tt.in)
	}

	for _, bad := range []string{"", "AK", "AhAh", "XxYy", "AhKhQh"} {
		_, err := parseHand(bad)
		assert.Error(t, err, bad)
	}

	// Concrete cards map to the same cell as their category.
	cards := poker.MustParseCards("QcJc")
	idx, err := parseHand("QJs")
	require.NoError(t, err)
	assert.Equal(t, poker.Canonicalize(cards[0], cards[1]), idx)
}
