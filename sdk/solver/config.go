package solver

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// SamplingMode controls how opponent actions are handled during an iteration.
type SamplingMode uint8

const (
	SamplingModeExternal SamplingMode = iota
	SamplingModeFullTraversal
)

func (m SamplingMode) String() string {
	switch m {
	case SamplingModeExternal:
		return "external"
	case SamplingModeFullTraversal:
		return "full"
	default:
		return "unknown"
	}
}

// ParseSamplingMode accepts the names produced by SamplingMode.String.
func ParseSamplingMode(s string) (SamplingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "external":
		return SamplingModeExternal, nil
	case "full", "":
		return SamplingModeFullTraversal, nil
	default:
		return 0, fmt.Errorf("unknown sampling mode %q (want full or external)", s)
	}
}

// MarshalText lets configs and checkpoints carry the mode by name.
func (m SamplingMode) MarshalText() ([]byte, error) {
	if m > SamplingModeFullTraversal {
		return nil, fmt.Errorf("invalid sampling mode %d", m)
	}
	return []byte(m.String()), nil
}

func (m *SamplingMode) UnmarshalText(b []byte) error {
	v, err := ParseSamplingMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Variant selects the regret accumulation rule.
type Variant uint8

const (
	// VariantCFR keeps raw regret sums and averages every iteration equally.
	VariantCFR Variant = iota
	// VariantCFRPlus floors accumulated regret at zero and weights iteration t
	// by t in the average strategy.
	VariantCFRPlus
)

func (v Variant) String() string {
	switch v {
	case VariantCFR:
		return "cfr"
	case VariantCFRPlus:
		return "cfr+"
	default:
		return "unknown"
	}
}

// ParseVariant accepts "cfr" and "cfr+" (also "cfrplus").
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cfr", "":
		return VariantCFR, nil
	case "cfr+", "cfrplus", "cfr-plus":
		return VariantCFRPlus, nil
	default:
		return 0, fmt.Errorf("unknown variant %q (want cfr or cfr+)", s)
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	if v > VariantCFRPlus {
		return nil, fmt.Errorf("invalid variant %d", v)
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// GameConfig describes the single push/fold decision being solved. Amounts are
// in chips; payoffs are reported in big blinds.
type GameConfig struct {
	SmallBlind  float64 `json:"small_blind"`
	BigBlind    float64 `json:"big_blind"`
	PusherStack float64 `json:"pusher_stack"`
	CallerStack float64 `json:"caller_stack"`
}

// Validate ensures the game can be played: positive blinds and both players
// able to post the big blind.
func (g GameConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"small blind", g.SmallBlind},
		{"big blind", g.BigBlind},
		{"pusher stack", g.PusherStack},
		{"caller stack", g.CallerStack},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite", f.name)
		}
	}
	if g.SmallBlind <= 0 {
		return errors.New("small blind must be > 0")
	}
	if g.BigBlind < g.SmallBlind {
		return errors.New("big blind must be >= small blind")
	}
	if g.PusherStack < g.BigBlind {
		return errors.New("pusher stack must cover the big blind")
	}
	if g.CallerStack < g.BigBlind {
		return errors.New("caller stack must cover the big blind")
	}
	return nil
}

// EffectiveStack is the most either player can win or lose at showdown.
func (g GameConfig) EffectiveStack() float64 {
	return min(g.PusherStack, g.CallerStack)
}

// EffectiveBB is the effective stack measured in big blinds.
func (g GameConfig) EffectiveBB() float64 {
	return g.EffectiveStack() / g.BigBlind
}

// TrainingConfig aggregates parameters that control CFR execution.
type TrainingConfig struct {
	Iterations int   `json:"iterations"`
	Seed       int64 `json:"seed"`
	// Parallel is the number of workers; 1 trains sequentially.
	Parallel int `json:"parallel"`
	// RoundSize is how many hands each worker plays per parallel round.
	RoundSize     int          `json:"round_size"`
	ProgressEvery int          `json:"progress_every"`
	Variant       Variant      `json:"variant"`
	Sampling      SamplingMode `json:"sampling"`
	// InitialStrategy seeds every cell's push probability and is the
	// regret-matching fallback when no action has positive regret.
	InitialStrategy float64 `json:"initial_strategy"`
}

// Validate ensures the training parameters are safe to use.
func (c TrainingConfig) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.Parallel <= 0 {
		return errors.New("parallel must be > 0")
	}
	if c.Parallel > 1 && c.RoundSize <= 0 {
		return errors.New("round size must be > 0 when training in parallel")
	}
	if c.RoundSize < 0 {
		return errors.New("round size cannot be negative")
	}
	if c.ProgressEvery < 0 {
		return errors.New("progress interval cannot be negative")
	}
	if c.Variant > VariantCFRPlus {
		return errors.New("invalid variant")
	}
	if c.Sampling > SamplingModeFullTraversal {
		return errors.New("invalid sampling mode")
	}
	if math.IsNaN(c.InitialStrategy) || c.InitialStrategy < 0 || c.InitialStrategy > 1 {
		return errors.New("initial strategy must be within [0, 1]")
	}
	return nil
}

// DefaultGameConfig is the 10 big blind game with 0.5/1 blinds.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		SmallBlind:  0.5,
		BigBlind:    1,
		PusherStack: 10,
		CallerStack: 10,
	}
}

// DefaultTrainingConfig returns the standard one million iteration run.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Iterations:      1_000_000,
		Seed:            1,
		Parallel:        1,
		RoundSize:       4096,
		ProgressEvery:   0,
		Variant:         VariantCFR,
		Sampling:        SamplingModeFullTraversal,
		InitialStrategy: 0.5,
	}
}
