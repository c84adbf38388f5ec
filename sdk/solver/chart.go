package solver

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/pushfold/internal/fileutil"
	"github.com/lox/pushfold/poker"
)

const chartFileVersion = 1

// Chart captures the averaged strategies produced by a solver run so that
// runtime consumers can look up push and call frequencies without rerunning
// CFR. Pusher holds push probabilities, Caller holds call probabilities.
type Chart struct {
	Version     int            `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Iterations  int            `json:"iterations"`
	Game        GameConfig     `json:"game"`
	Training    TrainingConfig `json:"training"`
	Pusher      *StrategyTable `json:"pusher"`
	Caller      *StrategyTable `json:"caller"`
}

// NewChart builds a chart around fixed tables, such as a hand-written range.
func NewChart(game GameConfig, pusher, caller *StrategyTable) *Chart {
	return &Chart{
		Version:     chartFileVersion,
		GeneratedAt: time.Now().UTC(),
		Game:        game,
		Pusher:      pusher,
		Caller:      caller,
	}
}

// Save writes the chart to disk in JSON format.
func (c *Chart) Save(path string) error {
	if c == nil {
		return errors.New("nil chart")
	}
	if path == "" {
		return errors.New("destination path is required")
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return fileutil.WriteJSONAtomic(path, c)
}

// LoadChart reads a chart from disk and validates it.
func LoadChart(path string) (*Chart, error) {
	var c Chart
	if err := fileutil.ReadJSON(path, &c); err != nil {
		return nil, err
	}
	if c.Version != chartFileVersion {
		return nil, fmt.Errorf("unsupported chart version %d", c.Version)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the game parameters and that both tables hold probabilities.
func (c *Chart) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("chart game invalid: %w", err)
	}
	for _, role := range []Role{RolePusher, RoleCaller} {
		table := c.Strategy(role)
		if table == nil {
			return fmt.Errorf("chart is missing the %s strategy", role)
		}
		var bad error
		table.Each(func(idx poker.HoleIndex, v float64) {
			if bad == nil && (v < 0 || v > 1) {
				bad = fmt.Errorf("%s frequency for %s is %v, outside [0, 1]", role, idx, v)
			}
		})
		if bad != nil {
			return bad
		}
	}
	return nil
}

// Strategy returns the table for role.
func (c *Chart) Strategy(role Role) *StrategyTable {
	if c == nil {
		return nil
	}
	if role == RoleCaller {
		return c.Caller
	}
	return c.Pusher
}

// Frequency is how often role plays (pushes or calls) with the given hand.
func (c *Chart) Frequency(role Role, c1, c2 poker.Card) float64 {
	return c.Strategy(role).Hand(c1, c2)
}
