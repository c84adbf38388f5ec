package runtime

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/pushfold/poker"
	"github.com/lox/pushfold/sdk/solver"
)

// Policy exposes read-only access to a solver chart for sampling actions
// during play.
type Policy struct {
	name  string
	chart *solver.Chart
}

// Load constructs a runtime policy from a stored chart file.
func Load(path string) (*Policy, error) {
	chart, err := solver.LoadChart(path)
	if err != nil {
		return nil, err
	}
	return &Policy{name: path, chart: chart}, nil
}

// New wraps an in-memory chart.
func New(name string, chart *solver.Chart) (*Policy, error) {
	if chart == nil {
		return nil, errors.New("nil chart")
	}
	if err := chart.Validate(); err != nil {
		return nil, err
	}
	return &Policy{name: name, chart: chart}, nil
}

// Baseline names accepted by NewBaseline.
const (
	BaselineAlwaysPush = "always-push"
	BaselineAlwaysCall = "always-call"
	BaselineAlwaysFold = "always-fold"
)

// NewBaseline returns a fixed policy for benchmarking charts. always-push and
// always-call both shove every hand and call every push; always-fold gives up
// every hand in both seats.
func NewBaseline(name string, game solver.GameConfig) (*Policy, error) {
	var v float64
	switch name {
	case BaselineAlwaysPush, BaselineAlwaysCall:
		v = 1
	case BaselineAlwaysFold:
		v = 0
	default:
		return nil, fmt.Errorf("unknown baseline %q", name)
	}
	return New(name, solver.NewChart(game, solver.NewStrategyTable(v), solver.NewStrategyTable(v)))
}

// Name identifies the policy in reports.
func (p *Policy) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

// Chart returns the underlying chart (read-only).
func (p *Policy) Chart() *solver.Chart {
	if p == nil {
		return nil
	}
	return p.chart
}

// Probability returns how often role plays (pushes or calls) with the hole
// cards c1, c2.
func (p *Policy) Probability(role solver.Role, c1, c2 poker.Card) float64 {
	return p.chart.Frequency(role, c1, c2)
}

// Act samples the role's action for the hole cards using rng.
func (p *Policy) Act(role solver.Role, c1, c2 poker.Card, rng *rand.Rand) solver.Action {
	prob := p.Probability(role, c1, c2)
	switch {
	case prob >= 1:
		return solver.ActionPush
	case prob <= 0:
		return solver.ActionFold
	case rng.Float64() < prob:
		return solver.ActionPush
	default:
		return solver.ActionFold
	}
}
