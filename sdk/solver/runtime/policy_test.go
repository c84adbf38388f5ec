package runtime

import (
	rand "math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/lox/pushfold/poker"
	"github.com/lox/pushfold/sdk/solver"
)

func TestPolicyLoadAndProbability(t *testing.T) {
	pusher := solver.NewStrategyTable(0)
	pusher.SetAt(poker.HoleIndex{Row: 12, Col: 11}, 0.7) // AKs
	chart := solver.NewChart(solver.DefaultGameConfig(), pusher, solver.NewStrategyTable(0.2))

	path := filepath.Join(t.TempDir(), "chart.json")
	if err := chart.Save(path); err != nil {
		t.Fatalf("save chart: %v", err)
	}

	policy, err := Load(path)
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if policy.Name() != path {
		t.Fatalf("expected name %q, got %q", path, policy.Name())
	}

	aks := poker.MustParseCards("KhAh")
	if got := policy.Probability(solver.RolePusher, aks[0], aks[1]); diff(got, 0.7) > 1e-9 {
		t.Fatalf("expected push probability 0.7, got %v", got)
	}
	ako := poker.MustParseCards("AhKd")
	if got := policy.Probability(solver.RolePusher, ako[0], ako[1]); got != 0 {
		t.Fatalf("expected offsuit to stay at 0, got %v", got)
	}
	if got := policy.Probability(solver.RoleCaller, ako[0], ako[1]); diff(got, 0.2) > 1e-9 {
		t.Fatalf("expected call probability 0.2, got %v", got)
	}
}

func TestPolicyActSamplesFrequencies(t *testing.T) {
	pusher := solver.NewStrategyTable(0.3)
	policy, err := New("test", solver.NewChart(solver.DefaultGameConfig(), pusher, solver.NewStrategyTable(1)))
	if err != nil {
		t.Fatalf("new policy: %v", err)
	}

	rng := rand.New(rand.NewPCG(1, 2))
	cards := poker.MustParseCards("7c2d")
	pushes := 0
	const n = 20000
	for range n {
		if policy.Act(solver.RolePusher, cards[0], cards[1], rng) == solver.ActionPush {
			pushes++
		}
		if policy.Act(solver.RoleCaller, cards[0], cards[1], rng) != solver.ActionPush {
			t.Fatalf("pure call strategy folded")
		}
	}
	if freq := float64(pushes) / n; diff(freq, 0.3) > 0.02 {
		t.Fatalf("expected push frequency near 0.3, got %v", freq)
	}
}

func TestPolicyBaselines(t *testing.T) {
	game := solver.DefaultGameConfig()
	cards := poker.MustParseCards("AsKs")

	for _, tc := range []struct {
		name string
		want float64
	}{
		{BaselineAlwaysPush, 1},
		{BaselineAlwaysCall, 1},
		{BaselineAlwaysFold, 0},
	} {
		policy, err := NewBaseline(tc.name, game)
		if err != nil {
			t.Fatalf("baseline %s: %v", tc.name, err)
		}
		for _, role := range []solver.Role{solver.RolePusher, solver.RoleCaller} {
			if got := policy.Probability(role, cards[0], cards[1]); got != tc.want {
				t.Fatalf("%s %s probability = %v, want %v", tc.name, role, got, tc.want)
			}
		}
	}

	if _, err := NewBaseline("always-limp", game); err == nil {
		t.Fatalf("expected unknown baseline to fail")
	}
}

func TestPolicyRejectsInvalidCharts(t *testing.T) {
	if _, err := New("nil", nil); err == nil {
		t.Fatalf("expected error for nil chart")
	}
	bad := solver.NewChart(solver.DefaultGameConfig(), solver.NewStrategyTable(2), solver.NewStrategyTable(0))
	if _, err := New("bad", bad); err == nil {
		t.Fatalf("expected error for out-of-range chart")
	}

	var p *Policy
	if p.Chart() != nil || p.Name() != "" {
		t.Fatalf("nil policy should expose nothing")
	}
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
