package solver

import (
	"fmt"

	"github.com/lox/pushfold/internal/evaluator"
)

// Role identifies which seat a strategy belongs to.
type Role uint8

const (
	// RolePusher acts first from the small blind: push all-in or fold.
	RolePusher Role = iota
	// RoleCaller faces the push from the big blind: call or fold.
	RoleCaller
)

func (r Role) String() string {
	switch r {
	case RolePusher:
		return "pusher"
	case RoleCaller:
		return "caller"
	default:
		return "unknown"
	}
}

// ParseRole accepts "pusher"/"sb" and "caller"/"bb".
func ParseRole(s string) (Role, error) {
	switch s {
	case "pusher", "sb", "push":
		return RolePusher, nil
	case "caller", "bb", "call":
		return RoleCaller, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// Action is the binary choice each role has. For the caller ActionPush means
// calling the all-in.
type Action uint8

const (
	ActionFold Action = iota
	ActionPush
)

func (a Action) String() string {
	switch a {
	case ActionFold:
		return "fold"
	case ActionPush:
		return "push"
	default:
		return "unknown"
	}
}

// payoffs holds the terminal values of the game in big blinds from the
// pusher's point of view. The caller's values are the negation.
type payoffs struct {
	fold  float64 // pusher folds, forfeiting the small blind
	steal float64 // pusher pushes, caller folds the big blind
	allIn float64 // amount won at showdown
}

func newPayoffs(g GameConfig) payoffs {
	return payoffs{
		fold:  -g.SmallBlind / g.BigBlind,
		steal: 1,
		allIn: g.EffectiveBB(),
	}
}

func (p payoffs) showdown(o evaluator.Outcome) float64 {
	switch o {
	case evaluator.Win:
		return p.allIn
	case evaluator.Lose:
		return -p.allIn
	default:
		return 0
	}
}

// Payoff returns the pusher's result in big blinds for a completed hand.
// outcome is only consulted when both players commit their stacks.
func (g GameConfig) Payoff(push, call bool, outcome evaluator.Outcome) float64 {
	p := newPayoffs(g)
	switch {
	case !push:
		return p.fold
	case !call:
		return p.steal
	default:
		return p.showdown(outcome)
	}
}
