// Package statistics accumulates per-hand results of simulated push/fold play
// and reports win rates with their uncertainty.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// Seats, from the tracked player's point of view.
const (
	SeatPusher = 0
	SeatCaller = 1
	numSeats   = 2
)

// HandResult represents the outcome of a single push/fold hand for the
// tracked player.
type HandResult struct {
	NetBB          float64 // Net big blinds won/lost
	Seed           int64   // Deal seed (for replay)
	Seat           int     // SeatPusher or SeatCaller
	Pushed         bool    // Did the pusher shove?
	Called         bool    // Did the caller call?
	WentToShowdown bool
}

// SeatStats tracks statistics for one seat.
type SeatStats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
}

// Mean is the seat's average result in big blinds per hand.
func (p SeatStats) Mean() float64 {
	if p.Hands == 0 {
		return 0
	}
	return p.SumBB / float64(p.Hands)
}

// Statistics tracks simulation results for one player.
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // Sum of squares for variance calculation
	Values []float64 // Store all values for median/percentile calculation

	ShowdownWins    int     // Hands won at showdown
	NonShowdownWins int     // Hands won without showdown (fold equity)
	ShowdownBB      float64 // BB from showdown (wins AND losses)
	NonShowdownBB   float64 // BB from folds (wins AND losses)
	AllBB           float64 // Total BB for sanity check

	Pushes int // Hands where the pusher shoved
	Calls  int // Hands where a shove was called

	SeatResults [numSeats]SeatStats
}

// Mean returns the arithmetic mean of all results in big blinds per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
	return max(v, 0)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a new hand result into the statistics
func (s *Statistics) Add(result HandResult) {
	netBB := result.NetBB
	s.Hands++
	s.SumBB += netBB
	s.SumBB2 += netBB * netBB
	s.Values = append(s.Values, netBB)

	if netBB > 0 {
		if result.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}
	if result.WentToShowdown {
		s.ShowdownBB += netBB
	} else {
		s.NonShowdownBB += netBB
	}
	s.AllBB += netBB

	if result.Pushed {
		s.Pushes++
		if result.Called {
			s.Calls++
		}
	}

	if seat := result.Seat; seat >= 0 && seat < numSeats {
		s.SeatResults[seat].Hands++
		s.SeatResults[seat].SumBB += netBB
		s.SeatResults[seat].SumBB2 += netBB * netBB
	}
}

// Merge folds other into s, as if its hands had been added after s's.
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	s.AllBB += other.AllBB
	s.Pushes += other.Pushes
	s.Calls += other.Calls
	for i := range s.SeatResults {
		s.SeatResults[i].Hands += other.SeatResults[i].Hands
		s.SeatResults[i].SumBB += other.SeatResults[i].SumBB
		s.SeatResults[i].SumBB2 += other.SeatResults[i].SumBB2
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SeatMean returns the mean result for SeatPusher or SeatCaller.
func (s *Statistics) SeatMean(seat int) float64 {
	if seat < 0 || seat >= numSeats {
		return 0
	}
	return s.SeatResults[seat].Mean()
}

// PushRate is the fraction of hands where the pusher shoved.
func (s *Statistics) PushRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Pushes) / float64(s.Hands)
}

// CallRate is the fraction of shoves that were called.
func (s *Statistics) CallRate() float64 {
	if s.Pushes == 0 {
		return 0
	}
	return float64(s.Calls) / float64(s.Pushes)
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllBB=%.6f, ShowdownBB=%.6f, NonShowdownBB=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}
	if totalWins := s.ShowdownWins + s.NonShowdownWins; totalWins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds total hands (%d)", totalWins, s.Hands)
	}
	if s.Calls > s.Pushes {
		return fmt.Errorf("calls (%d) exceed pushes (%d)", s.Calls, s.Pushes)
	}
	seatHands := 0
	for _, ps := range s.SeatResults {
		seatHands += ps.Hands
	}
	if seatHands != s.Hands {
		return fmt.Errorf("seat hands total (%d) does not match total hands (%d)", seatHands, s.Hands)
	}
	return nil
}
