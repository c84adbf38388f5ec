package solver

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pushfold/internal/evaluator"
	"github.com/lox/pushfold/internal/randutil"
	"github.com/lox/pushfold/poker"
)

// cancelCheckEvery is how many hands run between context checks.
const cancelCheckEvery = 1024

// TrainingStats captures cumulative instrumentation for a training run.
type TrainingStats struct {
	Hands       int64         `json:"hands"`
	Showdowns   int64         `json:"showdowns"`
	Checkpoints int           `json:"checkpoints"`
	Elapsed     time.Duration `json:"elapsed"`
}

// HandsPerSecond is the training throughput so far.
func (s TrainingStats) HandsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Hands) / s.Elapsed.Seconds()
}

// Progress contains metadata emitted during long-running solver operations.
type Progress struct {
	Iteration int
	Stats     TrainingStats
	// Delta is the mean absolute change of both average strategies since the
	// previous report. It trends towards zero as training converges.
	Delta float64
	// PushRange and CallRange are the fractions of starting hands the
	// average strategies play.
	PushRange float64
	CallRange float64
}

// Option customises a Trainer.
type Option func(*Trainer)

// WithClock injects the clock used for timing and time-based checkpoints.
func WithClock(clock quartz.Clock) Option {
	return func(t *Trainer) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// Trainer runs chance-sampled CFR over the heads-up push/fold game. Both
// players are updated from every dealt hand.
type Trainer struct {
	game     GameConfig
	trainCfg TrainingConfig
	ranker   evaluator.Ranker
	pay      payoffs
	opts     RegretUpdateOptions

	pusher *playerState
	caller *playerState

	iteration atomic.Int64
	src       *rand.PCG
	rng       *rand.Rand
	main      *worker
	workers   []*worker
	clock     quartz.Clock

	statsMu sync.Mutex
	stats   TrainingStats

	prevPusher *StrategyTable
	prevCaller *StrategyTable

	checkpointPath     string
	checkpointEvery    int
	checkpointInterval time.Duration
	lastCheckpoint     time.Time
}

// worker holds the scratch state for playing hands. The sequential path uses
// one bound to the trainer's own rng and tables; parallel rounds give each
// worker a private rng and private accumulators.
type worker struct {
	rng    *rand.Rand
	deck   *poker.Deck
	pusher *playerState
	caller *playerState

	deal      poker.HeadsUpDeal
	sd        float64
	sdReady   bool
	showdowns int64
}

// NewTrainer constructs a trainer for the given game. The ranker is shared by
// reference and must be safe for concurrent reads.
func NewTrainer(game GameConfig, trainCfg TrainingConfig, ranker evaluator.Ranker, opts ...Option) (*Trainer, error) {
	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game: %w", err)
	}
	if err := trainCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}
	if ranker == nil {
		return nil, errors.New("hand ranker is required")
	}

	t := &Trainer{
		game:     game,
		trainCfg: trainCfg,
		ranker:   ranker,
		pay:      newPayoffs(game),
		opts:     trainCfg.Variant.updateOptions(),
		pusher:   newPlayerState(trainCfg.InitialStrategy),
		caller:   newPlayerState(trainCfg.InitialStrategy),
		clock:    quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.trainCfg.Seed == 0 {
		t.trainCfg.Seed = t.clock.Now().UnixNano()
	}
	t.setSource(randutil.NewSource(t.trainCfg.Seed))
	t.prevPusher = NewStrategyTable(trainCfg.InitialStrategy)
	t.prevCaller = NewStrategyTable(trainCfg.InitialStrategy)
	return t, nil
}

func (t *Trainer) setSource(src *rand.PCG) {
	t.src = src
	t.rng = rand.New(src)
	t.main = &worker{
		rng:    t.rng,
		deck:   poker.NewDeck(t.rng),
		pusher: t.pusher,
		caller: t.caller,
	}
}

// Run executes CFR iterations until the configured total is reached or ctx is
// cancelled. Progress is reported every ProgressEvery iterations (default 1%
// of the run) and once more at the end.
func (t *Trainer) Run(ctx context.Context, progress func(Progress)) error {
	total := int64(t.trainCfg.Iterations)
	batch := int64(t.progressInterval())
	if t.checkpointInterval > 0 && t.lastCheckpoint.IsZero() {
		t.lastCheckpoint = t.clock.Now()
	}

	for {
		done := t.iteration.Load()
		if done >= total {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		start := t.clock.Now()
		var (
			n         int64
			showdowns int64
			err       error
		)
		if t.trainCfg.Parallel > 1 {
			n = min(total-done, int64(t.trainCfg.Parallel*t.trainCfg.RoundSize))
			showdowns, err = t.parallelRound(ctx, done, n)
		} else {
			n = t.sequentialStep(done, total, batch)
			showdowns = t.sequential(done, n)
		}
		if err != nil {
			return err
		}
		iter := done + n
		t.recordStep(n, showdowns, t.clock.Since(start))

		if err := t.maybeCheckpoint(done, iter); err != nil {
			return err
		}
		if progress != nil && crossed(done, iter, batch) {
			progress(t.progress(iter))
		}
	}

	if progress != nil {
		progress(t.progress(t.iteration.Load()))
	}
	if t.checkpointPath != "" && (t.checkpointEvery > 0 || t.checkpointInterval > 0) {
		if err := t.SaveCheckpoint(t.checkpointPath); err != nil {
			return err
		}
	}
	return nil
}

// sequentialStep sizes the next sequential chunk so that it never runs past a
// cancellation check, a progress report or a checkpoint.
func (t *Trainer) sequentialStep(done, total, batch int64) int64 {
	n := min(total-done, cancelCheckEvery, untilNext(done, batch))
	if t.checkpointEvery > 0 {
		n = min(n, untilNext(done, int64(t.checkpointEvery)))
	}
	return n
}

func untilNext(done, every int64) int64 {
	return every - done%every
}

func crossed(from, to, every int64) bool {
	return every > 0 && to/every > from/every
}

// sequential plays n hands, each seeing the strategy left by the previous one.
func (t *Trainer) sequential(done, n int64) int64 {
	w := t.main
	w.showdowns = 0
	for j := int64(1); j <= n; j++ {
		i1, i2 := t.playHand(w, t.pusher.current, t.caller.current, done+j)
		t.pusher.rematch(i1, t.opts, t.trainCfg.InitialStrategy)
		t.caller.rematch(i2, t.opts, t.trainCfg.InitialStrategy)
	}
	t.iteration.Add(n)
	return w.showdowns
}

// parallelRound splits n hands across the workers. Every worker plays against
// the same snapshot of the current strategies and sums into private deltas,
// which are merged in worker order so the result only depends on the seed,
// the worker count and the round size. A cancelled round is discarded.
func (t *Trainer) parallelRound(ctx context.Context, done, n int64) (int64, error) {
	rngState, err := t.src.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("snapshot rng: %w", err)
	}

	workers := t.ensureWorkers()
	pusherCur := t.pusher.current.Clone()
	callerCur := t.caller.current.Clone()

	count := int64(len(workers))
	share, extra := n/count, n%count
	first := done

	g, gctx := errgroup.WithContext(ctx)
	for i, w := range workers {
		hands := share
		if int64(i) < extra {
			hands++
		}
		start := first
		first += hands

		w.rng = randutil.New(randutil.Split(t.rng))
		w.deck = poker.NewDeck(w.rng)
		w.pusher.reset()
		w.caller.reset()
		w.showdowns = 0

		g.Go(func() error {
			for j := int64(0); j < hands; j++ {
				if j%cancelCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				t.playHand(w, pusherCur, callerCur, start+j+1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if restoreErr := t.src.UnmarshalBinary(rngState); restoreErr != nil {
			return 0, errors.Join(err, restoreErr)
		}
		return 0, err
	}

	var showdowns int64
	for _, w := range workers {
		t.pusher.merge(w.pusher)
		t.caller.merge(w.caller)
		showdowns += w.showdowns
	}
	t.pusher.rematchAll(t.opts, t.trainCfg.InitialStrategy)
	t.caller.rematchAll(t.opts, t.trainCfg.InitialStrategy)
	t.iteration.Add(n)
	return showdowns, nil
}

// ensureWorkers returns Parallel workers, allocating any that are missing.
func (t *Trainer) ensureWorkers() []*worker {
	for len(t.workers) < t.trainCfg.Parallel {
		t.workers = append(t.workers, &worker{pusher: newDelta(), caller: newDelta()})
	}
	return t.workers[:t.trainCfg.Parallel]
}

// playHand deals one hand and accumulates regrets for both seats, reading
// the current strategies from pusherCur and callerCur. iter is the 1-based
// iteration number, used for linear averaging.
func (t *Trainer) playHand(w *worker, pusherCur, callerCur *StrategyTable, iter int64) (poker.HoleIndex, poker.HoleIndex) {
	w.deck.DealHeadsUp(&w.deal)
	w.sdReady = false

	i1 := poker.Canonicalize(w.deal.Pusher[0], w.deal.Pusher[1])
	i2 := poker.Canonicalize(w.deal.Caller[0], w.deal.Caller[1])
	p := pusherCur.At(i1)
	q := callerCur.At(i2)
	weight := t.opts.iterationWeight(iter)
	pay := t.pay

	if t.trainCfg.Sampling == SamplingModeExternal {
		t.sampledHand(w, i1, i2, p, q, weight)
		return i1, i2
	}

	uPush := pay.steal
	if q > 0 {
		uPush = q*t.showdown(w) + (1-q)*pay.steal
	}
	uFold := pay.fold
	u := p*uPush + (1-p)*uFold
	w.pusher.accumulate(i1, uPush-u, uFold-u, p, weight)

	// The caller only acts after a push, so its regrets carry the pusher's
	// reach probability.
	var rCall, rFold float64
	if p > 0 {
		vCall := -t.showdown(w)
		vFold := -pay.steal
		v := q*vCall + (1-q)*vFold
		rCall, rFold = p*(vCall-v), p*(vFold-v)
	}
	w.caller.accumulate(i2, rCall, rFold, q, weight)
	return i1, i2
}

// sampledHand is the external-sampling update: each seat enumerates its own
// two actions against one sampled opponent action.
func (t *Trainer) sampledHand(w *worker, i1, i2 poker.HoleIndex, p, q, weight float64) {
	pay := t.pay

	called := w.rng.Float64() < q
	uPush := pay.steal
	if called {
		uPush = t.showdown(w)
	}
	u := p*uPush + (1-p)*pay.fold
	w.pusher.accumulate(i1, uPush-u, pay.fold-u, p, weight)

	if w.rng.Float64() >= p {
		return
	}
	vCall := -t.showdown(w)
	vFold := -pay.steal
	v := q*vCall + (1-q)*vFold
	w.caller.accumulate(i2, vCall-v, vFold-v, q, weight)
}

// showdown evaluates the current deal at most once.
func (t *Trainer) showdown(w *worker) float64 {
	if !w.sdReady {
		outcome := evaluator.Showdown(t.ranker, w.deal.Pusher, w.deal.Caller, &w.deal.Board)
		w.sd = t.pay.showdown(outcome)
		w.sdReady = true
		w.showdowns++
	}
	return w.sd
}

func (t *Trainer) recordStep(hands, showdowns int64, elapsed time.Duration) {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	t.stats.Hands += hands
	t.stats.Showdowns += showdowns
	t.stats.Elapsed += elapsed
}

func (t *Trainer) progress(iter int64) Progress {
	pusherAvg := t.Average(RolePusher)
	callerAvg := t.Average(RoleCaller)
	delta := (pusherAvg.MeanAbsDiff(t.prevPusher) + callerAvg.MeanAbsDiff(t.prevCaller)) / 2
	t.prevPusher, t.prevCaller = pusherAvg, callerAvg
	return Progress{
		Iteration: int(iter),
		Stats:     t.Stats(),
		Delta:     delta,
		PushRange: pusherAvg.Range(),
		CallRange: callerAvg.Range(),
	}
}

func (t *Trainer) progressInterval() int {
	if n := t.trainCfg.ProgressEvery; n > 0 {
		return n
	}
	return max(t.trainCfg.Iterations/100, 1)
}

func (t *Trainer) state(role Role) *playerState {
	if role == RoleCaller {
		return t.caller
	}
	return t.pusher
}

// Average returns a copy of the role's average strategy. Categories that were
// never visited report the initial strategy value.
func (t *Trainer) Average(role Role) *StrategyTable {
	return t.state(role).averageTable(t.trainCfg.InitialStrategy)
}

// Current returns a copy of the role's regret-matched strategy.
func (t *Trainer) Current(role Role) *StrategyTable {
	return t.state(role).current.Clone()
}

// Visits reports how many times the role's category idx has been updated.
func (t *Trainer) Visits(role Role, idx poker.HoleIndex) int64 {
	return t.state(role).visits[idx.Row][idx.Col]
}

// Chart materialises the average strategies produced so far.
func (t *Trainer) Chart() *Chart {
	return &Chart{
		Version:     chartFileVersion,
		GeneratedAt: t.clock.Now().UTC(),
		Iterations:  int(t.iteration.Load()),
		Game:        t.game,
		Training:    t.trainCfg,
		Pusher:      t.Average(RolePusher),
		Caller:      t.Average(RoleCaller),
	}
}

// Stats returns cumulative statistics, including those of resumed runs.
func (t *Trainer) Stats() TrainingStats {
	t.statsMu.Lock()
	defer t.statsMu.Unlock()
	return t.stats
}

func (t *Trainer) Game() GameConfig {
	return t.game
}

func (t *Trainer) TrainingConfig() TrainingConfig {
	return t.trainCfg
}

func (t *Trainer) Iteration() int64 {
	return t.iteration.Load()
}

func (t *Trainer) SetTotalIterations(n int) error {
	current := int(t.iteration.Load())
	if n < current {
		return fmt.Errorf("total iterations %d less than completed %d", n, current)
	}
	t.trainCfg.Iterations = n
	return nil
}

func (t *Trainer) SetProgressEvery(n int) {
	if n < 0 {
		n = 0
	}
	t.trainCfg.ProgressEvery = n
}

// SetParallel changes the worker count, typically after resuming a
// checkpoint on a different machine.
func (t *Trainer) SetParallel(workers, roundSize int) error {
	cfg := t.trainCfg
	cfg.Parallel = workers
	if roundSize > 0 {
		cfg.RoundSize = roundSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.trainCfg = cfg
	return nil
}
