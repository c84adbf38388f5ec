package solver

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/pushfold/internal/evaluator"
	"github.com/lox/pushfold/internal/fileutil"
	"github.com/lox/pushfold/internal/randutil"
)

const checkpointFileVersion = 1

type checkpointSnapshot struct {
	Version   int            `json:"version"`
	SavedAt   time.Time      `json:"saved_at"`
	Iteration int64          `json:"iteration"`
	RNGState  []byte         `json:"rng_state"`
	Game      GameConfig     `json:"game"`
	Training  TrainingConfig `json:"training"`
	Pusher    playerSnapshot `json:"pusher"`
	Caller    playerSnapshot `json:"caller"`
	Stats     TrainingStats  `json:"stats"`
}

// EnableCheckpoints configures the trainer to write a checkpoint to path every
// n iterations and/or whenever interval has passed on the trainer's clock.
// Zero disables either trigger.
func (t *Trainer) EnableCheckpoints(path string, every int, interval time.Duration) {
	t.checkpointPath = path
	t.checkpointEvery = max(every, 0)
	t.checkpointInterval = max(interval, 0)
}

func (t *Trainer) maybeCheckpoint(from, to int64) error {
	if t.checkpointPath == "" {
		return nil
	}
	due := crossed(from, to, int64(t.checkpointEvery))
	if !due && t.checkpointInterval > 0 {
		due = t.clock.Since(t.lastCheckpoint) >= t.checkpointInterval
	}
	if !due {
		return nil
	}
	return t.SaveCheckpoint(t.checkpointPath)
}

// SaveCheckpoint writes a snapshot of the trainer state to the provided path.
// The file is replaced atomically.
func (t *Trainer) SaveCheckpoint(path string) error {
	snap, err := t.buildCheckpoint()
	if err != nil {
		return err
	}
	if err := fileutil.WriteJSONAtomic(path, snap); err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}

	t.statsMu.Lock()
	t.stats.Checkpoints++
	t.statsMu.Unlock()
	t.lastCheckpoint = t.clock.Now()
	return nil
}

// LoadTrainerFromCheckpoint restores a trainer from a previously saved
// checkpoint. Continuing it produces exactly the hands an uninterrupted run
// would have dealt.
func LoadTrainerFromCheckpoint(path string, ranker evaluator.Ranker, opts ...Option) (*Trainer, error) {
	var snap checkpointSnapshot
	if err := fileutil.ReadJSON(path, &snap); err != nil {
		return nil, err
	}
	if snap.Version != checkpointFileVersion {
		return nil, fmt.Errorf("unsupported checkpoint version %d", snap.Version)
	}
	if snap.Iteration < 0 {
		return nil, errors.New("checkpoint iteration cannot be negative")
	}

	trainer, err := NewTrainer(snap.Game, snap.Training, ranker, opts...)
	if err != nil {
		return nil, fmt.Errorf("checkpoint config invalid: %w", err)
	}

	src, err := randutil.Restore(snap.RNGState)
	if err != nil {
		return nil, err
	}
	trainer.pusher = newPlayerStateFromSnapshot(snap.Pusher)
	trainer.caller = newPlayerStateFromSnapshot(snap.Caller)
	trainer.setSource(src)
	trainer.iteration.Store(snap.Iteration)
	trainer.stats = snap.Stats
	trainer.prevPusher = trainer.Average(RolePusher)
	trainer.prevCaller = trainer.Average(RoleCaller)
	return trainer, nil
}

func (t *Trainer) buildCheckpoint() (*checkpointSnapshot, error) {
	state, err := t.src.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("snapshot rng: %w", err)
	}
	return &checkpointSnapshot{
		Version:   checkpointFileVersion,
		SavedAt:   t.clock.Now().UTC(),
		Iteration: t.iteration.Load(),
		RNGState:  state,
		Game:      t.game,
		Training:  t.trainCfg,
		Pusher:    t.pusher.snapshot(),
		Caller:    t.caller.snapshot(),
		Stats:     t.Stats(),
	}, nil
}
