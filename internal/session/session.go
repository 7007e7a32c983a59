// Package session runs blocks of trials for one participant, recycling
// aborted attempts until every block is complete.
package session

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/rcliao/object-cueing/internal/device"
	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/recorder"
	"github.com/rcliao/object-cueing/internal/trial"
)

// BlockMessage is shown before every block after the first.
const BlockMessage = "Completed block %d of %d. Press any key to continue."

// Attempter runs a single trial attempt.
type Attempter interface {
	Mode() model.ResponseMode
	Run(ctx context.Context, a trial.Attempt) (trial.Outcome, error)
}

// Registrar registers the session's participant.
type Registrar interface {
	RegisterParticipant(ctx context.Context, mode model.ResponseMode, seed int64) (*model.Participant, error)
}

// Config sizes a session.
type Config struct {
	Blocks         int
	TrialsPerBlock int
	Seed           int64
	// Design is the pool of factor combinations dealt into each block.
	// Empty means FullDesign for the runner's mode.
	Design []model.Factors
}

// Deps are the collaborators of a session.
type Deps struct {
	Trials       Attempter
	Recorder     *recorder.Recorder
	Participants Registrar
	Display      device.Display
	Keys         device.KeySource
	Log          *zap.Logger
}

// Result tallies a finished (or interrupted) session.
type Result struct {
	Participant *model.Participant    `json:"participant"`
	Completed   int                   `json:"completed"`
	Attempts    int                   `json:"attempts"`
	Aborted     map[model.ErrKind]int `json:"aborted"`
}

// Runner drives a session.
type Runner struct {
	cfg  Config
	deps Deps
	rng  *rand.Rand
	log  *zap.Logger
}

// NewRunner validates cfg and deps.
func NewRunner(cfg Config, deps Deps) (*Runner, error) {
	if deps.Trials == nil || deps.Recorder == nil || deps.Participants == nil || deps.Display == nil || deps.Keys == nil {
		return nil, fmt.Errorf("new session: missing collaborator")
	}
	if cfg.Blocks <= 0 || cfg.TrialsPerBlock <= 0 {
		return nil, fmt.Errorf("new session: blocks and trials per block must be positive, got %d x %d", cfg.Blocks, cfg.TrialsPerBlock)
	}
	mode := deps.Trials.Mode()
	if len(cfg.Design) == 0 {
		cfg.Design = FullDesign(mode)
	}
	for i, f := range cfg.Design {
		if err := f.Validate(mode); err != nil {
			return nil, fmt.Errorf("new session: design row %d: %w", i+1, err)
		}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Runner{
		cfg:  cfg,
		deps: deps,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		log:  deps.Log,
	}, nil
}

// Run registers a participant and runs every block. The returned Result is
// non-nil whenever a participant was registered, even on error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	mode := r.deps.Trials.Mode()
	p, err := r.deps.Participants.RegisterParticipant(ctx, mode, r.cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("register participant: %w", err)
	}
	res := &Result{Participant: p, Aborted: map[model.ErrKind]int{}}
	log := r.log.With(zap.String("participant", p.ID), zap.String("mode", string(mode)))
	log.Info("session started",
		zap.Int("blocks", r.cfg.Blocks),
		zap.Int("trials_per_block", r.cfg.TrialsPerBlock),
		zap.Int64("seed", r.cfg.Seed))

	for block := 1; block <= r.cfg.Blocks; block++ {
		if block > 1 {
			r.deps.Keys.Flush()
			if err := r.deps.Display.Message(ctx, fmt.Sprintf(BlockMessage, block-1, r.cfg.Blocks)); err != nil {
				return res, fmt.Errorf("block %d: %w", block, err)
			}
		}
		if err := r.block(ctx, p, block, res); err != nil {
			return res, err
		}
		log.Info("block completed", zap.Int("block", block), zap.Int("completed", res.Completed), zap.Int("attempts", res.Attempts))
	}

	log.Info("session completed", zap.Int("completed", res.Completed), zap.Int("attempts", res.Attempts))
	return res, nil
}

func (r *Runner) block(ctx context.Context, p *model.Participant, block int, res *Result) error {
	deck := NewDeck(r.cfg.Design, r.cfg.TrialsPerBlock, r.rng)
	trialNum := 1
	for {
		f, ok := deck.Draw()
		if !ok {
			return nil
		}
		out, err := r.deps.Trials.Run(ctx, trial.Attempt{
			ParticipantID: p.ID,
			BlockNum:      block,
			TrialNum:      trialNum,
			Factors:       f,
		})
		r.deps.Recorder.Reset(r.deps.Display)
		res.Attempts++
		if err != nil {
			return fmt.Errorf("block %d trial %d: %w", block, trialNum, err)
		}

		if !out.Completed() {
			res.Aborted[out.Aborted]++
			deck.Reinsert(f)
			continue
		}
		if _, err := r.deps.Recorder.Commit(ctx, p.ID, r.deps.Trials.Mode(), *out.Result, out.Saccades); err != nil {
			return fmt.Errorf("block %d trial %d: %w", block, trialNum, err)
		}
		res.Completed++
		trialNum++
	}
}
