// Package saccade classifies saccade-end events made during the response
// window of a saccade-mode trial.
package saccade

import (
	"context"

	"go.uber.org/zap"

	"github.com/rcliao/object-cueing/internal/device"
	"github.com/rcliao/object-cueing/internal/model"
)

const (
	// DefaultCorrection is added to saccade start times when computing
	// durations, to account for sampler latency.
	DefaultCorrection int64 = 4
	// DefaultMaxStored is the number of saccades stored per trial.
	DefaultMaxStored = 3
)

// Feed drains pending saccade-end events.
type Feed interface {
	SaccadeEnds() []model.SaccadeEvent
}

// Classifier turns saccade-end events into SaccadeRecords.
type Classifier struct {
	// Center and FixationRadius define the fixation boundary. Saccades
	// ending inside it are not goal directed and are ignored.
	Center         model.Point
	FixationRadius float64
	// TargetRadius is the acceptance radius around the target.
	TargetRadius float64
	Correction   int64
	MaxStored    int

	log *zap.Logger
}

// New returns a classifier using radius for both the fixation and target
// boundaries, with the default correction and storage cap.
func New(center model.Point, radius float64, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{
		Center:         center,
		FixationRadius: radius,
		TargetRadius:   radius,
		Correction:     DefaultCorrection,
		MaxStored:      DefaultMaxStored,
		log:            log,
	}
}

// State is the per-trial classification state. A fresh State is used for
// every trial.
type State struct {
	Records  []model.SaccadeRecord
	Acquired bool
	// Classified counts goal-directed saccades, stored or not.
	Classified int
	// Ignored counts saccades that ended inside the fixation boundary.
	Ignored int
}

// Process classifies one drained batch of events in arrival order. Once the
// target is acquired the remaining events are left unprocessed.
//
// Saccades ending inside the fixation boundary are dropped before they reach
// the duration chain, so a later saccade's duration spans any fixational
// micro-saccades made in between. Whether those should break the chain is
// an open question; the current behaviour is kept deliberately.
func (c *Classifier) Process(st *State, onset int64, target model.Point, events []model.SaccadeEvent) {
	for _, ev := range events {
		if st.Acquired {
			return
		}
		if model.Distance(ev.End, c.Center) <= c.FixationRadius {
			st.Ignored++
			continue
		}

		dist := model.Distance(ev.End, target)
		acc := model.Outside
		if dist <= c.TargetRadius {
			acc = model.Inside
		}

		var duration int64
		if n := len(st.Records); n > 0 {
			duration = ev.StartTime + c.Correction - st.Records[n-1].EndTime
		} else {
			duration = ev.StartTime + c.Correction - onset
		}

		st.Classified++
		if len(st.Records) < c.MaxStored {
			st.Records = append(st.Records, model.SaccadeRecord{
				RT:             ev.StartTime - onset,
				Accuracy:       acc,
				DistFromTarget: dist,
				StartX:         ev.Start.X,
				StartY:         ev.Start.Y,
				EndX:           ev.End.X,
				EndY:           ev.End.Y,
				Duration:       duration,
				EndTime:        ev.EndTime,
			})
		}
		c.log.Debug("saccade",
			zap.String("accuracy", string(acc)),
			zap.Float64("dist_from_target", dist),
			zap.Int64("duration", duration),
			zap.Int("stored", len(st.Records)))

		if acc == model.Inside {
			st.Acquired = true
		}
	}
}

// Run polls feed once per refresh until the target is acquired or window ms
// have passed since onset.
func (c *Classifier) Run(ctx context.Context, clock device.Clock, feed Feed, refresh func(), onset int64, target model.Point, window int64) (*State, error) {
	st := &State{}
	for clock.Now()-onset < window && !st.Acquired {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		refresh()
		c.Process(st, onset, target, feed.SaccadeEnds())
		clock.Yield()
	}
	return st, nil
}
