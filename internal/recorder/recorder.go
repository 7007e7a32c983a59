// Package recorder persists completed trials and resets the display between
// attempts.
package recorder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/object-cueing/internal/device"
	"github.com/rcliao/object-cueing/internal/model"
)

// TrialsTable is the table whose last id links saccades to their trial.
const TrialsTable = "trials"

// Sink stores trial results and their saccades.
type Sink interface {
	InsertTrial(ctx context.Context, res model.TrialResult) error
	LastID(ctx context.Context, table string) (int64, error)
	InsertSaccade(ctx context.Context, rec model.SaccadeRecord) error
}

// Recorder writes trial outcomes to a Sink.
type Recorder struct {
	sink Sink
	log  *zap.Logger
}

// New returns a Recorder writing to sink.
func New(sink Sink, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{sink: sink, log: log}
}

// Commit stores res for participantID and returns the assigned trial id.
// In saccade mode each saccade is stored with that trial id.
func (r *Recorder) Commit(ctx context.Context, participantID string, mode model.ResponseMode, res model.TrialResult, saccades []model.SaccadeRecord) (int64, error) {
	res.ParticipantID = participantID
	res.SessionType = mode
	if err := r.sink.InsertTrial(ctx, res); err != nil {
		r.log.Error("insert trial failed", zap.Error(err))
		return 0, fmt.Errorf("commit trial: %w", err)
	}
	trialID, err := r.sink.LastID(ctx, TrialsTable)
	if err != nil {
		r.log.Error("read trial id failed", zap.Error(err))
		return 0, fmt.Errorf("commit trial: %w", err)
	}

	if mode == model.ModeSaccade {
		for i, s := range saccades {
			s.TrialID = trialID
			s.ParticipantID = participantID
			if err := r.sink.InsertSaccade(ctx, s); err != nil {
				r.log.Error("insert saccade failed", zap.Int64("trial_id", trialID), zap.Int("saccade", i), zap.Error(err))
				return trialID, fmt.Errorf("commit saccade %d: %w", i, err)
			}
		}
	}

	r.log.Debug("trial committed",
		zap.Int64("trial_id", trialID),
		zap.Int("block", res.BlockNum),
		zap.Int("trial", res.TrialNum),
		zap.Int("saccades", len(saccades)))
	return trialID, nil
}

// Reset reverts the fixation cross to red for the next attempt.
func (r *Recorder) Reset(d device.Display) {
	d.SetFixation(device.Red)
}
