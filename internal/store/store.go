// Package store provides the experiment data sink and its SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/object-cueing/internal/model"
)

// Table names.
const (
	TableParticipants = "participants"
	TableTrials       = "trials"
	TableErrors       = "trials_err"
	TableSaccades     = "saccades"
)

// TrialFilter selects trials to list.
type TrialFilter struct {
	ParticipantID string
	BlockNum      int // 0 means all blocks
	Limit         int // 0 means no limit
}

// ErrorFilter selects aborted attempts to list.
type ErrorFilter struct {
	ParticipantID string
	ErrType       model.ErrKind
	Limit         int
}

// SaccadeFilter selects saccades to list.
type SaccadeFilter struct {
	ParticipantID string
	TrialID       int64
}

// Store defines the experiment storage interface.
type Store interface {
	// RegisterParticipant creates a participant for a new session.
	RegisterParticipant(ctx context.Context, mode model.ResponseMode, seed int64) (*model.Participant, error)

	// InsertTrial stores a completed trial. Use LastID to read its id.
	InsertTrial(ctx context.Context, res model.TrialResult) error

	// LastID returns the most recently assigned id in table.
	LastID(ctx context.Context, table string) (int64, error)

	// InsertSaccade stores one saccade; rec.TrialID must be set.
	InsertSaccade(ctx context.Context, rec model.SaccadeRecord) error

	// InsertError stores an aborted attempt.
	InsertError(ctx context.Context, rec model.ErrorRecord) error

	ListTrials(ctx context.Context, f TrialFilter) ([]model.TrialResult, error)
	ListErrors(ctx context.Context, f ErrorFilter) ([]model.ErrorRecord, error)
	ListSaccades(ctx context.Context, f SaccadeFilter) ([]model.SaccadeRecord, error)
	ListParticipants(ctx context.Context) ([]model.Participant, error)

	// RemoveParticipant deletes a participant and all their data.
	RemoveParticipant(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
