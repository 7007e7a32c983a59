package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/object-cueing/internal/device"
	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/sim"
	"github.com/rcliao/object-cueing/internal/store"
)

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var factors = model.Factors{Alignment: model.Horizontal, Cue: model.TopRight, Target: model.UncuedAdjacent}

func TestCommitSaccadeTrial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p, err := s.RegisterParticipant(ctx, model.ModeSaccade, 1)
	require.NoError(t, err)
	rec := New(s, nil)

	saccades := []model.SaccadeRecord{
		{RT: 180, Accuracy: model.Outside, DistFromTarget: 150, EndX: 900, EndY: 500, Duration: 184, EndTime: 2140},
		{RT: 300, Accuracy: model.Inside, DistFromTarget: 4, EndX: 1150, EndY: 730, Duration: 124, EndTime: 2260},
	}
	res := model.TrialResult{BlockNum: 1, TrialNum: 3, Factors: factors, TargetAcquired: model.Bool(true)}

	id, err := rec.Commit(ctx, p.ID, model.ModeSaccade, res, saccades)
	require.NoError(t, err)

	trials, err := s.ListTrials(ctx, store.TrialFilter{ParticipantID: p.ID})
	require.NoError(t, err)
	require.Len(t, trials, 1)
	assert.Equal(t, id, trials[0].ID)
	assert.Equal(t, model.ModeSaccade, trials[0].SessionType)

	got, err := s.ListSaccades(ctx, store.SaccadeFilter{TrialID: id})
	require.NoError(t, err)
	want := make([]model.SaccadeRecord, len(saccades))
	for i, sc := range saccades {
		sc.TrialID = id
		sc.ParticipantID = p.ID
		sc.EndTime = 0
		want[i] = sc
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(model.SaccadeRecord{}, "ID")); diff != "" {
		t.Errorf("saccades mismatch (-want +got):\n%s", diff)
	}
}

func TestCommitKeypressTrialSkipsSaccades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p, err := s.RegisterParticipant(ctx, model.ModeKeypress, 1)
	require.NoError(t, err)

	res := model.TrialResult{BlockNum: 2, TrialNum: 1, Factors: factors, KeypressRT: model.Int64(412), MovedEyes: model.Bool(true)}
	stray := []model.SaccadeRecord{{RT: 100, Accuracy: model.Inside}}
	_, err = New(s, nil).Commit(ctx, p.ID, model.ModeKeypress, res, stray)
	require.NoError(t, err)

	got, err := s.ListSaccades(ctx, store.SaccadeFilter{ParticipantID: p.ID})
	require.NoError(t, err)
	assert.Empty(t, got)
}

type failingSink struct {
	insertErr, lastIDErr, saccadeErr error
	saccades                         int
}

func (f *failingSink) InsertTrial(context.Context, model.TrialResult) error { return f.insertErr }
func (f *failingSink) LastID(context.Context, string) (int64, error)      { return 9, f.lastIDErr }
func (f *failingSink) InsertSaccade(context.Context, model.SaccadeRecord) error {
	f.saccades++
	return f.saccadeErr
}

func TestCommitPropagatesSinkErrors(t *testing.T) {
	boom := errors.New("disk full")
	res := model.TrialResult{Factors: factors}
	saccades := []model.SaccadeRecord{{}, {}}

	tests := []struct {
		name string
		sink *failingSink
	}{
		{"insert trial", &failingSink{insertErr: boom}},
		{"last id", &failingSink{lastIDErr: boom}},
		{"insert saccade", &failingSink{saccadeErr: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sink, nil).Commit(context.Background(), "p", model.ModeSaccade, res, saccades)
			assert.ErrorIs(t, err, boom)
			assert.LessOrEqual(t, tt.sink.saccades, 1)
		})
	}
}

func TestResetTurnsFixationRed(t *testing.T) {
	script := &sim.Script{Clock: sim.NewClock(1), Fix: device.White}
	New(&failingSink{}, nil).Reset(script)
	assert.Equal(t, device.Red, script.Fix)
}
