package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/object-cueing/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestParticipant(t *testing.T, s *SQLiteStore, mode model.ResponseMode) *model.Participant {
	t.Helper()
	p, err := s.RegisterParticipant(context.Background(), mode, 42)
	if err != nil {
		t.Fatalf("register participant: %v", err)
	}
	return p
}

var testFactors = model.Factors{
	Alignment: model.Vertical,
	Cue:       model.TopLeft,
	Target:    model.CuedObject,
}

func TestRegisterParticipant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p1 := newTestParticipant(t, s, model.ModeSaccade)
	p2 := newTestParticipant(t, s, model.ModeKeypress)

	if p1.ID == "" || p1.UserHash == "" {
		t.Fatalf("expected id and userhash, got %+v", p1)
	}
	if p1.ID == p2.ID || p1.UserHash == p2.UserHash {
		t.Error("expected distinct participants")
	}

	got, err := s.ListParticipants(ctx)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(got))
	}
	if got[0].Seed != 42 {
		t.Errorf("expected seed 42, got %d", got[0].Seed)
	}
}

func TestInsertTrialAndLastID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestParticipant(t, s, model.ModeSaccade)

	if _, err := s.LastID(ctx, TableTrials); err == nil {
		t.Error("expected error for empty table")
	}

	for i := 1; i <= 3; i++ {
		err := s.InsertTrial(ctx, model.TrialResult{
			ParticipantID:  p.ID,
			BlockNum:       1,
			TrialNum:       i,
			SessionType:    model.ModeSaccade,
			Factors:        testFactors,
			TargetAcquired: model.Bool(i%2 == 1),
		})
		if err != nil {
			t.Fatalf("insert trial %d: %v", i, err)
		}
		id, err := s.LastID(ctx, TableTrials)
		if err != nil {
			t.Fatalf("last id: %v", err)
		}
		if id != int64(i) {
			t.Errorf("expected id %d, got %d", i, id)
		}
	}

	trials, err := s.ListTrials(ctx, TrialFilter{ParticipantID: p.ID})
	if err != nil {
		t.Fatalf("list trials: %v", err)
	}
	if len(trials) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(trials))
	}
	got := trials[1]
	if got.TrialNum != 2 || got.Factors != testFactors {
		t.Errorf("unexpected trial: %+v", got)
	}
	if got.TargetAcquired == nil || *got.TargetAcquired {
		t.Errorf("expected target_acquired false, got %v", got.TargetAcquired)
	}
	if got.KeypressRT != nil || got.MovedEyes != nil {
		t.Error("expected keypress fields to be NULL in saccade mode")
	}
}

func TestLastIDUnknownTable(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LastID(context.Background(), "memories; DROP TABLE trials"); err == nil {
		t.Error("expected error for unknown table")
	}
}

func TestSaccadesLinkedToTrial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestParticipant(t, s, model.ModeSaccade)

	s.InsertTrial(ctx, model.TrialResult{
		ParticipantID: p.ID, BlockNum: 1, TrialNum: 1,
		SessionType: model.ModeSaccade, Factors: testFactors, TargetAcquired: model.Bool(true),
	})
	trialID, _ := s.LastID(ctx, TableTrials)

	recs := []model.SaccadeRecord{
		{RT: 130, Accuracy: model.Outside, DistFromTarget: 210.5, EndX: 1000, EndY: 400, Duration: 134},
		{RT: 280, Accuracy: model.Inside, DistFromTarget: 3.2, EndX: 770, EndY: 350, Duration: 150},
	}
	for _, r := range recs {
		r.TrialID = trialID
		r.ParticipantID = p.ID
		if err := s.InsertSaccade(ctx, r); err != nil {
			t.Fatalf("insert saccade: %v", err)
		}
	}

	if err := s.InsertSaccade(ctx, model.SaccadeRecord{ParticipantID: p.ID}); err == nil {
		t.Error("expected error for missing trial id")
	}

	got, err := s.ListSaccades(ctx, SaccadeFilter{TrialID: trialID})
	if err != nil {
		t.Fatalf("list saccades: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 saccades, got %d", len(got))
	}
	if got[1].Accuracy != model.Inside || got[1].Duration != 150 || got[1].TrialID != trialID {
		t.Errorf("unexpected saccade: %+v", got[1])
	}
}

func TestInsertAndListErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestParticipant(t, s, model.ModeKeypress)

	for _, kind := range []model.ErrKind{model.ErrEye, model.ErrEarly, model.ErrEye} {
		err := s.InsertError(ctx, model.ErrorRecord{
			ParticipantID: p.ID, BlockNum: 2, TrialNum: 7,
			SessionType: model.ModeKeypress, Factors: testFactors, ErrType: kind,
		})
		if err != nil {
			t.Fatalf("insert error: %v", err)
		}
	}

	eye, err := s.ListErrors(ctx, ErrorFilter{ParticipantID: p.ID, ErrType: model.ErrEye})
	if err != nil {
		t.Fatalf("list errors: %v", err)
	}
	if len(eye) != 2 {
		t.Fatalf("expected 2 eye errors, got %d", len(eye))
	}
	if eye[0].TrialNum != 7 || eye[0].Factors != testFactors {
		t.Errorf("unexpected error record: %+v", eye[0])
	}

	limited, _ := s.ListErrors(ctx, ErrorFilter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("expected 1 error with limit, got %d", len(limited))
	}
}

func TestExportTrialsRendersNA(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := newTestParticipant(t, s, model.ModeKeypress)

	s.InsertTrial(ctx, model.TrialResult{
		ParticipantID: p.ID, BlockNum: 1, TrialNum: 1, SessionType: model.ModeKeypress,
		Factors:    model.Factors{Alignment: model.Horizontal, Cue: model.BottomRight, Target: model.Catch},
		KeypressRT: model.Int64(model.Timeout), MovedEyes: model.Bool(false),
	})

	rows, err := s.ExportTrials(ctx, p.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if len(row) != len(TrialColumns) {
		t.Fatalf("expected %d columns, got %d", len(TrialColumns), len(row))
	}
	col := func(name string) string {
		for i, c := range TrialColumns {
			if c == name {
				return row[i]
			}
		}
		t.Fatalf("no column %q", name)
		return ""
	}
	if col("target_acquired") != model.NA {
		t.Errorf("expected NA target_acquired, got %q", col("target_acquired"))
	}
	if col("keypress_rt") != "-1" {
		t.Errorf("expected keypress_rt -1, got %q", col("keypress_rt"))
	}
	if col("moved_eyes") != "FALSE" {
		t.Errorf("expected moved_eyes FALSE, got %q", col("moved_eyes"))
	}
	if col("userhash") != p.UserHash {
		t.Errorf("expected userhash %q, got %q", p.UserHash, col("userhash"))
	}
}

func TestRemoveParticipant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	keep := newTestParticipant(t, s, model.ModeSaccade)
	drop := newTestParticipant(t, s, model.ModeSaccade)

	for _, p := range []*model.Participant{keep, drop} {
		s.InsertTrial(ctx, model.TrialResult{
			ParticipantID: p.ID, BlockNum: 1, TrialNum: 1, SessionType: model.ModeSaccade,
			Factors: testFactors, TargetAcquired: model.Bool(true),
		})
		id, _ := s.LastID(ctx, TableTrials)
		s.InsertSaccade(ctx, model.SaccadeRecord{TrialID: id, ParticipantID: p.ID, Accuracy: model.Inside})
		s.InsertError(ctx, model.ErrorRecord{
			ParticipantID: p.ID, BlockNum: 1, TrialNum: 1, SessionType: model.ModeSaccade,
			Factors: testFactors, ErrType: model.ErrKey,
		})
	}

	if err := s.RemoveParticipant(ctx, drop.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveParticipant(ctx, drop.ID); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found, got %v", err)
	}

	ps, _ := s.ListParticipants(ctx)
	if len(ps) != 1 || ps[0].ID != keep.ID {
		t.Fatalf("expected only %s left, got %+v", keep.ID, ps)
	}
	trials, _ := s.ListTrials(ctx, TrialFilter{})
	errs, _ := s.ListErrors(ctx, ErrorFilter{})
	sacc, _ := s.ListSaccades(ctx, SaccadeFilter{})
	if len(trials) != 1 || len(errs) != 1 || len(sacc) != 1 {
		t.Errorf("expected one row per table left, got trials=%d errors=%d saccades=%d", len(trials), len(errs), len(sacc))
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dbPath := filepath.Join(t.TempDir(), "none.db")
	p := newTestParticipant(t, s, model.ModeKeypress)

	s.InsertTrial(ctx, model.TrialResult{
		ParticipantID: p.ID, BlockNum: 1, TrialNum: 1, SessionType: model.ModeKeypress,
		Factors: testFactors, KeypressRT: model.Int64(320), MovedEyes: model.Bool(false),
	})
	s.InsertError(ctx, model.ErrorRecord{
		ParticipantID: p.ID, BlockNum: 1, TrialNum: 2, SessionType: model.ModeKeypress,
		Factors: testFactors, ErrType: model.ErrEarly,
	})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Participants != 1 || st.Trials != 1 || st.Errors != 1 || st.Saccades != 0 {
		t.Errorf("unexpected counts: %+v", st)
	}
	if len(st.Sessions) != 1 || st.Sessions[0].SessionType != "keypress" || st.Sessions[0].Trials != 1 {
		t.Errorf("unexpected session stats: %+v", st.Sessions)
	}
	if len(st.ErrorKinds) != 1 || st.ErrorKinds[0].ErrType != "early" {
		t.Errorf("unexpected error kinds: %+v", st.ErrorKinds)
	}
}
