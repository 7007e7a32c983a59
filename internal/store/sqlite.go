package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/object-cueing/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS participants (
		id           TEXT PRIMARY KEY,
		userhash     TEXT NOT NULL UNIQUE,
		session_type TEXT NOT NULL,
		random_seed  INTEGER NOT NULL,
		created_at   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trials (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		participant_id  TEXT NOT NULL REFERENCES participants(id),
		block_num       INTEGER NOT NULL,
		trial_num       INTEGER NOT NULL,
		session_type    TEXT NOT NULL,
		box_alignment   TEXT NOT NULL,
		cue_location    TEXT NOT NULL,
		target_location TEXT NOT NULL,
		target_acquired INTEGER,
		keypress_rt     INTEGER,
		moved_eyes      INTEGER,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trials_participant ON trials(participant_id, block_num, trial_num);

	CREATE TABLE IF NOT EXISTS trials_err (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		participant_id  TEXT NOT NULL REFERENCES participants(id),
		block_num       INTEGER NOT NULL,
		trial_num       INTEGER NOT NULL,
		session_type    TEXT NOT NULL,
		cue_location    TEXT NOT NULL,
		target_location TEXT NOT NULL,
		box_alignment   TEXT NOT NULL,
		err_type        TEXT NOT NULL,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trials_err_participant ON trials_err(participant_id, err_type);

	CREATE TABLE IF NOT EXISTS saccades (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		participant_id   TEXT NOT NULL REFERENCES participants(id),
		trial_id         INTEGER NOT NULL REFERENCES trials(id),
		rt               INTEGER NOT NULL,
		accuracy         TEXT NOT NULL,
		dist_from_target REAL NOT NULL,
		start_x          REAL NOT NULL,
		start_y          REAL NOT NULL,
		end_x            REAL NOT NULL,
		end_y            REAL NOT NULL,
		duration         INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_saccades_trial ON saccades(trial_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) RegisterParticipant(ctx context.Context, mode model.ResponseMode, seed int64) (*model.Participant, error) {
	now := time.Now().UTC()
	p := &model.Participant{
		ID:        s.newID(),
		UserHash:  uuid.NewString(),
		Mode:      mode,
		Seed:      seed,
		CreatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (id, userhash, session_type, random_seed, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.UserHash, string(p.Mode), p.Seed, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, now.Format(time.RFC3339))
	return p, nil
}

func (s *SQLiteStore) InsertTrial(ctx context.Context, res model.TrialResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trials (participant_id, block_num, trial_num, session_type, box_alignment, cue_location,
		                     target_location, target_acquired, keypress_rt, moved_eyes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ParticipantID, res.BlockNum, res.TrialNum, string(res.SessionType),
		string(res.Alignment), string(res.Cue), string(res.Target),
		nullBool(res.TargetAcquired), nullInt(res.KeypressRT), nullBool(res.MovedEyes),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert trial: %w", err)
	}
	return nil
}

var idTables = map[string]bool{
	TableTrials:   true,
	TableErrors:   true,
	TableSaccades: true,
}

func (s *SQLiteStore) LastID(ctx context.Context, table string) (int64, error) {
	if !idTables[table] {
		return 0, fmt.Errorf("last id: unknown table %q", table)
	}
	var id sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM `+table).Scan(&id); err != nil {
		return 0, fmt.Errorf("last id from %s: %w", table, err)
	}
	if !id.Valid {
		return 0, fmt.Errorf("last id from %s: table is empty", table)
	}
	return id.Int64, nil
}

func (s *SQLiteStore) InsertSaccade(ctx context.Context, r model.SaccadeRecord) error {
	if r.TrialID <= 0 {
		return fmt.Errorf("insert saccade: invalid trial id %d", r.TrialID)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saccades (participant_id, trial_id, rt, accuracy, dist_from_target,
		                       start_x, start_y, end_x, end_y, duration)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ParticipantID, r.TrialID, r.RT, string(r.Accuracy), r.DistFromTarget,
		r.StartX, r.StartY, r.EndX, r.EndY, r.Duration)
	if err != nil {
		return fmt.Errorf("insert saccade: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertError(ctx context.Context, r model.ErrorRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trials_err (participant_id, block_num, trial_num, session_type, cue_location,
		                         target_location, box_alignment, err_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ParticipantID, r.BlockNum, r.TrialNum, string(r.SessionType), string(r.Cue),
		string(r.Target), string(r.Alignment), string(r.ErrType),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert trial error: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListTrials(ctx context.Context, f TrialFilter) ([]model.TrialResult, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	if f.ParticipantID != "" {
		where = append(where, "participant_id = ?")
		args = append(args, f.ParticipantID)
	}
	if f.BlockNum > 0 {
		where = append(where, "block_num = ?")
		args = append(args, f.BlockNum)
	}
	query := `SELECT id, participant_id, block_num, trial_num, session_type, box_alignment, cue_location,
	                 target_location, target_acquired, keypress_rt, moved_eyes, created_at
	          FROM trials WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TrialResult
	for rows.Next() {
		r, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListErrors(ctx context.Context, f ErrorFilter) ([]model.ErrorRecord, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	if f.ParticipantID != "" {
		where = append(where, "participant_id = ?")
		args = append(args, f.ParticipantID)
	}
	if f.ErrType != "" {
		where = append(where, "err_type = ?")
		args = append(args, string(f.ErrType))
	}
	query := `SELECT id, participant_id, block_num, trial_num, session_type, cue_location,
	                 target_location, box_alignment, err_type, created_at
	          FROM trials_err WHERE ` + strings.Join(where, " AND ") + ` ORDER BY id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ErrorRecord
	for rows.Next() {
		var r model.ErrorRecord
		var mode, cue, target, align, kind, createdAt string
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.BlockNum, &r.TrialNum, &mode, &cue,
			&target, &align, &kind, &createdAt); err != nil {
			return nil, err
		}
		r.SessionType = model.ResponseMode(mode)
		r.Factors = model.Factors{
			Alignment: model.BoxAlignment(align),
			Cue:       model.CueLocation(cue),
			Target:    model.TargetLocation(target),
		}
		r.ErrType = model.ErrKind(kind)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListSaccades(ctx context.Context, f SaccadeFilter) ([]model.SaccadeRecord, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	if f.ParticipantID != "" {
		where = append(where, "participant_id = ?")
		args = append(args, f.ParticipantID)
	}
	if f.TrialID > 0 {
		where = append(where, "trial_id = ?")
		args = append(args, f.TrialID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, participant_id, trial_id, rt, accuracy, dist_from_target,
		        start_x, start_y, end_x, end_y, duration
		 FROM saccades WHERE `+strings.Join(where, " AND ")+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SaccadeRecord
	for rows.Next() {
		var r model.SaccadeRecord
		var acc string
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.TrialID, &r.RT, &acc, &r.DistFromTarget,
			&r.StartX, &r.StartY, &r.EndX, &r.EndY, &r.Duration); err != nil {
			return nil, err
		}
		r.Accuracy = model.Accuracy(acc)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListParticipants(ctx context.Context) ([]model.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, userhash, session_type, random_seed, created_at FROM participants ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		var p model.Participant
		var mode, createdAt string
		if err := rows.Scan(&p.ID, &p.UserHash, &mode, &p.Seed, &createdAt); err != nil {
			return nil, err
		}
		p.Mode = model.ResponseMode(mode)
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RemoveParticipant(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE id = ?`, id).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("participant not found: %s", id)
	}

	for _, q := range []string{
		`DELETE FROM saccades WHERE participant_id = ?`,
		`DELETE FROM trials WHERE participant_id = ?`,
		`DELETE FROM trials_err WHERE participant_id = ?`,
		`DELETE FROM participants WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("remove participant: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrial(row scanner) (model.TrialResult, error) {
	var r model.TrialResult
	var mode, align, cue, target, createdAt string
	var acquired, rt, moved sql.NullInt64

	err := row.Scan(
		&r.ID, &r.ParticipantID, &r.BlockNum, &r.TrialNum, &mode, &align, &cue,
		&target, &acquired, &rt, &moved, &createdAt,
	)
	if err != nil {
		return r, err
	}

	r.SessionType = model.ResponseMode(mode)
	r.Factors = model.Factors{
		Alignment: model.BoxAlignment(align),
		Cue:       model.CueLocation(cue),
		Target:    model.TargetLocation(target),
	}
	if acquired.Valid {
		r.TargetAcquired = model.Bool(acquired.Int64 != 0)
	}
	if rt.Valid {
		r.KeypressRT = model.Int64(rt.Int64)
	}
	if moved.Valid {
		r.MovedEyes = model.Bool(moved.Int64 != 0)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return r, nil
}

func nullBool(b *bool) sql.NullInt64 {
	if b == nil {
		return sql.NullInt64{}
	}
	if *b {
		return sql.NullInt64{Int64: 1, Valid: true}
	}
	return sql.NullInt64{Int64: 0, Valid: true}
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}
