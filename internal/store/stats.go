package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string             `json:"db_path"`
	DBSizeBytes  int64              `json:"db_size_bytes"`
	Participants int                `json:"participants"`
	Trials       int                `json:"trials"`
	Errors       int                `json:"errors"`
	Saccades     int                `json:"saccades"`
	Sessions     []SessionTypeStats `json:"session_types"`
	ErrorKinds   []ErrorKindStats   `json:"error_kinds"`
}

// SessionTypeStats holds per-response-mode counts.
type SessionTypeStats struct {
	SessionType  string `json:"session_type"`
	Participants int    `json:"participants"`
	Trials       int    `json:"trials"`
}

// ErrorKindStats holds aborted attempt counts per error kind.
type ErrorKindStats struct {
	ErrType string `json:"err_type"`
	Count   int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants`).Scan(&st.Participants)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trials`).Scan(&st.Trials)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trials_err`).Scan(&st.Errors)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM saccades`).Scan(&st.Saccades)

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.session_type, COUNT(DISTINCT p.id), COUNT(t.id)
		FROM participants p LEFT JOIN trials t ON t.participant_id = p.id
		GROUP BY p.session_type ORDER BY p.session_type`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var ss SessionTypeStats
		rows.Scan(&ss.SessionType, &ss.Participants, &ss.Trials)
		st.Sessions = append(st.Sessions, ss)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT err_type, COUNT(*) AS cnt FROM trials_err
		GROUP BY err_type ORDER BY cnt DESC, err_type`)
	if err != nil {
		return st, err
	}
	defer rows.Close()
	for rows.Next() {
		var ek ErrorKindStats
		rows.Scan(&ek.ErrType, &ek.Count)
		st.ErrorKinds = append(st.ErrorKinds, ek)
	}

	return st, rows.Err()
}
