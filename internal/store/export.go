package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/rcliao/object-cueing/internal/model"
)

// TrialColumns is the header of an exported trials table.
var TrialColumns = []string{
	"id", "participant_id", "userhash", "block_num", "trial_num", "session_type",
	"box_alignment", "cue_location", "target_location",
	"target_acquired", "keypress_rt", "moved_eyes", "created_at",
}

// ExportTrials returns every trial as string rows matching TrialColumns,
// optionally limited to one participant. Fields that do not apply to the
// session's response mode are rendered as NA.
func (s *SQLiteStore) ExportTrials(ctx context.Context, participantID string) ([][]string, error) {
	where := []string{"1 = 1"}
	args := []interface{}{}
	if participantID != "" {
		where = append(where, "t.participant_id = ?")
		args = append(args, participantID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.participant_id, t.block_num, t.trial_num, t.session_type, t.box_alignment,
		        t.cue_location, t.target_location, t.target_acquired, t.keypress_rt, t.moved_eyes,
		        t.created_at, p.userhash
		 FROM trials t JOIN participants p ON p.id = t.participant_id
		 WHERE `+strings.Join(where, " AND ")+` ORDER BY t.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var r model.TrialResult
		var mode, align, cue, target, createdAt, userhash string
		var acquired, rt, moved sql.NullInt64
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.BlockNum, &r.TrialNum, &mode, &align,
			&cue, &target, &acquired, &rt, &moved, &createdAt, &userhash); err != nil {
			return nil, err
		}
		out = append(out, []string{
			strconv.FormatInt(r.ID, 10),
			r.ParticipantID,
			userhash,
			strconv.Itoa(r.BlockNum),
			strconv.Itoa(r.TrialNum),
			mode, align, cue, target,
			naBool(acquired),
			naInt(rt),
			naBool(moved),
			createdAt,
		})
	}
	return out, rows.Err()
}

func naBool(n sql.NullInt64) string {
	switch {
	case !n.Valid:
		return model.NA
	case n.Int64 != 0:
		return "TRUE"
	default:
		return "FALSE"
	}
}

func naInt(n sql.NullInt64) string {
	if !n.Valid {
		return model.NA
	}
	return strconv.FormatInt(n.Int64, 10)
}
