package model

import (
	"math"
	"time"
)

// Timeout is the keypress RT recorded when no response key was pressed
// before the response window closed.
const Timeout int64 = -1

// NA is how a field that does not apply to the session's response mode is
// rendered in exports.
const NA = "NA"

// Point is a screen coordinate in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// SaccadeEvent is a saccade-end event reported by the gaze source. Times are
// milliseconds on the tracker clock.
type SaccadeEvent struct {
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
	Start     Point `json:"start"`
	End       Point `json:"end"`
}

// Accuracy is whether a saccade landed inside the boundary around the target.
type Accuracy string

const (
	Inside  Accuracy = "inside"
	Outside Accuracy = "outside"
)

// SaccadeRecord is one stored saccade of a saccade-mode trial.
type SaccadeRecord struct {
	ID             int64    `json:"id,omitempty"`
	TrialID        int64    `json:"trial_id,omitempty"`
	ParticipantID  string   `json:"participant_id,omitempty"`
	RT             int64    `json:"rt"`
	Accuracy       Accuracy `json:"accuracy"`
	DistFromTarget float64  `json:"dist_from_target"`
	StartX         float64  `json:"start_x"`
	StartY         float64  `json:"start_y"`
	EndX           float64  `json:"end_x"`
	EndY           float64  `json:"end_y"`
	Duration       int64    `json:"duration"`

	// EndTime feeds the duration chain and is not persisted.
	EndTime int64 `json:"-"`
}

// TrialResult is the record for one completed trial. Exactly one of
// TargetAcquired or KeypressRT/MovedEyes is set, depending on SessionType.
type TrialResult struct {
	ID             int64        `json:"id,omitempty"`
	ParticipantID  string       `json:"participant_id,omitempty"`
	BlockNum       int          `json:"block_num"`
	TrialNum       int          `json:"trial_num"`
	SessionType    ResponseMode `json:"session_type"`
	Factors
	TargetAcquired *bool     `json:"target_acquired"`
	KeypressRT     *int64    `json:"keypress_rt"`
	MovedEyes      *bool     `json:"moved_eyes"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// ErrorRecord is written for every aborted trial attempt.
type ErrorRecord struct {
	ID            int64        `json:"id,omitempty"`
	ParticipantID string       `json:"participant_id"`
	BlockNum      int          `json:"block_num"`
	TrialNum      int          `json:"trial_num"`
	SessionType   ResponseMode `json:"session_type"`
	Factors
	ErrType   ErrKind   `json:"err_type"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Participant is one registered participant of a session.
type Participant struct {
	ID        string       `json:"id"`
	UserHash  string       `json:"userhash"`
	Mode      ResponseMode `json:"session_type"`
	Seed      int64        `json:"random_seed"`
	CreatedAt time.Time    `json:"created_at"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }
