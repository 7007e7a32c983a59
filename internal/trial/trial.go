// Package trial runs one trial: the cue/target timeline with fixation and
// keyboard interrupt checks, followed by the keypress or saccade response
// window.
package trial

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/object-cueing/internal/milestone"
	"github.com/rcliao/object-cueing/internal/model"
)

// Phase is a state of the trial state machine.
type Phase int

const (
	AwaitCueOn Phase = iota
	CueVisible
	AwaitTargetOn
	ResponseWindow
	Terminal
)

func (p Phase) String() string {
	switch p {
	case AwaitCueOn:
		return "await_cue_on"
	case CueVisible:
		return "cue_visible"
	case AwaitTargetOn:
		return "await_target_on"
	case ResponseWindow:
		return "response_window"
	case Terminal:
		return "terminal"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Transition records entering a phase, in ms since the trial anchor.
type Transition struct {
	Phase   Phase
	Elapsed int64
}

// Attempt identifies one attempt at a trial.
type Attempt struct {
	ParticipantID string
	BlockNum      int
	TrialNum      int
	Factors       model.Factors
}

// State is everything accumulated during one attempt. A new State is
// created for every attempt and discarded afterwards.
type State struct {
	Attempt
	Target    model.Point
	HasTarget bool
	// Onset is the clock time the target frame was drawn.
	Onset int64
	// Window is the response window length in ms.
	Window int64

	KeypressRT int64
	MovedEyes  bool
	Acquired   bool
	Saccades   []model.SaccadeRecord

	Transitions []Transition
}

func (st *State) enter(p Phase, elapsed int64) {
	st.Transitions = append(st.Transitions, Transition{Phase: p, Elapsed: elapsed})
}

// Entered returns when phase p was entered, if it was.
func (st *State) Entered(p Phase) (int64, bool) {
	for _, t := range st.Transitions {
		if t.Phase == p {
			return t.Elapsed, true
		}
	}
	return 0, false
}

// Outcome is either a completed trial with its result, or an aborted
// attempt with the violation that caused it.
type Outcome struct {
	Result   *model.TrialResult
	Saccades []model.SaccadeRecord
	Aborted  model.ErrKind
	State    *State
}

// Completed reports whether the attempt produced a result.
func (o Outcome) Completed() bool {
	return o.Aborted == "" && o.Result != nil
}

// Messages are the feedback texts shown after a violation.
type Messages map[model.ErrKind]string

// MovedEyesMessage is shown after a keypress trial where gaze left fixation
// during the response window.
const MovedEyesMessage = "Moved eyes during response interval!"

// MessagesFor returns the feedback texts for a response mode. In saccade
// mode any key press before the target gets the same message.
func MessagesFor(mode model.ResponseMode) Messages {
	if mode == model.ModeSaccade {
		keyMsg := "Please respond with eye movements only."
		return Messages{
			model.ErrEye:   "Moved eyes too soon!",
			model.ErrKey:   keyMsg,
			model.ErrEarly: keyMsg,
		}
	}
	return Messages{
		model.ErrEye:   "Moved eyes!",
		model.ErrKey:   "Please respond with the spacebar only.",
		model.ErrEarly: "Responded too soon!",
	}
}

// Config holds the trial parameters fixed for a session.
type Config struct {
	Mode        model.ResponseMode
	Milestones  []milestone.Milestone
	ResponseKey model.Key
	// PostResponse is the pause after the response window.
	PostResponse time.Duration
	// BoundaryRadius is the fixation and target acceptance radius in px.
	BoundaryRadius    float64
	SaccadeCorrection int64
	MaxSaccades       int
}

// DefaultConfig returns the standard parameters for mode, with the
// boundary radius left for the caller to fill in.
func DefaultConfig(mode model.ResponseMode) Config {
	return Config{
		Mode:              mode,
		Milestones:        milestone.Default(),
		ResponseKey:       model.Spacebar,
		PostResponse:      time.Second,
		SaccadeCorrection: 4,
		MaxSaccades:       3,
	}
}

// ErrorSink stores aborted attempts.
type ErrorSink interface {
	InsertError(ctx context.Context, rec model.ErrorRecord) error
}
