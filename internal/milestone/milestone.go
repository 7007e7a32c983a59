// Package milestone keeps the per-trial schedule of named events (cue on,
// target on, ...) as millisecond offsets from the trial start.
package milestone

import (
	"errors"
	"fmt"
)

// ErrUnknownMilestone is returned when a milestone was never registered.
var ErrUnknownMilestone = errors.New("unknown milestone")

// Names of the milestones used by every trial.
const (
	CueOn    = "cue_on"
	CueOff   = "cue_off"
	TargetOn = "target_on"
	TaskEnd  = "task_end"
)

// Clock reports monotonic milliseconds.
type Clock interface {
	Now() int64
}

// Milestone is a named offset in ms from the trial start.
type Milestone struct {
	Name   string `json:"name" mapstructure:"name" yaml:"name"`
	Offset int64  `json:"offset_ms" mapstructure:"offset_ms" yaml:"offset_ms"`
}

// Default returns the standard trial timeline: cue 1000ms after the drift
// check, shown for 100ms, target 860ms after cue removal, 2500ms to respond.
func Default() []Milestone {
	return []Milestone{
		{CueOn, 1000},
		{CueOff, 1100},
		{TargetOn, 1960},
		{TaskEnd, 4460},
	}
}

// Schedule answers "has milestone X occurred yet" for the current trial.
// It is written between trials and read-only while a trial runs.
type Schedule struct {
	clock   Clock
	anchor  int64
	order   []string
	offsets map[string]int64
}

// NewSchedule returns an empty schedule reading time from clock.
func NewSchedule(clock Clock) *Schedule {
	return &Schedule{clock: clock, offsets: map[string]int64{}}
}

// Register replaces the active schedule and anchors it at the current time.
// Offsets must be non-negative and strictly increasing in the given order.
func (s *Schedule) Register(ms []Milestone) error {
	offsets := make(map[string]int64, len(ms))
	order := make([]string, 0, len(ms))
	prev := int64(-1)
	for _, m := range ms {
		if m.Name == "" {
			return fmt.Errorf("register milestones: empty name")
		}
		if _, dup := offsets[m.Name]; dup {
			return fmt.Errorf("register milestones: duplicate %q", m.Name)
		}
		if m.Offset < 0 || m.Offset <= prev {
			return fmt.Errorf("register milestones: %q at %dms is not after %dms", m.Name, m.Offset, prev)
		}
		prev = m.Offset
		offsets[m.Name] = m.Offset
		order = append(order, m.Name)
	}

	s.offsets = offsets
	s.order = order
	s.anchor = s.clock.Now()
	return nil
}

// Before reports whether the elapsed time since registration is still
// less than the offset of name.
func (s *Schedule) Before(name string) (bool, error) {
	off, ok := s.offsets[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownMilestone, name)
	}
	return s.Elapsed() < off, nil
}

// Offset returns the registered offset of name.
func (s *Schedule) Offset(name string) (int64, error) {
	off, ok := s.offsets[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMilestone, name)
	}
	return off, nil
}

// Elapsed returns milliseconds since the schedule was registered.
func (s *Schedule) Elapsed() int64 {
	return s.clock.Now() - s.anchor
}

// Anchor returns the clock time at registration.
func (s *Schedule) Anchor() int64 {
	return s.anchor
}

// Names returns the registered milestone names in offset order.
func (s *Schedule) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
