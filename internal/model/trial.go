// Package model defines the core trial data types.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFactor is returned when a factor value is not one of the known levels.
var ErrInvalidFactor = errors.New("invalid factor")

// ResponseMode is how participants respond to the target. It is fixed for
// the whole process.
type ResponseMode string

const (
	ModeSaccade  ResponseMode = "saccade"
	ModeKeypress ResponseMode = "keypress"
)

// ParseResponseMode parses "saccade" or "keypress".
func ParseResponseMode(s string) (ResponseMode, error) {
	switch ResponseMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSaccade:
		return ModeSaccade, nil
	case ModeKeypress:
		return ModeKeypress, nil
	}
	return "", fmt.Errorf("%w: response mode %q (valid: saccade, keypress)", ErrInvalidFactor, s)
}

// BoxAlignment is the orientation of the two placeholder boxes.
type BoxAlignment string

const (
	Horizontal BoxAlignment = "horizontal"
	Vertical   BoxAlignment = "vertical"
)

// CueLocation is the corner of a placeholder box that is cued.
type CueLocation string

const (
	TopLeft     CueLocation = "top_left"
	TopRight    CueLocation = "top_right"
	BottomLeft  CueLocation = "bottom_left"
	BottomRight CueLocation = "bottom_right"
)

// TargetLocation is the target position relative to the cue.
type TargetLocation string

const (
	CuedLocation   TargetLocation = "cued_location"
	CuedObject     TargetLocation = "cued_object"
	UncuedAdjacent TargetLocation = "uncued_adjacent"
	UncuedOpposite TargetLocation = "uncued_opposite"
	Catch          TargetLocation = "catch"
)

// ValidAlignments are the allowed box alignments.
var ValidAlignments = map[BoxAlignment]bool{
	Horizontal: true,
	Vertical:   true,
}

// ValidCueLocations are the allowed cue locations.
var ValidCueLocations = map[CueLocation]bool{
	TopLeft:     true,
	TopRight:    true,
	BottomLeft:  true,
	BottomRight: true,
}

// ValidTargetLocations are the allowed target locations. Catch is only
// valid in keypress mode; see Factors.Validate.
var ValidTargetLocations = map[TargetLocation]bool{
	CuedLocation:   true,
	CuedObject:     true,
	UncuedAdjacent: true,
	UncuedOpposite: true,
	Catch:          true,
}

// Factors is the immutable set of independent variables for one trial.
type Factors struct {
	Alignment BoxAlignment   `json:"box_alignment"`
	Cue       CueLocation    `json:"cue_location"`
	Target    TargetLocation `json:"target_location"`
}

// IsCatch reports whether no target is shown on this trial.
func (f Factors) IsCatch() bool {
	return f.Target == Catch
}

// Validate checks every factor against its known levels.
func (f Factors) Validate(mode ResponseMode) error {
	if !ValidAlignments[f.Alignment] {
		return fmt.Errorf("%w: box_alignment %q", ErrInvalidFactor, f.Alignment)
	}
	if !ValidCueLocations[f.Cue] {
		return fmt.Errorf("%w: cue_location %q", ErrInvalidFactor, f.Cue)
	}
	if !ValidTargetLocations[f.Target] {
		return fmt.Errorf("%w: target_location %q", ErrInvalidFactor, f.Target)
	}
	if f.Target == Catch && mode == ModeSaccade {
		return fmt.Errorf("%w: catch trials are keypress-only", ErrInvalidFactor)
	}
	return nil
}

func (f Factors) String() string {
	return fmt.Sprintf("%s/%s/%s", f.Alignment, f.Cue, f.Target)
}

// ErrKind classifies a recoverable participant violation.
type ErrKind string

const (
	// ErrEye: gaze left the fixation boundary before the target.
	ErrEye ErrKind = "eye"
	// ErrEarly: the response key was pressed before the target.
	ErrEarly ErrKind = "early"
	// ErrKey: a non-response key was pressed before the target.
	ErrKey ErrKind = "key"
)

// Key identifies a keyboard key by name, e.g. "spacebar".
type Key string

// Spacebar is the designated response key.
const Spacebar Key = "spacebar"
