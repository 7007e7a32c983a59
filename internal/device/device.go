// Package device declares the collaborators the trial engine polls: a clock,
// a gaze source, a keyboard queue and a display. Hardware drivers implement
// these outside this module; internal/sim provides simulated ones.
package device

import (
	"context"
	"time"

	"github.com/rcliao/object-cueing/internal/model"
)

// Clock reports monotonic milliseconds. Yield is called once at the end of
// every poll cycle; Sleep is the uninterruptible post-response pause.
type Clock interface {
	Now() int64
	Yield()
	Sleep(d time.Duration)
}

// GazeSource reports the current gaze position and drains saccade-end
// events in arrival order. Neither call blocks.
type GazeSource interface {
	Gaze() model.Point
	SaccadeEnds() []model.SaccadeEvent
}

// DriftCorrector is implemented by gaze sources that run a drift check
// before each trial.
type DriftCorrector interface {
	DriftCorrect(ctx context.Context) error
}

// EventMarker is implemented by gaze sources that accept log messages in
// their own data stream, e.g. "TARGET_ON 1234".
type EventMarker interface {
	Mark(msg string)
}

// KeySource drains keys pressed since the last poll.
type KeySource interface {
	PollKeys() []model.Key
	Flush()
}

// Color is the fixation cross colour.
type Color string

const (
	Red   Color = "red"
	White Color = "white"
)

// Scene is the per-trial stimulus geometry, handed to the display before
// the trial starts.
type Scene struct {
	Fixation  model.Point
	Alignment model.BoxAlignment
	Boxes     [2]model.Point
	Cue       model.Point
	// Target is nil on catch trials.
	Target *model.Point
}

// Frame is what the display should show after a refresh.
type Frame struct {
	Cue    bool
	Target bool
}

// Display draws frames and feedback messages. Message blocks until the
// participant acknowledges it.
type Display interface {
	Prepare(s Scene)
	Refresh(f Frame)
	Clear()
	Message(ctx context.Context, text string) error
	SetFixation(c Color)
}

// WallClock is a Clock backed by the monotonic system clock.
type WallClock struct {
	start time.Time
}

// NewWallClock returns a clock whose zero is now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

func (c *WallClock) Now() int64 {
	return time.Since(c.start).Milliseconds()
}

// Yield does nothing; the wall clock advances on its own.
func (c *WallClock) Yield() {}

func (c *WallClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
