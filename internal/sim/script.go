package sim

import (
	"context"
	"fmt"

	"github.com/rcliao/object-cueing/internal/device"
	"github.com/rcliao/object-cueing/internal/model"
)

// GazeSample sets the gaze position from clock time At onwards.
type GazeSample struct {
	At    int64
	Point model.Point
}

// KeyPress is a key pressed at clock time At.
type KeyPress struct {
	At  int64
	Key model.Key
}

// FrameLog is a refresh observed by the script.
type FrameLog struct {
	At    int64
	Frame device.Frame
}

// Script is a participant whose gaze, keys and saccades follow a fixed
// timeline on the shared clock. It implements every device interface the
// trial engine polls and records what was shown.
type Script struct {
	Clock *Clock
	// Samples must be sorted by At. Before the first sample the gaze
	// rests on Fixation.
	Fixation model.Point
	Samples  []GazeSample
	Keys     []KeyPress
	// Saccades are delivered once the clock reaches their EndTime.
	Saccades []model.SaccadeEvent

	Frames   []FrameLog
	Messages []string
	Marks    []string
	Scenes   []device.Scene
	Fix      device.Color
	Cleared  int

	nextKey  int
	nextSacc int
}

var (
	_ device.GazeSource  = (*Script)(nil)
	_ device.KeySource   = (*Script)(nil)
	_ device.Display     = (*Script)(nil)
	_ device.EventMarker = (*Script)(nil)
)

func (s *Script) current() model.Point {
	p := s.Fixation
	now := s.Clock.Now()
	for _, g := range s.Samples {
		if g.At > now {
			break
		}
		p = g.Point
	}
	return p
}

func (s *Script) Gaze() model.Point { return s.current() }

func (s *Script) SaccadeEnds() []model.SaccadeEvent {
	var out []model.SaccadeEvent
	now := s.Clock.Now()
	for s.nextSacc < len(s.Saccades) && s.Saccades[s.nextSacc].EndTime <= now {
		out = append(out, s.Saccades[s.nextSacc])
		s.nextSacc++
	}
	return out
}

func (s *Script) PollKeys() []model.Key {
	var out []model.Key
	now := s.Clock.Now()
	for s.nextKey < len(s.Keys) && s.Keys[s.nextKey].At <= now {
		out = append(out, s.Keys[s.nextKey].Key)
		s.nextKey++
	}
	return out
}

func (s *Script) Flush() { s.PollKeys() }

func (s *Script) Prepare(sc device.Scene) { s.Scenes = append(s.Scenes, sc) }

func (s *Script) Refresh(f device.Frame) {
	s.Frames = append(s.Frames, FrameLog{At: s.Clock.Now(), Frame: f})
}

func (s *Script) Clear() { s.Cleared++ }

func (s *Script) Message(ctx context.Context, text string) error {
	s.Messages = append(s.Messages, text)
	return ctx.Err()
}

func (s *Script) SetFixation(c device.Color) { s.Fix = c }

func (s *Script) Mark(msg string) { s.Marks = append(s.Marks, msg) }

// FirstFrame returns the clock time of the first refresh matching f.
func (s *Script) FirstFrame(f device.Frame) (int64, error) {
	for _, fl := range s.Frames {
		if fl.Frame == f {
			return fl.At, nil
		}
	}
	return 0, fmt.Errorf("no frame %+v", f)
}
