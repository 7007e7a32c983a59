package trial

import (
	"context"

	"github.com/rcliao/object-cueing/internal/boundary"
	"github.com/rcliao/object-cueing/internal/device"
	"github.com/rcliao/object-cueing/internal/milestone"
	"github.com/rcliao/object-cueing/internal/saccade"
)

// ResponsePhase collects the response once the target is on screen. One
// implementation is picked per session from the response mode.
type ResponsePhase interface {
	Respond(ctx context.Context, st *State) error
}

// keypressPhase waits for the response key until task_end. Gaze is still
// checked on every refresh, but leaving fixation only sets MovedEyes.
type keypressPhase struct {
	r *Runner
}

func (p *keypressPhase) Respond(ctx context.Context, st *State) error {
	d := p.r.deps
	for {
		before, err := p.r.sched.Before(milestone.TaskEnd)
		if err != nil {
			return err
		}
		if !before {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		d.Display.Refresh(device.Frame{Target: true})
		in, err := d.Bounds.Within(boundary.DriftCorrect, d.Gaze.Gaze())
		if err != nil {
			return err
		}
		if !in {
			st.MovedEyes = true
		}

		for _, k := range d.Keys.PollKeys() {
			if k == p.r.cfg.ResponseKey {
				st.KeypressRT = d.Clock.Now() - st.Onset
				return nil
			}
		}
		d.Clock.Yield()
	}
}

// saccadePhase hands the response window to the saccade classifier.
type saccadePhase struct {
	r          *Runner
	classifier *saccade.Classifier
}

func (p *saccadePhase) Respond(ctx context.Context, st *State) error {
	d := p.r.deps
	refresh := func() {
		d.Display.Refresh(device.Frame{Target: true})
		d.Keys.PollKeys()
	}
	res, err := p.classifier.Run(ctx, d.Clock, d.Gaze, refresh, st.Onset, st.Target, st.Window)
	if res != nil {
		st.Acquired = res.Acquired
		st.Saccades = res.Records
	}
	return err
}
