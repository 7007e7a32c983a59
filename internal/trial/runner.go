package trial

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/object-cueing/internal/boundary"
	"github.com/rcliao/object-cueing/internal/device"
	"github.com/rcliao/object-cueing/internal/layout"
	"github.com/rcliao/object-cueing/internal/milestone"
	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/saccade"
)

// Deps are the collaborators a Runner polls and writes to.
type Deps struct {
	Clock   device.Clock
	Gaze    device.GazeSource
	Keys    device.KeySource
	Display device.Display
	Layout  *layout.Layout
	Bounds  *boundary.Inspector
	Errors  ErrorSink
	Log     *zap.Logger
}

// Runner runs trial attempts one at a time. It is not safe for concurrent use.
type Runner struct {
	cfg      Config
	deps     Deps
	sched    *milestone.Schedule
	respond  ResponsePhase
	messages Messages
	log      *zap.Logger
}

// NewRunner validates cfg, registers the drift_correct boundary around
// fixation and selects the response phase for cfg.Mode.
func NewRunner(cfg Config, deps Deps) (*Runner, error) {
	if deps.Clock == nil || deps.Gaze == nil || deps.Keys == nil || deps.Display == nil || deps.Layout == nil || deps.Errors == nil {
		return nil, fmt.Errorf("new runner: missing collaborator")
	}
	if cfg.BoundaryRadius <= 0 {
		return nil, fmt.Errorf("new runner: boundary radius must be positive, got %v", cfg.BoundaryRadius)
	}
	if cfg.ResponseKey == "" {
		cfg.ResponseKey = model.Spacebar
	}
	if len(cfg.Milestones) == 0 {
		cfg.Milestones = milestone.Default()
	}
	if deps.Bounds == nil {
		deps.Bounds = boundary.NewInspector()
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	deps.Bounds.Add(boundary.DriftCorrect, boundary.Circle{Center: deps.Layout.Center(), Radius: cfg.BoundaryRadius})

	r := &Runner{
		cfg:      cfg,
		deps:     deps,
		sched:    milestone.NewSchedule(deps.Clock),
		messages: MessagesFor(cfg.Mode),
		log:      deps.Log,
	}

	switch cfg.Mode {
	case model.ModeKeypress:
		r.respond = &keypressPhase{r: r}
	case model.ModeSaccade:
		c := saccade.New(deps.Layout.Center(), cfg.BoundaryRadius, deps.Log)
		if cfg.SaccadeCorrection != 0 {
			c.Correction = cfg.SaccadeCorrection
		}
		if cfg.MaxSaccades > 0 {
			c.MaxStored = cfg.MaxSaccades
		}
		r.respond = &saccadePhase{r: r, classifier: c}
	default:
		return nil, fmt.Errorf("new runner: %w: response mode %q", model.ErrInvalidFactor, cfg.Mode)
	}
	return r, nil
}

// Mode returns the session's response mode.
func (r *Runner) Mode() model.ResponseMode { return r.cfg.Mode }

// Run executes one attempt. Participant violations are reported through
// Outcome.Aborted after the feedback message is acknowledged and the error
// record is stored. A non-nil error means a configuration or sink failure,
// or ctx was cancelled; those are never recycled.
func (r *Runner) Run(ctx context.Context, a Attempt) (Outcome, error) {
	st, err := r.prepare(ctx, a)
	if err != nil {
		return Outcome{}, fmt.Errorf("prepare trial: %w", err)
	}
	log := r.log.With(zap.Int("block", a.BlockNum), zap.Int("trial", a.TrialNum), zap.Stringer("factors", a.Factors))

	st.enter(AwaitCueOn, r.sched.Elapsed())
	steps := []struct {
		until string
		frame device.Frame
		next  Phase
	}{
		{milestone.CueOn, device.Frame{Cue: true}, CueVisible},
		{milestone.CueOff, device.Frame{}, AwaitTargetOn},
		{milestone.TargetOn, device.Frame{Target: true}, ResponseWindow},
	}
	for _, step := range steps {
		kind, err := r.wait(ctx, step.until)
		if err != nil {
			return Outcome{}, fmt.Errorf("run trial: %w", err)
		}
		if kind != "" {
			return r.abort(ctx, st, kind)
		}
		if step.next == ResponseWindow {
			r.deps.Keys.Flush()
			r.deps.Gaze.SaccadeEnds()
		}
		r.deps.Display.Refresh(step.frame)
		st.enter(step.next, r.sched.Elapsed())
		log.Debug("phase", zap.Stringer("phase", step.next), zap.Int64("elapsed", r.sched.Elapsed()))
	}

	st.Onset = r.deps.Clock.Now()
	if m, ok := r.deps.Gaze.(device.EventMarker); ok {
		m.Mark(fmt.Sprintf("TARGET_ON %d", st.Onset))
	}
	if err := r.respond.Respond(ctx, st); err != nil {
		return Outcome{}, fmt.Errorf("response window: %w", err)
	}

	r.deps.Display.Clear()
	r.deps.Clock.Sleep(r.cfg.PostResponse)

	if r.cfg.Mode == model.ModeKeypress {
		var msg string
		switch {
		case a.Factors.IsCatch() && st.KeypressRT != model.Timeout:
			msg = r.messages[model.ErrEarly]
		case st.MovedEyes:
			msg = MovedEyesMessage
		}
		if msg != "" {
			if err := r.deps.Display.Message(ctx, msg); err != nil {
				return Outcome{}, fmt.Errorf("feedback: %w", err)
			}
		}
	}

	st.enter(Terminal, r.sched.Elapsed())
	res := r.result(st)
	log.Debug("trial completed",
		zap.Boolp("target_acquired", res.TargetAcquired),
		zap.Int64p("keypress_rt", res.KeypressRT),
		zap.Boolp("moved_eyes", res.MovedEyes))
	return Outcome{Result: res, Saccades: st.Saccades, State: st}, nil
}

// prepare builds the per-trial state, shows the placeholders, runs the
// drift check and anchors the milestone schedule.
func (r *Runner) prepare(ctx context.Context, a Attempt) (*State, error) {
	if err := a.Factors.Validate(r.cfg.Mode); err != nil {
		return nil, err
	}
	st := &State{Attempt: a, KeypressRT: model.Timeout}

	cue, err := layout.CuePosition(a.Factors.Cue)
	if err != nil {
		return nil, err
	}
	box1, box2 := r.deps.Layout.Placeholders(a.Factors.Alignment)
	scene := device.Scene{
		Fixation:  r.deps.Layout.Center(),
		Alignment: a.Factors.Alignment,
		Boxes:     [2]model.Point{box1, box2},
		Cue:       r.deps.Layout.At(cue),
	}
	if !a.Factors.IsCatch() {
		target, err := r.deps.Layout.TargetPosition(a.Factors)
		if err != nil {
			return nil, err
		}
		st.Target, st.HasTarget = target, true
		scene.Target = &target
	}

	d := r.deps.Display
	d.Prepare(scene)
	d.Refresh(device.Frame{})
	if dc, ok := r.deps.Gaze.(device.DriftCorrector); ok {
		if err := dc.DriftCorrect(ctx); err != nil {
			return nil, fmt.Errorf("drift correct: %w", err)
		}
	}
	d.SetFixation(device.White)
	d.Refresh(device.Frame{})
	r.deps.Keys.Flush()

	if err := r.sched.Register(r.cfg.Milestones); err != nil {
		return nil, err
	}
	targetOn, err := r.sched.Offset(milestone.TargetOn)
	if err != nil {
		return nil, err
	}
	taskEnd, err := r.sched.Offset(milestone.TaskEnd)
	if err != nil {
		return nil, err
	}
	st.Window = taskEnd - targetOn
	return st, nil
}

// wait polls until milestone name is reached, returning the kind of the
// first violation seen, if any.
func (r *Runner) wait(ctx context.Context, name string) (model.ErrKind, error) {
	for {
		before, err := r.sched.Before(name)
		if err != nil {
			return "", err
		}
		if !before {
			return "", nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		kind, err := r.interrupt()
		if err != nil || kind != "" {
			return kind, err
		}
		r.deps.Clock.Yield()
	}
}

// interrupt checks fixation first, then the keyboard.
func (r *Runner) interrupt() (model.ErrKind, error) {
	in, err := r.deps.Bounds.Within(boundary.DriftCorrect, r.deps.Gaze.Gaze())
	if err != nil {
		return "", err
	}
	if !in {
		return model.ErrEye, nil
	}
	keys := r.deps.Keys.PollKeys()
	if len(keys) == 0 {
		return "", nil
	}
	for _, k := range keys {
		if k == r.cfg.ResponseKey {
			return model.ErrEarly, nil
		}
	}
	return model.ErrKey, nil
}

// abort shows the feedback message, stores the error record and ends the
// attempt without a result.
func (r *Runner) abort(ctx context.Context, st *State, kind model.ErrKind) (Outcome, error) {
	elapsed := r.sched.Elapsed()
	r.deps.Keys.Flush()
	if err := r.deps.Display.Message(ctx, r.messages[kind]); err != nil {
		return Outcome{}, fmt.Errorf("feedback: %w", err)
	}
	rec := model.ErrorRecord{
		ParticipantID: st.ParticipantID,
		BlockNum:      st.BlockNum,
		TrialNum:      st.TrialNum,
		SessionType:   r.cfg.Mode,
		Factors:       st.Factors,
		ErrType:       kind,
	}
	if err := r.deps.Errors.InsertError(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("log aborted trial: %w", err)
	}
	st.enter(Terminal, elapsed)
	r.log.Info("trial aborted",
		zap.Int("block", st.BlockNum),
		zap.Int("trial", st.TrialNum),
		zap.String("err_type", string(kind)),
		zap.Int64("elapsed", elapsed))
	return Outcome{Aborted: kind, State: st}, nil
}

func (r *Runner) result(st *State) *model.TrialResult {
	res := &model.TrialResult{
		ParticipantID: st.ParticipantID,
		BlockNum:      st.BlockNum,
		TrialNum:      st.TrialNum,
		SessionType:   r.cfg.Mode,
		Factors:       st.Factors,
	}
	switch r.cfg.Mode {
	case model.ModeSaccade:
		res.TargetAcquired = model.Bool(st.Acquired)
	case model.ModeKeypress:
		res.KeypressRT = model.Int64(st.KeypressRT)
		res.MovedEyes = model.Bool(st.MovedEyes)
	}
	return res
}
