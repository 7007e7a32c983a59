package sim

import (
	"context"
	"math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/rcliao/object-cueing/internal/device"
	"github.com/rcliao/object-cueing/internal/model"
)

// Behavior sets the probabilities and timing of a simulated participant.
type Behavior struct {
	Seed int64 `json:"seed"`

	// Pre-target violations, rolled once per trial in this order.
	PBreakFixation float64 `json:"p_break_fixation"`
	PEarlyPress    float64 `json:"p_early_press"`
	PWrongKey      float64 `json:"p_wrong_key"`

	// Keypress mode.
	PMoveEyes   float64 `json:"p_move_eyes"`
	PFalseAlarm float64 `json:"p_false_alarm"`

	// Saccade mode: PMiss sends the first saccade to the mirrored corner
	// before a corrective saccade to the target.
	PMiss     float64 `json:"p_miss"`
	LandingSD float64 `json:"landing_sd_px"`

	RTMean float64 `json:"rt_mean_ms"`
	RTSD   float64 `json:"rt_sd_ms"`

	// Milestone offsets the participant anticipates.
	CueOn    int64 `json:"cue_on_ms"`
	TargetOn int64 `json:"target_on_ms"`
}

// DefaultBehavior is a mostly compliant participant.
func DefaultBehavior(seed int64) Behavior {
	return Behavior{
		Seed:           seed,
		PBreakFixation: 0.04,
		PEarlyPress:    0.02,
		PWrongKey:      0.01,
		PMoveEyes:      0.05,
		PFalseAlarm:    0.15,
		PMiss:          0.2,
		LandingSD:      6,
		RTMean:         320,
		RTSD:           60,
		CueOn:          1000,
		TargetOn:       1960,
	}
}

// Participant is a seeded stochastic observer. It plans each trial when the
// display is prepared and reacts to target onset on the first target frame.
type Participant struct {
	clock    *Clock
	b        Behavior
	rng      *rand.Rand
	mode     model.ResponseMode
	fixation model.Point
	log      *zap.Logger

	scene    device.Scene
	start    int64
	onset    int64
	shown    bool
	gaze     []GazeSample
	keys     []KeyPress
	saccades []model.SaccadeEvent
	nextKey  int
	nextSacc int

	// Messages counts acknowledged feedback screens.
	Messages int
}

var (
	_ device.GazeSource = (*Participant)(nil)
	_ device.KeySource  = (*Participant)(nil)
	_ device.Display    = (*Participant)(nil)
)

// NewParticipant returns a participant fixating on fixation.
func NewParticipant(clock *Clock, mode model.ResponseMode, fixation model.Point, b Behavior, log *zap.Logger) *Participant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Participant{
		clock:    clock,
		b:        b,
		rng:      rand.New(rand.NewSource(b.Seed)),
		mode:     mode,
		fixation: fixation,
		log:      log,
	}
}

func (p *Participant) Prepare(sc device.Scene) {
	p.scene = sc
	p.start = p.clock.Now()
	p.shown = false
	p.gaze = nil
	p.keys = nil
	p.saccades = nil
	p.nextKey = 0
	p.nextSacc = 0

	window := p.b.TargetOn
	if window <= 0 {
		window = 1
	}
	switch r := p.rng.Float64(); {
	case r < p.b.PBreakFixation:
		at := p.start + p.rng.Int63n(window)
		p.gaze = append(p.gaze, GazeSample{At: at, Point: sc.Cue})
	case r < p.b.PBreakFixation+p.b.PEarlyPress:
		at := p.start + p.b.CueOn + p.rng.Int63n(max(window-p.b.CueOn, 1))
		p.keys = append(p.keys, KeyPress{At: at, Key: model.Spacebar})
	case r < p.b.PBreakFixation+p.b.PEarlyPress+p.b.PWrongKey:
		at := p.start + p.rng.Int63n(window)
		p.keys = append(p.keys, KeyPress{At: at, Key: "a"})
	}
}

func (p *Participant) latency() int64 {
	rt := p.rng.NormFloat64()*p.b.RTSD + p.b.RTMean
	return int64(math.Max(rt, 100))
}

func (p *Participant) jitter(pt model.Point) model.Point {
	return model.Point{
		X: pt.X + p.rng.NormFloat64()*p.b.LandingSD,
		Y: pt.Y + p.rng.NormFloat64()*p.b.LandingSD,
	}
}

// respond plans the response to target onset.
func (p *Participant) respond() {
	p.onset = p.clock.Now()
	rt := p.latency()

	if p.mode == model.ModeKeypress {
		if p.scene.Target != nil || p.rng.Float64() < p.b.PFalseAlarm {
			p.keys = append(p.keys, KeyPress{At: p.onset + rt, Key: model.Spacebar})
		}
		if p.scene.Target != nil && p.rng.Float64() < p.b.PMoveEyes {
			p.gaze = append(p.gaze, GazeSample{At: p.onset + rt/2, Point: *p.scene.Target})
		}
		return
	}

	if p.scene.Target == nil {
		return
	}
	from := p.fixation
	at := p.onset + rt
	if p.rng.Float64() < p.b.PMiss {
		t := *p.scene.Target
		wrong := p.jitter(model.Point{X: 2*p.fixation.X - t.X, Y: t.Y})
		p.saccade(at, from, wrong)
		from = wrong
		at += 45 + 150
	}
	p.saccade(at, from, p.jitter(*p.scene.Target))
}

func (p *Participant) saccade(start int64, from, to model.Point) {
	end := start + 45
	p.saccades = append(p.saccades, model.SaccadeEvent{StartTime: start, EndTime: end, Start: from, End: to})
	p.gaze = append(p.gaze, GazeSample{At: end, Point: to})
}

func (p *Participant) Gaze() model.Point {
	pt := p.fixation
	now := p.clock.Now()
	for _, g := range p.gaze {
		if g.At <= now {
			pt = g.Point
		}
	}
	return pt
}

func (p *Participant) SaccadeEnds() []model.SaccadeEvent {
	var out []model.SaccadeEvent
	now := p.clock.Now()
	for p.nextSacc < len(p.saccades) && p.saccades[p.nextSacc].EndTime <= now {
		out = append(out, p.saccades[p.nextSacc])
		p.nextSacc++
	}
	return out
}

func (p *Participant) PollKeys() []model.Key {
	var out []model.Key
	now := p.clock.Now()
	for p.nextKey < len(p.keys) && p.keys[p.nextKey].At <= now {
		out = append(out, p.keys[p.nextKey].Key)
		p.nextKey++
	}
	return out
}

func (p *Participant) Flush() { p.PollKeys() }

func (p *Participant) Refresh(f device.Frame) {
	if f.Target && !p.shown {
		p.shown = true
		p.respond()
	}
}

func (p *Participant) Clear() {}

func (p *Participant) Message(ctx context.Context, text string) error {
	p.Messages++
	p.log.Debug("message acknowledged", zap.String("text", text))
	return ctx.Err()
}

func (p *Participant) SetFixation(device.Color) {}
