package saccade

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/object-cueing/internal/model"
)

var (
	center = model.Point{X: 960, Y: 540}
	target = model.Point{X: 760, Y: 340}
)

func sacc(start, end int64, to model.Point) model.SaccadeEvent {
	return model.SaccadeEvent{StartTime: start, EndTime: end, Start: center, End: to}
}

func TestFirstLandingInsideAcquiresTarget(t *testing.T) {
	c := New(center, 20, nil)
	st := &State{}

	// 15px from the target, inside the 20px boundary; the second event
	// is queued behind it and must not be looked at.
	landing := model.Point{X: target.X + 9, Y: target.Y + 12}
	c.Process(st, 1000, target, []model.SaccadeEvent{
		sacc(1200, 1240, landing),
		sacc(1300, 1340, model.Point{X: 1500, Y: 900}),
	})

	require.True(t, st.Acquired)
	require.Len(t, st.Records, 1)
	assert.Equal(t, model.Inside, st.Records[0].Accuracy)
	assert.InDelta(t, 15.0, st.Records[0].DistFromTarget, 1e-9)
	assert.Equal(t, int64(200), st.Records[0].RT)
	assert.Equal(t, 1, st.Classified)
}

func TestDurationChainAndStorageCap(t *testing.T) {
	c := New(center, 20, nil)
	st := &State{}
	away := model.Point{X: 1300, Y: 540}

	c.Process(st, 1000, target, []model.SaccadeEvent{
		sacc(1200, 1230, away),
		// micro-saccade inside the fixation boundary
		sacc(1300, 1310, model.Point{X: 965, Y: 545}),
		sacc(1400, 1430, away),
	})
	c.Process(st, 1000, target, []model.SaccadeEvent{
		sacc(1600, 1630, away),
		sacc(1800, 1830, away),
		sacc(1900, 1950, target),
	})

	want := []model.SaccadeRecord{
		{RT: 200, Accuracy: model.Outside, Duration: 1200 + 4 - 1000, EndTime: 1230},
		{RT: 400, Accuracy: model.Outside, Duration: 1400 + 4 - 1230, EndTime: 1430},
		{RT: 600, Accuracy: model.Outside, Duration: 1600 + 4 - 1430, EndTime: 1630},
	}
	got := make([]model.SaccadeRecord, len(st.Records))
	for i, r := range st.Records {
		got[i] = model.SaccadeRecord{RT: r.RT, Accuracy: r.Accuracy, Duration: r.Duration, EndTime: r.EndTime}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, st.Acquired, "fifth goal-directed saccade lands on target")
	assert.Equal(t, 5, st.Classified)
	assert.Equal(t, 1, st.Ignored)
}

func TestAcquiredIffSomeLandingWithinRadius(t *testing.T) {
	c := New(center, 20, nil)
	tests := []struct {
		name   string
		ends   []model.Point
		wanted bool
	}{
		{"all outside", []model.Point{{X: 700, Y: 300}, {X: 1200, Y: 540}}, false},
		{"exactly on radius", []model.Point{{X: target.X + 20, Y: target.Y}}, true},
		{"just past radius", []model.Point{{X: target.X + 20.5, Y: target.Y}}, false},
		{"second hits", []model.Point{{X: 1200, Y: 540}, {X: target.X, Y: target.Y - 5}}, true},
		{"only fixational", []model.Point{{X: 961, Y: 541}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &State{}
			var events []model.SaccadeEvent
			for i, p := range tt.ends {
				events = append(events, sacc(int64(1100+100*i), int64(1130+100*i), p))
			}
			c.Process(st, 1000, target, events)
			assert.Equal(t, tt.wanted, st.Acquired)
		})
	}
}

type stepClock struct{ now int64 }

func (c *stepClock) Now() int64          { return c.now }
func (c *stepClock) Yield()              { c.now++ }
func (c *stepClock) Sleep(d time.Duration) { c.now += d.Milliseconds() }

type queueFeed struct {
	clock *stepClock
	at    map[int64][]model.SaccadeEvent
}

func (f *queueFeed) SaccadeEnds() []model.SaccadeEvent {
	ev := f.at[f.clock.now]
	delete(f.at, f.clock.now)
	return ev
}

func TestRunStopsOnAcquisition(t *testing.T) {
	clock := &stepClock{now: 2000}
	feed := &queueFeed{clock: clock, at: map[int64][]model.SaccadeEvent{
		2300: {sacc(2250, 2300, target)},
	}}
	refreshes := 0

	st, err := New(center, 20, nil).Run(context.Background(), clock, feed, func() { refreshes++ }, 2000, target, 2500)
	require.NoError(t, err)
	assert.True(t, st.Acquired)
	assert.Equal(t, int64(2301), clock.now)
	assert.Equal(t, 301, refreshes)
}

func TestRunTimesOut(t *testing.T) {
	clock := &stepClock{now: 0}
	feed := &queueFeed{clock: clock, at: map[int64][]model.SaccadeEvent{}}

	st, err := New(center, 20, nil).Run(context.Background(), clock, feed, func() {}, 0, target, 2500)
	require.NoError(t, err)
	assert.False(t, st.Acquired)
	assert.Empty(t, st.Records)
	assert.Equal(t, int64(2500), clock.now)
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	clock := &stepClock{}
	_, err := New(center, 20, nil).Run(ctx, clock, &queueFeed{clock: clock}, func() {}, 0, target, 2500)
	assert.ErrorIs(t, err, context.Canceled)
}
