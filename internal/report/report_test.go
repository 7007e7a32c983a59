package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/session"
)

func keypress(block int, target model.TargetLocation, rt int64) model.TrialResult {
	return model.TrialResult{
		BlockNum:    block,
		SessionType: model.ModeKeypress,
		Factors:     model.Factors{Alignment: model.Vertical, Cue: model.TopRight, Target: target},
		KeypressRT:  model.Int64(rt),
		MovedEyes:   model.Bool(false),
	}
}

func TestByBlock(t *testing.T) {
	trials := []model.TrialResult{
		keypress(2, model.CuedLocation, 400),
		keypress(1, model.CuedLocation, 300),
		keypress(1, model.CuedObject, 350),
		keypress(2, model.Catch, 200),
	}
	got := ByBlock(model.ModeKeypress, trials)
	assert.Equal(t, []BlockPoint{{Block: 1, Value: 325}, {Block: 2, Value: 400}}, got)
}

func TestRender(t *testing.T) {
	trials := []model.TrialResult{
		keypress(1, model.CuedLocation, 300),
		keypress(1, model.UncuedOpposite, 360),
	}
	s := session.Summarize("01HTEST", model.ModeKeypress, trials, nil)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s, trials))
	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "By Target Location")
	assert.Contains(t, html, "uncued_opposite")
	assert.Contains(t, html, "block 1")
}
