package session

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/object-cueing/internal/model"
)

func TestFullDesign(t *testing.T) {
	sacc := FullDesign(model.ModeSaccade)
	key := FullDesign(model.ModeKeypress)
	assert.Len(t, sacc, 32)
	assert.Len(t, key, 40)

	catches := 0
	for _, f := range key {
		require.NoError(t, f.Validate(model.ModeKeypress))
		if f.IsCatch() {
			catches++
		}
	}
	assert.Equal(t, 8, catches)
	for _, f := range sacc {
		assert.False(t, f.IsCatch())
	}
}

func TestDeckDealsShuffledPasses(t *testing.T) {
	design := FullDesign(model.ModeSaccade)
	d := NewDeck(design, 40, rand.New(rand.NewSource(1)))
	assert.Equal(t, 40, d.Len())

	first := map[model.Factors]bool{}
	for i := 0; i < 32; i++ {
		f, ok := d.Draw()
		require.True(t, ok)
		first[f] = true
	}
	assert.Len(t, first, 32, "first pass covers the whole design")

	for d.Len() > 0 {
		d.Draw()
	}
	_, ok := d.Draw()
	assert.False(t, ok)
}

func TestDeckReinsert(t *testing.T) {
	design := FullDesign(model.ModeSaccade)[:4]
	d := NewDeck(design, 4, rand.New(rand.NewSource(3)))

	f, _ := d.Draw()
	d.Reinsert(f)
	assert.Equal(t, 4, d.Len())
	next, _ := d.Draw()
	assert.NotEqual(t, f, next, "reinserted card is not drawn immediately")

	for d.Len() > 1 {
		d.Draw()
	}
	last, _ := d.Draw()
	d.Reinsert(last)
	again, ok := d.Draw()
	assert.True(t, ok)
	assert.Equal(t, last, again)
}

func TestLoadTrialList(t *testing.T) {
	csvText := `target_location, box_alignment, cue_location, note
cued_object, vertical, top_left, x
CATCH, Horizontal, bottom_right,
`
	got, err := LoadTrialList(strings.NewReader(csvText), model.ModeKeypress)
	require.NoError(t, err)
	assert.Equal(t, []model.Factors{
		{Alignment: model.Vertical, Cue: model.TopLeft, Target: model.CuedObject},
		{Alignment: model.Horizontal, Cue: model.BottomRight, Target: model.Catch},
	}, got)
}

func TestLoadTrialListErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		mode model.ResponseMode
	}{
		{"empty", "box_alignment,cue_location,target_location\n", model.ModeKeypress},
		{"missing column", "box_alignment,cue_location\nvertical,top_left\n", model.ModeKeypress},
		{"bad value", "box_alignment,cue_location,target_location\ndiagonal,top_left,cued_object\n", model.ModeKeypress},
		{"catch in saccade mode", "box_alignment,cue_location,target_location\nvertical,top_left,catch\n", model.ModeSaccade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTrialList(strings.NewReader(tt.csv), tt.mode)
			assert.Error(t, err)
		})
	}
}
