package session

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/rcliao/object-cueing/internal/model"
)

// FullDesign returns every factor combination valid in mode: 32 for saccade
// sessions, 40 for keypress sessions which add catch trials.
func FullDesign(mode model.ResponseMode) []model.Factors {
	aligns := []model.BoxAlignment{model.Horizontal, model.Vertical}
	cues := []model.CueLocation{model.TopLeft, model.TopRight, model.BottomLeft, model.BottomRight}
	targets := []model.TargetLocation{model.CuedLocation, model.CuedObject, model.UncuedAdjacent, model.UncuedOpposite}
	if mode == model.ModeKeypress {
		targets = append(targets, model.Catch)
	}

	var out []model.Factors
	for _, a := range aligns {
		for _, c := range cues {
			for _, t := range targets {
				out = append(out, model.Factors{Alignment: a, Cue: c, Target: t})
			}
		}
	}
	return out
}

// LoadTrialList reads factor rows from CSV. The header must name the
// box_alignment, cue_location and target_location columns in any order;
// other columns are ignored. Every row is validated for mode.
func LoadTrialList(r io.Reader, mode model.ResponseMode) ([]model.Factors, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read trial list: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("read trial list: no trials")
	}

	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"box_alignment", "cue_location", "target_location"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("read trial list: missing column %q", name)
		}
	}

	var out []model.Factors
	for i, rec := range records[1:] {
		line := i + 2
		get := func(name string) string {
			j := col[name]
			if j >= len(rec) {
				return ""
			}
			return strings.ToLower(strings.TrimSpace(rec[j]))
		}
		f := model.Factors{
			Alignment: model.BoxAlignment(get("box_alignment")),
			Cue:       model.CueLocation(get("cue_location")),
			Target:    model.TargetLocation(get("target_location")),
		}
		if err := f.Validate(mode); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Deck is the queue of factor combinations still to complete in a block.
type Deck struct {
	cards []model.Factors
	rng   *rand.Rand
}

// NewDeck deals n cards from design. Each pass over design is shuffled, so
// a block of len(design) trials runs every combination once.
func NewDeck(design []model.Factors, n int, rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	if len(design) == 0 {
		return d
	}
	for len(d.cards) < n {
		pass := make([]model.Factors, len(design))
		copy(pass, design)
		rng.Shuffle(len(pass), func(i, j int) { pass[i], pass[j] = pass[j], pass[i] })
		d.cards = append(d.cards, pass...)
	}
	d.cards = d.cards[:n]
	return d
}

// Len returns the number of cards left.
func (d *Deck) Len() int { return len(d.cards) }

// Draw removes and returns the next card.
func (d *Deck) Draw() (model.Factors, bool) {
	if len(d.cards) == 0 {
		return model.Factors{}, false
	}
	f := d.cards[0]
	d.cards = d.cards[1:]
	return f, true
}

// Reinsert puts f back at a random position behind at least one remaining
// card, so an aborted combination is never retried immediately unless it
// is the last one left.
func (d *Deck) Reinsert(f model.Factors) {
	pos := 0
	if len(d.cards) > 0 {
		pos = 1 + d.rng.Intn(len(d.cards))
	}
	d.cards = append(d.cards, model.Factors{})
	copy(d.cards[pos+1:], d.cards[pos:])
	d.cards[pos] = f
}
