package boundary

import (
	"errors"
	"testing"

	"github.com/rcliao/object-cueing/internal/model"
)

func TestCircleContains(t *testing.T) {
	c := Circle{Center: model.Point{X: 960, Y: 540}, Radius: 20}

	tests := []struct {
		name string
		p    model.Point
		want bool
	}{
		{"center", model.Point{X: 960, Y: 540}, true},
		{"on edge right", model.Point{X: 980, Y: 540}, true},
		{"on edge left", model.Point{X: 940, Y: 540}, true},
		{"on edge diagonal", model.Point{X: 972, Y: 556}, true},
		{"just outside", model.Point{X: 980.01, Y: 540}, false},
		{"far", model.Point{X: 0, Y: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestCircleReflectionSymmetry(t *testing.T) {
	center := model.Point{X: 100, Y: 100}
	c := Circle{Center: center, Radius: 30}
	offsets := []model.Point{{X: 10, Y: 5}, {X: 29, Y: 0}, {X: 18, Y: 24}, {X: 25, Y: 25}}
	for _, o := range offsets {
		ref := c.Contains(model.Point{X: center.X + o.X, Y: center.Y + o.Y})
		for _, m := range []model.Point{
			{X: center.X - o.X, Y: center.Y + o.Y},
			{X: center.X + o.X, Y: center.Y - o.Y},
			{X: center.X - o.X, Y: center.Y - o.Y},
		} {
			if c.Contains(m) != ref {
				t.Errorf("reflection of %v to %v changed containment", o, m)
			}
		}
	}
}

func TestCircleScales(t *testing.T) {
	for _, k := range []float64{0.5, 1, 3, 10} {
		c := Circle{Radius: 5 * k}
		if !c.Contains(model.Point{X: 3 * k, Y: 4 * k}) {
			t.Errorf("scale %v: expected point on scaled edge inside", k)
		}
		if c.Contains(model.Point{X: 3 * k, Y: 4.1 * k}) {
			t.Errorf("scale %v: expected point beyond scaled edge outside", k)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{Min: model.Point{X: 0, Y: 0}, Max: model.Point{X: 10, Y: 5}}
	if !r.Contains(model.Point{X: 10, Y: 5}) {
		t.Error("expected corner inside")
	}
	if r.Contains(model.Point{X: 11, Y: 2}) {
		t.Error("expected point outside")
	}
}

func TestInspector(t *testing.T) {
	b := NewInspector()
	b.Add(DriftCorrect, Circle{Center: model.Point{X: 0, Y: 0}, Radius: 1})

	ok, err := b.Within(DriftCorrect, model.Point{X: 0.5, Y: 0})
	if err != nil || !ok {
		t.Errorf("expected inside, got %v, %v", ok, err)
	}

	_, err = b.Within("target", model.Point{})
	if !errors.Is(err, ErrUnknownBoundary) {
		t.Errorf("expected ErrUnknownBoundary, got %v", err)
	}

	b.Add("target", Rect{Max: model.Point{X: 1, Y: 1}})
	if got := b.Labels(); len(got) != 2 || got[0] != DriftCorrect || got[1] != "target" {
		t.Errorf("unexpected labels %v", got)
	}

	b.Remove("target")
	if _, err := b.Within("target", model.Point{}); !errors.Is(err, ErrUnknownBoundary) {
		t.Errorf("expected removed boundary to be unknown, got %v", err)
	}
}
