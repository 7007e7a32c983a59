// Package boundary tests whether gaze points fall inside named screen regions.
package boundary

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rcliao/object-cueing/internal/model"
)

// ErrUnknownBoundary is returned when a label was never added.
var ErrUnknownBoundary = errors.New("unknown boundary")

// DriftCorrect is the fixation-tolerance region around screen center.
const DriftCorrect = "drift_correct"

// Shape is a region that can test point containment.
type Shape interface {
	Contains(p model.Point) bool
}

// Circle contains points at most Radius away from Center.
type Circle struct {
	Center model.Point
	Radius float64
}

// Contains uses <=, so a point exactly on the edge is inside.
func (c Circle) Contains(p model.Point) bool {
	return model.Distance(c.Center, p) <= c.Radius
}

// Rect contains points within [Min, Max] on both axes, edges included.
type Rect struct {
	Min, Max model.Point
}

func (r Rect) Contains(p model.Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Inspector holds the set of named boundaries. Boundaries are added between
// trials and only queried while a trial runs.
type Inspector struct {
	shapes map[string]Shape
}

// NewInspector returns an empty inspector.
func NewInspector() *Inspector {
	return &Inspector{shapes: map[string]Shape{}}
}

// Add registers or replaces a boundary.
func (b *Inspector) Add(label string, s Shape) {
	b.shapes[label] = s
}

// Remove deletes a boundary. Removing an absent label is a no-op.
func (b *Inspector) Remove(label string) {
	delete(b.shapes, label)
}

// Within reports whether p lies inside the boundary named label.
func (b *Inspector) Within(label string, p model.Point) (bool, error) {
	s, ok := b.shapes[label]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownBoundary, label)
	}
	return s.Contains(p), nil
}

// Labels returns the registered labels, sorted.
func (b *Inspector) Labels() []string {
	out := make([]string, 0, len(b.shapes))
	for l := range b.shapes {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
