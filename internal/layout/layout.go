// Package layout places the placeholders, cue and target on screen.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/rcliao/object-cueing/internal/model"
)

// ErrNoTarget is returned when asking for the target position of a catch trial.
var ErrNoTarget = errors.New("catch trial has no target")

// Position names one of the eight stimulus positions around fixation.
type Position int

const (
	Left Position = iota
	Right
	Top
	Bottom
	TopLeft
	TopRight
	BottomLeft
	BottomRight
	numPositions
)

var positionNames = [...]string{"left", "right", "top", "bottom", "top_left", "top_right", "bottom_left", "bottom_right"}

func (p Position) String() string {
	if p < 0 || p >= numPositions {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

// corner returns the column (0 left, 1 right) and row (0 top, 1 bottom).
func (p Position) corner() (col, row int) {
	switch p {
	case TopLeft:
		return 0, 0
	case TopRight:
		return 1, 0
	case BottomLeft:
		return 0, 1
	default:
		return 1, 1
	}
}

func cornerAt(col, row int) Position {
	return [2][2]Position{{TopLeft, BottomLeft}, {TopRight, BottomRight}}[col][row]
}

// CuePosition maps a cue location factor onto its corner position.
func CuePosition(c model.CueLocation) (Position, error) {
	switch c {
	case model.TopLeft:
		return TopLeft, nil
	case model.TopRight:
		return TopRight, nil
	case model.BottomLeft:
		return BottomLeft, nil
	case model.BottomRight:
		return BottomRight, nil
	}
	return 0, fmt.Errorf("%w: cue_location %q", model.ErrInvalidFactor, c)
}

// TargetCorner resolves which corner the target appears at. Boxes are the
// left and right columns when vertical and the top and bottom rows when
// horizontal.
func TargetCorner(f model.Factors) (Position, error) {
	cue, err := CuePosition(f.Cue)
	if err != nil {
		return 0, err
	}
	col, row := cue.corner()
	vertical := f.Alignment == model.Vertical
	if !vertical && f.Alignment != model.Horizontal {
		return 0, fmt.Errorf("%w: box_alignment %q", model.ErrInvalidFactor, f.Alignment)
	}

	switch f.Target {
	case model.CuedLocation:
		return cue, nil
	case model.CuedObject:
		if vertical {
			return cornerAt(col, 1-row), nil
		}
		return cornerAt(1-col, row), nil
	case model.UncuedAdjacent:
		if vertical {
			return cornerAt(1-col, row), nil
		}
		return cornerAt(col, 1-row), nil
	case model.UncuedOpposite:
		return cornerAt(1-col, 1-row), nil
	case model.Catch:
		return 0, ErrNoTarget
	}
	return 0, fmt.Errorf("%w: target_location %q", model.ErrInvalidFactor, f.Target)
}

// Layout holds pixel coordinates for every Position.
type Layout struct {
	center    model.Point
	pxPerDeg  float64
	positions [numPositions]model.Point
}

// Options describe the screen and stimulus geometry.
type Options struct {
	WidthPx, HeightPx int
	PxPerDeg          float64
	// OffsetDeg is the distance from fixation to placeholder centers.
	OffsetDeg float64
}

// New builds the position table. Every position is computed up front so
// lookups cannot fail.
func New(o Options) (*Layout, error) {
	if o.WidthPx <= 0 || o.HeightPx <= 0 {
		return nil, fmt.Errorf("layout: invalid screen size %dx%d", o.WidthPx, o.HeightPx)
	}
	if o.PxPerDeg <= 0 {
		return nil, fmt.Errorf("layout: invalid px/deg %v", o.PxPerDeg)
	}
	l := &Layout{
		center:   model.Point{X: float64(o.WidthPx) / 2, Y: float64(o.HeightPx) / 2},
		pxPerDeg: o.PxPerDeg,
	}
	off := l.DegToPx(o.OffsetDeg)
	cx, cy := l.center.X, l.center.Y
	l.positions = [numPositions]model.Point{
		Left:        {X: cx - off, Y: cy},
		Right:       {X: cx + off, Y: cy},
		Top:         {X: cx, Y: cy - off},
		Bottom:      {X: cx, Y: cy + off},
		TopLeft:     {X: cx - off, Y: cy - off},
		TopRight:    {X: cx + off, Y: cy - off},
		BottomLeft:  {X: cx - off, Y: cy + off},
		BottomRight: {X: cx + off, Y: cy + off},
	}
	return l, nil
}

// Center returns the screen center (fixation).
func (l *Layout) Center() model.Point { return l.center }

// DegToPx converts degrees of visual angle to pixels.
func (l *Layout) DegToPx(deg float64) float64 { return deg * l.pxPerDeg }

// At returns the coordinates of p.
func (l *Layout) At(p Position) model.Point { return l.positions[p] }

// Placeholders returns the centers of the two boxes: left and right for
// vertical boxes, top and bottom for horizontal ones.
func (l *Layout) Placeholders(a model.BoxAlignment) (model.Point, model.Point) {
	if a == model.Vertical {
		return l.At(Left), l.At(Right)
	}
	return l.At(Top), l.At(Bottom)
}

// TargetPosition returns where the target is drawn for f.
func (l *Layout) TargetPosition(f model.Factors) (model.Point, error) {
	p, err := TargetCorner(f)
	if err != nil {
		return model.Point{}, err
	}
	return l.At(p), nil
}

// PixelsPerDegree derives px/deg from the viewing distance and the physical
// and pixel width of the screen.
func PixelsPerDegree(viewDistanceCM, screenWidthCM float64, screenWidthPx int) float64 {
	if viewDistanceCM <= 0 || screenWidthCM <= 0 {
		return 0
	}
	deg := 2 * math.Atan(screenWidthCM/2/viewDistanceCM) * 180 / math.Pi
	return float64(screenWidthPx) / deg
}
