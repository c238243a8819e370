// Package axis places integer grid labels along the edges of a viewport.
package axis

import (
	"math"
	"strconv"

	"dasa.cc/primeview/camera"
	"dasa.cc/primeview/dataset"
	"dasa.cc/primeview/geom"
)

// DefaultMinSpacing is the smallest screen distance in pixels between labels.
const DefaultMinSpacing = 40

// Tick is a labeled world value and its camera screen coordinate along one axis.
type Tick struct {
	Value  int
	Screen float64
}

func (t Tick) String() string { return strconv.Itoa(t.Value) }

// Labels are the ticks of both axes for one camera state.
type Labels struct {
	Step int
	X, Y []Tick
}

// Compute returns labels at multiples of step = ceil(minSpacing/scale)
// within the world range visible in viewport.
func Compute(s camera.State, viewport geom.Point, minSpacing float64) Labels {
	return compute(s, viewport, minSpacing, nil)
}

// ComputeWithin is Compute with ticks limited to the grid of b.
func ComputeWithin(s camera.State, viewport geom.Point, minSpacing float64, b dataset.Bounds) Labels {
	return compute(s, viewport, minSpacing, &b)
}

func compute(s camera.State, viewport geom.Point, minSpacing float64, b *dataset.Bounds) Labels {
	if !(s.Scale > 0) || math.IsInf(s.Scale, 0) {
		return Labels{}
	}
	step := int(math.Ceil(minSpacing / s.Scale))
	if step < 1 {
		step = 1
	}
	xr := visible(s.Origin.X, viewport.X, s.Scale)
	yr := visible(s.Origin.Y, viewport.Y, s.Scale)
	if b != nil {
		xr = intersect(xr, geom.Range{Min: 0, Max: b.XMax})
		yr = intersect(yr, geom.Range{Min: 0, Max: b.YMax})
	}
	return Labels{
		Step: step,
		X:    ticks(xr, step, s.Origin.X, s.Scale),
		Y:    ticks(yr, step, s.Origin.Y, s.Scale),
	}
}

// visible returns the world range mapped to screen [0, size].
func visible(origin, size, scale float64) geom.Range {
	return geom.Range{Min: -origin / scale, Max: (size - origin) / scale}
}

func intersect(a, b geom.Range) geom.Range {
	return geom.Range{Min: math.Max(a.Min, b.Min), Max: math.Min(a.Max, b.Max)}
}

func ticks(r geom.Range, step int, origin, scale float64) []Tick {
	if r.Min > r.Max {
		return nil
	}
	st := float64(step)
	first := math.Ceil(r.Min/st) * st
	var ts []Tick
	for v := first; v <= r.Max; v += st {
		ts = append(ts, Tick{Value: int(v), Screen: origin + v*scale})
	}
	return ts
}
