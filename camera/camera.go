// Package camera maps world coordinates of a dataset onto a viewport and
// keeps the data reachable while panning and zooming.
//
// Camera screen space is in pixels with y growing upward from the bottom
// edge of the viewport; FromPixel converts window pixels, whose y grows
// downward, into it.
package camera

import (
	"math"

	"golang.org/x/image/math/f64"

	"dasa.cc/primeview/dataset"
	"dasa.cc/primeview/geom"
)

const (
	DefaultMargin          = 40
	DefaultMinVisibleUnits = 4
)

// State is the committed transform: screen = Origin + world*Scale.
type State struct {
	Scale  float64
	Origin geom.Point
}

// Camera is not safe for concurrent use.
type Camera struct {
	State

	// MarginX and MarginY are the pixels of slack beyond the data's lower edges.
	MarginX, MarginY float64

	// MinVisibleUnits bounds ScaleMax so at least this many grid units fit on screen.
	MinVisibleUnits float64

	// OnChange is called after every commit.
	OnChange func(State)

	viewport geom.Point
	bounds   dataset.Bounds

	scaleMin, scaleMax float64
}

// New returns a camera for a viewport of w by h pixels showing the default bounds.
func New(w, h float64) *Camera {
	cam := &Camera{
		MarginX:         DefaultMargin,
		MarginY:         DefaultMargin,
		MinVisibleUnits: DefaultMinVisibleUnits,
		viewport:        geom.Pt(w, h),
		bounds:          dataset.Bounds{XMax: dataset.MinExtent, YMax: dataset.MinExtent},
	}
	cam.limits()
	cam.Reset()
	return cam
}

func (cam *Camera) Viewport() geom.Point    { return cam.viewport }
func (cam *Camera) Bounds() dataset.Bounds  { return cam.bounds }
func (cam *Camera) ScaleLimits() geom.Range { return geom.Range{Min: cam.scaleMin, Max: cam.scaleMax} }

func (cam *Camera) limits() {
	w, h := cam.viewport.X, cam.viewport.Y
	fit := math.Min((w-cam.MarginX)/(cam.bounds.XMax+1), (h-cam.MarginY)/(cam.bounds.YMax+1))
	if fit <= 0 || math.IsNaN(fit) || math.IsInf(fit, 0) {
		fit = 1
	}
	units := cam.MinVisibleUnits
	if units <= 0 {
		units = DefaultMinVisibleUnits
	}
	cam.scaleMin = fit
	cam.scaleMax = math.Max(fit, math.Min(w, h)/units)
}

// PanBounds returns the ranges origin may take at scale s.
func (cam *Camera) PanBounds(s float64) (x, y geom.Range) {
	w, h := cam.viewport.X, cam.viewport.Y
	x = geom.Range{
		Min: w - (cam.bounds.XMax+0.5)*s,
		Max: cam.MarginX + 0.5*s,
	}
	y = geom.Range{
		Min: h - (cam.bounds.YMax+0.5)*s,
		Max: cam.MarginY + 0.5*s,
	}
	// short data cannot fill the viewport; pin it to the lower margin.
	y = y.Normalize()
	return x, y
}

func (cam *Camera) clamp(origin geom.Point, s float64) geom.Point {
	xr, yr := cam.PanBounds(s)
	return geom.Pt(xr.Clip(origin.X), yr.Clip(origin.Y))
}

func (cam *Camera) commit(s float64, origin geom.Point) {
	cam.Scale = s
	cam.Origin = cam.clamp(origin, s)
	if cam.OnChange != nil {
		cam.OnChange(cam.State)
	}
}

// WorldToScreen maps p from world to camera screen space.
func (cam *Camera) WorldToScreen(p geom.Point) geom.Point {
	return cam.Origin.Add(p.Scale(cam.Scale))
}

// ScreenToWorld maps p from camera screen space to world.
func (cam *Camera) ScreenToWorld(p geom.Point) geom.Point {
	return p.Sub(cam.Origin).Div(cam.Scale)
}

// FromPixel converts a window pixel position into camera screen space.
func (cam *Camera) FromPixel(p geom.Point) geom.Point {
	return geom.Pt(p.X, cam.viewport.Y-p.Y)
}

// ToPixel converts camera screen space into a window pixel position.
func (cam *Camera) ToPixel(p geom.Point) geom.Point {
	return geom.Pt(p.X, cam.viewport.Y-p.Y)
}

// Zoom multiplies scale by rate, within limits, holding pivot fixed.
// Rate must be positive and finite.
func (cam *Camera) Zoom(pivot geom.Point, rate float64) {
	s := geom.Clip(cam.Scale*rate, cam.scaleMin, cam.scaleMax)
	actual := s / cam.Scale
	origin := pivot.Add(cam.Origin.Sub(pivot).Scale(actual))
	cam.commit(s, origin)
}

// Translate moves origin by delta screen pixels.
func (cam *Camera) Translate(delta geom.Point) {
	cam.commit(cam.Scale, cam.Origin.Add(delta))
}

// SetScale sets scale within limits, holding the viewport center fixed.
func (cam *Camera) SetScale(s float64) {
	if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return
	}
	cam.Zoom(cam.viewport.Scale(0.5), s/cam.Scale)
}

// SetCenter pans so world point p is at the viewport center, within bounds.
func (cam *Camera) SetCenter(p geom.Point) {
	center := cam.viewport.Scale(0.5)
	cam.commit(cam.Scale, center.Sub(p.Scale(cam.Scale)))
}

// Center returns the world point at the viewport center.
func (cam *Camera) Center() geom.Point {
	return cam.ScreenToWorld(cam.viewport.Scale(0.5))
}

// SetViewport resizes the viewport, recomputing scale limits.
func (cam *Camera) SetViewport(w, h float64) {
	cam.viewport = geom.Pt(w, h)
	cam.refit()
}

// SetBounds replaces data bounds, recomputing scale limits.
func (cam *Camera) SetBounds(b dataset.Bounds) {
	cam.bounds = b
	cam.refit()
}

func (cam *Camera) refit() {
	cam.limits()
	s := cam.Scale
	if s == 0 {
		s = cam.scaleMin
	}
	cam.commit(geom.Clip(s, cam.scaleMin, cam.scaleMax), cam.Origin)
}

// Reset shows the whole grid at the smallest scale.
func (cam *Camera) Reset() {
	cam.commit(cam.scaleMin, geom.Pt(cam.MarginX, cam.MarginY))
}

// Aff3 returns the world to window pixel transform.
func (cam *Camera) Aff3() f64.Aff3 {
	return f64.Aff3{
		cam.Scale, 0, cam.Origin.X,
		0, -cam.Scale, cam.viewport.Y - cam.Origin.Y,
	}
}
