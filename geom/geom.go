// Package geom provides value primitives for 2D viewport math.
package geom

import (
	"fmt"
	"math"
)

// ZP is the zero Point.
var ZP Point

// Point is a 2D vector; all operations return new values.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{x, y} }

func (a Point) Add(b Point) Point        { return Point{a.X + b.X, a.Y + b.Y} }
func (a Point) Sub(b Point) Point        { return Point{a.X - b.X, a.Y - b.Y} }
func (a Point) Scale(k float64) Point    { return Point{a.X * k, a.Y * k} }
func (a Point) Div(k float64) Point      { return Point{a.X / k, a.Y / k} }
func (a Point) Distance(b Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Eq reports whether a and b are equal per component within eps.
func (a Point) Eq(b Point, eps float64) bool { return Equal(a.X, b.X, eps) && Equal(a.Y, b.Y, eps) }

func (a Point) String() string { return fmt.Sprintf("(%g, %g)", a.X, a.Y) }

// Clip returns v bounded to [lo, hi]. If lo > hi, hi is returned.
func Clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Range is a closed interval.
type Range struct {
	Min, Max float64
}

// Normalize narrows Min to Max when the range is inverted.
func (r Range) Normalize() Range {
	if r.Min > r.Max {
		r.Min = r.Max
	}
	return r
}

// Clip bounds v to r.
func (r Range) Clip(v float64) float64 { return Clip(v, r.Min, r.Max) }

// Contains reports whether v lies in r.
func (r Range) Contains(v float64) bool { return r.Min <= v && v <= r.Max }

// Rect is an axis-aligned rectangle; Min is inclusive and so is Max.
type Rect struct {
	Min, Max Point
}

// RectAround returns the square of half-width r centered at p.
func RectAround(p Point, r float64) Rect {
	return Rect{Point{p.X - r, p.Y - r}, Point{p.X + r, p.Y + r}}
}

// Contains reports whether p lies in r.
func (r Rect) Contains(p Point) bool {
	return r.Min.X <= p.X && p.X <= r.Max.X && r.Min.Y <= p.Y && p.Y <= r.Max.Y
}

// Union returns the smallest rectangle containing r and p.
func (r Rect) Union(p Point) Rect {
	return Rect{
		Point{math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y)},
		Point{math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y)},
	}
}

const Epsilon = 1e-9

// Equal reports whether a and b differ by less than eps relative to their magnitude.
func Equal(a, b, eps float64) bool {
	d := math.Abs(a - b)
	if d < eps {
		return true
	}
	return d <= eps*math.Max(math.Abs(a), math.Abs(b))
}
