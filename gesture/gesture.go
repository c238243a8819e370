// Package gesture tracks up to two pointers and turns their motion into
// camera pans and pinch zooms.
//
// Positions given to a Tracker are window pixels, y growing downward.
package gesture

import (
	"fmt"

	"dasa.cc/primeview/geom"
)

// Camera is the part of camera.Camera a Tracker drives.
type Camera interface {
	Translate(delta geom.Point)
	Zoom(pivot geom.Point, rate float64)
	FromPixel(p geom.Point) geom.Point
}

// State of a Tracker, derived from how many pointers are down.
type State uint8

const (
	Idle State = iota
	Panning
	Pinching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case Pinching:
		return "pinching"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// MaxPointers is the number of pointers tracked at once. Pointers that
// go down while the tracker is full are ignored for their lifetime.
const MaxPointers = 2

// ID identifies a pointer; touch sequences use their sequence number.
type ID int64

type pointer struct {
	id  ID
	pos geom.Point
}

// Tracker is not safe for concurrent use.
type Tracker struct {
	Camera Camera

	// Capture is called with true when the first pointer goes down and with
	// false once every tracked pointer is released, so a host can route
	// releases outside the viewport back to the tracker.
	Capture func(bool)

	pointers []pointer
	anchor   geom.Point
	dist     float64
}

func (t *Tracker) State() State { return State(len(t.pointers)) }

// Len returns the number of tracked pointers.
func (t *Tracker) Len() int { return len(t.pointers) }

// Tracking reports whether id is tracked.
func (t *Tracker) Tracking(id ID) bool { return t.index(id) >= 0 }

func (t *Tracker) index(id ID) int {
	for i, p := range t.pointers {
		if p.id == id {
			return i
		}
	}
	return -1
}

// Down starts tracking id at p unless the tracker is full or id is already down.
func (t *Tracker) Down(id ID, p geom.Point) {
	if len(t.pointers) == MaxPointers || t.index(id) >= 0 {
		return
	}
	t.pointers = append(t.pointers, pointer{id, p})
	switch len(t.pointers) {
	case 1:
		t.anchor = p
		if t.Capture != nil {
			t.Capture(true)
		}
	case 2:
		t.dist = t.pointers[0].pos.Distance(t.pointers[1].pos)
	}
}

// Move updates id to p, panning or zooming the camera.
func (t *Tracker) Move(id ID, p geom.Point) {
	i := t.index(id)
	if i < 0 {
		return
	}
	t.pointers[i].pos = p

	switch len(t.pointers) {
	case 1:
		d := p.Sub(t.anchor)
		t.anchor = p
		if d != geom.ZP && t.Camera != nil {
			t.Camera.Translate(geom.Pt(d.X, -d.Y))
		}
	case 2:
		other := t.pointers[1-i].pos
		dist := p.Distance(other)
		prev := t.dist
		t.dist = dist
		if prev == 0 || dist == 0 || dist == prev || t.Camera == nil {
			return
		}
		t.Camera.Zoom(t.Camera.FromPixel(other), dist/prev)
	}
}

// Up stops tracking id. If id was tracked, the release position is
// returned with ok set so the caller can hit-test it.
func (t *Tracker) Up(id ID, p geom.Point) (release geom.Point, ok bool) {
	if !t.remove(id) {
		return geom.ZP, false
	}
	return p, true
}

// Cancel stops tracking id without reporting a release.
func (t *Tracker) Cancel(id ID) { t.remove(id) }

func (t *Tracker) remove(id ID) bool {
	i := t.index(id)
	if i < 0 {
		return false
	}
	t.pointers = append(t.pointers[:i], t.pointers[i+1:]...)
	if len(t.pointers) == 1 {
		t.anchor = t.pointers[0].pos
		t.dist = 0
		return true
	}
	t.release()
	return true
}

// Blur clears all gesture state, as if every pointer was released.
func (t *Tracker) Blur() {
	if len(t.pointers) == 0 {
		return
	}
	t.pointers = t.pointers[:0]
	t.release()
}

func (t *Tracker) release() {
	t.anchor = geom.ZP
	t.dist = 0
	if t.Capture != nil {
		t.Capture(false)
	}
}
