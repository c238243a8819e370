package gesture

import (
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"dasa.cc/primeview/geom"
)

// Type is the phase of a pointer event.
type Type uint8

func (t Type) Has(x Type) bool { return t&x == x }
func (t Type) Any(x Type) bool { return t&x != 0 }

const (
	TypeBegin Type = 1 << iota
	TypeMove
	TypeEnd

	TypeInvalid Type = 0
)

func typeFor(t interface{}) Type {
	switch t {
	case touch.TypeBegin, mouse.DirPress:
		return TypeBegin
	case touch.TypeEnd, mouse.DirRelease:
		return TypeEnd
	case touch.TypeMove, mouse.DirNone:
		return TypeMove
	default:
		return TypeInvalid
	}
}

// MouseID is the pointer id used for the mouse.
const MouseID ID = -1

// DefaultWheelRate is the zoom rate of one wheel step.
const DefaultWheelRate = 1.1

// Filter feeds mouse and touch events into a Tracker.
type Filter struct {
	Tracker *Tracker

	// Release receives the window position of every tracked pointer release.
	Release func(p geom.Point)

	// Hover receives plain mouse moves while no pointer is down.
	Hover func(p geom.Point)

	// WheelRate zooms in per wheel step; DefaultWheelRate if zero.
	WheelRate float64
}

// Filter consumes e if it is a pointer event and returns it unchanged.
func (f *Filter) Filter(e interface{}) interface{} {
	switch e := e.(type) {
	case mouse.Event:
		f.mouse(e)
	case touch.Event:
		f.pointer(ID(e.Sequence), geom.Pt(float64(e.X), float64(e.Y)), typeFor(e.Type))
	}
	return e
}

func (f *Filter) mouse(e mouse.Event) {
	p := geom.Pt(float64(e.X), float64(e.Y))
	if e.Button.IsWheel() {
		if e.Direction != mouse.DirStep && e.Direction != mouse.DirPress {
			return
		}
		f.wheel(p, e.Button)
		return
	}
	typ := typeFor(e.Direction)
	if typ == TypeMove && !f.Tracker.Tracking(MouseID) {
		if f.Hover != nil && f.Tracker.Len() == 0 {
			f.Hover(p)
		}
		return
	}
	// only the left button drags
	if typ.Any(TypeBegin|TypeEnd) && e.Button != mouse.ButtonLeft {
		return
	}
	f.pointer(MouseID, p, typ)
}

func (f *Filter) wheel(p geom.Point, b mouse.Button) {
	cam := f.Tracker.Camera
	if cam == nil {
		return
	}
	rate := f.WheelRate
	if rate <= 0 {
		rate = DefaultWheelRate
	}
	switch b {
	case mouse.ButtonWheelUp:
		cam.Zoom(cam.FromPixel(p), rate)
	case mouse.ButtonWheelDown:
		cam.Zoom(cam.FromPixel(p), 1/rate)
	}
}

func (f *Filter) pointer(id ID, p geom.Point, typ Type) {
	switch typ {
	case TypeBegin:
		f.Tracker.Down(id, p)
	case TypeMove:
		f.Tracker.Move(id, p)
	case TypeEnd:
		if at, ok := f.Tracker.Up(id, p); ok && f.Release != nil {
			f.Release(at)
		}
	}
}
