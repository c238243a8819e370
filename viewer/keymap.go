package viewer

import (
	"context"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"dasa.cc/primeview/geom"
	"dasa.cc/primeview/scene"
)

type KeyProc struct {
	Func func(context.Context, *Session)
	Cond func(key.Event) bool
}

func KeyPressed(ev key.Event) bool  { return ev.Direction != key.DirRelease }
func KeyReleased(ev key.Event) bool { return ev.Direction == key.DirRelease }

func keymapPanLeft(_ context.Context, s *Session)  { s.pan(1, 0) }
func keymapPanRight(_ context.Context, s *Session) { s.pan(-1, 0) }
func keymapPanUp(_ context.Context, s *Session)    { s.pan(0, -1) }
func keymapPanDown(_ context.Context, s *Session)  { s.pan(0, 1) }
func keymapZoomIn(_ context.Context, s *Session)   { s.zoom(DefaultZoomRate) }
func keymapZoomOut(_ context.Context, s *Session)  { s.zoom(1 / DefaultZoomRate) }

var keymap = map[key.Code]KeyProc{
	key.CodeLeftArrow:   {Func: keymapPanLeft, Cond: KeyPressed},
	key.CodeRightArrow:  {Func: keymapPanRight, Cond: KeyPressed},
	key.CodeUpArrow:     {Func: keymapPanUp, Cond: KeyPressed},
	key.CodeDownArrow:   {Func: keymapPanDown, Cond: KeyPressed},
	key.CodeEqualSign:   {Func: keymapZoomIn, Cond: KeyPressed},
	key.CodeHyphenMinus: {Func: keymapZoomOut, Cond: KeyPressed},

	key.CodeLeftSquareBracket: {
		Func: func(ctx context.Context, s *Session) { s.Navigate(ctx, -1) },
		Cond: KeyPressed,
	},
	key.CodeRightSquareBracket: {
		Func: func(ctx context.Context, s *Session) { s.Navigate(ctx, 1) },
		Cond: KeyPressed,
	},
	key.CodeL: {
		Func: func(_ context.Context, s *Session) { s.ToggleLayer(scene.LayerLines) },
		Cond: KeyReleased,
	},
	key.CodeP: {
		Func: func(_ context.Context, s *Session) { s.ToggleLayer(scene.LayerPoints) },
		Cond: KeyReleased,
	},
	key.CodeR: {
		Func: func(_ context.Context, s *Session) { s.ResetView() },
		Cond: KeyReleased,
	},
	key.CodeEscape: {
		Func: func(_ context.Context, s *Session) { s.ClearSelection() },
		Cond: KeyReleased,
	},
}

func (s *Session) pan(dx, dy float64) {
	vp := s.Camera.Viewport()
	step := s.opts.PanStep * min(vp.X, vp.Y)
	s.Camera.Translate(geom.Pt(dx*step, dy*step))
}

func (s *Session) zoom(rate float64) {
	s.Camera.Zoom(s.Camera.Viewport().Scale(0.5), rate)
}

// HandleEvent applies a window event and reports whether it was consumed.
// Lifecycle events are observed but never consumed.
func (s *Session) HandleEvent(ctx context.Context, e interface{}) bool {
	switch e := e.(type) {
	case mouse.Event, touch.Event:
		s.Filter.Filter(e)
		return true
	case key.Event:
		proc, ok := keymap[e.Code]
		if !ok {
			return false
		}
		if proc.Cond == nil || proc.Cond(e) {
			proc.Func(ctx, s)
		}
		return true
	case size.Event:
		s.Resize(float64(e.WidthPx), float64(e.HeightPx))
		return true
	case lifecycle.Event:
		if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
			s.Blur()
		}
	}
	return false
}
