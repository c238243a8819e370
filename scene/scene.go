// Package scene holds the draw commands of a viewer as an arena of
// id-indexed primitives grouped into layers.
//
// A display adapter reads the arena each paint; hit-testing is a spatial
// query over point primitives rather than a property of what was drawn.
package scene

import (
	"fmt"

	"dasa.cc/primeview/geom"
	"dasa.cc/primeview/quadtree"
)

// Kind of primitive.
type Kind uint8

const (
	KindPoint Kind = iota
	KindLine
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindMarker:
		return "marker"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Layer orders primitives for drawing; lower layers are drawn first.
type Layer uint8

const (
	LayerLines Layer = iota
	LayerPoints
	LayerHighlight
	LayerHover

	NumLayers = 4
)

var layerNames = [NumLayers]string{"lines", "points", "highlight", "hover"}

func (l Layer) String() string {
	if int(l) < NumLayers {
		return layerNames[l]
	}
	return fmt.Sprintf("Layer(%d)", uint8(l))
}

// ParseLayer returns the layer named s.
func ParseLayer(s string) (Layer, error) {
	for i, name := range layerNames {
		if name == s {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("scene: unknown layer %q", s)
}

// ID of a primitive in a Scene. IDs are reused after removal.
type ID int

// Primitive is a single draw command in world coordinates.
//
// Points and markers are circles at A with radius R. Lines run from A to
// B with thickness R.
type Primitive struct {
	Kind  Kind
	Layer Layer
	A, B  geom.Point
	R     float64

	// Element is the dataset element a point or marker stands for, or -1.
	Element int
}

// Point returns a point primitive for element i.
func Point(i int, p geom.Point, r float64) Primitive {
	return Primitive{Kind: KindPoint, Layer: LayerPoints, A: p, R: r, Element: i}
}

// Line returns a line primitive from a to b.
func Line(a, b geom.Point, thickness float64) Primitive {
	return Primitive{Kind: KindLine, Layer: LayerLines, A: a, B: b, R: thickness, Element: -1}
}

// Marker returns a marker primitive for element i on layer l.
func Marker(l Layer, i int, p geom.Point, r float64) Primitive {
	return Primitive{Kind: KindMarker, Layer: l, A: p, R: r, Element: i}
}

// Bounds returns the world rectangle p covers.
func (p Primitive) Bounds() geom.Rect {
	if p.Kind != KindLine {
		return geom.RectAround(p.A, p.R)
	}
	h := p.R / 2
	r := geom.RectAround(p.A, h)
	r = r.Union(p.B.Add(geom.Pt(h, h)))
	return r.Union(p.B.Sub(geom.Pt(h, h)))
}

// DefaultCellSize is the world size of hit-test cells.
const DefaultCellSize = 1

// Scene is not safe for concurrent use.
type Scene struct {
	prims []Primitive
	live  []bool
	free  []ID

	counts [NumLayers]int
	hidden [NumLayers]bool
	hover  bool

	index *quadtree.Index
	maxR  float64
}

// New returns an empty scene with hit-testing over bounds.
func New(bounds geom.Rect) *Scene {
	return &Scene{index: quadtree.NewIndex(bounds, DefaultCellSize)}
}

// Add appends p and returns its id.
func (s *Scene) Add(p Primitive) ID {
	var id ID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
		s.prims[id], s.live[id] = p, true
	} else {
		id = ID(len(s.prims))
		s.prims = append(s.prims, p)
		s.live = append(s.live, true)
	}
	s.counts[p.Layer]++
	if p.Kind == KindPoint {
		s.index.Insert(int(id), p.A)
		if p.R > s.maxR {
			s.maxR = p.R
		}
	}
	return id
}

// Get returns the primitive with id.
func (s *Scene) Get(id ID) (Primitive, bool) {
	if id < 0 || int(id) >= len(s.prims) || !s.live[id] {
		return Primitive{}, false
	}
	return s.prims[id], true
}

// Remove drops id from the scene; removing an unknown id does nothing.
func (s *Scene) Remove(id ID) {
	if _, ok := s.Get(id); !ok {
		return
	}
	s.counts[s.prims[id].Layer]--
	s.live[id] = false
	s.prims[id] = Primitive{}
	s.free = append(s.free, id)
}

// Reset removes every primitive and rebinds hit-testing to bounds.
// Visibility is kept; hover is disabled until enabled again.
func (s *Scene) Reset(bounds geom.Rect) {
	s.prims = s.prims[:0]
	s.live = s.live[:0]
	s.free = s.free[:0]
	s.counts = [NumLayers]int{}
	s.hover = false
	s.maxR = 0
	s.index.Reset(bounds, DefaultCellSize)
}

// Len returns the number of primitives in the scene.
func (s *Scene) Len() int {
	n := 0
	for _, c := range s.counts {
		n += c
	}
	return n
}

// Count returns the number of primitives in layer l.
func (s *Scene) Count(l Layer) int { return s.counts[l] }

// SetVisible shows or hides layer l.
func (s *Scene) SetVisible(l Layer, v bool) { s.hidden[l] = !v }

// Visible reports whether layer l is shown.
func (s *Scene) Visible(l Layer) bool { return !s.hidden[l] }

// Toggle flips the visibility of l and returns the new state.
func (s *Scene) Toggle(l Layer) bool {
	s.hidden[l] = !s.hidden[l]
	return !s.hidden[l]
}

// SetHover enables hit-testing for hover previews.
func (s *Scene) SetHover(v bool) { s.hover = v }

// Hover reports whether hover previews are enabled.
func (s *Scene) Hover() bool { return s.hover }

// Each calls fn for every primitive in visible layers, layer by layer in
// drawing order, until fn returns false.
func (s *Scene) Each(fn func(ID, Primitive) bool) {
	for l := Layer(0); l < NumLayers; l++ {
		if s.hidden[l] || s.counts[l] == 0 {
			continue
		}
		for id, p := range s.prims {
			if s.live[id] && p.Layer == l && !fn(ID(id), p) {
				return
			}
		}
	}
}

// HitTest returns the element of the nearest visible point containing
// the world position p.
func (s *Scene) HitTest(p geom.Point) (element int, ok bool) {
	if s.hidden[LayerPoints] || s.counts[LayerPoints] == 0 {
		return -1, false
	}
	best := 0.0
	element = -1
	s.index.Query(geom.RectAround(p, s.maxR), func(id int) bool {
		if !s.live[id] {
			return true
		}
		prim := s.prims[id]
		if prim.Kind != KindPoint {
			return true
		}
		d := prim.A.Distance(p)
		if d <= prim.R && (element < 0 || d < best) {
			best, element = d, prim.Element
		}
		return true
	})
	return element, element >= 0
}
