// Package highlight marks the relation targets of a selected element.
package highlight

import (
	"dasa.cc/primeview/dataset"
	"dasa.cc/primeview/scene"
	"dasa.cc/primeview/set"
)

// DefaultFactor scales a target's radius into its marker radius.
const DefaultFactor = 1.5

// Scene is where markers are drawn; *scene.Scene is a Scene.
type Scene interface {
	Add(scene.Primitive) scene.ID
	Remove(scene.ID)
}

// Highlighter draws on one scene layer, one marker for each distinct
// target of its selected element.
type Highlighter struct {
	Scene  Scene
	Layer  scene.Layer
	Factor float64

	ds       *dataset.Dataset
	selected int
	targets  set.Slice[int]
	marks    []scene.ID
}

func New(s Scene, l scene.Layer) *Highlighter {
	return &Highlighter{Scene: s, Layer: l, Factor: DefaultFactor, selected: -1}
}

// Reset clears the selection and binds the highlighter to ds. Call it
// before resetting the scene so its markers are removed first.
func (h *Highlighter) Reset(ds *dataset.Dataset) {
	h.Clear()
	h.ds = ds
}

// Clear removes the markers this highlighter added and the selection.
func (h *Highlighter) Clear() {
	// newest first, so the scene hands the ids out again in order
	for i := len(h.marks) - 1; i >= 0; i-- {
		h.Scene.Remove(h.marks[i])
	}
	h.marks = h.marks[:0]
	h.selected = -1
	h.targets = h.targets[:0]
}

// Select replaces the selection with element i and marks its targets.
// Selecting the selected element again redraws the same markers.
func (h *Highlighter) Select(i int) {
	h.Clear()
	if h.ds == nil || i < 0 || i >= h.ds.Len() {
		return
	}
	h.selected = i
	for _, g := range h.ds.Relations[i] {
		for _, t := range g.Targets {
			h.targets.Insert(t)
		}
	}
	f := h.Factor
	if f <= 0 {
		f = DefaultFactor
	}
	for _, t := range h.targets {
		r := h.ds.Elements[t].R * f
		h.marks = append(h.marks, h.Scene.Add(scene.Marker(h.Layer, t, h.ds.Position(t), r)))
	}
}

// Selected returns the selected element.
func (h *Highlighter) Selected() (int, bool) { return h.selected, h.selected >= 0 }

// Targets returns the marked elements in ascending order.
func (h *Highlighter) Targets() []int { return append([]int(nil), h.targets...) }
