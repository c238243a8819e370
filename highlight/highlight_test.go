package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dasa.cc/primeview/dataset"
	"dasa.cc/primeview/geom"
	"dasa.cc/primeview/scene"
)

func markers(s *scene.Scene, l scene.Layer) []scene.Primitive {
	var ps []scene.Primitive
	s.Each(func(_ scene.ID, p scene.Primitive) bool {
		if p.Layer == l {
			ps = append(ps, p)
		}
		return true
	})
	return ps
}

func exampleDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Kind:     dataset.KindLattice,
		Elements: []dataset.Element{{X: 0, Y: 0, R: 1}, {X: 5, Y: 3, R: 1}},
		Relations: dataset.Relations{
			0: {{Weight: 1, Targets: []int{1}}},
		},
	}
}

func TestExample(t *testing.T) {
	s := scene.New(geom.Rect{Max: geom.Pt(10, 10)})
	h := New(s, scene.LayerHighlight)
	h.Reset(exampleDataset())

	h.Select(0)
	ms := markers(s, scene.LayerHighlight)
	require.Len(t, ms, 1)
	assert.Equal(t, geom.Pt(5, 3), ms[0].A)
	assert.Equal(t, 1.5, ms[0].R)
	i, ok := h.Selected()
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	h.Select(1)
	assert.Empty(t, markers(s, scene.LayerHighlight))
	i, ok = h.Selected()
	assert.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestIdempotent(t *testing.T) {
	ds := exampleDataset()
	ds.Elements = append(ds.Elements, dataset.Element{X: 7, Y: 1, R: 2})
	ds.Relations[0] = append(ds.Relations[0], dataset.RelationGroup{Weight: 0, Targets: []int{2, 1}})

	s := scene.New(geom.Rect{Max: geom.Pt(10, 10)})
	h := New(s, scene.LayerHighlight)
	h.Reset(ds)

	h.Select(0)
	once := markers(s, scene.LayerHighlight)
	h.Select(0)
	twice := markers(s, scene.LayerHighlight)

	assert.Equal(t, once, twice)
	assert.Equal(t, []int{1, 2}, h.Targets())
	assert.Equal(t, 2, s.Count(scene.LayerHighlight))
}

func TestLayers(t *testing.T) {
	s := scene.New(geom.Rect{Max: geom.Pt(10, 10)})
	sel := New(s, scene.LayerHighlight)
	hover := New(s, scene.LayerHover)
	hover.Factor = 2
	ds := exampleDataset()
	sel.Reset(ds)
	hover.Reset(ds)

	sel.Select(0)
	hover.Select(0)
	hover.Clear()
	assert.Equal(t, 1, s.Count(scene.LayerHighlight))
	assert.Equal(t, 0, s.Count(scene.LayerHover))

	hover.Select(0)
	ms := markers(s, scene.LayerHover)
	require.Len(t, ms, 1)
	assert.Equal(t, 2.0, ms[0].R)
}

// countingScene records removals made through it.
type countingScene struct {
	*scene.Scene
	removed []scene.ID
}

func (s *countingScene) Remove(id scene.ID) {
	s.removed = append(s.removed, id)
	s.Scene.Remove(id)
}

func TestClearOwnMarkers(t *testing.T) {
	ds := exampleDataset()
	ds.Elements = append(ds.Elements, dataset.Element{X: 7, Y: 1, R: 2})
	ds.Relations[0] = append(ds.Relations[0], dataset.RelationGroup{Weight: 1, Targets: []int{2}})

	s := &countingScene{Scene: scene.New(geom.Rect{Max: geom.Pt(10, 10)})}
	for i := 0; i < 50; i++ {
		s.Add(scene.Point(0, geom.Pt(float64(i%10), float64(i/10)), 0.4))
	}
	other := s.Add(scene.Marker(scene.LayerHover, 1, geom.Pt(5, 3), 1))

	h := New(s, scene.LayerHover)
	h.Reset(ds)
	h.Select(0)
	require.Equal(t, 3, s.Count(scene.LayerHover))
	h.Clear()

	// only the markers added by h are touched
	assert.Len(t, s.removed, 2)
	assert.NotContains(t, s.removed, other)
	assert.Equal(t, 1, s.Count(scene.LayerHover))
	assert.Equal(t, 50, s.Count(scene.LayerPoints))

	h.Clear()
	assert.Len(t, s.removed, 2, "nothing left to remove")
}

func TestOutOfRange(t *testing.T) {
	s := scene.New(geom.Rect{Max: geom.Pt(10, 10)})
	h := New(s, scene.LayerHighlight)
	h.Select(0)
	_, ok := h.Selected()
	assert.False(t, ok, "no dataset")

	h.Reset(exampleDataset())
	h.Select(0)
	h.Select(5)
	_, ok = h.Selected()
	assert.False(t, ok)
	assert.Zero(t, s.Count(scene.LayerHighlight))
}
