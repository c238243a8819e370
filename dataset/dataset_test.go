package dataset

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pair() *Dataset {
	return &Dataset{
		Kind:     KindLattice,
		Elements: []Element{{X: 0, Y: 0, R: 1}, {X: 5, Y: 3, R: 1}},
		Relations: Relations{
			0: {{Weight: 1, Targets: []int{1}}},
		},
	}
}

func TestTransformX(t *testing.T) {
	var identity *Transform
	assert.Equal(t, 3.25, identity.X(3.25))
	assert.Equal(t, 3.25, (&Transform{}).X(3.25))

	tr := NewTransform(1, 2)
	// grid part scales, sub-integer offset is kept
	assert.InDelta(t, 0.2+3*2+1, tr.X(3.2), 1e-12)
	assert.InDelta(t, -0.25+4*2+1, tr.X(3.75), 1e-12)
	assert.Equal(t, 1.0, tr.X(0))

	// offsets are measured from the nearest column, not the floor
	assert.InDelta(t, 2.8, NewTransform(0, 1).X(2.8), 1e-12)
	assert.InDelta(t, -0.5+3*2+1, tr.X(2.5), 1e-12)

	// an explicit zero factor collapses the grid
	flat := NewTransform(4, 0)
	assert.InDelta(t, 4.2, flat.X(7.2), 1e-12)
	assert.InDelta(t, 3.9, flat.X(2.9), 1e-12)
}

func TestTransformDecode(t *testing.T) {
	ds, err := Decode(strings.NewReader(`{"kind":"lattice","elements":[],"transform":{"shift":1,"factor":0}}`), FormatJSON)
	require.NoError(t, err)
	require.NotNil(t, ds.Transform.Factor)
	assert.Equal(t, 1.0, ds.Transform.X(5))

	ds, err = Decode(strings.NewReader("kind: lattice\ntransform:\n  shift: 2\n"), FormatYAML)
	require.NoError(t, err)
	assert.Nil(t, ds.Transform.Factor)
	assert.Equal(t, 7.0, ds.Transform.X(5))
}

func TestValidate(t *testing.T) {
	require.NoError(t, pair().Validate())

	ds := pair()
	ds.Relations[0][0].Targets = append(ds.Relations[0][0].Targets, 2)
	err := ds.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "target 2")

	ds = pair()
	ds.Relations[7] = []RelationGroup{{Weight: 1}}
	assert.ErrorIs(t, ds.Validate(), ErrInvalid)

	ds = pair()
	ds.Relations[0][0].Targets[0] = -1
	assert.ErrorIs(t, ds.Validate(), ErrInvalid)

	ds = pair()
	ds.Elements[1].R = 0
	err = ds.Validate()
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "R")

	ds = pair()
	ds.Kind = ""
	assert.ErrorIs(t, ds.Validate(), ErrInvalid)
}

func TestBounds(t *testing.T) {
	b := pair().Bounds()
	assert.Equal(t, Bounds{XMax: MinExtent, YMax: MinExtent}, b)

	ds := pair()
	ds.Elements = append(ds.Elements, Element{X: 20.4, Y: 11, R: 1})
	b = ds.Bounds()
	assert.Equal(t, 22.0, b.XMax)
	assert.Equal(t, 12.0, b.YMax)

	ds.Transform = NewTransform(0, 2)
	assert.Equal(t, math.Ceil(0.4+40)+Padding, ds.Bounds().XMax)
}

func TestLineCount(t *testing.T) {
	ds := pair()
	ds.Relations[1] = []RelationGroup{
		{Weight: 0, Targets: []int{0, 1}},
		{Weight: 2, Targets: []int{0, 0}},
	}
	assert.Equal(t, 3, ds.LineCount())
	assert.Equal(t, []int{0, 1}, ds.Relations.Sources())
}

func TestCodec(t *testing.T) {
	for _, name := range []string{"7.json", "7.yaml", "7.yml.sz"} {
		f, ok := FormatOf(name)
		require.True(t, ok, name)

		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, pair(), f))
		ds, err := Decode(&buf, f)
		require.NoError(t, err, name)
		assert.Equal(t, pair().Elements, ds.Elements, name)
		assert.Equal(t, pair().Relations, ds.Relations, name)
	}

	_, ok := FormatOf("7.csv")
	assert.False(t, ok)

	_, err := Decode(strings.NewReader("{"), FormatJSON)
	assert.Error(t, err)
}
