// Package dataset defines the elements and relations a viewer session displays.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"dasa.cc/primeview/geom"
)

// Kind names the layout of a dataset.
type Kind string

const (
	KindLattice Kind = "lattice"
	KindScatter Kind = "scatter"
	KindTable   Kind = "table"
)

// Renderable reports whether datasets of kind k can be drawn as points and lines.
func (k Kind) Renderable() bool { return k == KindLattice || k == KindScatter }

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid dataset")

// Element is a point in world coordinates drawn with radius R.
type Element struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	R     float64 `json:"r" yaml:"r" validate:"gt=0"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
}

// RelationGroup is a weighted, labeled sequence of target element indices.
type RelationGroup struct {
	Weight  float64 `json:"weight" yaml:"weight"`
	Label   string  `json:"label,omitempty" yaml:"label,omitempty"`
	Targets []int   `json:"targets" yaml:"targets" validate:"dive,min=0"`
}

// Relations maps a source element index to its relation groups.
type Relations map[int][]RelationGroup

// Sources returns the keys of r in ascending order.
func (r Relations) Sources() []int {
	keys := make([]int, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Transform maps x to (x - round(x)) + round(x)*Factor + Shift.
// The offset from the nearest grid column is kept while the column scales,
// so 2.8 belongs to column 3 at offset -0.2. The zero value is the identity.
type Transform struct {
	Shift float64 `json:"shift" yaml:"shift"`

	// Factor scales grid columns; nil leaves them unscaled and 0 collapses
	// them onto Shift.
	Factor *float64 `json:"factor,omitempty" yaml:"factor,omitempty"`
}

// NewTransform returns the transform shifting by shift and scaling by factor.
func NewTransform(shift, factor float64) *Transform {
	return &Transform{Shift: shift, Factor: &factor}
}

// X applies the transform to an x coordinate.
func (t *Transform) X(x float64) float64 {
	if t == nil {
		return x
	}
	f := 1.0
	if t.Factor != nil {
		f = *t.Factor
	}
	n := math.Round(x)
	return (x - n) + n*f + t.Shift
}

type Dataset struct {
	Kind      Kind       `json:"kind" yaml:"kind" validate:"required"`
	Elements  []Element  `json:"elements" yaml:"elements" validate:"dive"`
	Relations Relations  `json:"relations,omitempty" yaml:"relations,omitempty" validate:"dive,dive"`
	Transform *Transform `json:"transform,omitempty" yaml:"transform,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Selector  string     `json:"-" yaml:"-"`
}

// Position returns element i in world coordinates with the transform applied.
func (ds *Dataset) Position(i int) geom.Point {
	e := ds.Elements[i]
	return geom.Pt(ds.Transform.X(e.X), e.Y)
}

// Len returns the number of elements.
func (ds *Dataset) Len() int { return len(ds.Elements) }

// LineCount returns the number of targets across all non-zero weight groups.
func (ds *Dataset) LineCount() int {
	n := 0
	for _, groups := range ds.Relations {
		for _, g := range groups {
			if g.Weight != 0 {
				n += len(g.Targets)
			}
		}
	}
	return n
}

var validate = validator.New()

// Validate checks field constraints and that every relation index refers to an element.
func (ds *Dataset) Validate() error {
	if err := validate.Struct(ds); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, formatValidationError(err))
	}
	n := len(ds.Elements)
	for _, src := range ds.Relations.Sources() {
		if src < 0 || src >= n {
			return fmt.Errorf("%w: relation source %d out of range [0, %d)", ErrInvalid, src, n)
		}
		for gi, g := range ds.Relations[src] {
			for _, dst := range g.Targets {
				if dst >= n {
					return fmt.Errorf("%w: relation %d group %d target %d out of range [0, %d)", ErrInvalid, src, gi, dst, n)
				}
			}
		}
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// Bounds is the extent of the grid drawn for a dataset.
type Bounds struct {
	XMax, YMax float64
}

const (
	// Padding is added to the largest coordinate on each axis.
	Padding = 1
	// MinExtent is the smallest bound on each axis.
	MinExtent = 10
)

// Bounds returns the viewport bounds of ds from its largest transformed coordinates.
func (ds *Dataset) Bounds() Bounds {
	b := Bounds{XMax: MinExtent, YMax: MinExtent}
	for i := range ds.Elements {
		p := ds.Position(i)
		b.XMax = math.Max(b.XMax, math.Ceil(p.X)+Padding)
		b.YMax = math.Max(b.YMax, math.Ceil(p.Y)+Padding)
	}
	return b
}

// Rect returns the world rectangle from the origin to b.
func (b Bounds) Rect() geom.Rect { return geom.Rect{Max: geom.Pt(b.XMax, b.YMax)} }
