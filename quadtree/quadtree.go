// Package quadtree provides a linear quad tree and a bucket index over its cells.
package quadtree

import (
	"math"

	"dasa.cc/primeview/geom"
)

// MaxLevel is the deepest level whose keys fit a word.
const MaxLevel = 13

// Dilate interleaves the low 16 bits of x with zeros.
func Dilate(x uint32) uint32 {
	x &= 0x0000FFFF
	x = (x | (x << 8)) & 0x00FF00FF
	x = (x | (x << 4)) & 0x0F0F0F0F
	x = (x | (x << 2)) & 0x33333333
	x = (x | (x << 1)) & 0x55555555
	return x
}

// Undilate deinterleaves word using shift-or algorithm.
func Undilate(x uint32) uint32 {
	x = (x | (x >> 1)) & 0x33333333
	x = (x | (x >> 2)) & 0x0F0F0F0F
	x = (x | (x >> 4)) & 0x00FF00FF
	x = (x | (x >> 8)) & 0x0000FFFF
	return (x & 0x0000FFFF)
}

// Encode packs column major position and level into a word.
func Encode(x, y, level uint32) uint32 {
	return Dilate(x)<<4 | Dilate(y)<<5 | level&0xF
}

// Decode retrieves column major position and level from word.
func Decode(key uint32) (x, y, level uint32) {
	x = Undilate((key >> 4) & 0x05555555)
	y = Undilate((key >> 5) & 0x55555555)
	level = key & 0xF
	return
}

// Index buckets ids by the cell containing their position at a single level.
// Positions outside of bounds are kept in the nearest edge cell.
type Index struct {
	bounds geom.Rect
	level  uint32
	cells  map[uint32][]int
	n      int
}

// NewIndex returns an Index over bounds whose cells are no smaller than cellSize.
func NewIndex(bounds geom.Rect, cellSize float64) *Index {
	extent := math.Max(bounds.Max.X-bounds.Min.X, bounds.Max.Y-bounds.Min.Y)
	level := 0
	if cellSize > 0 && extent > cellSize {
		level = int(math.Floor(math.Log2(extent / cellSize)))
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return &Index{bounds: bounds, level: uint32(level), cells: make(map[uint32][]int)}
}

// Level returns the level of all keys in the index.
func (ix *Index) Level() int { return int(ix.level) }

// Len returns the number of ids inserted.
func (ix *Index) Len() int { return ix.n }

func (ix *Index) coord(v, lo, hi float64) uint32 {
	n := float64(uint32(1) << ix.level)
	if hi <= lo {
		return 0
	}
	c := math.Floor((v - lo) / (hi - lo) * n)
	return uint32(geom.Clip(c, 0, n-1))
}

// Key returns the cell key containing p.
func (ix *Index) Key(p geom.Point) uint32 {
	x := ix.coord(p.X, ix.bounds.Min.X, ix.bounds.Max.X)
	y := ix.coord(p.Y, ix.bounds.Min.Y, ix.bounds.Max.Y)
	return Encode(x, y, ix.level)
}

// Insert id at position p.
func (ix *Index) Insert(id int, p geom.Point) {
	k := ix.Key(p)
	ix.cells[k] = append(ix.cells[k], id)
	ix.n++
}

// Query calls fn for every id bucketed in a cell overlapping r until fn returns false.
// Ids are candidates; callers test exact containment.
func (ix *Index) Query(r geom.Rect, fn func(id int) bool) {
	x0, y0, _ := Decode(ix.Key(r.Min))
	x1, y1, _ := Decode(ix.Key(r.Max))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			for _, id := range ix.cells[Encode(x, y, ix.level)] {
				if !fn(id) {
					return
				}
			}
		}
	}
}

// Reset drops all ids and rebinds the index to bounds.
func (ix *Index) Reset(bounds geom.Rect, cellSize float64) {
	*ix = *NewIndex(bounds, cellSize)
}
