// Package set provides sorted sets of distinct ordered values.
package set

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// Slice must be sorted in ascending order.
type Slice[T constraints.Ordered] []T

func (a Slice[T]) search(x T) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// Insert x in place if not exists; returns x index and true if inserted.
func (a *Slice[T]) Insert(x T) (i int, ok bool) {
	i = a.search(x)
	if ok = i == len(*a) || (*a)[i] != x; ok {
		*a = append(*a, *new(T))
		copy((*a)[i+1:], (*a)[i:])
		(*a)[i] = x
	}
	return
}

func (a Slice[T]) Has(x T) bool { return a.Index(x) >= 0 }

// Index returns the position of x, or -1.
func (a Slice[T]) Index(x T) int {
	if i := a.search(x); i < len(a) && a[i] == x {
		return i
	}
	return -1
}

// Chain holds one Slice per position of a parallel key Slice.
type Chain[T constraints.Ordered] []Slice[T]

// Add puts x in the set at i. If fresh, a new set is first opened at i,
// shifting later sets up, to follow a key just inserted at i.
func (a *Chain[T]) Add(x T, i int, fresh bool) {
	if fresh {
		*a = append(*a, nil)
		copy((*a)[i+1:], (*a)[i:])
		(*a)[i] = nil
	}
	(*a)[i].Insert(x)
}
