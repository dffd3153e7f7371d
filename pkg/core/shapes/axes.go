package shapes

import (
	"slices"

	"github.com/numdot/numdot/pkg/core/numerr"
)

// AxisSet is a set of axes of an array.
type AxisSet map[int]struct{}

// MakeAxisSet returns an AxisSet with the given axes.
func MakeAxisSet(axes ...int) AxisSet {
	s := make(AxisSet, len(axes))
	s.Insert(axes...)
	return s
}

// Has returns whether axis is in the set.
func (s AxisSet) Has(axis int) bool {
	_, found := s[axis]
	return found
}

// Insert axes into the set.
func (s AxisSet) Insert(axes ...int) {
	for _, axis := range axes {
		s[axis] = struct{}{}
	}
}

// Complement returns the axes in [0, rank) that are not in the set, in increasing order.
func (s AxisSet) Complement(rank int) []int {
	others := make([]int, 0, rank)
	for axis := range rank {
		if !s.Has(axis) {
			others = append(others, axis)
		}
	}
	return others
}

// Sorted returns the axes of the set in increasing order.
func (s AxisSet) Sorted() []int {
	axes := make([]int, 0, len(s))
	for axis := range s {
		axes = append(axes, axis)
	}
	slices.Sort(axes)
	return axes
}

// CheckAxes validates a list of axes to reduce for an array of the given rank: each axis must be in [0, rank),
// and appear only once. It returns a ShapeError otherwise.
//
// An empty list means "all axes", and the returned list is filled with all of them.
func CheckAxes(rank int, axes []int) ([]int, error) {
	if len(axes) == 0 {
		return AxisSet{}.Complement(rank), nil
	}
	seen := make(AxisSet, len(axes))
	for _, axis := range axes {
		if axis < 0 || axis >= rank {
			return nil, numerr.Errorf(numerr.ErrShape, "axis %d out of range for rank %d (axes=%v)", axis, rank, axes)
		}
		if seen.Has(axis) {
			return nil, numerr.Errorf(numerr.ErrShape, "axis %d given more than once (axes=%v)", axis, axes)
		}
		seen.Insert(axis)
	}
	return axes, nil
}
