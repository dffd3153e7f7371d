// Package strided computes strided views: given the shape, strides, offset and layout of an
// existing storage, and a list of slice specifications (numpy-like indexing), it returns the
// shape, strides, offset and layout of a view over the same storage.
//
// It only does the address calculation, it doesn't touch any data. See varray.Slice for the
// version that works on arrays.
package strided

import (
	"fmt"

	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
)

type specKind int

const (
	kindAll specKind = iota
	kindIndex
	kindRange
	kindNewAxis
	kindEllipsis
)

// Spec is one slice specification, created with Index, Range, RangeFrom, RangeTo, Step, All,
// NewAxis or Ellipsis.
type Spec struct {
	kind              specKind
	index             int
	start, stop, step int
	hasStart, hasStop bool
}

// Index selects one element of the axis, dropping the axis from the result.
// Negative indices count from the end: -1 is the last element.
func Index(i int) Spec {
	return Spec{kind: kindIndex, index: i}
}

// Range selects the elements [start, stop) of the axis, taking one every step elements.
//
// It follows Python slicing: negative bounds count from the end and out-of-range bounds are
// clamped to the axis. A negative step walks the axis backwards. A step of 0 is an error.
func Range(start, stop, step int) Spec {
	return Spec{kind: kindRange, start: start, stop: stop, step: step, hasStart: true, hasStop: true}
}

// RangeFrom selects the elements from start to the end of the axis (":" with only the start set).
func RangeFrom(start int) Spec {
	return Spec{kind: kindRange, start: start, step: 1, hasStart: true}
}

// RangeTo selects the elements from the start of the axis up to stop, exclusive.
func RangeTo(stop int) Spec {
	return Spec{kind: kindRange, stop: stop, step: 1, hasStop: true}
}

// Step selects the whole axis, taking one every step elements (Python's "::step").
func Step(step int) Spec {
	return Spec{kind: kindRange, step: step}
}

// WithStep returns a copy of a range specification with the given step.
// It panics if the spec is not a range.
func (s Spec) WithStep(step int) Spec {
	if s.kind != kindRange {
		numerr.Panicf(numerr.ErrType, "WithStep(%d) called on slice spec %s, only ranges have steps", step, s)
	}
	s.step = step
	return s
}

// All selects the whole axis (Python's ":").
func All() Spec {
	return Spec{kind: kindAll}
}

// NewAxis inserts a new axis of dimension 1 (numpy's "np.newaxis" or "None").
func NewAxis() Spec {
	return Spec{kind: kindNewAxis}
}

// Ellipsis selects all the axes not addressed by the other specifications ("..."). It can be used
// at most once.
func Ellipsis() Spec {
	return Spec{kind: kindEllipsis}
}

// String implements fmt.Stringer, using Python's slicing syntax.
func (s Spec) String() string {
	switch s.kind {
	case kindAll:
		return ":"
	case kindIndex:
		return fmt.Sprintf("%d", s.index)
	case kindNewAxis:
		return "newaxis"
	case kindEllipsis:
		return "..."
	}
	var start, stop string
	if s.hasStart {
		start = fmt.Sprintf("%d", s.start)
	}
	if s.hasStop {
		stop = fmt.Sprintf("%d", s.stop)
	}
	if s.step == 1 {
		return start + ":" + stop
	}
	return fmt.Sprintf("%s:%s:%d", start, stop, s.step)
}

// View is the address description of a strided view.
type View struct {
	Shape   []int
	Strides []int
	Offset  int
	Layout  shapes.Layout
}

// ResolveIndex returns the non-negative position of index i in an axis of dimension dim.
// Negative indices have dim added once; anything outside [-dim, dim) is an IndexOutOfRange error.
func ResolveIndex(i, dim int) (int, error) {
	idx := i
	if idx < 0 {
		idx += dim
	}
	if idx < 0 || idx >= dim {
		return 0, numerr.Errorf(numerr.ErrIndexOutOfRange, "slice index %d out of range for axis of dimension %d", i, dim)
	}
	return idx, nil
}

// resolveRange returns the first position, the number of elements and the step of a range
// over an axis of dimension dim.
func resolveRange(s Spec, dim int) (start, size, step int, err error) {
	step = s.step
	if step == 0 {
		return 0, 0, 0, numerr.Errorf(numerr.ErrIndexOutOfRange, "slice %s step cannot be zero", s)
	}
	clamp := func(value, low, high int) int {
		if value < 0 {
			value += dim
		}
		return max(low, min(value, high))
	}
	var stop int
	if step > 0 {
		start, stop = 0, dim
		if s.hasStart {
			start = clamp(s.start, 0, dim)
		}
		if s.hasStop {
			stop = clamp(s.stop, 0, dim)
		}
		if stop > start {
			size = (stop-start-1)/step + 1
		}
	} else {
		// Walking backwards: -1 stands for "before the first element".
		start, stop = dim-1, -1
		if s.hasStart {
			start = clamp(s.start, -1, dim-1)
		}
		if s.hasStop {
			stop = clamp(s.stop, -1, dim-1)
		}
		if start > stop {
			size = (start-stop-1)/(-step) + 1
		}
	}
	if size == 0 {
		start = 0
	}
	return start, size, step, nil
}

// Build computes the view of the storage described by shape, strides, offset and layout, selected
// by specs.
//
// Source axes not addressed by specs are kept whole. New axes get a stride of 0. The layout of the
// result is the source layout if the new strides are still contiguous for it, and shapes.Dynamic
// otherwise.
//
// Errors: TooManyEllipsis if more than one Ellipsis is given, TooManySlices if specs address more
// axes than the source has, IndexOutOfRange for indices outside the axis.
func Build(shape, strides []int, offset int, layout shapes.Layout, specs ...Spec) (View, error) {
	rank := len(shape)
	if len(strides) != rank {
		return View{}, numerr.Errorf(numerr.ErrShape, "strides %v don't match shape %v", strides, shape)
	}

	// Validate and count.
	outRank := rank
	remaining := rank // Source axes not consumed by an index, range or whole-axis spec.
	hasEllipsis := false
	for _, spec := range specs {
		switch spec.kind {
		case kindNewAxis:
			outRank++
		case kindIndex:
			outRank--
			remaining--
		case kindEllipsis:
			if hasEllipsis {
				return View{}, numerr.Errorf(numerr.ErrTooManyEllipsis, "ellipsis can only appear once in slice specification %v", specs)
			}
			hasEllipsis = true
		default:
			remaining--
		}
	}
	if remaining < 0 {
		return View{}, numerr.Errorf(numerr.ErrTooManySlices, "too many slices (%d) for view of rank %d: %v", rank-remaining, rank, specs)
	}

	view := View{
		Shape:   make([]int, 0, outRank),
		Strides: make([]int, 0, outRank),
		Offset:  offset,
	}
	keepAxis := func(axis int) {
		view.Shape = append(view.Shape, shape[axis])
		view.Strides = append(view.Strides, strides[axis])
	}
	srcAxis := 0
	for _, spec := range specs {
		switch spec.kind {
		case kindIndex:
			idx, err := ResolveIndex(spec.index, shape[srcAxis])
			if err != nil {
				return View{}, err
			}
			view.Offset += idx * strides[srcAxis]
			srcAxis++
		case kindNewAxis:
			view.Shape = append(view.Shape, 1)
			view.Strides = append(view.Strides, 0)
		case kindEllipsis:
			for range remaining {
				keepAxis(srcAxis)
				srcAxis++
			}
		case kindAll:
			keepAxis(srcAxis)
			srcAxis++
		case kindRange:
			start, size, step, err := resolveRange(spec, shape[srcAxis])
			if err != nil {
				return View{}, err
			}
			view.Offset += start * strides[srcAxis]
			view.Shape = append(view.Shape, size)
			view.Strides = append(view.Strides, step*strides[srcAxis])
			srcAxis++
		}
	}
	for ; srcAxis < rank; srcAxis++ {
		keepAxis(srcAxis)
	}

	view.Layout = shapes.Dynamic
	if shapes.StridesMatch(view.Shape, view.Strides, layout) {
		view.Layout = layout
	}
	return view, nil
}
