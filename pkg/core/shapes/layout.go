package shapes

import "slices"

// Layout classifies how the strides of an array relate to its dimensions.
type Layout int

const (
	// RowMajor (or "C" order): the last axis is contiguous in memory.
	RowMajor Layout = iota

	// ColumnMajor (or "Fortran" order): the first axis is contiguous in memory.
	ColumnMajor

	// Dynamic is any other (non-uniform) arrangement of strides, e.g. after slicing with a step.
	Dynamic
)

// String implements fmt.Stringer.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "RowMajor"
	case ColumnMajor:
		return "ColumnMajor"
	default:
		return "Dynamic"
	}
}

// Strides returns the strides for each axis of the given dimensions, assuming the given layout.
// For Dynamic it uses row-major strides.
//
// Notice the strides are **not in bytes**, but in indices.
func Strides(dimensions []int, layout Layout) (strides []int) {
	rank := len(dimensions)
	strides = make([]int, rank)
	currentStride := 1
	if layout == ColumnMajor {
		for axis := 0; axis < rank; axis++ {
			strides[axis] = currentStride
			currentStride *= dimensions[axis]
		}
		return
	}
	for axis := rank - 1; axis >= 0; axis-- {
		strides[axis] = currentStride
		currentStride *= dimensions[axis]
	}
	return
}

// Strides returns the row-major strides of the shape.
func (s Shape) Strides() []int {
	return Strides(s.Dimensions, RowMajor)
}

// StridesMatch returns whether strides are the contiguous strides of dimensions for the given layout.
//
// Axes of dimension 1 are never traversed, so any stride is accepted for them (new axes,
// for instance, use a stride of 0). A Dynamic layout never matches.
func StridesMatch(dimensions, strides []int, layout Layout) bool {
	if layout == Dynamic || len(dimensions) != len(strides) {
		return false
	}
	expected := Strides(dimensions, layout)
	for axis, dim := range dimensions {
		if dim != 1 && strides[axis] != expected[axis] {
			return false
		}
	}
	return true
}

// DetectLayout returns RowMajor or ColumnMajor if the strides match one of them (row-major is
// preferred when both match, e.g. for rank <= 1), and Dynamic otherwise.
func DetectLayout(dimensions, strides []int) Layout {
	if StridesMatch(dimensions, strides, RowMajor) {
		return RowMajor
	}
	if StridesMatch(dimensions, strides, ColumnMajor) {
		return ColumnMajor
	}
	return Dynamic
}

// Permute returns dimensions (or strides) reordered by perm: result[i] = values[perm[i]].
func Permute(values, perm []int) []int {
	result := make([]int, len(perm))
	for i, axis := range perm {
		result[i] = values[axis]
	}
	return result
}

// IsPermutation returns whether perm holds each axis in [0, rank) exactly once.
func IsPermutation(perm []int, rank int) bool {
	if len(perm) != rank {
		return false
	}
	sorted := slices.Clone(perm)
	slices.Sort(sorted)
	for i, axis := range sorted {
		if axis != i {
			return false
		}
	}
	return true
}
