package shapes

import (
	"iter"
	"slices"

	"github.com/pkg/errors"
)

// Iter iterates sequentially over all possible indices of the given shape.
//
// It yields the flat index (counter) and a slice of indices for each axis.
//
// To avoid allocating the slice of indices, the yielded indices is owned by the Iter() method:
// don't change it inside the loop.
func (s Shape) Iter() iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		for flatIdx, indices := range StridedIter(s.Dimensions, s.Strides(), 0) {
			if !yield(flatIdx, indices) {
				return
			}
		}
	}
}

// StridedIter iterates over all indices of the given dimensions, in row-major order, yielding the
// position in a flat storage laid out with the given strides and base offset.
//
// The yielded indices slice is owned by the iterator: don't change it inside the loop.
// Strides can be 0 (broadcast or new axes) or negative.
//
// It panics if len(strides) != len(dimensions).
func StridedIter(dimensions, strides []int, offset int) iter.Seq2[int, []int] {
	rank := len(dimensions)
	if len(strides) != rank {
		panic(errors.Errorf("StridedIter given len(strides) == %d, want it to be equal to the rank %d", len(strides), rank))
	}
	return func(yield func(int, []int) bool) {
		indices := make([]int, rank)
		if rank == 0 {
			// Valid scalar: yield one empty index slice.
			_ = yield(offset, indices)
			return
		}
		if slices.Contains(dimensions, 0) {
			return
		}

		pos := offset
	yielder:
		for {
			if !yield(pos, indices) {
				return // Consumer requested to stop iteration.
			}

			// Increment indices to the next set of coordinates
			// (row-major order: the last axis changes fastest).
			for axis := rank - 1; axis >= 0; axis-- {
				if dimensions[axis] == 1 {
					// Nothing to iterate at this axis.
					continue
				}
				indices[axis]++
				pos += strides[axis]
				if indices[axis] < dimensions[axis] {
					// Successfully incremented this dimension; no carry-over needed.
					continue yielder
				}
				// The current axis overflowed; reset it to 0 and
				// continue to increment the next higher-order dimension (carry-over).
				pos -= indices[axis] * strides[axis]
				indices[axis] = 0
			}

			// That was the last index.
			break
		}
	}
}
