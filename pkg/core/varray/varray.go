// Package varray implements VArray, an N-dimensional array whose element type (dtype) is only known
// at runtime, and the engine that executes elementwise operations over them.
//
// The storage of a VArray is a plain Go slice ([]float32, []int8, []bool, ...) of its dtype, plus the
// shape, strides (in elements), offset and layout describing how the logical elements map to the
// storage. Views (see Slice, Transpose, Reshape and BroadcastTo) share the storage of the array they
// were created from.
//
// Operations take their result destination as a Target: either Allocate() for a new array, or
// Into(dst) to write into an existing one.
package varray

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
	"github.com/numdot/numdot/pkg/core/strided"
)

// VArray is an N-dimensional array of a dtype chosen at runtime.
//
// A VArray is not safe for concurrent mutation: in particular, views share storage, and one must not
// write through one view while reading it through another from a different goroutine.
type VArray struct {
	dtype dtypes.DType

	// data is a []T slice, where T is the Go type of dtype.
	data any

	shape   []int
	strides []int
	offset  int
	layout  shapes.Layout
}

// newContiguous wraps flat (a []T in row-major order) into a VArray.
func newContiguous(dtype dtypes.DType, flat any, dims []int) *VArray {
	dims = slices.Clone(dims)
	return &VArray{
		dtype:   dtype,
		data:    flat,
		shape:   dims,
		strides: shapes.Strides(dims, shapes.RowMajor),
		layout:  shapes.RowMajor,
	}
}

// newView returns a VArray sharing a's storage with the given addressing.
func (a *VArray) newView(dims, strides []int, offset int, layout shapes.Layout) *VArray {
	return &VArray{
		dtype:   a.dtype,
		data:    a.data,
		shape:   dims,
		strides: strides,
		offset:  offset,
		layout:  layout,
	}
}

// DType of the elements of the array.
func (a *VArray) DType() dtypes.DType { return a.dtype }

// Shape returns the dimensions of the array. It shouldn't be modified.
func (a *VArray) Shape() []int { return a.shape }

// Rank returns the number of axes. It is 0 for a scalar array.
func (a *VArray) Rank() int { return len(a.shape) }

// Size returns the number of elements.
func (a *VArray) Size() int { return shapes.Size(a.shape) }

// Strides returns the distance in elements between consecutive positions of each axis in the storage.
// It shouldn't be modified.
func (a *VArray) Strides() []int { return a.strides }

// Offset returns the position of the first element in the storage.
func (a *VArray) Offset() int { return a.offset }

// Layout of the strides of the array.
func (a *VArray) Layout() shapes.Layout { return a.layout }

// ShapeWithDType returns the shapes.Shape of the array.
func (a *VArray) ShapeWithDType() shapes.Shape {
	return shapes.Make(a.dtype, a.shape...)
}

// IsContiguous returns whether the elements are stored in row-major order without gaps, starting at Offset.
func (a *VArray) IsContiguous() bool {
	return shapes.StridesMatch(a.shape, a.strides, shapes.RowMajor)
}

// Data returns the underlying storage, a []T where T is the Go type of DType, shared with all views of
// the array. Use it with Strides and Offset to address elements.
func (a *VArray) Data() any { return a.data }

// ToScalar extracts the value of a zero-dimension array.
// It returns a ShapeError if the array has any axes.
func (a *VArray) ToScalar() (VScalar, error) {
	if a.Rank() != 0 {
		return VScalar{}, numerr.Errorf(numerr.ErrShape, "cannot extract a scalar from an array of shape %v", a.shape)
	}
	return VScalar{dtype: a.dtype, value: storageOps.Get(a.dtype).element(a.data, a.offset)}, nil
}

// At returns the element at the given indices (negative indices count from the end).
func (a *VArray) At(indices ...int) (VScalar, error) {
	if len(indices) != a.Rank() {
		return VScalar{}, numerr.Errorf(numerr.ErrShape, "At() given %d indices for array of rank %d", len(indices), a.Rank())
	}
	pos := a.offset
	for axis, idx := range indices {
		resolved, err := strided.ResolveIndex(idx, a.shape[axis])
		if err != nil {
			return VScalar{}, errors.WithMessagef(err, "At(%v), axis %d", indices, axis)
		}
		pos += resolved * a.strides[axis]
	}
	return VScalar{dtype: a.dtype, value: storageOps.Get(a.dtype).element(a.data, pos)}, nil
}
