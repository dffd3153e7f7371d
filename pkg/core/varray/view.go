package varray

import (
	"slices"

	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
	"github.com/numdot/numdot/pkg/core/strided"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Slice returns a view of a selected by the given specifications, one per axis (see package strided).
// Axes not addressed are kept whole. The view shares a's storage.
//
// Errors: TooManyEllipsis, TooManySlices, IndexOutOfRange.
func Slice(a *VArray, specs ...strided.Spec) (*VArray, error) {
	view, err := strided.Build(a.shape, a.strides, a.offset, a.layout, specs...)
	if err != nil {
		return nil, err
	}
	return a.newView(view.Shape, view.Strides, view.Offset, view.Layout), nil
}

// Transpose returns a view of a with its axes permuted: axis i of the result is axis perm[i] of a.
// With no permutation, it reverses the axes.
func Transpose(a *VArray, perm ...int) (*VArray, error) {
	rank := a.Rank()
	if len(perm) == 0 {
		perm = make([]int, rank)
		for ii := range perm {
			perm[ii] = rank - 1 - ii
		}
	}
	if !shapes.IsPermutation(perm, rank) {
		return nil, numerr.Errorf(numerr.ErrShape, "Transpose: %v is not a permutation of the axes of an array of rank %d", perm, rank)
	}
	dims := shapes.Permute(a.shape, perm)
	strides := shapes.Permute(a.strides, perm)
	return a.newView(dims, strides, a.offset, shapes.DetectLayout(dims, strides)), nil
}

// Reshape returns a with new dimensions of the same total size. One dimension can be -1, in which case it
// is inferred.
//
// It returns a view if a is contiguous, and a row-major copy otherwise.
func Reshape(a *VArray, dims ...int) (*VArray, error) {
	dims = slices.Clone(dims)
	inferAxis := -1
	known := 1
	for axis, dim := range dims {
		switch {
		case dim == -1 && inferAxis == -1:
			inferAxis = axis
		case dim < 0:
			return nil, numerr.Errorf(numerr.ErrShape, "Reshape: invalid dimensions %v", dims)
		default:
			known *= dim
		}
	}
	size := a.Size()
	if inferAxis >= 0 {
		if known == 0 || size%known != 0 {
			return nil, numerr.Errorf(numerr.ErrShape, "Reshape: cannot infer dimension of %v for array of size %d", dims, size)
		}
		dims[inferAxis] = size / known
	}
	if shapes.Size(dims) != size {
		return nil, numerr.Errorf(numerr.ErrShape, "Reshape: cannot reshape array of shape %v to %v", a.shape, dims)
	}
	if a.IsContiguous() {
		return a.newView(dims, shapes.Strides(dims, shapes.RowMajor), a.offset, shapes.RowMajor), nil
	}
	return newContiguous(a.dtype, gatherCopy(a, a.dtype), dims), nil
}

// BroadcastTo returns a read-only view of a broadcast to dims: a's dimensions are aligned to the trailing
// dimensions, and axes of dimension 1 (or missing) are repeated with a stride of 0.
//
// It returns a BroadcastError if a can't be broadcast to dims.
func BroadcastTo(a *VArray, dims ...int) (*VArray, error) {
	broadcast, err := shapes.BroadcastDimensions(a.shape, dims)
	if err != nil {
		return nil, err
	}
	if !slices.Equal(broadcast, dims) {
		return nil, numerr.Errorf(numerr.ErrBroadcast, "cannot broadcast array of shape %v to %v", a.shape, dims)
	}
	rank := len(dims)
	pad := rank - a.Rank()
	strides := make([]int, rank)
	for axis := pad; axis < rank; axis++ {
		if a.shape[axis-pad] == dims[axis] {
			strides[axis] = a.strides[axis-pad]
		}
	}
	dims = slices.Clone(dims)
	return a.newView(dims, strides, a.offset, shapes.DetectLayout(dims, strides)), nil
}

// MoveAxesToEnd returns a view of a with the given axes moved, in the given order, after all the
// other axes.
func MoveAxesToEnd(a *VArray, axes []int) (*VArray, error) {
	axes, err := shapes.CheckAxes(a.Rank(), axes)
	if err != nil {
		return nil, err
	}
	perm := append(shapes.MakeAxisSet(axes...).Complement(a.Rank()), axes...)
	return Transpose(a, perm...)
}

// JoinAxesIntoLastDimension returns a with the given axes moved to the end and merged into one last axis,
// whose dimension is the product of theirs. An empty list of axes joins all axes, returning a 1D array.
//
// The result is a view when the merged axes can be addressed with a single stride, and a row-major copy
// otherwise.
func JoinAxesIntoLastDimension(a *VArray, axes []int) (*VArray, error) {
	moved, err := MoveAxesToEnd(a, axes)
	if err != nil {
		return nil, errors.WithMessage(err, "JoinAxesIntoLastDimension")
	}
	numJoined := len(axes)
	if numJoined == 0 {
		numJoined = a.Rank()
	}
	numKept := moved.Rank() - numJoined
	dims := slices.Clone(moved.shape[:numKept])
	strides := slices.Clone(moved.strides[:numKept])
	joinedDim := shapes.Size(moved.shape[numKept:])
	dims = append(dims, joinedDim)

	// The joined axes can be merged if each (non-trivial) axis steps over exactly the next one.
	joinedStride, mergeable := 1, true
	innerStride, innerDim := 0, 0
	first := true
	for axis := moved.Rank() - 1; axis >= numKept; axis-- {
		dim, stride := moved.shape[axis], moved.strides[axis]
		if dim == 1 {
			continue
		}
		if first {
			joinedStride = stride
			first = false
		} else if stride != innerStride*innerDim {
			mergeable = false
			break
		}
		innerStride, innerDim = stride, dim
	}
	if !mergeable {
		klog.V(2).Infof("JoinAxesIntoLastDimension(axes=%v) of shape %v, strides %v: copying", axes, a.shape, a.strides)
		return newContiguous(a.dtype, gatherCopy(moved, a.dtype), dims), nil
	}
	strides = append(strides, joinedStride)
	return a.newView(dims, strides, a.offset, shapes.DetectLayout(dims, strides)), nil
}
