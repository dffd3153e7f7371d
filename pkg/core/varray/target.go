package varray

import (
	"reflect"
	"slices"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
)

// Target is the destination of the result of an operation: either a new array (Allocate) or an
// existing one (Into).
type Target struct {
	dst *VArray
}

// Allocate returns the Target that makes operations create a new array with the inferred dtype and shape.
func Allocate() Target { return Target{} }

// Into returns the Target that makes operations write their result into dst.
//
// The dtype and the shape of dst must match the result of the operation exactly, otherwise the operation
// returns a TypeError or ShapeError. dst can be a strided view: only the addressed elements are written.
func Into(dst *VArray) Target { return Target{dst: dst} }

// IsAllocate returns whether the target allocates a new array.
func (t Target) IsAllocate() bool { return t.dst == nil }

// check panics if the target can't hold a result of the given dtype and dimensions.
func (t Target) check(dtype dtypes.DType, dims []int) {
	if t.dst == nil {
		return
	}
	if t.dst.dtype != dtype {
		numerr.Panicf(numerr.ErrType, "target array has dtype %s, but the result has dtype %s", t.dst.dtype, dtype)
	}
	if !slices.Equal(t.dst.shape, dims) {
		numerr.Panicf(numerr.ErrShape, "target array has shape %v, but the result has shape %v", t.dst.shape, dims)
	}
}

// prepare returns the array the result will be written to and the flat slice (in logical order)
// kernels should write to. commit must be called after the kernel wrote the values.
//
// If the target array is contiguous and doesn't overlap the storage read through any of the operands,
// the kernels write directly into its storage. Otherwise they write to a temporary that commit scatters.
func (t Target) prepare(dtype dtypes.DType, dims []int, operands ...*VArray) (out *VArray, flat any, commit func()) {
	t.check(dtype, dims)
	if t.dst == nil {
		out = newContiguous(dtype, MakeFlat(dtype, shapes.Size(dims)), dims)
		return out, out.data, func() {}
	}
	out = t.dst
	size := out.Size()
	if out.IsContiguous() && size > 0 && !overlapsAny(out, operands) {
		return out, reflect.ValueOf(out.data).Slice(out.offset, out.offset+size).Interface(), func() {}
	}
	flat = MakeFlat(dtype, size)
	return out, flat, func() { storageOps.Get(dtype).scatter(out, flat) }
}

func overlapsAny(dst *VArray, operands []*VArray) bool {
	for _, operand := range operands {
		if dst.overlaps(operand) {
			return true
		}
	}
	return false
}

// overlaps returns whether a and b address a common range of the same storage.
func (a *VArray) overlaps(b *VArray) bool {
	if a.Size() == 0 || b.Size() == 0 {
		return false
	}
	aData, bData := reflect.ValueOf(a.data), reflect.ValueOf(b.data)
	if aData.Len() == 0 || bData.Len() == 0 || aData.Pointer() != bData.Pointer() {
		return false
	}
	aLow, aHigh := a.storageSpan()
	bLow, bHigh := b.storageSpan()
	return aLow <= bHigh && bLow <= aHigh
}

// storageSpan returns the lowest and highest storage positions addressed by a, which must not be empty.
func (a *VArray) storageSpan() (low, high int) {
	low, high = a.offset, a.offset
	for axis, dim := range a.shape {
		extent := (dim - 1) * a.strides[axis]
		if extent < 0 {
			low += extent
		} else {
			high += extent
		}
	}
	return
}

// Write stores flat, a []T of dtype in row-major order, as the result of an operation with the given
// dimensions. With Allocate it wraps flat itself (no copy) in a new array.
//
// It returns a TypeError or ShapeError if the target doesn't match dtype and dims.
func (t Target) Write(dtype dtypes.DType, dims []int, flat any) (result *VArray, err error) {
	err = numerr.Catch(func() {
		t.check(dtype, dims)
		if t.dst == nil {
			result = newContiguous(dtype, flat, dims)
			return
		}
		storageOps.Get(dtype).scatter(t.dst, flat)
		result = t.dst
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
