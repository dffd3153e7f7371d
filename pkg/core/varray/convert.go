package varray

import (
	"reflect"
	"slices"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/shapes"
)

// typeOps are the storage helpers specialized for one dtype. The "flat" arguments are []T of the
// dtype, holding elements in row-major (logical) order.
type typeOps struct {
	makeFlat func(n int) any
	single   func(value any) any
	element  func(data any, pos int) any
	fill     func(flat any, value any)

	// gather returns the elements of the array in logical order. It aliases the storage if the
	// array is contiguous.
	gather func(a *VArray) any

	// scatter writes flat into the positions addressed by dst.
	scatter func(dst *VArray, flat any)

	// castInto converts src (of this dtype) into dst, a flat slice of any dtype and the same length.
	castInto func(dst, src any)
}

var storageOps = NewDTypeDispatcher[typeOps]("storage")

func init() {
	registerStorage(castFromBools)
	registerStorage(castFromNumbers[int8])
	registerStorage(castFromNumbers[int16])
	registerStorage(castFromNumbers[int32])
	registerStorage(castFromNumbers[int64])
	registerStorage(castFromNumbers[uint8])
	registerStorage(castFromNumbers[uint16])
	registerStorage(castFromNumbers[uint32])
	registerStorage(castFromNumbers[uint64])
	registerStorage(castFromNumbers[float32])
	registerStorage(castFromNumbers[float64])
}

func registerStorage[T dtypes.Supported](castFrom func(dst any, src []T)) {
	storageOps.Register(dtypes.FromGenericsType[T](), typeOps{
		makeFlat: func(n int) any { return make([]T, n) },
		single:   func(value any) any { return []T{value.(T)} },
		element:  func(data any, pos int) any { return data.([]T)[pos] },
		fill: func(flat any, value any) {
			v := value.(T)
			data := flat.([]T)
			for ii := range data {
				data[ii] = v
			}
		},
		gather: func(a *VArray) any {
			return gatherStrided(a.data.([]T), a.shape, a.strides, a.offset)
		},
		scatter: func(dst *VArray, flat any) {
			scatterStrided(dst.data.([]T), dst.shape, dst.strides, dst.offset, flat.([]T))
		},
		castInto: func(dst, src any) { castFrom(dst, src.([]T)) },
	})
}

// gatherStrided returns the elements addressed by (dims, strides, offset) in row-major order.
// If they are already contiguous, it returns a sub-slice of data.
func gatherStrided[T dtypes.Supported](data []T, dims, strides []int, offset int) []T {
	size := shapes.Size(dims)
	if size == 0 {
		return []T{}
	}
	if shapes.StridesMatch(dims, strides, shapes.RowMajor) {
		return data[offset : offset+size : offset+size]
	}
	flat := make([]T, size)
	ii := 0
	for pos := range shapes.StridedIter(dims, strides, offset) {
		flat[ii] = data[pos]
		ii++
	}
	return flat
}

// scatterStrided is the inverse of gatherStrided: it writes flat to the positions of data addressed by
// (dims, strides, offset).
func scatterStrided[T dtypes.Supported](data []T, dims, strides []int, offset int, flat []T) {
	size := shapes.Size(dims)
	if size == 0 {
		return
	}
	if shapes.StridesMatch(dims, strides, shapes.RowMajor) {
		copy(data[offset:offset+size], flat)
		return
	}
	ii := 0
	for pos := range shapes.StridedIter(dims, strides, offset) {
		data[pos] = flat[ii]
		ii++
	}
}

func convertNumbers[S, T dtypes.Number](dst []T, src []S) {
	for ii, v := range src {
		dst[ii] = T(v)
	}
}

func numbersToBools[S dtypes.Number](dst []bool, src []S) {
	for ii, v := range src {
		dst[ii] = v != 0
	}
}

func boolsToNumbers[T dtypes.Number](dst []T, src []bool) {
	for ii, v := range src {
		if v {
			dst[ii] = 1
		} else {
			dst[ii] = 0
		}
	}
}

func castFromNumbers[S dtypes.Number](dst any, src []S) {
	switch dst := dst.(type) {
	case []bool:
		numbersToBools(dst, src)
	case []int8:
		convertNumbers(dst, src)
	case []int16:
		convertNumbers(dst, src)
	case []int32:
		convertNumbers(dst, src)
	case []int64:
		convertNumbers(dst, src)
	case []uint8:
		convertNumbers(dst, src)
	case []uint16:
		convertNumbers(dst, src)
	case []uint32:
		convertNumbers(dst, src)
	case []uint64:
		convertNumbers(dst, src)
	case []float32:
		convertNumbers(dst, src)
	case []float64:
		convertNumbers(dst, src)
	}
}

func castFromBools(dst any, src []bool) {
	switch dst := dst.(type) {
	case []bool:
		copy(dst, src)
	case []int8:
		boolsToNumbers(dst, src)
	case []int16:
		boolsToNumbers(dst, src)
	case []int32:
		boolsToNumbers(dst, src)
	case []int64:
		boolsToNumbers(dst, src)
	case []uint8:
		boolsToNumbers(dst, src)
	case []uint16:
		boolsToNumbers(dst, src)
	case []uint32:
		boolsToNumbers(dst, src)
	case []uint64:
		boolsToNumbers(dst, src)
	case []float32:
		boolsToNumbers(dst, src)
	case []float64:
		boolsToNumbers(dst, src)
	}
}

// MakeFlat returns a zero-initialized []T of length n, where T is the Go type of dtype.
func MakeFlat(dtype dtypes.DType, n int) any {
	return storageOps.Get(dtype).makeFlat(n)
}

func flatLen(flat any) int {
	return reflect.ValueOf(flat).Len()
}

// castFlat converts flat from one dtype to another. It returns flat itself if the dtypes are the same.
func castFlat(flat any, from, to dtypes.DType) any {
	if from == to {
		return flat
	}
	dst := MakeFlat(to, flatLen(flat))
	storageOps.Get(from).castInto(dst, flat)
	return dst
}

// Gather returns the elements of a in row-major (logical) order, converted to dtype, as a []T where
// T is the Go type of dtype. If dtype is InvalidDType, the dtype of a is used.
//
// The returned slice may alias the storage of a: don't modify it.
func Gather(a *VArray, dtype dtypes.DType) any {
	if dtype == dtypes.InvalidDType {
		dtype = a.dtype
	}
	return castFlat(storageOps.Get(a.dtype).gather(a), a.dtype, dtype)
}

// gatherCopy is like Gather, but it always returns a new slice.
func gatherCopy(a *VArray, dtype dtypes.DType) any {
	if dtype == dtypes.InvalidDType {
		dtype = a.dtype
	}
	flat := Gather(a, dtype)
	if dtype == a.dtype && a.IsContiguous() && a.Size() > 0 {
		dst := MakeFlat(dtype, a.Size())
		reflect.Copy(reflect.ValueOf(dst), reflect.ValueOf(flat))
		return dst
	}
	return flat
}

// Flat returns a copy of the elements of a in row-major order, converted to T.
func Flat[T dtypes.Supported](a *VArray) []T {
	flat := Gather(a, dtypes.FromGenericsType[T]()).([]T)
	if a.dtype == dtypes.FromGenericsType[T]() && a.IsContiguous() {
		return slices.Clone(flat)
	}
	return flat
}

// CopyAsDType returns a new row-major copy of a, with its elements converted to dtype.
// If dtype is InvalidDType, the dtype of a is kept. Casting to Bool yields value != 0.
func CopyAsDType(a *VArray, dtype dtypes.DType) *VArray {
	if dtype == dtypes.InvalidDType {
		dtype = a.dtype
	}
	return newContiguous(dtype, gatherCopy(a, dtype), a.shape)
}

// Copy returns a new row-major copy of a.
func Copy(a *VArray) *VArray {
	return CopyAsDType(a, dtypes.InvalidDType)
}

// AsType returns a itself if it already has the given dtype, or a converted copy otherwise.
func AsType(a *VArray, dtype dtypes.DType) *VArray {
	if a.dtype == dtype || dtype == dtypes.InvalidDType {
		return a
	}
	return CopyAsDType(a, dtype)
}
