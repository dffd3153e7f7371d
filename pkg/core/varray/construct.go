package varray

import (
	"reflect"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
)

// New returns a zero-initialized row-major array of the given dtype and dimensions.
//
// It panics if dtype is invalid or any dimension is negative.
func New(dtype dtypes.DType, dims ...int) *VArray {
	shape := shapes.Make(dtype, dims...)
	return newContiguous(dtype, MakeFlat(dtype, shape.Size()), dims)
}

// Full returns a row-major array with all elements set to value, converted to dtype.
// If dtype is InvalidDType, the dtype of value is used.
//
// value can be a VScalar or any Go scalar of a supported type.
func Full(dtype dtypes.DType, value any, dims ...int) (*VArray, error) {
	scalar, err := ScalarFromAny(value)
	if err != nil {
		return nil, err
	}
	if dtype == dtypes.InvalidDType {
		dtype = scalar.dtype
	}
	a := New(dtype, dims...)
	storageOps.Get(dtype).fill(a.data, scalar.AsDType(dtype).value)
	return a, nil
}

// FullLike returns a new array with the dtype and shape of a, with all elements set to value.
func FullLike(a *VArray, value any) (*VArray, error) {
	return Full(a.dtype, value, a.shape...)
}

// Zeros returns a new array of zeros.
func Zeros(dtype dtypes.DType, dims ...int) *VArray {
	return New(dtype, dims...)
}

// Ones returns a new array of ones (true for Bool).
func Ones(dtype dtypes.DType, dims ...int) *VArray {
	a := New(dtype, dims...)
	storageOps.Get(dtype).fill(a.data, NewScalar(true).AsDType(dtype).value)
	return a
}

// FromScalar returns a zero-dimension array holding value.
func FromScalar[T dtypes.Supported](value T) *VArray {
	return NewScalar(value).AsArray()
}

// FromFlat returns a row-major array with the given dimensions using flat as its storage (it is not copied).
//
// It panics if len(flat) doesn't match the dimensions. If no dimensions are given, it returns
// a 1D array with all the values.
func FromFlat[T dtypes.Supported](flat []T, dims ...int) *VArray {
	if len(dims) == 0 {
		dims = []int{len(flat)}
	}
	dtype := dtypes.FromGenericsType[T]()
	shape := shapes.Make(dtype, dims...)
	if shape.Size() != len(flat) {
		numerr.Panicf(numerr.ErrShape, "FromFlat: %d values given for shape %s", len(flat), shape)
	}
	return newContiguous(dtype, flat, dims)
}

// FromValue creates an array from a Go scalar, or from a (multi-dimensional) slice of a supported type,
// e.g. [][]float32{{1, 2}, {3, 4}}. Sub-slices must all have the same length.
func FromValue(value any) (a *VArray, err error) {
	if s, ok := value.(VScalar); ok {
		return s.AsArray(), nil
	}
	var shape shapes.Shape
	shape, err = shapeForValue(value)
	if err != nil {
		return nil, err
	}
	err = numerr.Catch(func() {
		a = New(shape.DType, shape.Dimensions...)
		valueV := reflect.ValueOf(value)
		goType := shape.DType.GoType()
		if shape.IsScalar() {
			reflect.ValueOf(a.data).Index(0).Set(valueV.Convert(goType))
			return
		}
		ii := 0
		copyValuesRecursively(reflect.ValueOf(a.data), valueV, goType, &ii)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// copyValuesRecursively copies the leaves of the multi-dimensional slice into flat, in row-major order.
func copyValuesRecursively(flat reflect.Value, mdSlice reflect.Value, goType reflect.Type, ii *int) {
	if mdSlice.Kind() != reflect.Slice {
		flat.Index(*ii).Set(mdSlice.Convert(goType))
		*ii++
		return
	}
	for jj := range mdSlice.Len() {
		copyValuesRecursively(flat, mdSlice.Index(jj), goType, ii)
	}
}

func shapeForValue(v any) (shapes.Shape, error) {
	var shape shapes.Shape
	if v == nil {
		return shape, numerr.Errorf(numerr.ErrType, "cannot create array from nil")
	}
	err := shapeForValueRecursive(&shape, reflect.ValueOf(v), reflect.TypeOf(v))
	return shape, err
}

func shapeForValueRecursive(shape *shapes.Shape, v reflect.Value, t reflect.Type) error {
	switch t.Kind() {
	case reflect.Slice:
		// Recurse into inner slices.
		t = t.Elem()
		shape.Dimensions = append(shape.Dimensions, v.Len())
		shapePrefix := shape.Clone()

		if v.Len() == 0 {
			// The leaf dtype comes from the type, the inner dimensions can't be known.
			for t.Kind() == reflect.Slice {
				t = t.Elem()
				shape.Dimensions = append(shape.Dimensions, 0)
			}
			return shapeForValueRecursive(shape, reflect.Zero(t), t)
		}

		// The first element is the reference
		err := shapeForValueRecursive(shape, v.Index(0), t)
		if err != nil {
			return err
		}

		// Test that other elements have the same shape as the first one.
		for ii := 1; ii < v.Len(); ii++ {
			shapeTest := shapePrefix.Clone()
			err = shapeForValueRecursive(&shapeTest, v.Index(ii), t)
			if err != nil {
				return err
			}
			if !shape.Equal(shapeTest) {
				return numerr.Errorf(numerr.ErrShape, "sub-slices have irregular shapes, found shapes %s and %s", shape, shapeTest)
			}
		}

	default:
		shape.DType = dtypes.FromGoType(t)
		if shape.DType == dtypes.InvalidDType {
			return numerr.Errorf(numerr.ErrType, "cannot convert type %s to an array element", t)
		}
	}
	return nil
}

// Value returns the contents of the array as a Go value: a scalar for zero-dimension arrays,
// or a (multi-dimensional) slice, e.g. [][]float32.
func (a *VArray) Value() any {
	flat := reflect.ValueOf(gatherCopy(a, a.dtype))
	if a.Rank() == 0 {
		return flat.Index(0).Interface()
	}
	return convertDataToSlices(flat, a.shape...).Interface()
}

// convertDataToSlices takes data as a flat slice and creates a multidimensional slice with the given dimensions that
// points to the given data.
func convertDataToSlices(dataV reflect.Value, dimensions ...int) reflect.Value {
	if len(dimensions) <= 1 {
		return dataV
	}
	resultT := dataV.Type()
	for range dimensions[1:] {
		resultT = reflect.SliceOf(resultT)
	}
	return createSlicesRecursively(resultT, dataV, dimensions, shapes.Strides(dimensions, shapes.RowMajor))
}

// createSlicesRecursively creates the slices of slices pointing to data, assuming the given strides.
func createSlicesRecursively(resultT reflect.Type, data reflect.Value, dimensions []int, strides []int) reflect.Value {
	if len(strides) == 1 {
		// Last level of slice, just copy over the slice (not the data, just the slice).
		return data
	}

	numElements := dimensions[0]
	slice := reflect.MakeSlice(resultT, numElements, numElements)
	subResultT := resultT.Elem()
	for ii := 0; ii < numElements; ii++ {
		start := ii * strides[0]
		end := (ii + 1) * strides[0]
		subSlice := createSlicesRecursively(subResultT, data.Slice(start, end), dimensions[1:], strides[1:])
		slice.Index(ii).Set(subSlice)
	}
	return slice
}
