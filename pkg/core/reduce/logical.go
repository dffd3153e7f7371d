package reduce

import (
	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/varray"
)

var (
	anyReducer   = newReducer("any", dtypes.AnyInBoolOut)
	allReducer   = newReducer("all", dtypes.AnyInBoolOut)
	countReducer = newReducer("count_nonzero", dtypes.CountInInt64Out)
)

func init() {
	registerLogical[bool]()
	registerLogical[int8]()
	registerLogical[int16]()
	registerLogical[int32]()
	registerLogical[int64]()
	registerLogical[uint8]()
	registerLogical[uint16]()
	registerLogical[uint32]()
	registerLogical[uint64]()
	registerLogical[float32]()
	registerLogical[float64]()
	register(countReducer, sumRun[int64])
}

func registerLogical[T dtypes.Supported]() {
	register(anyReducer, func(run []T) bool {
		var zero T
		for _, v := range run {
			if v != zero {
				return true
			}
		}
		return false
	})
	register(allReducer, func(run []T) bool {
		var zero T
		for _, v := range run {
			if v == zero {
				return false
			}
		}
		return true
	})
}

// Any returns whether any element of a is non-zero (true for Bool). It is false for an empty array.
func Any(a *varray.VArray) (varray.VScalar, error) { return anyReducer.Reduce(a) }

// AnyAxes returns whether any element of a is non-zero, over the given axes.
func AnyAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return anyReducer.ReduceAxes(target, a, axes)
}

// All returns whether all elements of a are non-zero (true for Bool). It is true for an empty array.
func All(a *varray.VArray) (varray.VScalar, error) { return allReducer.Reduce(a) }

// AllAxes returns whether all elements of a are non-zero, over the given axes.
func AllAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return allReducer.ReduceAxes(target, a, axes)
}

// nonzero returns a itself for Bool arrays, and a Bool copy of a (true where a != 0) otherwise.
func nonzero(a *varray.VArray) *varray.VArray {
	if a.DType() == dtypes.Bool {
		return a
	}
	return varray.CopyAsDType(a, dtypes.Bool)
}

// CountNonzero returns the number of non-zero elements of a, as an Int64.
func CountNonzero(a *varray.VArray) (varray.VScalar, error) {
	if err := checkReductionsEnabled(); err != nil {
		return varray.VScalar{}, err
	}
	return countReducer.Reduce(nonzero(a))
}

// CountNonzeroAxes returns the number of non-zero elements of a over the given axes, as Int64.
func CountNonzeroAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	if err := checkReductionsEnabled(); err != nil {
		return nil, err
	}
	return countReducer.ReduceAxes(target, nonzero(a), axes)
}
