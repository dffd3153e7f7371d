package reduce

import (
	"math"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/varray"
	"gonum.org/v1/gonum/floats"
)

var (
	minReducer = newReducer("min", dtypes.CommonInSameOut)
	maxReducer = newReducer("max", dtypes.CommonInSameOut)

	normL0Reducer   = newReducer("norm_l0", dtypes.FloatOrDefaultInSameOut)
	normL1Reducer   = newReducer("norm_l1", dtypes.FloatOrDefaultInSameOut)
	normL2Reducer   = newReducer("norm_l2", dtypes.FloatOrDefaultInSameOut)
	normLInfReducer = newReducer("norm_linf", dtypes.FloatOrDefaultInSameOut)
)

func init() {
	register(minReducer, func(run []bool) bool {
		checkNotEmpty(minReducer, len(run))
		for _, v := range run {
			if !v {
				return false
			}
		}
		return true
	})
	register(maxReducer, func(run []bool) bool {
		checkNotEmpty(maxReducer, len(run))
		for _, v := range run {
			if v {
				return true
			}
		}
		return false
	})
	registerExtrema[int8]()
	registerExtrema[int16]()
	registerExtrema[int32]()
	registerExtrema[int64]()
	registerExtrema[uint8]()
	registerExtrema[uint16]()
	registerExtrema[uint32]()
	registerExtrema[uint64]()
	registerExtrema[float32]()
	registerExtrema[float64]()

	registerNorms[float32]()
	registerNorms[float64]()
	normL1Reducer.kernels.Register(dtypes.Float64, runKernel{resultDType: dtypes.Float64, apply: applyFloat64(func(run []float64) float64 {
		return floats.Norm(run, 1)
	})})
	normL2Reducer.kernels.Register(dtypes.Float64, runKernel{resultDType: dtypes.Float64, apply: applyFloat64(func(run []float64) float64 {
		return floats.Norm(run, 2)
	})})
}

func checkNotEmpty(r *Reducer, n int) {
	if n == 0 {
		numerr.Panicf(numerr.ErrShape, "%s of an empty array has no identity", r.Name)
	}
}

func registerExtrema[T dtypes.PODNumeric]() {
	register(minReducer, func(run []T) T {
		checkNotEmpty(minReducer, len(run))
		result := run[0]
		for _, v := range run[1:] {
			result = min(result, v)
		}
		return result
	})
	register(maxReducer, func(run []T) T {
		checkNotEmpty(maxReducer, len(run))
		result := run[0]
		for _, v := range run[1:] {
			result = max(result, v)
		}
		return result
	})
}

func abs[T dtypes.PODFloat](v T) T {
	return T(math.Abs(float64(v)))
}

func registerNorms[T dtypes.PODFloat]() {
	register(normL0Reducer, func(run []T) T {
		var count T
		for _, v := range run {
			if v != 0 {
				count++
			}
		}
		return count
	})
	register(normL1Reducer, func(run []T) T {
		var sum T
		for _, v := range run {
			sum += abs(v)
		}
		return sum
	})
	register(normL2Reducer, func(run []T) T {
		var sumSq T
		for _, v := range run {
			sumSq += v * v
		}
		return T(math.Sqrt(float64(sumSq)))
	})
	// Empty runs have norm 0.
	register(normLInfReducer, func(run []T) T {
		var result T
		for _, v := range run {
			a := abs(v)
			if a > result || math.IsNaN(float64(a)) {
				result = a
			}
		}
		return result
	})
}

// Min returns the smallest element of a. For Bool arrays it is the logical and of all elements.
// A NaN element makes the result NaN.
//
// It returns a ShapeError for an empty array.
func Min(a *varray.VArray) (varray.VScalar, error) { return minReducer.Reduce(a) }

// MinAxes returns the smallest elements of a over the given axes.
func MinAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return minReducer.ReduceAxes(target, a, axes)
}

// Max returns the largest element of a. For Bool arrays it is the logical or of all elements.
// A NaN element makes the result NaN.
//
// It returns a ShapeError for an empty array.
func Max(a *varray.VArray) (varray.VScalar, error) { return maxReducer.Reduce(a) }

// MaxAxes returns the largest elements of a over the given axes.
func MaxAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return maxReducer.ReduceAxes(target, a, axes)
}

// NormL0 returns the number of non-zero elements of a, as a float.
func NormL0(a *varray.VArray) (varray.VScalar, error) { return normL0Reducer.Reduce(a) }

// NormL0Axes returns the number of non-zero elements of a over the given axes, as floats.
func NormL0Axes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return normL0Reducer.ReduceAxes(target, a, axes)
}

// NormL1 returns the sum of the absolute values of a.
func NormL1(a *varray.VArray) (varray.VScalar, error) { return normL1Reducer.Reduce(a) }

// NormL1Axes returns the sum of the absolute values of a over the given axes.
func NormL1Axes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return normL1Reducer.ReduceAxes(target, a, axes)
}

// NormL2 returns the Euclidean norm of a.
func NormL2(a *varray.VArray) (varray.VScalar, error) { return normL2Reducer.Reduce(a) }

// NormL2Axes returns the Euclidean norm of a over the given axes.
func NormL2Axes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return normL2Reducer.ReduceAxes(target, a, axes)
}

// NormLInf returns the largest absolute value of a, or 0 for an empty array.
func NormLInf(a *varray.VArray) (varray.VScalar, error) { return normLInfReducer.Reduce(a) }

// NormLInfAxes returns the largest absolute values of a over the given axes.
func NormLInfAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return normLInfReducer.ReduceAxes(target, a, axes)
}
