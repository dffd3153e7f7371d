package reduce

import (
	"math"
	"slices"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
	"github.com/numdot/numdot/pkg/core/varray"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"
)

var (
	sumReducer      = newReducer("sum", dtypes.NumInSameOut)
	prodReducer     = newReducer("prod", dtypes.NumAtLeastInt32InSameOut)
	meanReducer     = newReducer("mean", dtypes.FloatOrDefaultInSameOut)
	varianceReducer = newReducer("var", dtypes.FloatOrDefaultInSameOut)
	stdReducer      = newReducer("std", dtypes.FloatOrDefaultInSameOut)
	medianReducer   = newReducer("median", dtypes.NumInSameOut)
)

func init() {
	registerStatistics[int8]()
	registerStatistics[int16]()
	registerStatistics[int32]()
	registerStatistics[int64]()
	registerStatistics[uint8]()
	registerStatistics[uint16]()
	registerStatistics[uint32]()
	registerStatistics[uint64]()
	registerStatistics[float32]()
	registerStatistics[float64]()
	registerMoments[float32]()

	registerIntegerMedian[int8]()
	registerIntegerMedian[int16]()
	registerIntegerMedian[int32]()
	registerIntegerMedian[int64]()
	registerIntegerMedian[uint8]()
	registerIntegerMedian[uint16]()
	registerIntegerMedian[uint32]()
	registerIntegerMedian[uint64]()
	registerFloatMedian[float32]()
	registerFloatMedian[float64]()

	// Float64 accumulation is delegated to gonum.
	sumReducer.kernels.Register(dtypes.Float64, runKernel{resultDType: dtypes.Float64, apply: applyFloat64(floats.Sum)})
	meanReducer.kernels.Register(dtypes.Float64, runKernel{resultDType: dtypes.Float64, apply: applyFloat64(meanFloat64)})
	varianceReducer.kernels.Register(dtypes.Float64, runKernel{resultDType: dtypes.Float64, apply: applyFloat64(varianceFloat64)})
	stdReducer.kernels.Register(dtypes.Float64, runKernel{resultDType: dtypes.Float64, apply: applyFloat64(func(run []float64) float64 {
		return math.Sqrt(varianceFloat64(run))
	})})
}

func registerStatistics[T dtypes.PODNumeric]() {
	register(sumReducer, sumRun[T])
	register(prodReducer, func(run []T) T {
		var prod T = 1
		for _, v := range run {
			prod *= v
		}
		return prod
	})
}

func registerIntegerMedian[T dtypes.PODInteger]() {
	register(medianReducer, func(run []T) T { return medianRun(run, midpointInteger[T]) })
}

func registerFloatMedian[T dtypes.PODFloat]() {
	register(medianReducer, func(run []T) T {
		return medianRun(run, func(a, b T) T { return (a + b) / 2 })
	})
}

func registerMoments[T dtypes.PODFloat]() {
	register(meanReducer, func(run []T) T {
		return sumRun(run) / T(len(run))
	})
	register(varianceReducer, varianceRun[T])
	register(stdReducer, func(run []T) T {
		return T(math.Sqrt(float64(varianceRun(run))))
	})
}

// applyFloat64 adapts a gonum style reduction of a []float64 to a runKernel apply function.
func applyFloat64(fn func([]float64) float64) func(flat any, runLength int, out any) {
	return func(flat any, runLength int, out any) {
		in, outFlat := flat.([]float64), out.([]float64)
		for i := range outFlat {
			outFlat[i] = fn(in[i*runLength : (i+1)*runLength])
		}
	}
}

func sumRun[T dtypes.PODNumeric](run []T) T {
	var sum T
	for _, v := range run {
		sum += v
	}
	return sum
}

// varianceRun returns the population variance of run.
func varianceRun[T dtypes.PODFloat](run []T) T {
	mean := sumRun(run) / T(len(run))
	var sumSq T
	for _, v := range run {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / T(len(run))
}

func meanFloat64(run []float64) float64 {
	if len(run) == 0 {
		return math.NaN()
	}
	return stat.Mean(run, nil)
}

func varianceFloat64(run []float64) float64 {
	if len(run) == 0 {
		return math.NaN()
	}
	_, variance := stat.PopMeanVariance(run, nil)
	return variance
}

// medianRun returns the middle value of the sorted run, or the midpoint of the two middle values
// if it has an even length.
func medianRun[T dtypes.PODNumeric](run []T, midpoint func(a, b T) T) T {
	n := len(run)
	if n == 0 {
		numerr.Panicf(numerr.ErrShape, "median of an empty array")
	}
	sorted := slices.Clone(run)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return midpoint(sorted[n/2-1], sorted[n/2])
}

// midpointInteger returns (a+b)/2 truncated toward zero, as if computed in a wider integer type.
func midpointInteger[T dtypes.PODInteger](a, b T) T {
	// Floor of the average without overflow: shared bits plus half the differing ones.
	mid := (a & b) + ((a ^ b) >> 1)
	if mid < 0 && (a^b)&1 != 0 {
		mid++
	}
	return mid
}

// Sum returns the sum of all elements of a. Bool elements are summed as Int8.
func Sum(a *varray.VArray) (varray.VScalar, error) { return sumReducer.Reduce(a) }

// SumAxes sums a over the given axes.
func SumAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return sumReducer.ReduceAxes(target, a, axes)
}

// Prod returns the product of all elements of a. Integers narrower than 32 bits are multiplied
// as 32 bits integers.
func Prod(a *varray.VArray) (varray.VScalar, error) { return prodReducer.Reduce(a) }

// ProdAxes multiplies the elements of a over the given axes.
func ProdAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return prodReducer.ReduceAxes(target, a, axes)
}

// Mean returns the arithmetic mean of a, as a float. Non-float arrays are averaged as Float64.
// The mean of an empty array is NaN.
func Mean(a *varray.VArray) (varray.VScalar, error) { return meanReducer.Reduce(a) }

// MeanAxes averages a over the given axes.
func MeanAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return meanReducer.ReduceAxes(target, a, axes)
}

// Var returns the population variance of a.
func Var(a *varray.VArray) (varray.VScalar, error) { return varianceReducer.Reduce(a) }

// VarAxes returns the population variance of a over the given axes.
func VarAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return varianceReducer.ReduceAxes(target, a, axes)
}

// Std returns the population standard deviation of a.
func Std(a *varray.VArray) (varray.VScalar, error) { return stdReducer.Reduce(a) }

// StdAxes returns the population standard deviation of a over the given axes.
func StdAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	return stdReducer.ReduceAxes(target, a, axes)
}

// Median returns the median of a. For an even number of elements it is the mean of the two middle
// values, computed in the dtype of a (so integer medians truncate).
//
// It returns a ShapeError for an empty array.
func Median(a *varray.VArray) (varray.VScalar, error) { return medianReducer.Reduce(a) }

// MedianAxes returns the median of a over the given axes.
//
// A single axis of a non-dynamic array is reduced directly. Otherwise the axes are joined into
// one, and the joined array is copied if it is still dynamic.
func MedianAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	if err := checkReductionsEnabled(); err != nil {
		return nil, err
	}
	var joined *varray.VArray
	var err error
	if len(axes) == 1 && a.Layout() != shapes.Dynamic {
		joined, err = varray.MoveAxesToEnd(a, axes)
	} else {
		joined, err = varray.JoinAxesIntoLastDimension(a, axes)
		if err == nil && joined.Layout() == shapes.Dynamic {
			klog.V(2).Infof("median(axes=%v) of shape %v: joined axes are not uniformly strided, copying", axes, a.Shape())
			joined = varray.Copy(joined)
		}
	}
	if err != nil {
		return nil, errors.WithMessage(err, medianReducer.Name)
	}
	return medianReducer.reduceLastAxis(target, joined)
}
