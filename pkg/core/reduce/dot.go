package reduce

import (
	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
	"github.com/numdot/numdot/pkg/core/varray"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// dotKernel multiplies a and b (both []T of the compute dtype) elementwise and sums each
// consecutive run of runLength products into out.
type dotKernel func(a, b any, runLength int, out any)

var dotKernels = varray.NewDTypeDispatcher[dotKernel]("reduce_dot")

func init() {
	registerDot[int8]()
	registerDot[int16]()
	registerDot[int32]()
	registerDot[int64]()
	registerDot[uint8]()
	registerDot[uint16]()
	registerDot[uint32]()
	registerDot[uint64]()
	registerDot[float32]()
	dotKernels.Register(dtypes.Float64, func(a, b any, runLength int, out any) {
		aFlat, bFlat, outFlat := a.([]float64), b.([]float64), out.([]float64)
		for i := range outFlat {
			start, end := i*runLength, (i+1)*runLength
			outFlat[i] = floats.Dot(aFlat[start:end], bFlat[start:end])
		}
	})
}

func registerDot[T dtypes.PODNumeric]() {
	dotKernels.Register(dtypes.FromGenericsType[T](), func(a, b any, runLength int, out any) {
		aFlat, bFlat, outFlat := a.([]T), b.([]T), out.([]T)
		for i := range outFlat {
			var sum T
			for j := i * runLength; j < (i+1)*runLength; j++ {
				sum += aFlat[j] * bFlat[j]
			}
			outFlat[i] = sum
		}
	})
}

// ReduceDot returns the sum of the elementwise product of a and b, broadcast together.
// The product is accumulated directly, no intermediate array is created.
func ReduceDot(a, b *varray.VArray) (varray.VScalar, error) {
	result, err := ReduceDotAxes(varray.Allocate(), a, b, nil)
	if err != nil {
		return varray.VScalar{}, err
	}
	return result.ToScalar()
}

// ReduceDotAxes sums the elementwise product of a and b (broadcast together) over the given axes.
func ReduceDotAxes(target varray.Target, a, b *varray.VArray, axes []int) (*varray.VArray, error) {
	if err := checkReductionsEnabled(); err != nil {
		return nil, err
	}
	var dtype dtypes.DType
	var outDims []int
	var out any
	err := numerr.Catch(func() {
		compute, _ := dtypes.NumInSameOut.Promote(a.DType(), b.DType())
		kernel := dotKernels.Get(compute)
		dims, err := shapes.BroadcastDimensions(a.Shape(), b.Shape())
		if err != nil {
			panic(err)
		}
		aJoined := joinBroadcast(a, dims, axes)
		bJoined := joinBroadcast(b, dims, axes)
		joinedDims := aJoined.Shape()
		outDims = joinedDims[:len(joinedDims)-1]
		dtype = compute
		out = varray.MakeFlat(compute, shapes.Size(outDims))
		kernel(varray.Gather(aJoined, compute), varray.Gather(bJoined, compute), joinedDims[len(joinedDims)-1], out)
	})
	if err != nil {
		return nil, errors.WithMessage(err, "reduce_dot")
	}
	return target.Write(dtype, outDims, out)
}

func joinBroadcast(a *varray.VArray, dims, axes []int) *varray.VArray {
	broadcast, err := varray.BroadcastTo(a, dims...)
	if err != nil {
		panic(err)
	}
	joined, err := varray.JoinAxesIntoLastDimension(broadcast, axes)
	if err != nil {
		panic(err)
	}
	return joined
}
