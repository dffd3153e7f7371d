// Package reduce implements the reductions over varray.VArray: sums, products, statistics, extrema,
// norms and logical reductions.
//
// Every reduction has two forms: a whole-array one returning a varray.VScalar, and an axes one
// (suffixed with Axes) that reduces only the given axes and writes the result to a varray.Target:
//
//	total, err := reduce.Sum(a)
//	perColumn, err := reduce.SumAxes(varray.Allocate(), a, []int{0})
//
// An empty list of axes reduces over all axes, returning a zero-dimension array.
//
// The reduced axes are first joined into one last axis (see varray.JoinAxesIntoLastDimension), so
// kernels only ever reduce consecutive runs of elements.
package reduce

import (
	"github.com/numdot/numdot/pkg/core/config"
	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
	"github.com/numdot/numdot/pkg/core/varray"
	"github.com/pkg/errors"
)

// runKernel reduces flat, a []T of the compute dtype, into out, a []R of the result dtype:
// each out[i] is the reduction of flat[i*runLength:(i+1)*runLength].
type runKernel struct {
	resultDType dtypes.DType
	apply       func(flat any, runLength int, out any)
}

// Reducer is a reduction with kernels per compute dtype.
type Reducer struct {
	Name      string
	Promotion dtypes.Promotion
	kernels   *varray.DTypeDispatcher[runKernel]
}

func newReducer(name string, promotion dtypes.Promotion) *Reducer {
	return &Reducer{Name: name, Promotion: promotion, kernels: varray.NewDTypeDispatcher[runKernel](name)}
}

// register fn as the kernel of r for the compute dtype of T. fn must not modify run, it may
// alias the storage of the operand.
func register[T, R dtypes.Supported](r *Reducer, fn func(run []T) R) {
	r.kernels.Register(dtypes.FromGenericsType[T](), runKernel{
		resultDType: dtypes.FromGenericsType[R](),
		apply: func(flat any, runLength int, out any) {
			in, outFlat := flat.([]T), out.([]R)
			for i := range outFlat {
				outFlat[i] = fn(in[i*runLength : (i+1)*runLength])
			}
		},
	})
}

func checkReductionsEnabled() error {
	if config.Get().DisableReductionFunctions {
		return numerr.Disabled("reduction", config.KeyDisableReductionFunctions)
	}
	return nil
}

func (r *Reducer) kernel(dtype dtypes.DType) (kernel runKernel, compute, resultDType dtypes.DType) {
	compute, resultDType = r.Promotion.Promote(dtype)
	kernel = r.kernels.Get(compute)
	if kernel.resultDType != resultDType {
		numerr.Panicf(numerr.ErrType, "%s: kernel produces %s, but the promotion rule requires %s",
			r.Name, kernel.resultDType, resultDType)
	}
	return
}

// reduceLastAxis reduces the last axis of joined, writing the result to target.
func (r *Reducer) reduceLastAxis(target varray.Target, joined *varray.VArray) (result *varray.VArray, err error) {
	var resultDType dtypes.DType
	var outDims []int
	var out any
	err = numerr.Catch(func() {
		var kernel runKernel
		var compute dtypes.DType
		kernel, compute, resultDType = r.kernel(joined.DType())
		shape := joined.Shape()
		outDims = shape[:len(shape)-1]
		out = varray.MakeFlat(resultDType, shapes.Size(outDims))
		kernel.apply(varray.Gather(joined, compute), shape[len(shape)-1], out)
	})
	if err != nil {
		return nil, errors.WithMessage(err, r.Name)
	}
	return target.Write(resultDType, outDims, out)
}

// Reduce all elements of a into a scalar.
func (r *Reducer) Reduce(a *varray.VArray) (varray.VScalar, error) {
	result, err := r.ReduceAxes(varray.Allocate(), a, nil)
	if err != nil {
		return varray.VScalar{}, err
	}
	return result.ToScalar()
}

// ReduceAxes reduces the given axes of a, writing the result, with the remaining axes, to target.
func (r *Reducer) ReduceAxes(target varray.Target, a *varray.VArray, axes []int) (*varray.VArray, error) {
	if err := checkReductionsEnabled(); err != nil {
		return nil, err
	}
	joined, err := varray.JoinAxesIntoLastDimension(a, axes)
	if err != nil {
		return nil, errors.WithMessage(err, r.Name)
	}
	return r.reduceLastAxis(target, joined)
}
