package varray

import (
	"slices"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/shapes"
	"k8s.io/klog/v2"
)

// This file implements the execution of elementwise operations.
//
// Operands are converted to the compute dtype given by the operation's promotion rule, and laid out
// in row-major order (contiguous operands of the right dtype are used in place). Kernels, one per
// compute dtype, then loop over plain Go slices.

// UnaryKernel applies an elementwise function: out[i] = fn(in[i]), with in a []T and out a []R.
type UnaryKernel struct {
	ResultDType dtypes.DType
	Apply       func(in, out any)
}

// NewUnaryKernel creates the UnaryKernel for fn.
func NewUnaryKernel[T, R dtypes.Supported](fn func(T) R) UnaryKernel {
	return UnaryKernel{
		ResultDType: dtypes.FromGenericsType[R](),
		Apply: func(inAny, outAny any) {
			in, out := inAny.([]T), outAny.([]R)
			for ii, v := range in {
				out[ii] = fn(v)
			}
		},
	}
}

// BinaryKernel applies an elementwise function of two operands, with a []T and b []T, to out []R.
type BinaryKernel struct {
	ResultDType dtypes.DType

	// General handles any pair of broadcastable operands. The dimensions are already expanded to the
	// rank of the output.
	General func(a, b, out any, aDims, bDims, outDims []int)

	// ArrayScalar computes out[i] = fn(a[i], b[0]).
	ArrayScalar func(a, b, out any)

	// ScalarArray computes out[i] = fn(a[0], b[i]).
	ScalarArray func(a, b, out any)
}

// NewBinaryKernel creates the BinaryKernel for fn.
func NewBinaryKernel[T, R dtypes.Supported](fn func(a, b T) R) BinaryKernel {
	return BinaryKernel{
		ResultDType: dtypes.FromGenericsType[R](),
		General: func(aAny, bAny, outAny any, aDims, bDims, outDims []int) {
			execBinaryGeneral(fn, aAny.([]T), bAny.([]T), outAny.([]R), aDims, bDims, outDims)
		},
		ArrayScalar: func(aAny, bAny, outAny any) {
			a, c, out := aAny.([]T), bAny.([]T)[0], outAny.([]R)
			for ii, v := range a {
				out[ii] = fn(v, c)
			}
		},
		ScalarArray: func(aAny, bAny, outAny any) {
			c, b, out := aAny.([]T)[0], bAny.([]T), outAny.([]R)
			for ii, v := range b {
				out[ii] = fn(c, v)
			}
		},
	}
}

func execBinaryGeneral[T, R dtypes.Supported](fn func(a, b T) R, a, b []T, out []R, aDims, bDims, outDims []int) {
	if slices.Equal(aDims, bDims) {
		// Same shapes, no broadcasting.
		for ii := range out {
			out[ii] = fn(a[ii], b[ii])
		}
		return
	}
	// With broadcasting.
	aIter := newBroadcastIterator(aDims, outDims)
	bIter := newBroadcastIterator(bDims, outDims)
	for ii := range out {
		out[ii] = fn(a[aIter.Next()], b[bIter.Next()])
	}
}

// broadcastIterator iterates over the flat indices of a row-major operand that is being broadcast
// to a larger shape (some of its dimensions are 1 and grow).
type broadcastIterator struct {
	flatIdx     int
	perAxesIdx  []int
	targetDims  []int
	isBroadcast []bool
	strides     []int
}

// newBroadcastIterator returns a broadcastIterator for fromDims growing to toDims, both of the same rank.
func newBroadcastIterator(fromDims, toDims []int) *broadcastIterator {
	rank := len(fromDims)
	if rank != len(toDims) {
		numerr.Panicf(numerr.ErrShape, "broadcastIterator: rank mismatch from %v to %v", fromDims, toDims)
	}
	bi := &broadcastIterator{
		perAxesIdx:  make([]int, rank),
		targetDims:  toDims,
		isBroadcast: make([]bool, rank),
		strides:     shapes.Strides(fromDims, shapes.RowMajor),
	}
	for axis := range rank {
		bi.isBroadcast[axis] = fromDims[axis] != toDims[axis]
	}
	return bi
}

// Next returns the current flat index in the operand, and advances the iterator.
func (bi *broadcastIterator) Next() (flatIdx int) {
	flatIdx = bi.flatIdx
	for axis := len(bi.perAxesIdx) - 1; axis >= 0; axis-- {
		bi.perAxesIdx[axis]++
		if !bi.isBroadcast[axis] {
			bi.flatIdx += bi.strides[axis]
		}
		if bi.perAxesIdx[axis] < bi.targetDims[axis] {
			return
		}
		// Carry over to the next axis: rewind this one.
		if !bi.isBroadcast[axis] {
			bi.flatIdx -= bi.perAxesIdx[axis] * bi.strides[axis]
		}
		bi.perAxesIdx[axis] = 0
	}
	return
}

// UnaryOp is an elementwise operation of one operand, with kernels per compute dtype.
type UnaryOp struct {
	Name      string
	Promotion dtypes.Promotion
	kernels   *DTypeDispatcher[UnaryKernel]
}

// NewUnaryOp creates a UnaryOp with no kernels. Use RegisterUnary to add them.
func NewUnaryOp(name string, promotion dtypes.Promotion) *UnaryOp {
	return &UnaryOp{Name: name, Promotion: promotion, kernels: NewDTypeDispatcher[UnaryKernel](name)}
}

// RegisterUnary registers fn as the kernel of op for the compute dtype of T.
func RegisterUnary[T, R dtypes.Supported](op *UnaryOp, fn func(T) R) {
	op.kernels.Register(dtypes.FromGenericsType[T](), NewUnaryKernel(fn))
}

// Execute op on a, writing the result to target.
func (op *UnaryOp) Execute(target Target, a *VArray) (result *VArray, err error) {
	err = numerr.Catch(func() {
		compute, resultDType := op.Promotion.Promote(a.dtype)
		kernel := op.kernels.Get(compute)
		checkResultDType(op.Name, kernel.ResultDType, resultDType)
		var flat any
		var commit func()
		result, flat, commit = target.prepare(resultDType, a.shape, a)
		kernel.Apply(Gather(a, compute), flat)
		commit()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BinaryOp is an elementwise operation of two operands, with kernels per compute dtype.
type BinaryOp struct {
	Name      string
	Promotion dtypes.Promotion
	kernels   *DTypeDispatcher[BinaryKernel]
}

// NewBinaryOp creates a BinaryOp with no kernels. Use RegisterBinary to add them.
func NewBinaryOp(name string, promotion dtypes.Promotion) *BinaryOp {
	return &BinaryOp{Name: name, Promotion: promotion, kernels: NewDTypeDispatcher[BinaryKernel](name)}
}

// RegisterBinary registers fn as the kernel of op for the compute dtype of T.
func RegisterBinary[T, R dtypes.Supported](op *BinaryOp, fn func(a, b T) R) {
	op.kernels.Register(dtypes.FromGenericsType[T](), NewBinaryKernel(fn))
}

func checkResultDType(name string, kernelDType, resultDType dtypes.DType) {
	if kernelDType != resultDType {
		numerr.Panicf(numerr.ErrType, "%s: kernel produces %s, but the promotion rule requires %s", name, kernelDType, resultDType)
	}
}

// resolve returns the kernel and result dtype for the operands.
func (op *BinaryOp) resolve(a, b *VArray) (kernel BinaryKernel, compute, resultDType dtypes.DType) {
	compute, resultDType = op.Promotion.Promote(a.dtype, b.dtype)
	kernel = op.kernels.Get(compute)
	checkResultDType(op.Name, kernel.ResultDType, resultDType)
	return
}

// Execute op on a and b with broadcasting, writing the result to target.
//
// Shapes are broadcast trailing axis first: dimensions must be equal or one of them 1, otherwise it
// returns a BroadcastError.
func (op *BinaryOp) Execute(target Target, a, b *VArray) (result *VArray, err error) {
	err = numerr.Catch(func() {
		kernel, compute, resultDType := op.resolve(a, b)
		outDims, err := shapes.BroadcastDimensions(a.shape, b.shape)
		if err != nil {
			panic(err)
		}
		var flat any
		var commit func()
		result, flat, commit = target.prepare(resultDType, outDims, a, b)
		rank := len(outDims)
		kernel.General(Gather(a, compute), Gather(b, compute), flat,
			shapes.ExpandRank(a.shape, rank), shapes.ExpandRank(b.shape, rank), outDims)
		commit()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteArrayScalar executes op on an array a and a zero-dimension array b, without going through
// the broadcasting machinery. The result is the same as Execute.
func (op *BinaryOp) ExecuteArrayScalar(target Target, a, b *VArray) (result *VArray, err error) {
	return op.executeWithScalar(target, a, b, false)
}

// ExecuteScalarArray executes op on a zero-dimension array a and an array b, without going through
// the broadcasting machinery. The result is the same as Execute.
func (op *BinaryOp) ExecuteScalarArray(target Target, a, b *VArray) (result *VArray, err error) {
	return op.executeWithScalar(target, a, b, true)
}

func (op *BinaryOp) executeWithScalar(target Target, a, b *VArray, scalarFirst bool) (result *VArray, err error) {
	err = numerr.Catch(func() {
		array, scalar := a, b
		if scalarFirst {
			array, scalar = b, a
		}
		if scalar.Rank() != 0 {
			numerr.Panicf(numerr.ErrShape, "%s: scalar fast path requires a zero-dimension operand, got shape %v",
				op.Name, scalar.shape)
		}
		kernel, compute, resultDType := op.resolve(a, b)
		var flat any
		var commit func()
		result, flat, commit = target.prepare(resultDType, array.shape, a, b)
		if scalarFirst {
			kernel.ScalarArray(Gather(scalar, compute), Gather(array, compute), flat)
		} else {
			kernel.ArrayScalar(Gather(array, compute), Gather(scalar, compute), flat)
		}
		commit()
	})
	if err != nil {
		return nil, err
	}
	if klog.V(3).Enabled() {
		klog.Infof("%s: scalar fast path, scalarFirst=%v", op.Name, scalarFirst)
	}
	return result, nil
}
