// Package ops implements the elementwise operations over varray.VArray: arithmetic, comparisons and
// trigonometric functions.
//
// Every operation takes a varray.Target for its result, and returns the resulting array:
//
//	sum, err := ops.Add(varray.Allocate(), a, b)
//	_, err = ops.Multiply(varray.Into(sum), sum, b)
package ops

import (
	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/varray"
)

var (
	addOp      = varray.NewBinaryOp("add", dtypes.NumInSameOut)
	subtractOp = varray.NewBinaryOp("subtract", dtypes.NumInSameOut)
	multiplyOp = varray.NewBinaryOp("multiply", dtypes.NumInSameOut)
	divideOp   = varray.NewBinaryOp("divide", dtypes.NumInSameOut)
)

func init() {
	registerArithmetic[int8]()
	registerArithmetic[int16]()
	registerArithmetic[int32]()
	registerArithmetic[int64]()
	registerArithmetic[uint8]()
	registerArithmetic[uint16]()
	registerArithmetic[uint32]()
	registerArithmetic[uint64]()
	registerArithmetic[float32]()
	registerArithmetic[float64]()
}

func registerArithmetic[T dtypes.PODNumeric]() {
	varray.RegisterBinary(addOp, func(a, b T) T { return a + b })
	varray.RegisterBinary(subtractOp, func(a, b T) T { return a - b })
	varray.RegisterBinary(multiplyOp, func(a, b T) T { return a * b })
	if dtypes.FromGenericsType[T]().IsFloat() {
		varray.RegisterBinary(divideOp, func(a, b T) T { return a / b })
	} else {
		varray.RegisterBinary(divideOp, func(a, b T) T {
			if b == 0 {
				return 0
			}
			return a / b
		})
	}
}

// Add returns a + b elementwise, with broadcasting.
//
// Operands are promoted to their common numeric dtype (Bool operands are treated as Int8).
func Add(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return addOp.Execute(target, a, b)
}

// Subtract returns a - b elementwise, with broadcasting.
func Subtract(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return subtractOp.Execute(target, a, b)
}

// Multiply returns a * b elementwise, with broadcasting.
func Multiply(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return multiplyOp.Execute(target, a, b)
}

// Divide returns a / b elementwise, with broadcasting.
//
// Integer division truncates toward zero, and an integer division by zero yields 0.
// Float division follows IEEE-754 (division by zero yields ±Inf or NaN).
func Divide(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return divideOp.Execute(target, a, b)
}
