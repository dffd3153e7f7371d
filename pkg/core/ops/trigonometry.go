package ops

import (
	"math"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/varray"
)

var (
	sinOp = varray.NewUnaryOp("sin", dtypes.FloatOrDefaultInSameOut)
	cosOp = varray.NewUnaryOp("cos", dtypes.FloatOrDefaultInSameOut)
	tanOp = varray.NewUnaryOp("tan", dtypes.FloatOrDefaultInSameOut)
)

func init() {
	registerTrigonometry[float32]()
	registerTrigonometry[float64]()
}

func registerTrigonometry[T dtypes.PODFloat]() {
	varray.RegisterUnary(sinOp, func(x T) T { return T(math.Sin(float64(x))) })
	varray.RegisterUnary(cosOp, func(x T) T { return T(math.Cos(float64(x))) })
	varray.RegisterUnary(tanOp, func(x T) T { return T(math.Tan(float64(x))) })
}

// Sin returns the sine of a, elementwise. Non-float operands are computed (and returned) as Float64.
func Sin(target varray.Target, a *varray.VArray) (*varray.VArray, error) {
	return sinOp.Execute(target, a)
}

// Cos returns the cosine of a, elementwise. Non-float operands are computed (and returned) as Float64.
func Cos(target varray.Target, a *varray.VArray) (*varray.VArray, error) {
	return cosOp.Execute(target, a)
}

// Tan returns the tangent of a, elementwise. Non-float operands are computed (and returned) as Float64.
func Tan(target varray.Target, a *varray.VArray) (*varray.VArray, error) {
	return tanOp.Execute(target, a)
}
