package ops

import (
	"github.com/numdot/numdot/pkg/core/config"
	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/varray"
)

var (
	equalOp    = varray.NewBinaryOp("equal", dtypes.CommonInBoolOut)
	notEqualOp = varray.NewBinaryOp("not_equal", dtypes.CommonInBoolOut)

	greaterOp      = varray.NewBinaryOp("greater", dtypes.NumInBoolOut)
	greaterEqualOp = varray.NewBinaryOp("greater_equal", dtypes.NumInBoolOut)
	lessOp         = varray.NewBinaryOp("less", dtypes.NumInBoolOut)
	lessEqualOp    = varray.NewBinaryOp("less_equal", dtypes.NumInBoolOut)
)

func init() {
	registerEquality[bool]()
	registerComparison[int8]()
	registerComparison[int16]()
	registerComparison[int32]()
	registerComparison[int64]()
	registerComparison[uint8]()
	registerComparison[uint16]()
	registerComparison[uint32]()
	registerComparison[uint64]()
	registerComparison[float32]()
	registerComparison[float64]()
}

func registerEquality[T dtypes.Supported]() {
	varray.RegisterBinary(equalOp, func(a, b T) bool { return a == b })
	varray.RegisterBinary(notEqualOp, func(a, b T) bool { return a != b })
}

func registerComparison[T dtypes.PODNumeric]() {
	registerEquality[T]()
	varray.RegisterBinary(greaterOp, func(a, b T) bool { return a > b })
	varray.RegisterBinary(greaterEqualOp, func(a, b T) bool { return a >= b })
	varray.RegisterBinary(lessOp, func(a, b T) bool { return a < b })
	varray.RegisterBinary(lessEqualOp, func(a, b T) bool { return a <= b })
}

func checkComparisonsEnabled() error {
	if config.Get().DisableComparisonFunctions {
		return numerr.Disabled("comparison", config.KeyDisableComparisonFunctions)
	}
	return nil
}

// comparisonPath is how a comparison is executed.
type comparisonPath int

const (
	generalPath comparisonPath = iota
	arrayScalarPath
	scalarArrayPath
)

// selectPath returns scalarArrayPath or arrayScalarPath if the corresponding operand is zero-dimensional
// and fastPath is enabled, and generalPath otherwise.
func selectPath(fastPath bool, a, b *varray.VArray) comparisonPath {
	switch {
	case !fastPath:
		return generalPath
	case a.Rank() == 0:
		return scalarArrayPath
	case b.Rank() == 0:
		return arrayScalarPath
	}
	return generalPath
}

// executeCommutative runs op, using the array-vs-scalar kernels if either operand is zero-dimensional.
// Since op is commutative, a scalar on the left is swapped to the right.
func executeCommutative(op *varray.BinaryOp, target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	if err := checkComparisonsEnabled(); err != nil {
		return nil, err
	}
	switch selectPath(config.EqualityScalarFastPath(), a, b) {
	case scalarArrayPath:
		return op.ExecuteArrayScalar(target, b, a)
	case arrayScalarPath:
		return op.ExecuteArrayScalar(target, a, b)
	}
	return op.Execute(target, a, b)
}

// executeOrdering runs op, using the scalar-vs-array or array-vs-scalar kernels if the corresponding
// operand is zero-dimensional.
func executeOrdering(op *varray.BinaryOp, target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	if err := checkComparisonsEnabled(); err != nil {
		return nil, err
	}
	switch selectPath(config.OrderingScalarFastPath(), a, b) {
	case scalarArrayPath:
		return op.ExecuteScalarArray(target, a, b)
	case arrayScalarPath:
		return op.ExecuteArrayScalar(target, a, b)
	}
	return op.Execute(target, a, b)
}

// Equal returns a == b elementwise, as a Bool array. Operands are compared in their common dtype.
func Equal(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return executeCommutative(equalOp, target, a, b)
}

// NotEqual returns a != b elementwise, as a Bool array.
func NotEqual(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return executeCommutative(notEqualOp, target, a, b)
}

// Greater returns a > b elementwise, as a Bool array. Operands are compared in their common numeric
// dtype (Bool is compared as Int8).
func Greater(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return executeOrdering(greaterOp, target, a, b)
}

// GreaterEqual returns a >= b elementwise, as a Bool array.
func GreaterEqual(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return executeOrdering(greaterEqualOp, target, a, b)
}

// Less returns a < b elementwise, as a Bool array.
func Less(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return executeOrdering(lessOp, target, a, b)
}

// LessEqual returns a <= b elementwise, as a Bool array.
func LessEqual(target varray.Target, a, b *varray.VArray) (*varray.VArray, error) {
	return executeOrdering(lessEqualOp, target, a, b)
}
