package ops

import (
	"fmt"
	"math"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/numdot/numdot/pkg/core/config"
	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
	"github.com/numdot/numdot/pkg/core/strided"
	"github.com/numdot/numdot/pkg/core/varray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forEachScalarConfig runs fn with the scalar fast paths enabled and disabled.
func forEachScalarConfig(t *testing.T, fn func(t *testing.T)) {
	configs := map[string]config.Config{
		"fast_path":    {},
		"no_scalar":    {DisableScalarOptimization: true},
		"neon_flagged": {DisableNeonScalarOptimization: true},
	}
	for name, c := range configs {
		t.Run(name, func(t *testing.T) {
			defer config.Set(c)()
			fn(t)
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := must.M1(varray.FromValue([][]int32{{1, 2, 3}, {4, 5, 6}}))
	b := must.M1(varray.FromValue([]int32{10, 20, 30}))
	assert.Equal(t, [][]int32{{11, 22, 33}, {14, 25, 36}}, must.M1(Add(varray.Allocate(), a, b)).Value())
	assert.Equal(t, [][]int32{{-9, -18, -27}, {-6, -15, -24}}, must.M1(Subtract(varray.Allocate(), a, b)).Value())
	assert.Equal(t, [][]int32{{10, 40, 90}, {40, 100, 180}}, must.M1(Multiply(varray.Allocate(), a, b)).Value())
	assert.Equal(t, [][]int32{{10, 10, 10}, {2, 4, 5}}, must.M1(Divide(varray.Allocate(), b, a)).Value())

	// Promotion.
	result := must.M1(Add(varray.Allocate(), varray.FromFlat([]int8{1}), varray.FromFlat([]float32{0.5})))
	assert.Equal(t, []float32{1.5}, result.Value())
	result = must.M1(Add(varray.Allocate(), varray.FromFlat([]int64{-1}), varray.FromFlat([]uint64{2})))
	assert.Equal(t, []float64{1}, result.Value())
	result = must.M1(Add(varray.Allocate(), varray.FromFlat([]bool{true, true}), varray.FromFlat([]bool{true, false})))
	assert.Equal(t, []int8{2, 1}, result.Value())
	result = must.M1(Add(varray.Allocate(), varray.FromFlat([]uint8{1}), varray.FromFlat([]int8{-2})))
	assert.Equal(t, dtypes.Int16, result.DType())
	assert.Equal(t, []int16{-1}, result.Value())

	// Division by zero.
	result = must.M1(Divide(varray.Allocate(), varray.FromFlat([]int16{7, -7}), varray.FromScalar(int16(0))))
	assert.Equal(t, []int16{0, 0}, result.Value())
	result = must.M1(Divide(varray.Allocate(), varray.FromFlat([]float64{1, -1}), varray.FromScalar(0.0)))
	assert.Equal(t, []float64{math.Inf(1), math.Inf(-1)}, result.Value())

	_, err := Add(varray.Allocate(), a, varray.FromFlat([]int32{1, 2}))
	require.ErrorIs(t, err, numerr.ErrBroadcast)
	_, err = Add(varray.Into(varray.New(dtypes.Int64, 2, 3)), a, b)
	require.ErrorIs(t, err, numerr.ErrType)
	_, err = Add(varray.Into(varray.New(dtypes.Int32, 3)), a, b)
	require.ErrorIs(t, err, numerr.ErrShape)

	// Target overlapping an operand: x[1:] = x[:3] * 2.
	x := varray.FromFlat([]int64{1, 2, 3, 4})
	must.M1(Multiply(varray.Into(must.M1(varray.Slice(x, strided.RangeFrom(1)))),
		must.M1(varray.Slice(x, strided.RangeTo(3))), varray.FromScalar(int64(2))))
	assert.Equal(t, []int64{1, 2, 4, 6}, x.Value())
}

func TestAddEqualsMultiplyByTwo(t *testing.T) {
	values := []any{
		[]int8{-3, 0, 5, 60},
		[][]uint16{{1, 2}, {300, 4000}},
		[][]float32{{0.1, -2.5}, {1e10, 3}},
		[]float64{math.Pi, -math.E, 0},
		[]int64{math.MaxInt32, -7},
	}
	for _, value := range values {
		t.Run(fmt.Sprintf("%T", value), func(t *testing.T) {
			a := must.M1(varray.FromValue(value))
			sum := must.M1(Add(varray.Allocate(), a, a))
			product := must.M1(Multiply(varray.Allocate(), a, must.M1(varray.FullLike(a, 2))))
			assert.Equal(t, a.DType(), sum.DType())
			assert.Equal(t, product.Value(), sum.Value())
		})
	}
}

func TestGreaterEqualScalar(t *testing.T) {
	forEachScalarConfig(t, func(t *testing.T) {
		a := must.M1(varray.FromValue([]int64{1, 2, 3}))
		two := varray.FromScalar(int64(2))
		result := must.M1(GreaterEqual(varray.Allocate(), a, two))
		assert.Equal(t, []bool{false, true, true}, result.Value())
		fast := must.M1(greaterEqualOp.ExecuteArrayScalar(varray.Allocate(), a, two))
		assert.Equal(t, fast.Value(), result.Value())

		// Scalar on the left.
		result = must.M1(GreaterEqual(varray.Allocate(), two, a))
		assert.Equal(t, []bool{true, true, false}, result.Value())
		result = must.M1(Less(varray.Allocate(), two, a))
		assert.Equal(t, []bool{false, false, true}, result.Value())
		result = must.M1(Greater(varray.Allocate(), a, varray.FromScalar(1.5)))
		assert.Equal(t, []bool{false, true, true}, result.Value())
		result = must.M1(LessEqual(varray.Allocate(), a, varray.FromScalar(uint8(1))))
		assert.Equal(t, []bool{true, false, false}, result.Value())
	})
}

func TestComparisonPathSelection(t *testing.T) {
	a := varray.FromFlat([]int64{1, 2, 3})
	two := varray.FromScalar(int64(2))
	testCases := []struct {
		name          string
		config        config.Config
		orderingRight comparisonPath
		orderingLeft  comparisonPath
		equalityRight comparisonPath
		equalityLeft  comparisonPath
	}{
		{"fast_path", config.Config{}, arrayScalarPath, scalarArrayPath, arrayScalarPath, scalarArrayPath},
		{"no_scalar", config.Config{DisableScalarOptimization: true}, generalPath, generalPath, generalPath, generalPath},
		{"neon_flagged", config.Config{DisableNeonScalarOptimization: true}, arrayScalarPath, scalarArrayPath, generalPath, generalPath},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			defer config.Set(tc.config)()
			assert.Equal(t, tc.orderingRight, selectPath(config.OrderingScalarFastPath(), a, two))
			assert.Equal(t, tc.orderingLeft, selectPath(config.OrderingScalarFastPath(), two, a))
			assert.Equal(t, tc.equalityRight, selectPath(config.EqualityScalarFastPath(), a, two))
			assert.Equal(t, tc.equalityLeft, selectPath(config.EqualityScalarFastPath(), two, a))
		})
	}
	assert.Equal(t, generalPath, selectPath(true, a, a))
}

func TestEquality(t *testing.T) {
	forEachScalarConfig(t, func(t *testing.T) {
		a := must.M1(varray.FromValue([][]float32{{1, 2}, {3, 2}}))
		two := varray.FromScalar(int8(2))
		assert.Equal(t, [][]bool{{false, true}, {false, true}}, must.M1(Equal(varray.Allocate(), a, two)).Value())
		assert.Equal(t, [][]bool{{false, true}, {false, true}}, must.M1(Equal(varray.Allocate(), two, a)).Value())
		assert.Equal(t, [][]bool{{true, false}, {true, false}}, must.M1(NotEqual(varray.Allocate(), two, a)).Value())

		bools := varray.FromFlat([]bool{true, false})
		assert.Equal(t, []bool{true, false}, must.M1(Equal(varray.Allocate(), bools, varray.FromScalar(true))).Value())
		assert.Equal(t, []bool{false, false}, must.M1(NotEqual(varray.Allocate(), bools, bools)).Value())
		assert.Equal(t, []bool{false, true}, must.M1(Equal(varray.Allocate(), varray.FromScalar(false), bools)).Value())

		// Both scalars.
		result := must.M1(Equal(varray.Allocate(), two, varray.FromScalar(2.0)))
		assert.Equal(t, 0, result.Rank())
		assert.Equal(t, true, result.Value())

		// Broadcasting.
		column := must.M1(varray.FromValue([][]float32{{2}, {3}}))
		assert.Equal(t, [][]bool{{false, true}, {true, false}}, must.M1(Equal(varray.Allocate(), a, column)).Value())
	})
}

func TestOrderingOnBools(t *testing.T) {
	a := varray.FromFlat([]bool{true, false, true})
	b := varray.FromFlat([]bool{false, false, true})
	assert.Equal(t, []bool{true, false, false}, must.M1(Greater(varray.Allocate(), a, b)).Value())
	assert.Equal(t, []bool{true, true, true}, must.M1(GreaterEqual(varray.Allocate(), a, b)).Value())
}

func TestComparisonTargets(t *testing.T) {
	a := varray.FromFlat([]int32{1, 5, 3, 7})
	dst := varray.New(dtypes.Bool, 3, 4)
	view := must.M1(varray.Slice(dst, strided.Index(1)))
	must.M1(Greater(varray.Into(view), a, varray.FromScalar(int32(4))))
	assert.Equal(t, [][]bool{{false, false, false, false}, {false, true, false, true}, {false, false, false, false}}, dst.Value())

	_, err := Greater(varray.Into(varray.New(dtypes.Int32, 4)), a, a)
	require.ErrorIs(t, err, numerr.ErrType)
}

func TestComparisonsDisabled(t *testing.T) {
	defer config.Update(func(c *config.Config) { c.DisableComparisonFunctions = true })()
	a := varray.FromFlat([]float64{1, 2})
	for _, fn := range []func(varray.Target, *varray.VArray, *varray.VArray) (*varray.VArray, error){
		Equal, NotEqual, Greater, GreaterEqual, Less, LessEqual,
	} {
		_, err := fn(varray.Allocate(), a, a)
		require.ErrorIs(t, err, numerr.ErrFeatureDisabled)
	}
	// Arithmetic is not affected.
	must.M1(Add(varray.Allocate(), a, a))
}

func TestTrigonometry(t *testing.T) {
	a := varray.FromFlat([]float32{0, math.Pi / 2})
	result := must.M1(Sin(varray.Allocate(), a))
	assert.Equal(t, dtypes.Float32, result.DType())
	assert.InDeltaSlice(t, []float32{0, 1}, result.Value(), 1e-6)

	ints := varray.FromFlat([]int32{0, 1})
	result = must.M1(Cos(varray.Allocate(), ints))
	assert.Equal(t, dtypes.Float64, result.DType())
	assert.InDeltaSlice(t, []float64{1, math.Cos(1)}, result.Value(), 1e-12)

	result = must.M1(Tan(varray.Allocate(), varray.FromFlat([]bool{false, true})))
	assert.InDeltaSlice(t, []float64{0, math.Tan(1)}, result.Value(), 1e-12)

	_, err := Sin(varray.Into(varray.New(dtypes.Float32, 2)), ints)
	require.ErrorIs(t, err, numerr.ErrType)
}
