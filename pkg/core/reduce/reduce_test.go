package reduce

import (
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

func TestSum(t *testing.T) {
	a := must.M1(varray.FromValue([][]int32{{1, 2, 3}, {4, 5, 6}}))
	result := must.M1(SumAxes(varray.Allocate(), a, []int{0}))
	assert.Equal(t, []int32{5, 7, 9}, result.Value())
	result = must.M1(SumAxes(varray.Allocate(), a, []int{1}))
	assert.Equal(t, []int32{6, 15}, result.Value())

	// Empty axes reduce everything.
	result = must.M1(SumAxes(varray.Allocate(), a, nil))
	assert.Equal(t, 0, result.Rank())
	total := must.M1(Sum(a))
	assert.Equal(t, dtypes.Int32, total.DType())
	assert.Equal(t, int32(21), total.Value())
	assert.Equal(t, total.Value(), result.Value())

	// Strided input.
	transposed := must.M1(varray.Transpose(a))
	result = must.M1(SumAxes(varray.Allocate(), transposed, []int{1}))
	assert.Equal(t, []int32{5, 7, 9}, result.Value())

	// Float64 and Bool.
	assert.Equal(t, 4.5, must.M1(Sum(varray.FromFlat([]float64{1.5, 3}))).Value())
	assert.Equal(t, int8(2), must.M1(Sum(varray.FromFlat([]bool{true, false, true}))).Value())

	// Empty array.
	assert.Equal(t, float32(0), must.M1(Sum(varray.New(dtypes.Float32, 0))).Value())

	// Invalid axes.
	_, err := SumAxes(varray.Allocate(), a, []int{2})
	require.ErrorIs(t, err, numerr.ErrShape)
	_, err = SumAxes(varray.Allocate(), a, []int{0, 0})
	require.ErrorIs(t, err, numerr.ErrShape)
}

func TestSumTargets(t *testing.T) {
	a := varray.FromFlat([]int64{1, 2, 3, 4, 5, 6}, 2, 3)
	dst := varray.New(dtypes.Int64, 3)
	result := must.M1(SumAxes(varray.Into(dst), a, []int{0}))
	assert.Same(t, dst, result)
	assert.Equal(t, []int64{5, 7, 9}, dst.Value())

	_, err := SumAxes(varray.Into(varray.New(dtypes.Float64, 3)), a, []int{0})
	require.ErrorIs(t, err, numerr.ErrType)
	_, err = SumAxes(varray.Into(varray.New(dtypes.Int64, 2)), a, []int{0})
	require.ErrorIs(t, err, numerr.ErrShape)
}

func TestProd(t *testing.T) {
	a := varray.FromFlat([]int8{100, 100, 2})
	result := must.M1(Prod(a))
	assert.Equal(t, dtypes.Int32, result.DType())
	assert.Equal(t, int32(20000), result.Value())

	b := varray.FromFlat([]uint16{1, 2, 3, 4}, 2, 2)
	assert.Equal(t, []uint32{3, 8}, must.M1(ProdAxes(varray.Allocate(), b, []int{0})).Value())
	assert.Equal(t, 1.0, must.M1(Prod(varray.New(dtypes.Float64, 0))).Value())
}

func TestMoments(t *testing.T) {
	a := varray.FromFlat([]int32{1, 2, 3, 4}, 2, 2)
	mean := must.M1(Mean(a))
	assert.Equal(t, dtypes.Float64, mean.DType())
	assert.Equal(t, 2.5, mean.Value())
	assert.InDelta(t, 1.25, must.M1(Var(a)).Value(), 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), must.M1(Std(a)).Value(), 1e-12)

	assert.Equal(t, []float64{2, 3}, must.M1(MeanAxes(varray.Allocate(), a, []int{0})).Value())
	assert.InDeltaSlice(t, []float64{0.25, 0.25}, must.M1(VarAxes(varray.Allocate(), a, []int{1})).Value(), 1e-12)

	floats := varray.FromFlat([]float32{2, 4, 4, 4, 5, 5, 7, 9})
	std := must.M1(Std(floats))
	assert.Equal(t, dtypes.Float32, std.DType())
	assert.InDelta(t, float32(2), std.Value(), 1e-6)
	assert.InDelta(t, float32(5), must.M1(Mean(floats)).Value(), 1e-6)

	// Float32 and Float64 kernels agree.
	asFloat64 := varray.CopyAsDType(floats, dtypes.Float64)
	assert.InDelta(t, 4.0, must.M1(Var(asFloat64)).Value(), 1e-12)
	assert.InDelta(t, 0.0, must.M1(Var(varray.FromFlat([]float64{3}))).Value(), 1e-12)

	assert.True(t, math.IsNaN(must.M1(Mean(varray.New(dtypes.Float64, 0))).Value().(float64)))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, int64(3), must.M1(Median(varray.FromFlat([]int64{5, 1, 3}))).Value())
	assert.Equal(t, 2.5, must.M1(Median(varray.FromFlat([]float64{4, 1, 2, 3}))).Value())
	assert.Equal(t, int32(2), must.M1(Median(varray.FromFlat([]int32{4, 1, 2, 3}))).Value())

	// Median over two axes equals the median of the reshaped array over its last axis.
	flat := make([]float64, 16)
	for i := range flat {
		flat[i] = float64((i * 7) % 16)
	}
	a := varray.FromFlat(flat, 2, 2, 4)
	multi := must.M1(MedianAxes(varray.Allocate(), a, []int{0, 1}))
	moved := must.M1(varray.Transpose(a, 2, 0, 1))
	reshaped := must.M1(varray.Reshape(moved, 4, 4))
	single := must.M1(MedianAxes(varray.Allocate(), reshaped, []int{1}))
	assert.Equal(t, []int{4}, multi.Shape())
	assert.Equal(t, single.Value(), multi.Value())

	// Single axis of a dynamic view goes through the joined copy.
	stepped := must.M1(varray.Slice(a, strided.All(), strided.All(), strided.Step(2)))
	require.Equal(t, []int{2, 2, 2}, stepped.Shape())
	result := must.M1(MedianAxes(varray.Allocate(), stepped, []int{2}))
	expected := must.M1(MedianAxes(varray.Allocate(), varray.Copy(stepped), []int{2}))
	assert.Equal(t, expected.Value(), result.Value())

	// The operand is not modified by sorting.
	b := varray.FromFlat([]int16{3, 1, 2})
	must.M1(Median(b))
	assert.Equal(t, []int16{3, 1, 2}, b.Value())

	_, err := Median(varray.New(dtypes.Int32, 0))
	require.ErrorIs(t, err, numerr.ErrShape)
}

func TestMedianIntegerMidpoint(t *testing.T) {
	assert.Equal(t, int8(110), must.M1(Median(varray.FromFlat([]int8{100, 120}))).Value())
	assert.Equal(t, int8(-110), must.M1(Median(varray.FromFlat([]int8{-100, -120}))).Value())
	assert.Equal(t, int8(0), must.M1(Median(varray.FromFlat([]int8{-128, 127}))).Value())
	assert.Equal(t, uint8(225), must.M1(Median(varray.FromFlat([]uint8{200, 250}))).Value())
	assert.Equal(t, uint8(254), must.M1(Median(varray.FromFlat([]uint8{255, 254}))).Value())
	assert.Equal(t, int64(1<<62), must.M1(Median(varray.FromFlat([]int64{1 << 62, 1 << 62}))).Value())
	assert.Equal(t, int64(math.MaxInt64-1), must.M1(Median(varray.FromFlat([]int64{math.MaxInt64, math.MaxInt64 - 1}))).Value())
	assert.Equal(t, uint64(math.MaxUint64-1), must.M1(Median(varray.FromFlat([]uint64{math.MaxUint64, math.MaxUint64 - 1}))).Value())

	// Odd sums truncate toward zero.
	assert.Equal(t, int32(0), must.M1(Median(varray.FromFlat([]int32{-3, 4}))).Value())
	assert.Equal(t, int32(-2), must.M1(Median(varray.FromFlat([]int32{-3, -2}))).Value())

	a := must.M1(varray.FromValue([][]int16{{30000, 32000}, {1, 3}}))
	assert.Equal(t, []int16{31000, 2}, must.M1(MedianAxes(varray.Allocate(), a, []int{1})).Value())
}

func TestMinMax(t *testing.T) {
	a := must.M1(varray.FromValue([][]float32{{1, -2}, {3, 0.5}}))
	assert.Equal(t, float32(-2), must.M1(Min(a)).Value())
	assert.Equal(t, float32(3), must.M1(Max(a)).Value())
	assert.Equal(t, []float32{-2, 0.5}, must.M1(MinAxes(varray.Allocate(), a, []int{1})).Value())
	assert.Equal(t, []float32{3, 0.5}, must.M1(MaxAxes(varray.Allocate(), a, []int{0})).Value())

	bools := varray.FromFlat([]bool{true, false, true, true}, 2, 2)
	assert.Equal(t, false, must.M1(Min(bools)).Value())
	assert.Equal(t, true, must.M1(Max(bools)).Value())
	assert.Equal(t, []bool{false, true}, must.M1(MinAxes(varray.Allocate(), bools, []int{1})).Value())

	unsigned := varray.FromFlat([]uint64{math.MaxUint64, 7})
	assert.Equal(t, uint64(7), must.M1(Min(unsigned)).Value())

	withNaN := varray.FromFlat([]float64{1, math.NaN(), 3})
	assert.True(t, math.IsNaN(must.M1(Max(withNaN)).Value().(float64)))

	_, err := Min(varray.New(dtypes.Int8, 0))
	require.ErrorIs(t, err, numerr.ErrShape)
	_, err = MaxAxes(varray.Allocate(), varray.New(dtypes.Bool, 2, 0), []int{1})
	require.ErrorIs(t, err, numerr.ErrShape)
}

func TestNorms(t *testing.T) {
	a := varray.FromFlat([]int32{3, 0, -4})
	assert.Equal(t, 2.0, must.M1(NormL0(a)).Value())
	assert.Equal(t, 7.0, must.M1(NormL1(a)).Value())
	assert.InDelta(t, 5.0, must.M1(NormL2(a)).Value(), 1e-12)
	assert.Equal(t, 4.0, must.M1(NormLInf(a)).Value())
	assert.Equal(t, 0.0, must.M1(NormLInf(varray.New(dtypes.Float64, 0))).Value())

	b := varray.FromFlat([]float32{3, 4, -6, 8}, 2, 2)
	assert.InDeltaSlice(t, []float32{5, 10}, must.M1(NormL2Axes(varray.Allocate(), b, []int{1})).Value(), 1e-6)
	assert.Equal(t, []float32{6, 8}, must.M1(NormLInfAxes(varray.Allocate(), b, []int{0})).Value())
	assert.Equal(t, []float32{9, 12}, must.M1(NormL1Axes(varray.Allocate(), b, []int{0})).Value())
	assert.Equal(t, []float32{2, 2}, must.M1(NormL0Axes(varray.Allocate(), b, []int{0})).Value())
}

func TestCountNonzero(t *testing.T) {
	a := varray.FromFlat([]float64{0, 1.5, 0, -2, 3, 0}, 2, 3)
	count := must.M1(CountNonzero(a))
	assert.Equal(t, dtypes.Int64, count.DType())
	assert.Equal(t, int64(3), count.Value())
	assert.Equal(t, []int64{1, 2, 0}, must.M1(CountNonzeroAxes(varray.Allocate(), a, []int{0})).Value())
	assert.Equal(t, []int64{1, 2}, must.M1(CountNonzeroAxes(varray.Allocate(), a, []int{1})).Value())

	bools := varray.FromFlat([]bool{true, true, false})
	assert.Equal(t, int64(2), must.M1(CountNonzero(bools)).Value())
}

func TestAnyAll(t *testing.T) {
	a := varray.FromFlat([]int32{0, 0, 1, 2}, 2, 2)
	assert.Equal(t, true, must.M1(Any(a)).Value())
	assert.Equal(t, false, must.M1(All(a)).Value())
	assert.Equal(t, []bool{false, true}, must.M1(AnyAxes(varray.Allocate(), a, []int{1})).Value())
	assert.Equal(t, []bool{false, true}, must.M1(AllAxes(varray.Allocate(), a, []int{1})).Value())

	empty := varray.New(dtypes.Float32, 0)
	assert.Equal(t, false, must.M1(Any(empty)).Value())
	assert.Equal(t, true, must.M1(All(empty)).Value())
	assert.Equal(t, true, must.M1(All(varray.FromFlat([]bool{true, true}))).Value())
}

func TestReduceDot(t *testing.T) {
	a := varray.FromFlat([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := varray.FromFlat([]float64{1, 0, -1})
	assert.Equal(t, -4.0, must.M1(ReduceDot(a, b)).Value())
	assert.Equal(t, []float64{-2, -2}, must.M1(ReduceDotAxes(varray.Allocate(), a, b, []int{1})).Value())
	assert.Equal(t, []float64{5, 0, -9}, must.M1(ReduceDotAxes(varray.Allocate(), a, b, []int{0})).Value())

	// Mixed dtypes are promoted.
	ints := varray.FromFlat([]int16{1, 2, 3})
	result := must.M1(ReduceDot(ints, varray.FromFlat([]uint8{2, 2, 2})))
	assert.Equal(t, dtypes.Int16, result.DType())
	assert.Equal(t, int16(12), result.Value())
	assert.Equal(t, float32(3), must.M1(ReduceDot(ints, varray.FromScalar(float32(0.5)))).Value())

	_, err := ReduceDot(a, varray.FromFlat([]float64{1, 2}))
	require.ErrorIs(t, err, numerr.ErrBroadcast)
}

func TestReductionsDisabled(t *testing.T) {
	defer config.Update(func(c *config.Config) { c.DisableReductionFunctions = true })()
	a := varray.FromFlat([]float64{1, 2})
	wholeArray := []func(*varray.VArray) (varray.VScalar, error){
		Sum, Prod, Mean, Var, Std, Median, Min, Max, NormL0, NormL1, NormL2, NormLInf, CountNonzero, Any, All,
	}
	for _, fn := range wholeArray {
		_, err := fn(a)
		require.ErrorIs(t, err, numerr.ErrFeatureDisabled)
	}
	withAxes := []func(varray.Target, *varray.VArray, []int) (*varray.VArray, error){
		SumAxes, ProdAxes, MeanAxes, VarAxes, StdAxes, MedianAxes, MinAxes, MaxAxes,
		NormL0Axes, NormL1Axes, NormL2Axes, NormLInfAxes, CountNonzeroAxes, AnyAxes, AllAxes,
	}
	for _, fn := range withAxes {
		_, err := fn(varray.Allocate(), a, []int{0})
		require.ErrorIs(t, err, numerr.ErrFeatureDisabled)
	}
	_, err := ReduceDot(a, a)
	require.ErrorIs(t, err, numerr.ErrFeatureDisabled)
}
