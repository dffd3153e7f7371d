package dtypes

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOfNames(t *testing.T) {
	if MapOfNames["Float32"] != Float32 {
		t.Fatalf("expected MapOfNames[\"Float32\"] to be Float32, got %v", MapOfNames["Float32"])
	}
	if MapOfNames["float32"] != Float32 {
		t.Fatalf("expected MapOfNames[\"float32\"] to be Float32, got %v", MapOfNames["float32"])
	}
	for _, dtype := range All {
		require.Equal(t, dtype, MapOfNames[dtype.String()])
		if dtype != InvalidDType {
			require.Equal(t, dtype, MapOfNames[dtype.GoType().Name()])
		}
	}
	_, found := MapOfNames["F64"]
	assert.False(t, found)
}

func TestFromGoType(t *testing.T) {
	for _, dtype := range All {
		require.Equal(t, dtype, FromGoType(dtype.GoType()), "dtype %s", dtype)
	}
	assert.Equal(t, InvalidDType, FromGoType(reflect.TypeOf("string")))
	assert.Equal(t, InvalidDType, FromAny(nil))
	assert.Equal(t, Float32, FromAny(float32(1)))
	if strconv.IntSize == 64 {
		assert.Equal(t, Int64, FromAny(1))
		assert.Equal(t, Uint64, FromAny(uint(1)))
	}
	assert.Equal(t, Uint16, FromGenericsType[uint16]())
	assert.Equal(t, Bool, FromGenericsType[bool]())
}

func TestSizes(t *testing.T) {
	assert.Equal(t, 1, Bool.Size())
	assert.Equal(t, 16, Int16.Bits())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, "uint32", Uint32.GoType().Name())
	assert.Equal(t, "DType(99)", DType(99).String())
	require.Panics(t, func() { _ = InvalidDType.GoType() })
}
