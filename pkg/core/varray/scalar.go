package varray

import (
	"fmt"
	"reflect"

	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
)

// VScalar holds exactly one value of one dtype. It is the result of whole-array reductions and of
// VArray.ToScalar.
type VScalar struct {
	dtype dtypes.DType
	value any
}

// NewScalar creates a VScalar from a Go value of one of the supported types.
func NewScalar[T dtypes.Supported](value T) VScalar {
	return VScalar{dtype: dtypes.FromGenericsType[T](), value: value}
}

// ScalarFromAny creates a VScalar from a Go scalar. Go's int and uint are stored as Int64/Uint64
// (or their 32 bits versions, depending on the platform).
// It returns a TypeError for unsupported types.
func ScalarFromAny(value any) (VScalar, error) {
	if s, ok := value.(VScalar); ok {
		return s, nil
	}
	dtype := dtypes.FromAny(value)
	if dtype == dtypes.InvalidDType {
		return VScalar{}, numerr.Errorf(numerr.ErrType, "cannot use value %v of type %T as a scalar", value, value)
	}
	// Normalizes int/uint to their sized version.
	return VScalar{dtype: dtype, value: reflect.ValueOf(value).Convert(dtype.GoType()).Interface()}, nil
}

// DType of the scalar. It is InvalidDType for the zero VScalar.
func (s VScalar) DType() dtypes.DType { return s.dtype }

// Value returns the Go value of the scalar: a bool, int8, ..., float64.
func (s VScalar) Value() any { return s.value }

// IsValid returns whether the scalar holds a value.
func (s VScalar) IsValid() bool { return s.dtype.IsValid() }

// AsArray returns a zero-dimension array holding the scalar.
func (s VScalar) AsArray() *VArray {
	return newContiguous(s.dtype, storageOps.Get(s.dtype).single(s.value), nil)
}

// AsDType returns the scalar converted to dtype. Casting to Bool yields value != 0.
func (s VScalar) AsDType(dtype dtypes.DType) VScalar {
	if dtype == s.dtype {
		return s
	}
	flat := castFlat(storageOps.Get(s.dtype).single(s.value), s.dtype, dtype)
	return VScalar{dtype: dtype, value: storageOps.Get(dtype).element(flat, 0)}
}

// String implements fmt.Stringer.
func (s VScalar) String() string {
	if !s.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%v", s.value)
}

// ScalarAs returns the value of the scalar converted to T.
func ScalarAs[T dtypes.Supported](s VScalar) T {
	return s.AsDType(dtypes.FromGenericsType[T]()).value.(T)
}
