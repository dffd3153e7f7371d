package dtypes

// This file holds the promotion tables: rules that map the dtypes of the operands of an operation to
// the dtype used for the computation, and the dtype of its result.
//
// They are total over the closed set of dtypes. Passing InvalidDType is a bug in the caller, and
// it panics.

// signedByBits indexes the signed integer dtypes by their number of bits.
var signedByBits = map[int]DType{8: Int8, 16: Int16, 32: Int32, 64: Int64}

func mustBeValid(dtype DType) {
	if !dtype.IsValid() {
		panicf("invalid dtype %s used for promotion", dtype)
	}
}

// CommonDType returns the dtype both a and b can be converted to for a computation.
//
// Rules:
//
//   - A dtype with itself is itself; Bool with anything else is the other dtype.
//   - Floats win over integers, and the widest float present is used.
//   - Integers of the same signedness promote to the widest.
//   - Signed with unsigned promote to the smallest signed integer that holds both, and
//     Uint64 with any signed integer promotes to Float64.
func CommonDType(a, b DType) DType {
	mustBeValid(a)
	mustBeValid(b)
	if a == b {
		return a
	}
	if a == Bool {
		return b
	}
	if b == Bool {
		return a
	}
	if a.IsFloat() || b.IsFloat() {
		if a == Float64 || b == Float64 {
			return Float64
		}
		return Float32
	}
	if a.IsSigned() == b.IsSigned() {
		if a.Bits() >= b.Bits() {
			return a
		}
		return b
	}
	signed, unsigned := a, b
	if signed.IsUnsigned() {
		signed, unsigned = unsigned, signed
	}
	if unsigned == Uint64 {
		return Float64
	}
	return signedByBits[max(signed.Bits(), 2*unsigned.Bits())]
}

// NumericDType returns dtype itself if it is numeric, and Int8 (the smallest numeric dtype) for Bool.
func NumericDType(dtype DType) DType {
	mustBeValid(dtype)
	if dtype == Bool {
		return Int8
	}
	return dtype
}

// AtLeastInt32 promotes integer dtypes narrower than 32 bits (and Bool) to the 32 bits integer of
// the same signedness. Other dtypes are returned unchanged.
func AtLeastInt32(dtype DType) DType {
	mustBeValid(dtype)
	switch dtype {
	case Bool, Int8, Int16:
		return Int32
	case Uint8, Uint16:
		return Uint32
	}
	return dtype
}

// FloatOrDefault returns dtype if it is a float, and defaultDType otherwise.
func FloatOrDefault(dtype, defaultDType DType) DType {
	mustBeValid(dtype)
	if dtype.IsFloat() {
		return dtype
	}
	return defaultDType
}

// Promotion is a rule that maps the dtypes of the operands of an operation to the dtype in which
// the operation is computed, and the dtype of its result.
//
// The operand dtypes are first combined with CommonDType, then mapped by the rule's compute
// function. The result dtype is either fixed (e.g. Bool for comparisons) or the compute dtype.
type Promotion struct {
	// Name of the rule, for error messages.
	Name string

	compute func(common DType) DType
	result  DType
}

// Promote returns the compute and result dtypes for the given operand dtypes.
// It panics if no dtype is given, or if any of them is invalid.
func (p Promotion) Promote(inputs ...DType) (compute, result DType) {
	if len(inputs) == 0 {
		panicf("promotion %q requires at least one dtype", p.Name)
	}
	common := inputs[0]
	mustBeValid(common)
	for _, dtype := range inputs[1:] {
		common = CommonDType(common, dtype)
	}
	compute = p.compute(common)
	result = p.result
	if result == InvalidDType {
		result = compute
	}
	return
}

// Result returns only the result dtype of Promote.
func (p Promotion) Result(inputs ...DType) DType {
	_, result := p.Promote(inputs...)
	return result
}

func identity(dtype DType) DType { return dtype }

var (
	// CommonInSameOut computes in the common dtype and returns it. Used by min/max.
	CommonInSameOut = Promotion{Name: "common_in_same_out", compute: identity}

	// CommonInBoolOut computes in the common dtype and returns Bool. Used by equality comparisons.
	CommonInBoolOut = Promotion{Name: "common_in_bool_out", compute: identity, result: Bool}

	// NumInSameOut computes in the common numeric dtype and returns it. Used by arithmetic, sum and median.
	NumInSameOut = Promotion{Name: "num_in_same_out", compute: NumericDType}

	// NumInBoolOut computes in the common numeric dtype and returns Bool. Used by ordering comparisons.
	NumInBoolOut = Promotion{Name: "num_in_bool_out", compute: NumericDType, result: Bool}

	// NumAtLeastInt32InSameOut computes in the common dtype promoted to at least 32 bits. Used by prod.
	NumAtLeastInt32InSameOut = Promotion{Name: "num_at_least_int32_in_same_out", compute: AtLeastInt32}

	// FloatOrDefaultInSameOut computes in the float dtype of the input, or Float64 for
	// non-float inputs. Used by mean, var, std, norms and trigonometric functions.
	FloatOrDefaultInSameOut = Promotion{
		Name:    "float_or_default_in_same_out",
		compute: func(dtype DType) DType { return FloatOrDefault(dtype, Float64) },
	}

	// AnyInBoolOut computes in the input dtype and returns Bool. Used by any/all.
	AnyInBoolOut = Promotion{Name: "any_in_bool_out", compute: identity, result: Bool}

	// CountInInt64Out computes and returns Int64. Used by count_nonzero.
	CountInInt64Out = Promotion{Name: "count_in_int64_out", compute: func(DType) DType { return Int64 }}
)
