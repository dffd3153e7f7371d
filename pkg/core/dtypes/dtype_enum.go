package dtypes

import "fmt"

// DType is an enum that represents the data type of an array or a scalar.
//
// The set is closed: the dispatch tables of the engine are sized by NumDTypes, and every
// dispatch site switches over all of them. The numeric order of the constants is used only
// to size tables, promotion is defined by CommonDType.
type DType int32

const (
	// InvalidDType is the zero value, and it is used as "no dtype" or "infer from input".
	InvalidDType DType = 0

	// Bool holds two-state booleans.
	Bool DType = 1

	// Int8 and the following hold signed integral values of fixed width.
	Int8  DType = 2
	Int16 DType = 3
	Int32 DType = 4
	Int64 DType = 5

	// Uint8 and the following hold unsigned integral values of fixed width.
	Uint8  DType = 6
	Uint16 DType = 7
	Uint32 DType = 8
	Uint64 DType = 9

	// Float32 and Float64 hold IEEE-754 floating-point values.
	Float32 DType = 10
	Float64 DType = 11
)

// NumDTypes is the size of tables indexed by DType, including InvalidDType.
const NumDTypes = 12

// All lists the valid dtypes, in enum order.
var All = []DType{Bool, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64, Float32, Float64}

var dtypeNames = [NumDTypes]string{
	InvalidDType: "InvalidDType",
	Bool:         "Bool",
	Int8:         "Int8",
	Int16:        "Int16",
	Int32:        "Int32",
	Int64:        "Int64",
	Uint8:        "Uint8",
	Uint16:       "Uint16",
	Uint32:       "Uint32",
	Uint64:       "Uint64",
	Float32:      "Float32",
	Float64:      "Float64",
}

// String implements fmt.Stringer.
func (dtype DType) String() string {
	if dtype < 0 || dtype >= NumDTypes {
		return fmt.Sprintf("DType(%d)", int32(dtype))
	}
	return dtypeNames[dtype]
}

// IsValid returns whether dtype is one of the closed set of dtypes (InvalidDType excluded).
func (dtype DType) IsValid() bool {
	return dtype > InvalidDType && dtype < NumDTypes
}

// MapOfNames to their dtypes. It is later initialized to include the lower-case version of the names,
// which are also the names of the Go storage types.
var MapOfNames = map[string]DType{
	"InvalidDType": InvalidDType,
	"Bool":         Bool,
	"Int8":         Int8,
	"Int16":        Int16,
	"Int32":        Int32,
	"Int64":        Int64,
	"Uint8":        Uint8,
	"Uint16":       Uint16,
	"Uint32":       Uint32,
	"Uint64":       Uint64,
	"Float32":      Float32,
	"Float64":      Float64,
}
