package varray

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
)

// summaryEdgeItems is the number of elements printed at each end of an axis that is too long.
const summaryEdgeItems = 3

// String implements fmt.Stringer, with a default precision.
func (a *VArray) String() string {
	if a == nil {
		return "<nil>"
	}
	return a.Summary(6)
}

// Summary returns a multi-line summary of the array's content, inspired by numpy output.
// Axes longer than 6 elements are abbreviated with "...". Floats are printed with the given precision.
func (a *VArray) Summary(precision int) string {
	var buf bytes.Buffer
	w := func(format string, args ...any) { _, _ = fmt.Fprintf(&buf, format, args...) }
	w("(%s)%v", a.dtype, a.shape)
	if a.Size() == 0 {
		return buf.String()
	}
	values := reflect.ValueOf(Gather(a, a.dtype))
	wValue := func(v reflect.Value) {
		switch v.Kind() {
		case reflect.Float32, reflect.Float64:
			w("%.*g", precision, v.Float())
		default:
			w("%v", v.Interface())
		}
	}
	if a.Rank() == 0 {
		w("(")
		wValue(values.Index(0))
		w(")")
		return buf.String()
	}

	strides := a.ShapeWithDType().Strides()
	var printAxis func(axis, index, indent int)
	printAxis = func(axis, index, indent int) {
		dim := a.shape[axis]
		positions := make([]int, 0, dim)
		abbreviated := dim > 2*summaryEdgeItems
		for ii := range dim {
			if abbreviated && ii >= summaryEdgeItems && ii < dim-summaryEdgeItems {
				continue
			}
			positions = append(positions, ii)
		}
		w("{")
		last := axis == a.Rank()-1
		separator := ", "
		if !last {
			separator = ",\n" + strings.Repeat(" ", indent+1)
		}
		for jj, ii := range positions {
			if jj > 0 {
				w("%s", separator)
				if abbreviated && ii == dim-summaryEdgeItems {
					w("...%s", separator)
				}
			}
			if last {
				wValue(values.Index(index + ii))
			} else {
				printAxis(axis+1, index+ii*strides[axis], indent+1)
			}
		}
		w("}")
	}
	if a.Rank() > 1 {
		w("\n")
	}
	printAxis(0, 0, 0)
	return buf.String()
}
