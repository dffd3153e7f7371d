package varray

import (
	"github.com/numdot/numdot/pkg/core/dtypes"
	"github.com/numdot/numdot/pkg/core/numerr"
)

// DTypeDispatcher is a table of functions of type F, one per dtype.
//
// Lookups are a constant time index by the dtype tag. The tables are filled at initialization
// (usually by generic registration functions instantiated once per Go storage type), and read-only
// afterward.
type DTypeDispatcher[F any] struct {
	Name       string
	fnMap      [dtypes.NumDTypes]F
	registered [dtypes.NumDTypes]bool
}

// NewDTypeDispatcher creates a new dispatcher for a class of functions.
func NewDTypeDispatcher[F any](name string) *DTypeDispatcher[F] {
	return &DTypeDispatcher[F]{Name: name}
}

// Register a function to handle a specific dtype.
// This overwrites any previous setting for the same dtype.
func (d *DTypeDispatcher[F]) Register(dtype dtypes.DType, fn F) {
	if !dtype.IsValid() {
		numerr.Panicf(numerr.ErrType, "cannot register invalid dtype %s for %s", dtype, d.Name)
	}
	d.fnMap[dtype] = fn
	d.registered[dtype] = true
}

// RegisterIfNotSet a function to handle a specific dtype.
func (d *DTypeDispatcher[F]) RegisterIfNotSet(dtype dtypes.DType, fn F) {
	if d.Has(dtype) {
		return
	}
	d.Register(dtype, fn)
}

// Has returns whether there is a function registered for dtype.
func (d *DTypeDispatcher[F]) Has(dtype dtypes.DType) bool {
	return dtype.IsValid() && d.registered[dtype]
}

// Get returns the function registered for dtype.
// It panics with a TypeError if there is none.
func (d *DTypeDispatcher[F]) Get(dtype dtypes.DType) F {
	if !d.Has(dtype) {
		numerr.Panicf(numerr.ErrType, "dtype %s not supported by %s", dtype, d.Name)
	}
	return d.fnMap[dtype]
}
