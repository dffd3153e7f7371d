// Package numerr defines the error kinds raised by numdot operations.
//
// Every error returned by the public API wraps exactly one of the sentinel kinds below, so callers
// can test for it with errors.Is:
//
//	if errors.Is(err, numerr.ErrBroadcast) { ... }
//
// Internally, deep kernels raise errors with Panicf (following the github.com/gomlx/exceptions
// idiom), and the exported entry points convert them back to returned errors with Catch.
package numerr

import (
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

var (
	// ErrType is raised on dtype mismatches, e.g. writing into a target of the wrong dtype,
	// or an operation that has no kernel for the resolved dtype.
	ErrType = errors.New("TypeError")

	// ErrShape is raised on dimension mismatches, invalid axes or extracting a scalar from a non-scalar array.
	ErrShape = errors.New("ShapeError")

	// ErrBroadcast is raised when two shapes can't be broadcast together.
	ErrBroadcast = errors.New("BroadcastError")

	// ErrIndexOutOfRange is raised when an index is outside the axis bounds after negative index resolution.
	ErrIndexOutOfRange = errors.New("IndexOutOfRange")

	// ErrTooManySlices is raised when a slice specification addresses more axes than the array has.
	ErrTooManySlices = errors.New("TooManySlices")

	// ErrTooManyEllipsis is raised when a slice specification holds more than one ellipsis.
	ErrTooManyEllipsis = errors.New("TooManyEllipsis")

	// ErrFeatureDisabled is raised by operation families disabled by configuration.
	ErrFeatureDisabled = errors.New("FeatureDisabled")
)

// Errorf returns an error of the given kind with a formatted message.
// The returned error carries a stack trace (see github.com/pkg/errors).
func Errorf(kind error, format string, args ...any) error {
	return errors.Wrapf(kind, format, args...)
}

// Panicf panics with an error of the given kind. It is recovered by Catch.
func Panicf(kind error, format string, args ...any) {
	panic(Errorf(kind, format, args...))
}

// Catch runs fn and returns any error it panicked with.
// Panics with values other than errors are re-thrown.
func Catch(fn func()) error {
	return exceptions.TryCatch[error](fn)
}

// Disabled returns the FeatureDisabled error for the given family of functions and
// configuration key.
func Disabled(family, key string) error {
	return Errorf(ErrFeatureDisabled, "%s functions explicitly disabled; reconfigure without %q to enable them", family, key)
}
