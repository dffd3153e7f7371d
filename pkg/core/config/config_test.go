package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestParse(t *testing.T) {
	c, err := Parse("disable_reduction_functions, disable_comparison_functions=false,,DISABLE_SCALAR_OPTIMIZATION=1")
	require.NoError(t, err)
	assert.True(t, c.DisableReductionFunctions)
	assert.False(t, c.DisableComparisonFunctions)
	assert.True(t, c.DisableScalarOptimization)
	assert.Equal(t, HasNEON(), c.DisableNeonScalarOptimization)

	c, err = Parse("disable_neon_scalar_optimization=false")
	require.NoError(t, err)
	assert.False(t, c.DisableNeonScalarOptimization)

	c, err = Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("disable_everything,disable_reduction_functions=maybe,disable_scalar_optimization")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(errorsCause(err)), 2)
	assert.Contains(t, err.Error(), "disable_everything")
	assert.Contains(t, err.Error(), "disable_reduction_functions")
}

// errorsCause unwraps the message added by Parse.
func errorsCause(err error) error {
	type causer interface{ Cause() error }
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	return err
}

func TestStringRoundTrip(t *testing.T) {
	c := Config{DisableReductionFunctions: true, DisableNeonScalarOptimization: true}
	assert.Equal(t, "disable_reduction_functions,disable_neon_scalar_optimization", c.String())
	parsed, err := Parse(c.String())
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestSetAndRestore(t *testing.T) {
	original := Get()
	restore := Set(Config{DisableComparisonFunctions: true})
	assert.True(t, Get().DisableComparisonFunctions)

	restoreInner := Update(func(c *Config) { c.DisableReductionFunctions = true })
	assert.True(t, Get().DisableReductionFunctions)
	assert.True(t, Get().DisableComparisonFunctions)
	restoreInner()
	assert.False(t, Get().DisableReductionFunctions)

	restore()
	assert.Equal(t, original, Get())
}

func TestScalarFastPath(t *testing.T) {
	defer Set(Config{})()
	assert.True(t, OrderingScalarFastPath())
	assert.True(t, EqualityScalarFastPath())

	Set(Config{DisableNeonScalarOptimization: true})
	assert.True(t, OrderingScalarFastPath())
	assert.False(t, EqualityScalarFastPath())

	Set(Config{DisableScalarOptimization: true})
	assert.False(t, OrderingScalarFastPath())
	assert.False(t, EqualityScalarFastPath())
}
