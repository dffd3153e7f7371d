// Package config holds the process-wide flags that enable or disable families of numdot operations.
//
// The default configuration is read at start up from the environment variable NUMDOT_CONFIG, a
// comma-separated list of keys, each optionally followed by "=true" or "=false". Example:
//
//	NUMDOT_CONFIG="disable_reduction_functions,disable_scalar_optimization=false"
//
// The configuration can be changed at any time with Set (mostly used by tests).
package config

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"k8s.io/klog/v2"
)

// ConfigEnvVar is the environment variable with the default configuration.
const ConfigEnvVar = "NUMDOT_CONFIG"

// Recognized configuration keys.
const (
	KeyDisableReductionFunctions     = "disable_reduction_functions"
	KeyDisableComparisonFunctions    = "disable_comparison_functions"
	KeyDisableScalarOptimization     = "disable_scalar_optimization"
	KeyDisableNeonScalarOptimization = "disable_neon_scalar_optimization"
)

// Config enumerates the flags recognized by numdot.
type Config struct {
	// DisableReductionFunctions makes every reduction raise FeatureDisabled.
	DisableReductionFunctions bool

	// DisableComparisonFunctions makes every comparison raise FeatureDisabled.
	DisableComparisonFunctions bool

	// DisableScalarOptimization forces the general broadcasting path even for zero-dimensional operands.
	// It doesn't change results, only performance.
	DisableScalarOptimization bool

	// DisableNeonScalarOptimization disables the scalar fast path of the equality family (equal, not_equal).
	// It defaults to true on NEON hardware, see HasNEON.
	DisableNeonScalarOptimization bool
}

// fields maps each key to the flag it sets.
func (c *Config) fields() map[string]*bool {
	return map[string]*bool{
		KeyDisableReductionFunctions:     &c.DisableReductionFunctions,
		KeyDisableComparisonFunctions:    &c.DisableComparisonFunctions,
		KeyDisableScalarOptimization:     &c.DisableScalarOptimization,
		KeyDisableNeonScalarOptimization: &c.DisableNeonScalarOptimization,
	}
}

// Default returns the configuration with no environment overrides: everything enabled, except
// the NEON scalar fast path on NEON hardware.
func Default() Config {
	return Config{DisableNeonScalarOptimization: HasNEON()}
}

// Parse a configuration string on top of Default.
//
// The format is a comma-separated list of keys, each optionally followed by "=<bool>".
// Empty entries are ignored. All invalid entries are reported together in the returned error.
func Parse(config string) (Config, error) {
	c := Default()
	fields := c.fields()
	var err error
	for _, entry := range strings.Split(config, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		key, valueStr, hasValue := strings.Cut(entry, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		field, found := fields[key]
		if !found {
			err = multierr.Append(err, errors.Errorf("unknown configuration key %q", key))
			continue
		}
		value := true
		if hasValue {
			parsed, parseErr := strconv.ParseBool(strings.TrimSpace(valueStr))
			if parseErr != nil {
				err = multierr.Append(err, errors.Wrapf(parseErr, "invalid value for configuration key %q", key))
				continue
			}
			value = parsed
		}
		*field = value
	}
	if err != nil {
		return c, errors.WithMessagef(err, "parsing numdot configuration %q", config)
	}
	return c, nil
}

// String returns the configuration in the format accepted by Parse, listing only the flags set.
func (c Config) String() string {
	var parts []string
	for _, key := range []string{KeyDisableReductionFunctions, KeyDisableComparisonFunctions,
		KeyDisableScalarOptimization, KeyDisableNeonScalarOptimization} {
		if *c.fields()[key] {
			parts = append(parts, key)
		}
	}
	return strings.Join(parts, ",")
}

var current atomic.Pointer[Config]

// Get returns the current configuration.
func Get() Config {
	return *current.Load()
}

// Set the current configuration. It returns a function that restores the previous one,
// convenient to use with defer in tests.
func Set(c Config) (restore func()) {
	previous := current.Swap(&c)
	klog.V(1).Infof("numdot configuration set to %q", c)
	return func() { current.Store(previous) }
}

// Update applies fn to a copy of the current configuration and sets it.
// It returns a function that restores the previous one.
func Update(fn func(c *Config)) (restore func()) {
	c := Get()
	fn(&c)
	return Set(c)
}

// EqualityScalarFastPath returns whether equal and not_equal may use the array-vs-scalar kernels.
func EqualityScalarFastPath() bool {
	c := Get()
	return !c.DisableScalarOptimization && !c.DisableNeonScalarOptimization
}

// OrderingScalarFastPath returns whether the ordering comparisons (greater, less, ...) may use
// the array-vs-scalar kernels.
func OrderingScalarFastPath() bool {
	return !Get().DisableScalarOptimization
}
