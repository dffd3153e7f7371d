package config

import (
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sys/cpu"
	"k8s.io/klog/v2"
)

// NoSIMDEnvVar disables the detection of SIMD capabilities when set to a true value.
const NoSIMDEnvVar = "NUMDOT_NO_SIMD"

// hasNEON is resolved once at start up.
var hasNEON bool

func init() {
	hasNEON = detectNEON()
	klog.V(1).Infof("numdot: GOARCH=%s, NEON=%v", runtime.GOARCH, hasNEON)

	c := Default()
	if envConfig, found := os.LookupEnv(ConfigEnvVar); found {
		parsed, err := Parse(envConfig)
		if err != nil {
			klog.Warningf("ignoring invalid $%s: %v", ConfigEnvVar, err)
		} else {
			c = parsed
		}
	}
	current.Store(&c)
}

// noSIMDEnv checks if the NUMDOT_NO_SIMD environment variable is set.
func noSIMDEnv() bool {
	val := os.Getenv(NoSIMDEnvVar)
	if val == "" {
		return false
	}
	// Any non-empty value is considered true, but also parse as bool
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

func detectNEON() bool {
	if noSIMDEnv() {
		return false
	}
	switch runtime.GOARCH {
	case "arm64":
		// ARMv8-A always has ASIMD (NEON), we check it for consistency.
		return cpu.ARM64.HasASIMD
	case "arm":
		return cpu.ARM.HasNEON
	default:
		return false
	}
}

// HasNEON returns whether the process runs on hardware with ARM NEON SIMD instructions.
//
// On such hardware the scalar fast path of the equality family is disabled by default
// (see Config.DisableNeonScalarOptimization), and operations transparently use the general path.
func HasNEON() bool {
	return hasNEON
}
