package parallel

import "fmt"
import "runtime"

import "github.com/klauspost/cpuid/v2"

// Workers returns the default number of loader goroutines: one per logical
// core reported by the CPU, falling back to the scheduler's view when the
// CPU could not be identified.
func Workers() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Host describes the machine for the start-of-run banner.
func Host() string {
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = runtime.GOARCH
	}
	return fmt.Sprintf("%s (%d physical / %d logical cores, avx2=%v)",
		brand, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores, cpuid.CPU.Supports(cpuid.AVX2))
}
