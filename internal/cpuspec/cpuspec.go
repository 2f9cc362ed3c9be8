// Package cpuspec inspects the host CPU to pick a sensible thread count for
// TFLite inference.
package cpuspec

import (
	"regexp"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// CPUSpec contains information about CPU specifications
type CPUSpec struct {
	BrandName        string
	PerformanceCores int
}

// GetCPUSpec returns CPU specifications including the number of performance cores
func GetCPUSpec() CPUSpec {
	brandName := cpuid.CPU.BrandName

	return CPUSpec{
		BrandName:        brandName,
		PerformanceCores: determinePerformanceCores(brandName),
	}
}

// GetOptimalThreadCount returns the recommended number of threads for inference
func (c CPUSpec) GetOptimalThreadCount() int {
	// Get actual available CPU count (important for VMs)
	availableCPUs := runtime.NumCPU()

	// For hybrid architectures (with P and E cores), we primarily want to use Performance cores
	if c.PerformanceCores > 0 {
		recommendedThreads := c.PerformanceCores
		if recommendedThreads > availableCPUs {
			return availableCPUs
		}
		return recommendedThreads
	}

	// Fallback to using all logical cores if we can't determine P-cores
	return cpuid.CPU.LogicalCores
}

var intelHybridRegex = regexp.MustCompile(`intel.*core.*i[3579]-1([2-9])\d{3}`)

// determinePerformanceCores estimates the number of performance cores for
// known hybrid architectures. Returns 0 when the count cannot be determined,
// in which case all logical cores are used.
func determinePerformanceCores(brandName string) int {
	brandName = strings.ToLower(brandName)

	// Intel 12th gen and later desktop/mobile hybrid parts. The exact P-core
	// count varies per SKU; physical core info from cpuid is the closest
	// portable approximation.
	if intelHybridRegex.MatchString(brandName) {
		if cpuid.CPU.PhysicalCores > 0 && cpuid.CPU.PhysicalCores < cpuid.CPU.LogicalCores {
			// Hyperthreaded P-cores plus non-threaded E-cores: the difference
			// between logical and physical counts equals the P-core count.
			return cpuid.CPU.LogicalCores - cpuid.CPU.PhysicalCores
		}
		return 0
	}

	// Apple Silicon exposes performance cores directly through sysctl, which
	// cpuid does not surface; use physical cores as a stand-in.
	if strings.Contains(brandName, "apple") {
		return cpuid.CPU.PhysicalCores
	}

	return 0
}
