// Package probe samples the capabilities of the host machine before an
// analysis run. It detects CPU core count and memory via platform-specific
// syscalls, and measures empirical disk latency with a small write/read
// micro-benchmark. Probing never fails a run: every facet degrades to a
// conservative default when detection is not possible.
package probe

import (
	"runtime"

	"github.com/movewise/movewise/pkg/movewise/logging"
)

// DiskTier classifies the empirical latency of the disk backing the
// temporary directory.
type DiskTier int

// Disk speed tiers from slowest to fastest.
const (
	DiskSlow DiskTier = iota
	DiskMedium
	DiskFast
)

// String returns the string representation of the tier.
func (t DiskTier) String() string {
	switch t {
	case DiskSlow:
		return "slow"
	case DiskMedium:
		return "medium"
	case DiskFast:
		return "fast"
	default:
		return "unknown"
	}
}

// DeviceSpecs is an immutable snapshot of the host's capabilities, taken
// once per analysis run.
type DeviceSpecs struct {
	// TotalMemoryGB is the total physical RAM in gibibytes.
	TotalMemoryGB float64

	// AvailableMemoryGB is the available RAM in gibibytes. This may be an
	// estimate based on platform heuristics.
	AvailableMemoryGB float64

	// CPUCores is the number of logical CPU cores.
	CPUCores int

	// DiskSpeedTier is the measured disk latency class.
	DiskSpeedTier DiskTier
}

// Fallback memory values used when platform detection fails.
const (
	defaultTotalRAMBytes = 8 << 30 // 8 GiB

	bytesPerGiB = float64(1 << 30)
)

// Detect probes the host and returns a DeviceSpecs snapshot. It has no side
// effects beyond a transient temp-file write/read/delete used to time disk
// throughput, and it never fails: detection errors fall back to defaults.
func Detect() DeviceSpecs {
	logger := logging.Get("probe")

	specs := DeviceSpecs{
		CPUCores: runtime.NumCPU(),
	}

	totalRAM, availableRAM, err := detectMemory()
	if err != nil {
		logger.Warn("memory detection failed, using defaults", "error", err)
		totalRAM = defaultTotalRAMBytes
		availableRAM = totalRAM / 2
	}
	specs.TotalMemoryGB = float64(totalRAM) / bytesPerGiB
	specs.AvailableMemoryGB = float64(availableRAM) / bytesPerGiB

	specs.DiskSpeedTier = benchmarkDisk()

	logger.Debug("device probe complete",
		"cpu_cores", specs.CPUCores,
		"total_gb", specs.TotalMemoryGB,
		"available_gb", specs.AvailableMemoryGB,
		"disk_tier", specs.DiskSpeedTier.String())

	return specs
}
