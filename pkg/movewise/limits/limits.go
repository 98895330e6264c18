// Package limits derives the analysis configuration from probed device
// capabilities. Calculate is a pure function: for a fixed DeviceSpecs it
// always yields the same Limits, and raising any capability never lowers
// a derived value.
//
// The tiered concurrency policy is a deliberate backpressure mechanism.
// Concurrency bounds the number of simultaneously open directory handles,
// so unconstrained parallelism on a slow or low-memory machine exhausts
// descriptors and thrashes; the calculator trades scan latency for
// stability on constrained hardware.
package limits

import (
	"math"

	"github.com/movewise/movewise/pkg/movewise/probe"
	"github.com/movewise/movewise/pkg/movewise/types"
)

// Fixed limits independent of hardware.
const (
	// DefaultMaxDepth bounds recursion for every scan.
	DefaultMaxDepth = 8

	// DefaultLargeSizeThreshold flags (but never drops) oversized files.
	DefaultLargeSizeThreshold = 5 * types.GiB

	// DefaultMaxAppEntries caps enumeration per application directory.
	DefaultMaxAppEntries = 100
)

// Performance score clamps and derived-value bounds.
const (
	minBatchSize = 50
	maxBatchSize = 1000

	minProgressInterval = 25

	minWarningDirectorySize   = 50000
	minSlowDirectoryThreshold = 20000
)

// Limits configures one analysis run. It is owned by the orchestrator for
// the run's lifetime and recomputed on every initialize.
type Limits struct {
	// MaxDepth is the maximum recursion depth for directory scans.
	MaxDepth int `json:"max_depth"`

	// BatchSize is the number of directory entries processed as one
	// concurrency-bounded unit.
	BatchSize int `json:"batch_size"`

	// ProgressUpdateInterval is the number of processed items between
	// progress callback invocations.
	ProgressUpdateInterval int `json:"progress_update_interval"`

	// LargeSizeThreshold is the file size in bytes above which a file is
	// logged as oversized. Such files are kept in the results.
	LargeSizeThreshold int64 `json:"large_size_threshold"`

	// WarningDirectorySize is the entry count above which a directory
	// triggers a large-directory warning.
	WarningDirectorySize int `json:"warning_directory_size"`

	// SlowDirectoryThreshold is the entry count above which a directory
	// is flagged as slow to enumerate.
	SlowDirectoryThreshold int `json:"slow_directory_threshold"`

	// ConcurrencyLevel bounds concurrent batch processing. One means
	// strictly sequential scanning.
	ConcurrencyLevel int `json:"concurrency_level"`

	// MaxAppEntries caps per-directory enumeration in the application
	// scanner.
	MaxAppEntries int `json:"max_app_entries"`
}

// Calculate maps device capabilities to analysis limits.
//
// The performance score is the product of a CPU factor (cores/4, capped at
// 3), a memory factor (availableGB/4, capped at 2) and a disk multiplier
// (slow 1x, medium 1.5x, fast 2x). Batch size, progress cadence and the
// directory thresholds scale with the score; depth and the large-file
// threshold are fixed.
func Calculate(specs probe.DeviceSpecs) Limits {
	score := performanceScore(specs)

	return Limits{
		MaxDepth:               DefaultMaxDepth,
		BatchSize:              clamp(int(200*score), minBatchSize, maxBatchSize),
		ProgressUpdateInterval: max(minProgressInterval, int(100/score)),
		LargeSizeThreshold:     DefaultLargeSizeThreshold,
		WarningDirectorySize:   max(minWarningDirectorySize, int(100000*score)),
		SlowDirectoryThreshold: max(minSlowDirectoryThreshold, int(50000*score)),
		ConcurrencyLevel:       concurrencyLevel(specs),
		MaxAppEntries:          DefaultMaxAppEntries,
	}
}

// performanceScore combines CPU, memory and disk factors into a single
// scalar. The floor of 0.1 keeps the progress interval finite on hardware
// that reports near-zero capabilities.
func performanceScore(specs probe.DeviceSpecs) float64 {
	cpuFactor := math.Min(float64(specs.CPUCores)/4, 3)
	memFactor := math.Min(specs.AvailableMemoryGB/4, 2)
	score := cpuFactor * memFactor * diskMultiplier(specs.DiskSpeedTier)
	return math.Max(score, 0.1)
}

// diskMultiplier weights the score by disk tier.
func diskMultiplier(tier probe.DiskTier) float64 {
	switch tier {
	case probe.DiskFast:
		return 2
	case probe.DiskMedium:
		return 1.5
	default:
		return 1
	}
}

// diskConcurrency is the tier's standalone concurrency bound.
func diskConcurrency(tier probe.DiskTier) int {
	switch tier {
	case probe.DiskFast:
		return 4
	case probe.DiskMedium:
		return 2
	default:
		return 1
	}
}

// concurrencyLevel applies the tiered policy: constrained hardware scans
// strictly sequentially, mid-range machines cap at 3 concurrent batches
// and only high-end machines (8+ cores, 8+ GB free, fast disk) reach 6.
// The result is additionally bounded by per-resource limits so that no
// single weak resource is oversubscribed.
func concurrencyLevel(specs probe.DeviceSpecs) int {
	if specs.CPUCores < 4 || specs.AvailableMemoryGB < 2 {
		return 1
	}

	level := min(
		specs.CPUCores/2,
		int(specs.AvailableMemoryGB/2),
		diskConcurrency(specs.DiskSpeedTier),
	)

	ceiling := 3
	if specs.CPUCores >= 8 && specs.AvailableMemoryGB >= 8 && specs.DiskSpeedTier == probe.DiskFast {
		ceiling = 6
	}

	return max(1, min(level, ceiling))
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
