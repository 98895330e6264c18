package probe

import (
	"crypto/rand"
	"os"
	"time"

	"github.com/movewise/movewise/pkg/movewise/logging"
)

// Disk benchmark parameters. A single small round trip is enough to split
// network shares and spinning disks from local SSDs; precision is not the
// goal here.
const (
	benchFileSize = 1 << 20 // 1 MiB

	fastThreshold   = 50 * time.Millisecond
	mediumThreshold = 200 * time.Millisecond
)

// benchmarkDisk times a 1 MiB write+read+delete round trip in the system
// temp directory and maps the elapsed time to a tier. Any I/O failure
// defaults to DiskMedium so probing can never fail the run.
func benchmarkDisk() DiskTier {
	elapsed, err := diskRoundTrip()
	if err != nil {
		logging.Get("probe").Warn("disk benchmark failed, assuming medium tier", "error", err)
		return DiskMedium
	}

	switch {
	case elapsed < fastThreshold:
		return DiskFast
	case elapsed < mediumThreshold:
		return DiskMedium
	default:
		return DiskSlow
	}
}

// diskRoundTrip performs the timed write/read/delete cycle.
func diskRoundTrip() (time.Duration, error) {
	buf := make([]byte, benchFileSize)
	// Random content defeats filesystems that compress or dedupe zeros.
	if _, err := rand.Read(buf); err != nil {
		return 0, err
	}

	f, err := os.CreateTemp("", "movewise-bench-*")
	if err != nil {
		return 0, err
	}
	name := f.Name()
	defer os.Remove(name)

	start := time.Now()

	if _, err := f.Write(buf); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	if _, err := os.ReadFile(name); err != nil {
		return 0, err
	}
	if err := os.Remove(name); err != nil {
		return 0, err
	}

	return time.Since(start), nil
}
