//go:build darwin

package probe

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// detectMemory reads total physical memory via sysctl. Precise available
// memory on macOS requires host_statistics, so a conservative 50% estimate
// is used; the limits calculator only needs a coarse figure.
func detectMemory() (total, available int64, err error) {
	memsize, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0, 0, fmt.Errorf("sysctl hw.memsize: %w", err)
	}

	total = int64(memsize)
	return total, total / 2, nil
}
