//go:build linux

package probe

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// detectMemory reads total and available memory via sysinfo(2).
// Available is approximated as free plus reclaimable buffer memory.
func detectMemory() (total, available int64, err error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0, fmt.Errorf("sysinfo: %w", err)
	}

	unit := int64(info.Unit)
	if unit == 0 {
		unit = 1
	}

	total = int64(info.Totalram) * unit
	available = (int64(info.Freeram) + int64(info.Bufferram)) * unit
	if available > total {
		available = total
	}
	return total, available, nil
}
