//go:build !linux && !darwin

package probe

// detectMemory falls back to the package defaults on platforms without a
// wired syscall path.
func detectMemory() (total, available int64, err error) {
	return defaultTotalRAMBytes, defaultTotalRAMBytes / 2, nil
}
