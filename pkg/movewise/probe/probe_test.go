package probe

import (
	"runtime"
	"testing"
)

func TestDetect(t *testing.T) {
	specs := Detect()

	if specs.CPUCores != runtime.NumCPU() {
		t.Errorf("CPUCores = %d, want %d (runtime.NumCPU())", specs.CPUCores, runtime.NumCPU())
	}

	if specs.TotalMemoryGB <= 0 {
		t.Errorf("TotalMemoryGB = %v, want > 0", specs.TotalMemoryGB)
	}
	if specs.AvailableMemoryGB <= 0 {
		t.Errorf("AvailableMemoryGB = %v, want > 0", specs.AvailableMemoryGB)
	}
	if specs.AvailableMemoryGB > specs.TotalMemoryGB {
		t.Errorf("AvailableMemoryGB (%v) > TotalMemoryGB (%v)",
			specs.AvailableMemoryGB, specs.TotalMemoryGB)
	}

	switch specs.DiskSpeedTier {
	case DiskSlow, DiskMedium, DiskFast:
	default:
		t.Errorf("DiskSpeedTier = %v, not a known tier", specs.DiskSpeedTier)
	}
}

func TestDetectIsRepeatable(t *testing.T) {
	// Core count and memory should be stable across immediate re-probes;
	// the disk tier may legitimately vary under load, so it is not compared.
	a := Detect()
	b := Detect()

	if a.CPUCores != b.CPUCores {
		t.Errorf("CPUCores varied between probes: %d vs %d", a.CPUCores, b.CPUCores)
	}
	if a.TotalMemoryGB != b.TotalMemoryGB {
		t.Errorf("TotalMemoryGB varied between probes: %v vs %v", a.TotalMemoryGB, b.TotalMemoryGB)
	}
}

func TestDiskRoundTripCleansUp(t *testing.T) {
	elapsed, err := diskRoundTrip()
	if err != nil {
		t.Fatalf("diskRoundTrip() error: %v", err)
	}
	if elapsed <= 0 {
		t.Errorf("elapsed = %v, want > 0", elapsed)
	}
}

func TestTierString(t *testing.T) {
	tests := []struct {
		tier DiskTier
		want string
	}{
		{DiskSlow, "slow"},
		{DiskMedium, "medium"},
		{DiskFast, "fast"},
		{DiskTier(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.tier.String(); got != tt.want {
			t.Errorf("DiskTier(%d).String() = %q, want %q", tt.tier, got, tt.want)
		}
	}
}
