// Package scanner implements the adaptive concurrent directory scanner and
// the application and configuration scanners built on its primitives.
//
// Every filesystem syscall the package performs goes through the resilience
// layer: listings and stats retry on transient OS errors and are guarded by
// per-operation circuit breakers shared across the whole run. Failures are
// contained at the smallest meaningful unit; a missing permission or a
// vanished path yields an empty subtree, never an aborted scan.
package scanner

import (
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/movewise/movewise/pkg/movewise/exclusion"
	"github.com/movewise/movewise/pkg/movewise/limits"
	"github.com/movewise/movewise/pkg/movewise/resilience"
	"github.com/movewise/movewise/pkg/movewise/types"
)

// RunContext carries the shared state of one analysis run: the item ID and
// progress counters, the exclusion manager, the computed limits and the
// breaker registry. It is created by the orchestrator per run and threaded
// through every scan call, so nothing leaks across runs.
type RunContext struct {
	// RunID uniquely identifies the run.
	RunID string

	// Limits is the configuration computed for this run.
	Limits limits.Limits

	// Exclusions is the dynamic exclusion set, shared with the caller's
	// mutation API.
	Exclusions *exclusion.Manager

	// Breakers holds one circuit breaker per logical filesystem operation.
	Breakers *resilience.Registry

	// Retry is the backoff policy applied to every syscall.
	Retry resilience.Policy

	idCounter     atomic.Int64
	progressCount atomic.Int64

	cbMu     sync.RWMutex
	callback func(types.Progress)
}

// NewRunContext creates the shared state for a fresh run.
func NewRunContext(l limits.Limits) *RunContext {
	return &RunContext{
		RunID:      uuid.New().String(),
		Limits:     l,
		Exclusions: exclusion.NewManager(),
		Breakers:   resilience.NewRegistry(),
		Retry:      resilience.DefaultPolicy(),
	}
}

// NextID returns a run-unique item identifier: a monotonic counter combined
// with an FNV-1a digest of the path.
func (rc *RunContext) NextID(path string) string {
	n := rc.idCounter.Add(1)
	h := fnv.New32a()
	h.Write([]byte(path))
	return fmt.Sprintf("%d-%08x", n, h.Sum32())
}

// SetCallback installs the progress subscriber. At most one subscriber is
// active; a second call replaces the first. The callback is invoked inline
// with the scan and must not block indefinitely.
func (rc *RunContext) SetCallback(fn func(types.Progress)) {
	rc.cbMu.Lock()
	defer rc.cbMu.Unlock()
	rc.callback = fn
}

// ClearCallback removes the progress subscriber.
func (rc *RunContext) ClearCallback() {
	rc.cbMu.Lock()
	defer rc.cbMu.Unlock()
	rc.callback = nil
}

// advance counts one processed item and emits a throttled progress update
// every ProgressUpdateInterval items.
func (rc *RunContext) advance(phase types.Phase, path string) {
	n := rc.progressCount.Add(1)

	interval := int64(rc.Limits.ProgressUpdateInterval)
	if interval < 1 || n%interval != 0 {
		return
	}
	rc.emit(types.Progress{
		Phase:       phase,
		Current:     n,
		Total:       -1,
		CurrentPath: path,
	})
}

// emitWarning delivers a warning on the progress stream immediately,
// bypassing the update throttle.
func (rc *RunContext) emitWarning(phase types.Phase, w types.Warning) {
	rc.emit(types.Progress{
		Phase:       phase,
		Current:     rc.progressCount.Load(),
		Total:       -1,
		CurrentPath: w.Path,
		Warning:     &w,
	})
}

// emit invokes the callback if one is installed.
func (rc *RunContext) emit(p types.Progress) {
	rc.cbMu.RLock()
	fn := rc.callback
	rc.cbMu.RUnlock()

	if fn != nil {
		fn(p)
	}
}

// Progress returns the number of items processed so far in this run.
func (rc *RunContext) Progress() int64 {
	return rc.progressCount.Load()
}
