// Package analyzer orchestrates a complete pre-migration inventory run:
// probe the device, compute limits, then run the files, applications and
// configurations scans concurrently and aggregate their results.
//
// A run always returns a structurally valid result. A failing phase
// degrades to an empty list and is reported in Result.PhaseErrors; only a
// failure of the orchestrator's own setup is fatal.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/movewise/movewise/pkg/movewise/limits"
	"github.com/movewise/movewise/pkg/movewise/logging"
	"github.com/movewise/movewise/pkg/movewise/probe"
	"github.com/movewise/movewise/pkg/movewise/scanner"
	"github.com/movewise/movewise/pkg/movewise/types"
)

// State is the orchestrator lifecycle state.
type State int

// Lifecycle states.
const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateRunning
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNotReady is returned by Analyze when Initialize has not completed.
var ErrNotReady = errors.New("analyzer not ready")

// Options configures an Analyzer. Zero values fall back to platform
// defaults.
type Options struct {
	// FileRoots are the directories inventoried by the files phase.
	// Empty defaults to the user's home directory.
	FileRoots []string

	// AppRoots overrides the platform application directories.
	AppRoots []string

	// ConfigRoots overrides the platform configuration directories.
	ConfigRoots []string

	// Exclude seeds the exclusion set of every run.
	Exclude []string

	// MaxAppEntries overrides the computed per-directory application cap
	// when positive.
	MaxAppEntries int

	// MaxDepth overrides the computed recursion bound when positive.
	MaxDepth int

	// HomeDir is used for the files-phase default root. Empty uses the
	// process owner's home. Injectable for tests.
	HomeDir string
}

// Result is the aggregate of one complete analysis run.
type Result struct {
	// RunID identifies the run that produced this result.
	RunID string `json:"run_id"`

	// Files is the user-data inventory tree.
	Files []*types.FileItem `json:"files"`

	// Apps lists detected installed applications.
	Apps []*types.FileItem `json:"apps"`

	// Configurations lists configuration files found under the config roots.
	Configurations []*types.FileItem `json:"configurations"`

	// PhaseErrors records phases that failed and were degraded to empty
	// results. An absent phase completed normally.
	PhaseErrors map[types.Phase]error `json:"-"`

	// Limits is the configuration the run executed under.
	Limits limits.Limits `json:"limits"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// Analyzer owns the lifecycle of analysis runs. Methods are safe for
// concurrent use; at most one run executes at a time.
type Analyzer struct {
	opts   Options
	logger *logging.Logger

	mu     sync.Mutex
	state  State
	specs  probe.DeviceSpecs
	limits limits.Limits
	rc     *scanner.RunContext

	// callback survives re-initialization; it is reattached to every
	// fresh run context.
	callback func(types.Progress)

	// exclusions added at runtime survive re-initialization so the
	// caller's view stays consistent across runs.
	exclusions []string
}

// New creates an analyzer in the Uninitialized state.
func New(opts Options) *Analyzer {
	return &Analyzer{
		opts:       opts,
		logger:     logging.Get("analyzer"),
		state:      StateUninitialized,
		exclusions: append([]string(nil), opts.Exclude...),
	}
}

// State returns the current lifecycle state.
func (a *Analyzer) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Initialize probes the device, computes limits and constructs a fresh run
// context (counters and exclusion manager). It is idempotent once Ready.
func (a *Analyzer) Initialize(ctx context.Context) error {
	a.mu.Lock()
	if a.state == StateReady {
		a.mu.Unlock()
		return nil
	}
	if a.state == StateRunning {
		a.mu.Unlock()
		return fmt.Errorf("cannot initialize while a run is in progress")
	}
	a.state = StateInitializing
	a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		a.setState(StateFailed)
		return err
	}

	specs := probe.Detect()
	l := limits.Calculate(specs)
	if a.opts.MaxAppEntries > 0 {
		l.MaxAppEntries = a.opts.MaxAppEntries
	}
	if a.opts.MaxDepth > 0 {
		l.MaxDepth = a.opts.MaxDepth
	}

	rc := scanner.NewRunContext(l)

	a.mu.Lock()
	a.specs = specs
	a.limits = l
	a.rc = rc
	if a.callback != nil {
		rc.SetCallback(a.callback)
	}
	for _, path := range a.exclusions {
		rc.Exclusions.Add(path)
	}
	a.state = StateReady
	a.mu.Unlock()

	a.logger.Info("initialized",
		"run_id", rc.RunID,
		"cpu_cores", specs.CPUCores,
		"available_gb", specs.AvailableMemoryGB,
		"disk_tier", specs.DiskSpeedTier.String(),
		"concurrency", l.ConcurrencyLevel,
		"batch_size", l.BatchSize)
	return nil
}

// Analyze runs the three scan phases concurrently and aggregates their
// results. It requires Ready and never fails because one phase failed:
// a failing phase yields an empty list and an entry in Result.PhaseErrors.
func (a *Analyzer) Analyze(ctx context.Context) (*Result, error) {
	a.mu.Lock()
	if a.state != StateReady {
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: state is %s", ErrNotReady, a.state)
	}
	a.state = StateRunning
	rc := a.rc
	l := a.limits
	a.mu.Unlock()

	defer a.setState(StateReady)

	start := time.Now()
	result := &Result{
		RunID:       rc.RunID,
		PhaseErrors: make(map[types.Phase]error),
		Limits:      l,
	}

	var (
		wg      sync.WaitGroup
		phaseMu sync.Mutex
	)

	runPhase := func(phase types.Phase, fn func(*scanner.Scanner) []*types.FileItem) {
		defer wg.Done()

		items, err := a.guardPhase(phase, fn, scanner.New(rc, phase))

		phaseMu.Lock()
		defer phaseMu.Unlock()
		switch phase {
		case types.PhaseFiles:
			result.Files = items
		case types.PhaseApps:
			result.Apps = items
		case types.PhaseConfigurations:
			result.Configurations = items
		}
		if err != nil {
			result.PhaseErrors[phase] = err
		}
	}

	wg.Add(3)
	go runPhase(types.PhaseFiles, func(s *scanner.Scanner) []*types.FileItem {
		var items []*types.FileItem
		for _, root := range a.fileRoots() {
			items = append(items, s.ScanDirectory(ctx, root, 0)...)
		}
		return items
	})
	go runPhase(types.PhaseApps, func(s *scanner.Scanner) []*types.FileItem {
		return s.ScanApplications(ctx, a.appRoots())
	})
	go runPhase(types.PhaseConfigurations, func(s *scanner.Scanner) []*types.FileItem {
		return s.ScanConfigurations(ctx, a.configRoots())
	})
	wg.Wait()

	result.Elapsed = time.Since(start)

	a.logger.Info("analysis complete",
		"run_id", rc.RunID,
		"files", len(result.Files),
		"apps", len(result.Apps),
		"configurations", len(result.Configurations),
		"failed_phases", len(result.PhaseErrors),
		"elapsed", result.Elapsed)

	return result, nil
}

// guardPhase contains a phase failure: a panic inside a phase is converted
// to an error and the phase result degrades to an empty list.
func (a *Analyzer) guardPhase(phase types.Phase, fn func(*scanner.Scanner) []*types.FileItem, s *scanner.Scanner) (items []*types.FileItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("phase %s failed: %v", phase, r)
			items = nil
			a.logger.Error("phase failed", "phase", string(phase), "error", err)
		}
	}()
	if items = fn(s); items == nil {
		items = []*types.FileItem{}
	}
	return items, nil
}

// Reset tears down callback and run state and returns to Uninitialized.
func (a *Analyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.rc != nil {
		a.rc.ClearCallback()
	}
	a.rc = nil
	a.callback = nil
	a.state = StateUninitialized
}

// SetProgressCallback installs the single progress subscriber. The callback
// is invoked inline with the scan and must not block indefinitely.
func (a *Analyzer) SetProgressCallback(fn func(types.Progress)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callback = fn
	if a.rc != nil {
		a.rc.SetCallback(fn)
	}
}

// ClearProgressCallback removes the progress subscriber.
func (a *Analyzer) ClearProgressCallback() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callback = nil
	if a.rc != nil {
		a.rc.ClearCallback()
	}
}

// AddDirectoryExclusion excludes a path prefix from the current and
// subsequent runs.
func (a *Analyzer) AddDirectoryExclusion(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exclusions = append(a.exclusions, path)
	if a.rc != nil {
		a.rc.Exclusions.Add(path)
	}
}

// RemoveDirectoryExclusion drops a previously added exclusion.
func (a *Analyzer) RemoveDirectoryExclusion(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.exclusions[:0]
	for _, p := range a.exclusions {
		if p != path {
			kept = append(kept, p)
		}
	}
	a.exclusions = kept
	if a.rc != nil {
		a.rc.Exclusions.Remove(path)
	}
}

// ExcludedDirectories returns the current dynamic exclusions.
func (a *Analyzer) ExcludedDirectories() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rc != nil {
		return a.rc.Exclusions.List()
	}
	return append([]string(nil), a.exclusions...)
}

// Limits returns the limits computed by the last Initialize, or nil before
// initialization.
func (a *Analyzer) Limits() *limits.Limits {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateUninitialized || a.state == StateFailed {
		return nil
	}
	l := a.limits
	return &l
}

// DeviceSpecs returns the snapshot taken by the last Initialize.
func (a *Analyzer) DeviceSpecs() probe.DeviceSpecs {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.specs
}

func (a *Analyzer) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// fileRoots returns the configured user-data roots, defaulting to the home
// directory.
func (a *Analyzer) fileRoots() []string {
	if len(a.opts.FileRoots) > 0 {
		return a.opts.FileRoots
	}
	if a.opts.HomeDir != "" {
		return []string{a.opts.HomeDir}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		a.logger.Warn("home directory unavailable", "error", err)
		return nil
	}
	return []string{home}
}

func (a *Analyzer) appRoots() []string {
	if len(a.opts.AppRoots) > 0 {
		return a.opts.AppRoots
	}
	return scanner.ApplicationRoots()
}

func (a *Analyzer) configRoots() []string {
	if len(a.opts.ConfigRoots) > 0 {
		return a.opts.ConfigRoots
	}
	return scanner.ConfigurationRoots()
}
