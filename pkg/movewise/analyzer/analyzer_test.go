package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movewise/movewise/pkg/movewise/types"
)

// testRoots builds a small three-phase fixture: a data tree, an app
// directory and a config directory.
func testRoots(t *testing.T) (files, apps, configs string) {
	t.Helper()

	files = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(files, "report.pdf"), make([]byte, 512), 0o644))
	sub := filepath.Join(files, "photos")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "trip.jpg"), make([]byte, 256), 0o644))

	apps = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(apps, "tool.sh"), []byte("#!/bin/sh\n"), 0o755))

	configs = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configs, "app.conf"), []byte("k=v\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(configs, "junk.dat"), []byte("x"), 0o644))

	return files, apps, configs
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	files, apps, configs := testRoots(t)
	return New(Options{
		FileRoots:   []string{files},
		AppRoots:    []string{apps},
		ConfigRoots: []string{configs},
	})
}

func TestLifecycleStates(t *testing.T) {
	a := newTestAnalyzer(t)
	assert.Equal(t, StateUninitialized, a.State())
	assert.Nil(t, a.Limits(), "limits are unavailable before initialization")

	_, err := a.Analyze(context.Background())
	require.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, a.Initialize(context.Background()))
	assert.Equal(t, StateReady, a.State())
	require.NotNil(t, a.Limits())

	a.Reset()
	assert.Equal(t, StateUninitialized, a.State())
	assert.Nil(t, a.Limits())
}

func TestInitializeIdempotentOnceReady(t *testing.T) {
	a := newTestAnalyzer(t)
	require.NoError(t, a.Initialize(context.Background()))

	first := a.Limits()
	require.NoError(t, a.Initialize(context.Background()))
	assert.Equal(t, first, a.Limits(), "a second initialize at Ready is a no-op")
}

func TestInitializeAppliesOverrides(t *testing.T) {
	files, apps, configs := testRoots(t)
	a := New(Options{
		FileRoots:     []string{files},
		AppRoots:      []string{apps},
		ConfigRoots:   []string{configs},
		MaxAppEntries: 7,
		MaxDepth:      4,
	})
	require.NoError(t, a.Initialize(context.Background()))

	l := a.Limits()
	assert.Equal(t, 7, l.MaxAppEntries)
	assert.Equal(t, 4, l.MaxDepth)
}

func TestAnalyzeEndToEnd(t *testing.T) {
	a := newTestAnalyzer(t)
	require.NoError(t, a.Initialize(context.Background()))

	result, err := a.Analyze(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.PhaseErrors)
	assert.Positive(t, result.Elapsed)

	require.Len(t, result.Files, 2, "report.pdf and photos/")
	require.Len(t, result.Configurations, 1)
	assert.Equal(t, "app.conf", result.Configurations[0].Name)

	assert.Equal(t, StateReady, a.State(), "the analyzer is reusable after a run")
}

func TestAnalyzeDegradesFailedPhase(t *testing.T) {
	files, _, configs := testRoots(t)
	a := New(Options{
		FileRoots:   []string{files},
		AppRoots:    []string{filepath.Join(files, "no-such-apps-root")},
		ConfigRoots: []string{configs},
	})
	require.NoError(t, a.Initialize(context.Background()))

	result, err := a.Analyze(context.Background())
	require.NoError(t, err, "one failed phase never fails the run")

	assert.Empty(t, result.Apps)
	assert.NotEmpty(t, result.Files)
	assert.NotEmpty(t, result.Configurations)
}

func TestProgressCallbackReceivesUpdates(t *testing.T) {
	a := newTestAnalyzer(t)

	var mu sync.Mutex
	var updates []types.Progress
	// Installing the callback before Initialize must still take effect.
	a.SetProgressCallback(func(p types.Progress) {
		mu.Lock()
		updates = append(updates, p)
		mu.Unlock()
	})

	require.NoError(t, a.Initialize(context.Background()))

	// Shrink the interval so the tiny fixture produces updates.
	a.mu.Lock()
	a.rc.Limits.ProgressUpdateInterval = 1
	a.mu.Unlock()

	_, err := a.Analyze(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, updates)

	a.ClearProgressCallback()
}

func TestExclusionMutationAPI(t *testing.T) {
	a := newTestAnalyzer(t)

	// Mutations before initialization are retained.
	a.AddDirectoryExclusion("/data/skip-me")
	require.NoError(t, a.Initialize(context.Background()))
	assert.Equal(t, []string{"/data/skip-me"}, a.ExcludedDirectories())

	a.AddDirectoryExclusion("/data/also-skip")
	assert.Len(t, a.ExcludedDirectories(), 2)

	a.RemoveDirectoryExclusion("/data/skip-me")
	assert.Equal(t, []string{"/data/also-skip"}, a.ExcludedDirectories())
}

func TestExclusionAppliesToScan(t *testing.T) {
	files, apps, configs := testRoots(t)
	a := New(Options{
		FileRoots:   []string{files},
		AppRoots:    []string{apps},
		ConfigRoots: []string{configs},
		Exclude:     []string{filepath.Join(files, "photos")},
	})
	require.NoError(t, a.Initialize(context.Background()))

	result, err := a.Analyze(context.Background())
	require.NoError(t, err)

	// Excluding photos must not blank the scan of its parent: the sibling
	// file and the excluded folder itself both remain in the inventory.
	require.Len(t, result.Files, 2, "report.pdf and photos/")

	byName := map[string]*types.FileItem{}
	for _, item := range result.Files {
		byName[item.Name] = item
	}
	require.Contains(t, byName, "report.pdf")
	photos, ok := byName["photos"]
	require.True(t, ok)
	assert.Empty(t, photos.Children, "excluded subtree yields no children")
}

func TestResetClearsRunState(t *testing.T) {
	a := newTestAnalyzer(t)
	require.NoError(t, a.Initialize(context.Background()))

	firstRun := a.rc.RunID
	a.Reset()
	require.NoError(t, a.Initialize(context.Background()))

	assert.NotEqual(t, firstRun, a.rc.RunID, "each initialize constructs a fresh run context")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "failed", StateFailed.String())
}
