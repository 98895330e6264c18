// Package exclusion decides which paths the scanners may descend into.
//
// Two independent mechanisms apply. Static patterns are compiled regular
// expressions over the full path that reject structural noise (build
// artifacts, VCS metadata, recycle bins, OS-reserved trees) before any
// directory read is attempted. The dynamic set holds user or runtime
// supplied path prefixes and is consulted after a successful listing, so
// a directory's entries can still be enumerated for warning purposes
// before recursion is skipped.
package exclusion

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Manager holds the dynamic exclusion set for one analysis run.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	prefixes map[string]string // normalized form -> original path
}

// NewManager returns an empty exclusion manager.
func NewManager() *Manager {
	return &Manager{prefixes: make(map[string]string)}
}

// normalize case-folds a path and strips the trailing separator so prefix
// comparisons are stable across platforms and input styles.
func normalize(path string) string {
	p := strings.ToLower(filepath.Clean(path))
	return strings.TrimSuffix(p, string(filepath.Separator))
}

// Add registers a path prefix. Adding an ancestor excludes all of its
// descendants. Empty paths are ignored.
func (m *Manager) Add(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefixes[normalize(path)] = path
}

// Remove drops a previously added prefix. Unknown paths are a no-op.
func (m *Manager) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.prefixes, normalize(path))
}

// IsExcluded reports whether a path is covered by the dynamic set.
// Membership is a bidirectional prefix test: a path is excluded when it
// lies under an excluded entry, or when it is itself a prefix of one
// (so asking about an ancestor of an exclusion also answers true).
func (m *Manager) IsExcluded(path string) bool {
	candidate := normalize(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for prefix := range m.prefixes {
		if coveredBy(candidate, prefix) || coveredBy(prefix, candidate) {
			return true
		}
	}
	return false
}

// Covers reports whether a path lies at or beneath an excluded entry.
// Unlike IsExcluded it never answers true for a mere ancestor of an
// exclusion, so scanners use it to decide descent: excluding a child
// must not blank the scan of its parents.
func (m *Manager) Covers(path string) bool {
	candidate := normalize(path)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for prefix := range m.prefixes {
		if coveredBy(candidate, prefix) {
			return true
		}
	}
	return false
}

// coveredBy reports whether path equals prefix or sits beneath it.
func coveredBy(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}

// List returns the originally supplied exclusion paths, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.prefixes))
	for _, original := range m.prefixes {
		out = append(out, original)
	}
	sort.Strings(out)
	return out
}
