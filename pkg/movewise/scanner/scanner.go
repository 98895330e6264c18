package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/movewise/movewise/pkg/movewise/exclusion"
	"github.com/movewise/movewise/pkg/movewise/logging"
	"github.com/movewise/movewise/pkg/movewise/resilience"
	"github.com/movewise/movewise/pkg/movewise/types"
)

// Breaker keys, one per logical filesystem operation. Keying by operation
// rather than by path bounds total retry storms across an entire scan.
const (
	opReadDir = "readdir"
	opStat    = "stat"
)

// Scanner walks a directory tree for one phase of an analysis run.
// It is depth- and exclusion-bounded, batches entries per directory and
// processes batches with concurrency bounded by the run's limits.
type Scanner struct {
	rc     *RunContext
	phase  types.Phase
	logger *logging.Logger
}

// New creates a scanner for the given phase sharing the run's context.
func New(rc *RunContext, phase types.Phase) *Scanner {
	return &Scanner{
		rc:     rc,
		phase:  phase,
		logger: logging.Get("scanner").With("phase", string(phase)),
	}
}

// ScanDirectory scans one directory tree rooted at path and returns the
// items found, or an empty slice when the root is excluded, too deep or
// inaccessible. It never returns an error: failures below the root are
// contained per entry, per directory, per subtree.
func (s *Scanner) ScanDirectory(ctx context.Context, path string, depth int) []*types.FileItem {
	return s.scanDir(ctx, path, depth, "")
}

// scanDir is the per-directory state machine. Terminal states are "fully
// scanned" (a list, possibly partial) and "inaccessible/excluded" (empty).
// Only the underlying syscalls retry; a directory is never retried whole.
func (s *Scanner) scanDir(ctx context.Context, dir string, depth int, parentID string) []*types.FileItem {
	// Cheapest rejections first: these need no I/O at all.
	if depth > s.rc.Limits.MaxDepth || exclusion.MatchesStatic(dir) {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	entries, ok := s.listDir(ctx, dir)
	if !ok || len(entries) == 0 {
		return nil
	}

	// Dynamic exclusions are checked after the listing so the entry count
	// is still available for warning purposes before recursion is skipped.
	// Covers tests the ancestor direction only: an excluded descendant must
	// not stop the scan of the trees above it.
	if s.rc.Exclusions.Covers(dir) {
		return nil
	}

	s.warnOnDirectorySize(dir, len(entries))

	items := make([]*types.FileItem, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.rc.Limits.ConcurrencyLevel))

	batch := max(1, s.rc.Limits.BatchSize)
	for start := 0; start < len(entries); start += batch {
		end := min(start+batch, len(entries))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if gctx.Err() != nil {
					return nil
				}
				// Result slots are positional so surviving children keep
				// the listing's snapshot order.
				items[i] = s.processEntry(gctx, dir, entries[i], depth, parentID)
			}
			return nil
		})
	}
	// Workers only report context cancellation, which is not an error here.
	_ = g.Wait()

	return compact(items)
}

// processEntry classifies one directory entry into a FileItem, or nil when
// the entry is excluded or fails. Individual failures never abort the
// directory.
func (s *Scanner) processEntry(ctx context.Context, dir string, entry fs.DirEntry, depth int, parentID string) *types.FileItem {
	path := filepath.Join(dir, entry.Name())
	if exclusion.MatchesStatic(path) {
		return nil
	}

	info, err := s.statEntry(ctx, entry)
	if err != nil {
		s.logger.Debug("stat failed", "path", path, "error", err)
		return nil
	}

	s.rc.advance(s.phase, path)

	if entry.IsDir() {
		item := &types.FileItem{
			ID:       s.rc.NextID(path),
			Name:     entry.Name(),
			Path:     path,
			Type:     types.ItemFolder,
			ModTime:  info.ModTime(),
			Mode:     info.Mode(),
			ParentID: parentID,
		}
		// A failed recursive scan degrades to an empty child list.
		item.Children = s.scanDir(ctx, path, depth+1, item.ID)
		return item
	}

	if !entry.Type().IsRegular() {
		return nil
	}

	if info.Size() > s.rc.Limits.LargeSizeThreshold {
		// Logged for the transfer planner, but never dropped.
		s.logger.Info("large file found",
			"path", path,
			"size", types.FormatSize(info.Size()))
	}

	return &types.FileItem{
		ID:        s.rc.NextID(path),
		Name:      entry.Name(),
		Path:      path,
		Type:      types.ItemFile,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		Mode:      info.Mode(),
		Extension: extensionOf(entry.Name()),
		ParentID:  parentID,
	}
}

// listDir reads a directory through the resilience layer. Permission and
// vanished-path errors are expected and non-fatal: the directory simply
// yields nothing. Permission failures additionally surface as a warning so
// the caller can offer an exclusion.
func (s *Scanner) listDir(ctx context.Context, dir string) ([]fs.DirEntry, bool) {
	var entries []fs.DirEntry
	err := s.rc.Breakers.Get(opReadDir).Do(func() error {
		return s.rc.retryFS(ctx, func() error {
			var readErr error
			entries, readErr = os.ReadDir(dir)
			return readErr
		})
	})
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			s.rc.emitWarning(s.phase, types.Warning{
				Type:       types.WarningPermissionDenied,
				Path:       dir,
				Details:    "permission denied reading directory",
				CanExclude: true,
			})
		}
		s.logger.Debug("directory listing failed", "path", dir, "error", err)
		return nil, false
	}
	return entries, true
}

// statEntry resolves entry metadata through the resilience layer.
func (s *Scanner) statEntry(ctx context.Context, entry fs.DirEntry) (fs.FileInfo, error) {
	var info fs.FileInfo
	err := s.rc.Breakers.Get(opStat).Do(func() error {
		return s.rc.retryFS(ctx, func() error {
			var statErr error
			info, statErr = entry.Info()
			return statErr
		})
	})
	return info, err
}

// warnOnDirectorySize emits at most one advisory per directory: a
// large-directory warning above the warning threshold, otherwise a
// slow-directory note above the slow threshold. The directory is still
// scanned either way; the caller may inject an exclusion in response.
func (s *Scanner) warnOnDirectorySize(dir string, count int) {
	switch {
	case count > s.rc.Limits.WarningDirectorySize:
		s.rc.emitWarning(s.phase, types.Warning{
			Type:       types.WarningLargeDirectory,
			Path:       dir,
			Details:    "directory contains an unusually large number of entries",
			FileCount:  count,
			CanExclude: true,
		})
	case count > s.rc.Limits.SlowDirectoryThreshold:
		s.rc.emitWarning(s.phase, types.Warning{
			Type:       types.WarningSlowDirectory,
			Path:       dir,
			Details:    "directory is likely to be slow to enumerate",
			FileCount:  count,
			CanExclude: true,
		})
	}
}

// retryFS applies the run's backoff policy to a filesystem operation.
func (rc *RunContext) retryFS(ctx context.Context, op func() error) error {
	return resilience.Retry(ctx, rc.Retry, op)
}

// extensionOf returns the lowercased extension without the leading dot.
func extensionOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// compact drops nil slots, preserving order.
func compact(items []*types.FileItem) []*types.FileItem {
	out := items[:0]
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}
