package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gabriel-vasile/mimetype"

	"github.com/movewise/movewise/pkg/movewise/exclusion"
	"github.com/movewise/movewise/pkg/movewise/types"
)

// executableExtensions lists filename extensions treated as installed
// application entry points, per platform.
var executableExtensions = map[string][]string{
	"windows": {"exe", "msi", "bat", "cmd", "com"},
	"darwin":  {"app", "command", "pkg", "dmg"},
	"linux":   {"appimage", "desktop", "sh", "run", "bin"},
}

// ApplicationRoots returns the platform's conventional application
// directories. Roots that do not exist are simply skipped by the scan.
func ApplicationRoots() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		roots := []string{
			os.Getenv("ProgramFiles"),
			os.Getenv("ProgramFiles(x86)"),
		}
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			roots = append(roots, filepath.Join(localAppData, "Programs"))
		}
		return nonEmpty(roots)
	case "darwin":
		return nonEmpty([]string{
			"/Applications",
			filepath.Join(home, "Applications"),
		})
	default:
		return nonEmpty([]string{
			"/opt",
			"/usr/share/applications",
			filepath.Join(home, ".local", "share", "applications"),
		})
	}
}

// ScanApplications enumerates the platform application directories and
// classifies entries as installed applications: a file with an executable
// extension directly, or a folder whose immediate children include an
// executable. Enumeration per directory is capped by Limits.MaxAppEntries.
func (s *Scanner) ScanApplications(ctx context.Context, roots []string) []*types.FileItem {
	var apps []*types.FileItem
	for _, root := range roots {
		if ctx.Err() != nil {
			break
		}
		apps = append(apps, s.scanAppRoot(ctx, root)...)
	}
	return apps
}

// scanAppRoot classifies one application directory's entries.
func (s *Scanner) scanAppRoot(ctx context.Context, root string) []*types.FileItem {
	if exclusion.MatchesStatic(root) || s.rc.Exclusions.Covers(root) {
		return nil
	}

	entries, ok := s.listDir(ctx, root)
	if !ok {
		return nil
	}
	if limit := s.rc.Limits.MaxAppEntries; limit > 0 && len(entries) > limit {
		s.logger.Debug("application directory capped",
			"path", root, "entries", len(entries), "cap", limit)
		entries = entries[:limit]
	}

	var apps []*types.FileItem
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if item := s.classifyAppEntry(ctx, root, entry); item != nil {
			apps = append(apps, item)
		}
	}
	return apps
}

// classifyAppEntry builds a FileItem for an entry that looks like an
// installed application, or nil.
func (s *Scanner) classifyAppEntry(ctx context.Context, root string, entry fs.DirEntry) *types.FileItem {
	path := filepath.Join(root, entry.Name())

	info, err := s.statEntry(ctx, entry)
	if err != nil {
		return nil
	}
	s.rc.advance(s.phase, path)

	if entry.IsDir() {
		if !s.dirContainsExecutable(ctx, path) {
			return nil
		}
		return &types.FileItem{
			ID:      s.rc.NextID(path),
			Name:    entry.Name(),
			Path:    path,
			Type:    types.ItemFolder,
			ModTime: info.ModTime(),
			Mode:    info.Mode(),
		}
	}

	if !isExecutable(path, info) {
		return nil
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
	}
}

// dirContainsExecutable reports whether any immediate child of dir is an
// executable file.
func (s *Scanner) dirContainsExecutable(ctx context.Context, dir string) bool {
	entries, ok := s.listDir(ctx, dir)
	if !ok {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := s.statEntry(ctx, entry)
		if err != nil {
			continue
		}
		if isExecutable(filepath.Join(dir, entry.Name()), info) {
			return true
		}
	}
	return false
}

// isExecutable applies the extension heuristic first and, on Unix, falls
// back to content sniffing for extensionless binaries with an exec bit set.
func isExecutable(path string, info fs.FileInfo) bool {
	ext := extensionOf(info.Name())
	for _, e := range executableExtensions[runtime.GOOS] {
		if ext == e {
			return true
		}
	}

	if runtime.GOOS == "windows" || info.Mode()&0o111 == 0 {
		return false
	}
	return sniffsAsBinary(path)
}

// sniffsAsBinary reports whether the file's magic bytes identify a native
// executable (ELF or Mach-O).
func sniffsAsBinary(path string) bool {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return m.Is("application/x-executable") ||
		m.Is("application/x-elf") ||
		m.Is("application/x-mach-binary")
}

// nonEmpty filters out blank root entries (unset environment variables).
func nonEmpty(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
