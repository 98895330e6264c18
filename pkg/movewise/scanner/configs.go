package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"

	"github.com/movewise/movewise/pkg/movewise/types"
)

// configExtensions identify configuration files by filename extension.
var configExtensions = map[string]bool{
	"ini":        true,
	"json":       true,
	"xml":        true,
	"yaml":       true,
	"yml":        true,
	"toml":       true,
	"conf":       true,
	"cfg":        true,
	"properties": true,
}

// ConfigurationRoots returns the platform's conventional configuration
// directories.
func ConfigurationRoots() []string {
	home, _ := os.UserHomeDir()

	switch runtime.GOOS {
	case "windows":
		return nonEmpty([]string{
			os.Getenv("APPDATA"),
			os.Getenv("LOCALAPPDATA"),
		})
	case "darwin":
		return nonEmpty([]string{
			xdg.ConfigHome,
			filepath.Join(home, "Library", "Preferences"),
		})
	default:
		return nonEmpty([]string{
			xdg.ConfigHome,
			"/etc",
		})
	}
}

// ScanConfigurations runs a full depth-bounded scan of the configuration
// roots, then prunes the resulting trees down to configuration files:
// matching files are kept, and folders survive only when a nested match
// exists somewhere below them.
func (s *Scanner) ScanConfigurations(ctx context.Context, roots []string) []*types.FileItem {
	var configs []*types.FileItem
	for _, root := range roots {
		if ctx.Err() != nil {
			break
		}
		items := s.ScanDirectory(ctx, root, 0)
		configs = append(configs, pruneToConfigs(items)...)
	}
	return configs
}

// pruneToConfigs filters a scanned item list, recursing into folder
// children to find nested matches.
func pruneToConfigs(items []*types.FileItem) []*types.FileItem {
	var out []*types.FileItem
	for _, item := range items {
		if item.IsDir() {
			kept := pruneToConfigs(item.Children)
			if len(kept) == 0 {
				continue
			}
			item.Children = kept
			out = append(out, item)
			continue
		}
		if configExtensions[item.Extension] {
			out = append(out, item)
		}
	}
	return out
}
