// Package types provides core data types for the movewise analysis engine.
// It includes the inventory tree node, progress and warning structures shared
// by the scanners and the orchestrator, along with size formatting helpers.
package types

import (
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// ItemType distinguishes file and folder nodes in the inventory tree.
type ItemType string

// Inventory node kinds.
const (
	ItemFile   ItemType = "file"
	ItemFolder ItemType = "folder"
)

// FileItem is a node (file or folder) in the scanned inventory tree.
// Items are created during a scan and immutable once the run returns;
// ownership passes to the caller.
type FileItem struct {
	// ID uniquely identifies the item within a single run. It combines a
	// run-scoped monotonic counter with a digest of the path.
	ID string `json:"id"`

	// Name is the base name of the entry.
	Name string `json:"name"`

	// Path is the absolute path to the entry.
	Path string `json:"path"`

	// Type is file or folder.
	Type ItemType `json:"type"`

	// Size is the file size in bytes. Zero for folders.
	Size int64 `json:"size,omitempty"`

	// ModTime is the last modification time, when a stat succeeded.
	ModTime time.Time `json:"mod_time,omitzero"`

	// Mode is the file's permission and mode bits.
	Mode os.FileMode `json:"mode,omitempty"`

	// Extension is the lowercased filename extension without the dot.
	Extension string `json:"extension,omitempty"`

	// ParentID is the ID of the containing folder item, if any.
	ParentID string `json:"parent,omitempty"`

	// Children holds the entries of a folder that passed exclusion and
	// depth checks at scan time. Nil for files.
	Children []*FileItem `json:"children,omitempty"`
}

// IsDir reports whether the item is a folder node.
func (f *FileItem) IsDir() bool {
	return f.Type == ItemFolder
}

// HumanSize returns the item size formatted with binary (IEC) units.
func (f *FileItem) HumanSize() string {
	return FormatSize(f.Size)
}

// Count returns the number of items in the subtree rooted at f,
// including f itself.
func (f *FileItem) Count() int {
	n := 1
	for _, c := range f.Children {
		n += c.Count()
	}
	return n
}

// Phase identifies one of the three top-level scan categories.
type Phase string

// Scan phases.
const (
	PhaseFiles          Phase = "files"
	PhaseApps           Phase = "apps"
	PhaseConfigurations Phase = "configurations"
)

// WarningType classifies analysis warnings.
type WarningType string

// Warning kinds surfaced on the progress stream.
const (
	WarningLargeDirectory   WarningType = "large_directory"
	WarningSlowDirectory    WarningType = "slow_directory"
	WarningPermissionDenied WarningType = "permission_denied"
)

// Warning is an advisory emitted on the progress stream. Warnings never
// block or terminate a scan; they exist so the caller can react, typically
// by excluding the offending directory.
type Warning struct {
	// Type classifies the warning.
	Type WarningType `json:"type"`

	// Path is the directory or file the warning refers to.
	Path string `json:"path"`

	// Details is a human-readable description.
	Details string `json:"details"`

	// FileCount carries the entry count for directory warnings.
	FileCount int `json:"file_count,omitempty"`

	// CanExclude indicates the caller may add Path as a runtime exclusion.
	CanExclude bool `json:"can_exclude"`
}

// Progress is a transient snapshot delivered to the progress callback.
// It is never stored by the engine.
type Progress struct {
	// Phase is the scan category currently running.
	Phase Phase `json:"phase"`

	// Current is the number of items processed so far in this phase.
	Current int64 `json:"current"`

	// Total is the expected item count, or -1 when unknown.
	Total int64 `json:"total"`

	// CurrentPath is the path being processed, when available.
	CurrentPath string `json:"current_path,omitempty"`

	// Warning carries an advisory alongside the progress update, if any.
	Warning *Warning `json:"warning,omitempty"`
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, for consistency with common filesystem tools.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
