package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movewise/movewise/pkg/movewise/types"
)

// execName returns a filename carrying this platform's first executable
// extension.
func execName(base string) string {
	return base + "." + executableExtensions[runtime.GOOS][0]
}

func TestScanApplicationsClassifiesFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, execName("tool"), 128)
	writeFile(t, root, "readme.txt", 64)

	s, _ := newTestScanner(testLimits())
	apps := s.ScanApplications(context.Background(), []string{root})

	require.Len(t, apps, 1)
	assert.Equal(t, execName("tool"), apps[0].Name)
	assert.Equal(t, types.ItemFile, apps[0].Type)
}

func TestScanApplicationsClassifiesFolders(t *testing.T) {
	root := t.TempDir()

	appDir := filepath.Join(root, "CoolApp")
	require.NoError(t, os.Mkdir(appDir, 0o755))
	writeFile(t, appDir, execName("coolapp"), 256)

	dataDir := filepath.Join(root, "JustData")
	require.NoError(t, os.Mkdir(dataDir, 0o755))
	writeFile(t, dataDir, "notes.txt", 32)

	s, _ := newTestScanner(testLimits())
	apps := s.ScanApplications(context.Background(), []string{root})

	require.Len(t, apps, 1)
	assert.Equal(t, "CoolApp", apps[0].Name)
	assert.Equal(t, types.ItemFolder, apps[0].Type)
}

func TestScanApplicationsEntryCap(t *testing.T) {
	root := t.TempDir()
	// ReadDir sorts, so app09 sits beyond a cap of 5.
	for i := 0; i < 9; i++ {
		writeFile(t, root, execName(fmt.Sprintf("app%02d", i)), 16)
	}

	l := testLimits()
	l.MaxAppEntries = 5
	s, _ := newTestScanner(l)

	apps := s.ScanApplications(context.Background(), []string{root})
	assert.Len(t, apps, 5, "enumeration stops at the per-directory cap")
}

func TestScanApplicationsMissingRoot(t *testing.T) {
	s, _ := newTestScanner(testLimits())
	apps := s.ScanApplications(context.Background(), []string{filepath.Join(t.TempDir(), "absent")})
	assert.Empty(t, apps)
}

func TestScanApplicationsHonorsExclusions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, execName("tool"), 128)

	s, rc := newTestScanner(testLimits())
	rc.Exclusions.Add(root)

	assert.Empty(t, s.ScanApplications(context.Background(), []string{root}))
}

func TestIsExecutableUnixBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec-bit sniffing does not apply on windows")
	}

	dir := t.TempDir()

	// A minimal ELF header is enough for content sniffing.
	elf := append([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}, make([]byte, 56)...)
	path := filepath.Join(dir, "native-tool")
	require.NoError(t, os.WriteFile(path, elf, 0o755))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, isExecutable(path, info))

	// Same content without the exec bit is not an application.
	plainPath := filepath.Join(dir, "native-data")
	require.NoError(t, os.WriteFile(plainPath, elf, 0o644))
	plainInfo, err := os.Stat(plainPath)
	require.NoError(t, err)
	assert.False(t, isExecutable(plainPath, plainInfo))
}

func TestApplicationRootsNonEmptyPaths(t *testing.T) {
	for _, root := range ApplicationRoots() {
		assert.NotEmpty(t, root)
	}
}
