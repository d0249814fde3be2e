package linker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/fileid"
)

func writeRecord(t *testing.T, path string, content string) *config.FileRecord {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	id, _, err := fileid.FromPath(path)
	require.NoError(t, err)

	fullPath, err := filepath.Abs(path)
	require.NoError(t, err)

	return &config.FileRecord{
		Path:     path,
		FullPath: fullPath,
		Name:     filepath.Base(path),
		Size:     info.Size(),
		ID:       id,
	}
}

func sameFile(t *testing.T, a string, b string) bool {
	t.Helper()

	infoA, err := os.Stat(a)
	require.NoError(t, err)
	infoB, err := os.Stat(b)
	require.NoError(t, err)

	return os.SameFile(infoA, infoB)
}

func TestReplace(t *testing.T) {
	dir := t.TempDir()

	canonical := writeRecord(t, filepath.Join(dir, "canonical.txt"), "same bytes")
	duplicate := writeRecord(t, filepath.Join(dir, "duplicate.txt"), "same bytes")

	require.False(t, sameFile(t, canonical.Path, duplicate.Path))

	l := New(false)
	require.NoError(t, l.Replace(canonical, duplicate))

	// the duplicate path survives and now shares the canonical inode
	assert.True(t, sameFile(t, canonical.Path, duplicate.Path))

	content, err := os.ReadFile(duplicate.Path)
	require.NoError(t, err)
	assert.Equal(t, "same bytes", string(content))

	assert.Equal(t, 1, l.ReplacedFiles())
	assert.Equal(t, duplicate.Size, l.ReclaimedBytes())

	// no temporary link left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestReplace_MultipleDuplicates(t *testing.T) {
	dir := t.TempDir()

	canonical := writeRecord(t, filepath.Join(dir, "a.txt"), "payload")
	dup1 := writeRecord(t, filepath.Join(dir, "b.txt"), "payload")
	dup2 := writeRecord(t, filepath.Join(dir, "c.txt"), "payload")

	l := New(false)
	require.NoError(t, l.Replace(canonical, dup1))
	require.NoError(t, l.Replace(canonical, dup2))

	assert.True(t, sameFile(t, canonical.Path, dup1.Path))
	assert.True(t, sameFile(t, canonical.Path, dup2.Path))

	assert.Equal(t, 2, l.ReplacedFiles())
	assert.Equal(t, dup1.Size+dup2.Size, l.ReclaimedBytes())
}

func TestReplace_DryRun(t *testing.T) {
	dir := t.TempDir()

	canonical := writeRecord(t, filepath.Join(dir, "canonical.txt"), "same bytes")
	duplicate := writeRecord(t, filepath.Join(dir, "duplicate.txt"), "same bytes")

	l := New(true)
	require.NoError(t, l.Replace(canonical, duplicate))

	// nothing was touched
	assert.False(t, sameFile(t, canonical.Path, duplicate.Path))

	// would-be totals still add up
	assert.Equal(t, 1, l.ReplacedFiles())
	assert.Equal(t, duplicate.Size, l.ReclaimedBytes())
}

func TestReplace_MissingCanonical(t *testing.T) {
	dir := t.TempDir()

	canonical := &config.FileRecord{
		Path: filepath.Join(dir, "missing.txt"),
		Size: 4,
	}
	duplicate := writeRecord(t, filepath.Join(dir, "duplicate.txt"), "data")

	l := New(false)
	require.Error(t, l.Replace(canonical, duplicate))

	// the duplicate is untouched
	content, err := os.ReadFile(duplicate.Path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	assert.Equal(t, 0, l.ReplacedFiles())
	assert.Equal(t, int64(0), l.ReclaimedBytes())
}

func TestReplace_AlreadyLinked(t *testing.T) {
	dir := t.TempDir()

	canonical := writeRecord(t, filepath.Join(dir, "a.txt"), "data")
	linkPath := filepath.Join(dir, "b.txt")
	require.NoError(t, os.Link(canonical.Path, linkPath))

	duplicate := &config.FileRecord{
		Path:     linkPath,
		FullPath: linkPath,
		Name:     "b.txt",
		Size:     canonical.Size,
		ID:       canonical.ID,
	}

	// relinking an already linked path is harmless
	l := New(false)
	require.NoError(t, l.Replace(canonical, duplicate))
	assert.True(t, sameFile(t, canonical.Path, duplicate.Path))
}
