package dupefilemap

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c0xc/dupefinder/pkg/config"
	"github.com/c0xc/dupefinder/pkg/fileid"
)

func record(path string, size int64, inode uint64, digest string) *config.FileRecord {
	digests := map[string]string{}
	if digest != "" {
		digests["MD5"] = digest
	}

	return &config.FileRecord{
		Path:    path,
		Name:    path,
		Size:    size,
		ID:      fileid.FileID{Device: 1, Inode: inode},
		Digests: digests,
	}
}

func TestNew_GroupsDuplicates(t *testing.T) {
	a := record("a.txt", 10, 1, "x")
	b := record("b.txt", 10, 2, "x")
	b2 := record("b2.txt", 10, 2, "x") // hardlink of b
	c := record("c.txt", 10, 3, "y")

	m, err := New([]*config.FileRecord{a, b, b2, c}, "MD5")
	require.NoError(t, err)

	groups := m.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, 1, m.Length())

	group := groups[0]
	assert.Equal(t, "x", group.Digest)
	assert.Equal(t, []*config.FileRecord{a, b}, group.Files)
	assert.Equal(t, a, group.Canonical())
	assert.Equal(t, []*config.FileRecord{b}, group.Duplicates())

	// the hardlink shares b's space, only b itself is wasted
	assert.Equal(t, int64(10), group.WastedSize())
	assert.Equal(t, int64(10), m.TotalWasted())
	assert.Equal(t, 1, m.CollapsedHardlinks())
}

func TestNew_NoDuplicates(t *testing.T) {
	m, err := New([]*config.FileRecord{
		record("a.txt", 10, 1, "x"),
		record("b.txt", 10, 2, "y"),
		record("c.txt", 10, 3, "z"),
	}, "MD5")
	require.NoError(t, err)

	assert.Empty(t, m.Groups())
	assert.Equal(t, 0, m.Length())
	assert.Equal(t, int64(0), m.TotalWasted())
	assert.Equal(t, 0, m.CollapsedHardlinks())
}

func TestNew_HardlinksAloneAreNoGroup(t *testing.T) {
	b := record("b.txt", 10, 2, "x")
	b2 := record("b2.txt", 10, 2, "x")

	m, err := New([]*config.FileRecord{b, b2}, "MD5")
	require.NoError(t, err)

	// one physical file, nothing to deduplicate
	assert.Empty(t, m.Groups())
	assert.Equal(t, 1, m.CollapsedHardlinks())
}

func TestNew_EmptyFilesExcluded(t *testing.T) {
	// empty files match trivially and never form groups, they do not even
	// need digests
	m, err := New([]*config.FileRecord{
		record("a.txt", 0, 1, "e"),
		record("b.txt", 0, 2, "e"),
		record("c.txt", 0, 3, ""),
	}, "MD5")
	require.NoError(t, err)

	assert.Empty(t, m.Groups())
}

func TestNew_MissingDigest(t *testing.T) {
	_, err := New([]*config.FileRecord{
		record("a.txt", 10, 1, ""),
	}, "MD5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDigest))
	assert.Contains(t, err.Error(), "a.txt")
}

func TestNew_MissingAlgorithm(t *testing.T) {
	_, err := New([]*config.FileRecord{
		record("a.txt", 10, 1, "x"),
	}, "SHA256")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDigest))
}

func TestNew_GroupOrder(t *testing.T) {
	// groups appear in first-discovery order of their digest, members in
	// traversal order
	r1 := record("1.txt", 5, 1, "y")
	r2 := record("2.txt", 5, 2, "x")
	r3 := record("3.txt", 5, 3, "y")
	r4 := record("4.txt", 5, 4, "x")
	r5 := record("5.txt", 5, 5, "y")

	m, err := New([]*config.FileRecord{r1, r2, r3, r4, r5}, "MD5")
	require.NoError(t, err)

	groups := m.Groups()
	require.Len(t, groups, 2)

	assert.Equal(t, "y", groups[0].Digest)
	assert.Equal(t, []*config.FileRecord{r1, r3, r5}, groups[0].Files)

	assert.Equal(t, "x", groups[1].Digest)
	assert.Equal(t, []*config.FileRecord{r2, r4}, groups[1].Files)

	// two duplicates of y (5+5) and one of x (5)
	assert.Equal(t, int64(10), groups[0].WastedSize())
	assert.Equal(t, int64(5), groups[1].WastedSize())
	assert.Equal(t, int64(15), m.TotalWasted())
}
