package cache

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/lastmod/internal/logging"
	"github.com/rohankatakam/lastmod/internal/models"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "cache.db"), logging.NewNop())
}

func sampleAttrs() []models.Attribution {
	return []models.Attribution{
		{
			Path:       "a.txt",
			CommitSHA:  "abc123",
			Author:     "Alice",
			AuthoredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			ChangeType: models.ChangeModified,
			Subject:    "change a",
		},
	}
}

func TestGetMissOnEmptyCache(t *testing.T) {
	m := newManager(t)

	_, ok := m.Get("abc123", []string{"a.txt"})
	assert.False(t, ok)
}

func TestPutGetRoundTrip(t *testing.T) {
	m := newManager(t)
	paths := []string{"a.txt", "b.txt"}

	require.NoError(t, m.Put("abc123", paths, sampleAttrs()))

	got, ok := m.Get("abc123", paths)
	require.True(t, ok)
	assert.Equal(t, sampleAttrs(), got)
}

func TestGetKeyedByPathSetNotOrder(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Put("abc123", []string{"b.txt", "a.txt"}, sampleAttrs()))

	_, ok := m.Get("abc123", []string{"a.txt", "b.txt"})
	assert.True(t, ok, "path order must not affect the key")

	_, ok = m.Get("abc123", []string{"a.txt"})
	assert.False(t, ok, "a different path set must miss")
}

func TestGetMissOnDifferentCommit(t *testing.T) {
	m := newManager(t)
	paths := []string{"a.txt"}
	require.NoError(t, m.Put("abc123", paths, sampleAttrs()))

	_, ok := m.Get("def456", paths)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	m := newManager(t)
	paths := []string{"a.txt"}
	require.NoError(t, m.Put("abc123", paths, sampleAttrs()))

	require.NoError(t, m.Clear())
	_, ok := m.Get("abc123", paths)
	assert.False(t, ok)

	// Clearing an already-missing cache is fine.
	require.NoError(t, m.Clear())
}

func TestStatus(t *testing.T) {
	m := newManager(t)

	info, err := m.Status()
	require.NoError(t, err)
	assert.Zero(t, info.Size)
	assert.Zero(t, info.Entries)

	require.NoError(t, m.Put("abc123", []string{"a.txt"}, sampleAttrs()))
	require.NoError(t, m.Put("abc123", []string{"b.txt"}, sampleAttrs()))
	require.NoError(t, m.Put("def456", []string{"a.txt"}, sampleAttrs()))

	info, err = m.Status()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Commits)
	assert.Equal(t, 3, info.Entries)
	assert.Positive(t, info.Size)
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath("/repo/.git", "/repo")
	assert.Equal(t, filepath.Join("/repo/.git", "lastmod", "cache.db"), p)

	// Without a git dir the path moves out of the repository and is keyed
	// by the root.
	p1 := DefaultPath("", "/some/repo")
	p2 := DefaultPath("", "/other/repo")
	assert.NotEqual(t, p1, p2)
	assert.True(t, strings.HasSuffix(p1, ".db"))
}
