// Package cache persists attribution results between runs. Keys are
// (resolved commit hash, hash of the requested path set): a moved ref
// resolves to a new commit and simply misses, so there is no explicit
// invalidation. Cache failures never fail a run; callers degrade to an
// uncached pass.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/rohankatakam/lastmod/internal/models"
)

const openTimeout = time.Second

// Manager handles cache operations against one bbolt file.
type Manager struct {
	path   string
	logger *logrus.Logger
}

// NewManager creates a cache manager for the given file path.
func NewManager(path string, logger *logrus.Logger) *Manager {
	return &Manager{path: path, logger: logger}
}

// Path returns the cache file location.
func (m *Manager) Path() string {
	return m.path
}

// DefaultPath places the cache next to the repository's own state: inside
// the git dir when there is one, otherwise under the user cache dir keyed
// by a hash of the repository root (bare repos, linked worktrees).
func DefaultPath(gitDir, repoRoot string) string {
	if gitDir != "" {
		return filepath.Join(gitDir, "lastmod", "cache.db")
	}

	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	sum := sha256.Sum256([]byte(repoRoot))
	return filepath.Join(base, "lastmod", fmt.Sprintf("%x.db", sum[:8]))
}

// pathSetKey hashes the sorted requested path set, so the same set in any
// order hits the same entry.
func pathSetKey(paths []string) []byte {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	return sum[:]
}

// Get returns the cached attributions for (commit, paths), or false on any
// miss or cache failure.
func (m *Manager) Get(commit string, paths []string) ([]models.Attribution, bool) {
	db, err := m.open(true)
	if err != nil {
		m.logger.WithError(err).Debug("cache open failed, treating as miss")
		return nil, false
	}
	defer db.Close()

	var raw []byte
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(commit))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get(pathSetKey(paths)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil || raw == nil {
		return nil, false
	}

	var attrs []models.Attribution
	if err := json.Unmarshal(raw, &attrs); err != nil {
		m.logger.WithError(err).Warn("corrupt cache entry, treating as miss")
		return nil, false
	}

	m.logger.WithFields(logrus.Fields{"commit": commit, "paths": len(paths)}).
		Debug("cache hit")
	return attrs, true
}

// Put stores the attributions for (commit, paths). Best effort: the caller
// logs and moves on when it fails.
func (m *Manager) Put(commit string, paths []string, attrs []models.Attribution) error {
	raw, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal attributions: %w", err)
	}

	db, err := m.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(commit))
		if err != nil {
			return err
		}
		return bucket.Put(pathSetKey(paths), raw)
	})
}

// Clear removes the cache file entirely.
func (m *Manager) Clear() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Info describes the cache for `lastmod cache status`.
type Info struct {
	Path    string
	Size    int64
	Commits int
	Entries int
}

// Status inspects the cache file. A missing file reports zero values, not
// an error.
func (m *Manager) Status() (*Info, error) {
	info := &Info{Path: m.path}

	stat, err := os.Stat(m.path)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, err
	}
	info.Size = stat.Size()

	db, err := m.open(true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	err = db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(_ []byte, bucket *bolt.Bucket) error {
			info.Commits++
			info.Entries += bucket.Stats().KeyN
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (m *Manager) open(readonly bool) (*bolt.DB, error) {
	if readonly {
		// Read-only open fails on a missing file instead of creating an
		// empty cache.
		return bolt.Open(m.path, 0600, &bolt.Options{Timeout: openTimeout, ReadOnly: true})
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return bolt.Open(m.path, 0600, &bolt.Options{Timeout: openTimeout})
}
