package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "git", cfg.Backend)
	assert.Equal(t, "table", cfg.Format)
	assert.Equal(t, "auto", cfg.Color)
	assert.True(t, cfg.Cache.Enabled)
	assert.Zero(t, cfg.Progress)
	assert.Zero(t, cfg.MaxCommits)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	// Run from an empty directory so no stray config is discovered.
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Backend, cfg.Backend)
	assert.Equal(t, Default().Format, cfg.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"backend: native\nformat: json\nmax_commits: 500\ncache:\n  enabled: false\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "native", cfg.Backend)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 500, cfg.MaxCommits)
	assert.False(t, cfg.Cache.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LASTMOD_BACKEND", "native")
	t.Setenv("LASTMOD_FORMAT", "csv")
	t.Setenv("LASTMOD_MAX_COMMITS", "42")
	t.Setenv("LASTMOD_CACHE_DISABLED", "true")

	cfg := Default()
	applyEnvOverrides(cfg)

	assert.Equal(t, "native", cfg.Backend)
	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, 42, cfg.MaxCommits)
	assert.False(t, cfg.Cache.Enabled)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend = "svn"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Format = "xml"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Color = "sometimes"
	require.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Backend = "native"
	cfg.Progress = 250
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "native", loaded.Backend)
	assert.Equal(t, 250, loaded.Progress)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "x"), expandPath("~/x"))
	assert.Equal(t, "/abs/x", expandPath("/abs/x"))
	assert.Equal(t, "", expandPath(""))
}
