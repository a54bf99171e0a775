package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/lastmod/internal/logging"
)

// buildLinearRepo creates a repository with a linear history where every
// path has a well-defined most-recent commit.
func buildLinearRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=Test User",
			"GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=Test User",
			"GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	write := func(name, content string) {
		t.Helper()
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	run("init")
	write("a.txt", "one")
	write("src/b.go", "package b")
	run("add", ".")
	run("commit", "-m", "initial layout")

	write("a.txt", "two")
	run("add", ".")
	run("commit", "-m", "update a")

	write("src/c.go", "package c")
	run("add", ".")
	run("commit", "-m", "add c")

	return dir
}

// TestExecNativeEquivalence runs the same attribution through both backends
// on a linear history and expects identical path-to-commit mappings.
func TestExecNativeEquivalence(t *testing.T) {
	dir := buildLinearRepo(t)
	ctx := context.Background()

	execPipeline := New(NewExecBackend(dir), nil, logging.NewNop())
	execResult, err := execPipeline.Run(ctx, Options{Ref: "HEAD"})
	require.NoError(t, err)

	native, err := NewNativeBackend(dir)
	require.NoError(t, err)
	nativePipeline := New(native, nil, logging.NewNop())
	nativeResult, err := nativePipeline.Run(ctx, Options{Ref: "HEAD"})
	require.NoError(t, err)

	assert.Equal(t, execResult.Run.CommitSHA, nativeResult.Run.CommitSHA)
	require.Equal(t, len(execResult.Attributions), len(nativeResult.Attributions))

	byPath := func(result *Result) map[string]string {
		m := make(map[string]string)
		for _, a := range result.Attributions {
			m[a.Path] = a.CommitSHA
		}
		return m
	}
	assert.Equal(t, byPath(execResult), byPath(nativeResult))
	assert.Empty(t, execResult.Unresolved)
	assert.Empty(t, nativeResult.Unresolved)
}

// TestExecBackendFiltered narrows the run to a subdirectory.
func TestExecBackendFiltered(t *testing.T) {
	dir := buildLinearRepo(t)

	p := New(NewExecBackend(dir), nil, logging.NewNop())
	result, err := p.Run(context.Background(), Options{Ref: "HEAD", Filters: []string{"src"}})
	require.NoError(t, err)

	require.Len(t, result.Attributions, 2)
	for _, a := range result.Attributions {
		assert.Contains(t, a.Path, "src/")
	}
}
