package gitlog

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestRepo builds a throwaway repository with three commits touching
// a.txt, b.txt, then a.txt again. Skips the test when git is missing.
func initTestRepo(t *testing.T) string {
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
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	run("init")
	write("a.txt", "one")
	run("add", "a.txt")
	run("commit", "-m", "add a")
	write("b.txt", "two")
	run("add", "b.txt")
	run("commit", "-m", "add b")
	write("a.txt", "one more")
	run("add", "a.txt")
	run("commit", "-m", "touch a again")

	return dir
}

func drain(t *testing.T, source *ExecSource) []string {
	t.Helper()
	var shas []string
	for {
		commit, err := source.Next()
		if err == io.EOF {
			return shas
		}
		require.NoError(t, err)
		shas = append(shas, commit.SHA)
	}
}

func TestOpenLogStreamsNewestFirst(t *testing.T) {
	dir := initTestRepo(t)

	source, err := OpenLog(context.Background(), dir, "HEAD", nil)
	require.NoError(t, err)
	defer source.Close()

	var subjects []string
	var paths [][]string
	for {
		commit, err := source.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		subjects = append(subjects, commit.Subject)
		var ps []string
		for _, fc := range commit.Files {
			ps = append(ps, fc.Path)
		}
		paths = append(paths, ps)
	}

	require.Equal(t, []string{"touch a again", "add b", "add a"}, subjects)
	assert.Equal(t, []string{"a.txt"}, paths[0])
	assert.Equal(t, []string{"b.txt"}, paths[1])
	assert.Equal(t, []string{"a.txt"}, paths[2])
}

func TestOpenLogWithFilters(t *testing.T) {
	dir := initTestRepo(t)

	source, err := OpenLog(context.Background(), dir, "HEAD", []string{"b.txt"})
	require.NoError(t, err)
	defer source.Close()

	var subjects []string
	for {
		commit, err := source.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		subjects = append(subjects, commit.Subject)
	}

	assert.Equal(t, []string{"add b"}, subjects)
}

func TestOpenLogBadRef(t *testing.T) {
	dir := initTestRepo(t)

	source, err := OpenLog(context.Background(), dir, "no-such-ref", nil)
	require.NoError(t, err, "failure should surface on first read, not open")
	defer source.Close()

	_, err = source.Next()
	require.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestOpenLogEarlyClose(t *testing.T) {
	dir := initTestRepo(t)

	source, err := OpenLog(context.Background(), dir, "HEAD", nil)
	require.NoError(t, err)

	commit, err := source.Next()
	require.NoError(t, err)
	assert.Equal(t, "touch a again", commit.Subject)

	// Closing with records still in the pipe must not hang or error.
	require.NoError(t, source.Close())
}

func TestOpenLogFullDrainThenClose(t *testing.T) {
	dir := initTestRepo(t)

	source, err := OpenLog(context.Background(), dir, "HEAD", nil)
	require.NoError(t, err)

	shas := drain(t, source)
	assert.Len(t, shas, 3)
	require.NoError(t, source.Close())
}
