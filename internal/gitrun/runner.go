// Package gitrun runs git plumbing commands for the exec backend: repository
// detection and ref resolution.
package gitrun

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rohankatakam/lastmod/internal/errors"
)

// Available reports whether a git binary is on PATH. The CLI falls back to
// the native backend when it is not.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Runner executes git commands inside one working tree.
type Runner struct {
	dir string
}

// New creates a runner for the repository at or above dir.
func New(dir string) *Runner {
	return &Runner{dir: dir}
}

// Dir returns the directory the runner executes in.
func (r *Runner) Dir() string {
	return r.dir
}

// RepoRoot returns the absolute path of the working tree root.
func (r *Runner) RepoRoot(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.Gitf(err, "%s is not inside a git working tree", r.dir)
	}
	return out, nil
}

// GitDir returns the absolute path of the .git directory. Linked worktrees
// and bare repositories resolve to wherever git actually keeps state.
func (r *Runner) GitDir(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", errors.Git(err, "locate git directory")
	}
	return out, nil
}

// ResolveRef resolves a ref (branch, tag, abbreviated hash) to a full
// commit hash.
func (r *Runner) ResolveRef(ctx context.Context, ref string) (string, error) {
	out, err := r.run(ctx, "rev-parse", "--verify", ref+"^{commit}")
	if err != nil {
		return "", errors.Gitf(err, "cannot resolve %q to a commit", ref)
	}
	return out, nil
}

func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if stderr != "" {
				return "", fmt.Errorf("git %s: %w (stderr: %s)", args[0], err, stderr)
			}
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}

	return strings.TrimSpace(string(out)), nil
}
