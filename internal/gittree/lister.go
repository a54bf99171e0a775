// Package gittree enumerates the tracked paths at a reference for the exec
// backend.
package gittree

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rohankatakam/lastmod/internal/errors"
)

// Lister enumerates tracked files via `git ls-tree`.
type Lister struct {
	dir string
}

// NewLister creates a lister for the repository at dir.
func NewLister(dir string) *Lister {
	return &Lister{dir: dir}
}

// List returns every tracked path under ref, narrowed by pathspec filters.
// Output is NUL-delimited on the wire so paths with unusual characters
// survive; the same framing decision the log parser makes.
//
// Zero matching paths is a distinct failure: it almost always means a
// mistyped filter, and surfacing it here beats handing the engine an empty
// set and failing later with a confusing no-input error.
func (l *Lister) List(ctx context.Context, ref string, filters []string) ([]string, error) {
	args := []string{"ls-tree", "-r", "-z", "--name-only", ref}
	if len(filters) > 0 {
		args = append(args, "--")
		args = append(args, filters...)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = l.dir

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, errors.Gitf(
				fmt.Errorf("%w (stderr: %s)", err, strings.TrimSpace(string(exitErr.Stderr))),
				"list tree at %s", ref)
		}
		return nil, errors.Gitf(err, "list tree at %s", ref)
	}

	var paths []string
	for _, p := range strings.Split(string(out), "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}

	if len(paths) == 0 {
		return nil, errors.EmptyEnumeration(ref, filters)
	}

	return paths, nil
}
