// Package gitnative implements the tree lister and commit log source on
// go-git, so attribution works without a git binary on PATH. Streams match
// the exec backend on linear histories; merge commits are diffed against the
// first parent only.
package gitnative

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/rohankatakam/lastmod/internal/errors"
)

// Backend is an in-process git repository.
type Backend struct {
	repo *git.Repository
}

// Open opens the repository at or above dir.
func Open(dir string) (*Backend, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Gitf(err, "%s is not inside a git repository", dir)
	}
	return &Backend{repo: repo}, nil
}

// ResolveRef resolves a ref to a full commit hash.
func (b *Backend) ResolveRef(ctx context.Context, ref string) (string, error) {
	hash, err := b.resolve(ref)
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

// List returns every tracked path in the tree at ref, narrowed by filters.
// Filters behave like directory or exact-path pathspecs.
func (b *Backend) List(ctx context.Context, ref string, filters []string) ([]string, error) {
	hash, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}

	commit, err := b.repo.CommitObject(*hash)
	if err != nil {
		return nil, errors.Gitf(err, "load commit %s", hash)
	}

	iter, err := commit.Files()
	if err != nil {
		return nil, errors.Gitf(err, "open tree at %s", ref)
	}

	var paths []string
	err = iter.ForEach(func(f *object.File) error {
		if matchesFilters(f.Name, filters) {
			paths = append(paths, f.Name)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Gitf(err, "walk tree at %s", ref)
	}

	if len(paths) == 0 {
		return nil, errors.EmptyEnumeration(ref, filters)
	}
	return paths, nil
}

func (b *Backend) resolve(ref string) (*plumbing.Hash, error) {
	hash, err := b.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, errors.Gitf(err, "cannot resolve %q to a commit", ref)
	}
	return hash, nil
}

// matchesFilters mirrors the useful subset of git pathspec matching: an
// exact path, or a directory prefix with or without a trailing slash.
func matchesFilters(path string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		f = strings.TrimSuffix(f, "/")
		if f == "" || path == f || strings.HasPrefix(path, f+"/") {
			return true
		}
	}
	return false
}
