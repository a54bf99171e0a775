package gitnative

import (
	"context"
	"io"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/rohankatakam/lastmod/internal/errors"
	"github.com/rohankatakam/lastmod/internal/models"
)

// LogSource walks the first-parent chain from a resolved revision, newest
// commit first, deriving each commit's changed paths by diffing its tree
// against the first parent's. Rename detection is off: a rename shows up as
// a delete plus an add, which touches the same paths under a different tag.
type LogSource struct {
	ctx  context.Context
	b    *Backend
	next plumbing.Hash
	done bool
}

// OpenLog positions a log source at ref.
func (b *Backend) OpenLog(ctx context.Context, ref string, filters []string) (*LogSource, error) {
	// Filters are not pushed down; the engine ignores paths it was not
	// asked about, so an unfiltered stream resolves identically and only
	// walks a little further.
	_ = filters

	hash, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}
	return &LogSource{ctx: ctx, b: b, next: *hash}, nil
}

// Next returns the next commit record, or io.EOF past the root commit.
func (s *LogSource) Next() (*models.Commit, error) {
	if s.done {
		return nil, io.EOF
	}
	if err := s.ctx.Err(); err != nil {
		return nil, err
	}

	commit, err := s.b.repo.CommitObject(s.next)
	if err != nil {
		return nil, errors.Gitf(err, "load commit %s", s.next)
	}

	record := &models.Commit{
		SHA:         commit.Hash.String(),
		Author:      commit.Author.Name,
		AuthorEmail: commit.Author.Email,
		AuthoredAt:  commit.Author.When,
		Subject:     subject(commit.Message),
	}

	record.Files, err = s.changedFiles(commit)
	if err != nil {
		return nil, err
	}

	if commit.NumParents() == 0 {
		s.done = true
	} else {
		s.next = commit.ParentHashes[0]
	}
	return record, nil
}

// Close satisfies the log source contract; there is no process to tear down.
func (s *LogSource) Close() error {
	s.done = true
	return nil
}

func (s *LogSource) changedFiles(commit *object.Commit) ([]models.FileChange, error) {
	tree, err := commit.Tree()
	if err != nil {
		return nil, errors.Gitf(err, "load tree for %s", commit.Hash)
	}

	// Root commit: every file in the tree was added.
	if commit.NumParents() == 0 {
		iter, err := commit.Files()
		if err != nil {
			return nil, errors.Gitf(err, "open tree for %s", commit.Hash)
		}
		var changes []models.FileChange
		err = iter.ForEach(func(f *object.File) error {
			changes = append(changes, models.FileChange{Path: f.Name, Type: models.ChangeAdded})
			return nil
		})
		if err != nil {
			return nil, errors.Gitf(err, "walk tree for %s", commit.Hash)
		}
		return changes, nil
	}

	parent, err := commit.Parent(0)
	if err != nil {
		return nil, errors.Gitf(err, "load parent of %s", commit.Hash)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, errors.Gitf(err, "load parent tree of %s", commit.Hash)
	}

	diff, err := parentTree.DiffContext(s.ctx, tree)
	if err != nil {
		return nil, errors.Gitf(err, "diff %s against first parent", commit.Hash)
	}

	var changes []models.FileChange
	for _, ch := range diff {
		action, err := ch.Action()
		if err != nil {
			return nil, errors.Gitf(err, "classify change in %s", commit.Hash)
		}
		switch action {
		case merkletrie.Insert:
			changes = append(changes, models.FileChange{Path: ch.To.Name, Type: models.ChangeAdded})
		case merkletrie.Delete:
			changes = append(changes, models.FileChange{Path: ch.From.Name, Type: models.ChangeDeleted})
		case merkletrie.Modify:
			changes = append(changes, models.FileChange{Path: ch.To.Name, Type: models.ChangeModified})
		}
	}
	return changes, nil
}

func subject(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimRight(message[:i], "\r")
	}
	return message
}
