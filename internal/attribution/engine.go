// Package attribution resolves a set of paths against a reverse-chronological
// commit stream: each path is attributed to the first commit in the stream
// that touches it, and the stream is abandoned the moment every path has an
// owner. One shared pass replaces a per-file history query per path.
package attribution

import (
	"context"
	"io"

	"github.com/rohankatakam/lastmod/internal/errors"
	"github.com/rohankatakam/lastmod/internal/models"
)

// Source is a pull iterator over commit records, newest first.
// Next returns io.EOF when the stream is exhausted.
type Source interface {
	Next() (*models.Commit, error)
}

// Result is the outcome of one Resolve call. Attributions are ordered by
// resolution event (stream order, not input order). Every input path appears
// in exactly one of Attributions and Unresolved.
type Result struct {
	Attributions []models.Attribution
	Unresolved   []string
	CommitsRead  int
}

// Complete reports whether every requested path was attributed.
func (r *Result) Complete() bool {
	return len(r.Unresolved) == 0
}

// Options tunes a single engine. The zero value is a plain unbounded run
// with no progress reporting.
type Options struct {
	// Progress, when set, is called every ProgressInterval commits with the
	// number of commits read so far and the number of paths still
	// unresolved. Observational only.
	Progress func(commitsRead, remaining int)

	// ProgressInterval is how many commits between Progress calls.
	// Ignored when Progress is nil; defaults to 1000 when Progress is set.
	ProgressInterval int

	// MaxCommits caps how many records are read from the source.
	// 0 means unbounded.
	MaxCommits int
}

// Engine performs streaming path-to-commit resolution. It is single-use
// state-free: one Engine can serve sequential Resolve calls, but a call owns
// its path set and output exclusively while it runs.
type Engine struct {
	opts Options
}

// New creates an engine with the given options.
func New(opts Options) *Engine {
	if opts.Progress != nil && opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 1000
	}
	return &Engine{opts: opts}
}

// Resolve consumes source lazily and attributes each path to the first
// commit that touches it. The source must be ordered newest commit first;
// first match wins, which under that ordering means most recent.
//
// Reading stops as soon as the unresolved set is empty. A source that runs
// dry before then is not an error here: the partial result carries the
// leftover paths and the caller decides whether that is fatal.
func (e *Engine) Resolve(ctx context.Context, paths []string, source Source) (*Result, error) {
	if len(paths) == 0 {
		return nil, errors.NoInput()
	}

	remaining := NewPathSet(paths...)
	result := &Result{
		Attributions: make([]models.Attribution, 0, remaining.Len()),
	}

	for remaining.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.opts.MaxCommits > 0 && result.CommitsRead >= e.opts.MaxCommits {
			break
		}

		commit, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		result.CommitsRead++

		for _, fc := range commit.Files {
			for _, path := range fc.Touched() {
				if !remaining.Remove(path) {
					continue
				}
				result.Attributions = append(result.Attributions, models.Attribution{
					Path:        path,
					CommitSHA:   commit.SHA,
					Author:      commit.Author,
					AuthorEmail: commit.AuthorEmail,
					AuthoredAt:  commit.AuthoredAt,
					ChangeType:  fc.Type,
					Subject:     commit.Subject,
				})
			}
		}

		if e.opts.Progress != nil && result.CommitsRead%e.opts.ProgressInterval == 0 {
			e.opts.Progress(result.CommitsRead, remaining.Len())
		}
	}

	result.Unresolved = remaining.Paths()
	return result, nil
}
