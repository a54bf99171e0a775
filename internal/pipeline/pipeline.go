// Package pipeline ties one attribution run together: resolve the ref,
// enumerate paths and open the commit log concurrently, consult the cache,
// run the engine, and decide what an unresolved leftover means.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/lastmod/internal/attribution"
	"github.com/rohankatakam/lastmod/internal/cache"
	"github.com/rohankatakam/lastmod/internal/errors"
	"github.com/rohankatakam/lastmod/internal/models"
)

// LogSource is a closeable commit stream. Close tears down whatever feeds
// the stream (a child process for the exec backend); it must be safe after
// the engine stopped reading early.
type LogSource interface {
	attribution.Source
	Close() error
}

// Backend is a repository implementation: exec git or go-git.
type Backend interface {
	// ResolveRef resolves a ref to a full commit hash.
	ResolveRef(ctx context.Context, ref string) (string, error)
	// List enumerates tracked paths at ref, narrowed by pathspec filters.
	List(ctx context.Context, ref string, filters []string) ([]string, error)
	// OpenLog opens the reverse-chronological commit stream at ref.
	OpenLog(ctx context.Context, ref string, filters []string) (LogSource, error)
}

// Options configures one run.
type Options struct {
	Ref        string
	Filters    []string
	Backend    string // recorded in RunInfo only
	NoCache    bool
	Progress   int // log a marker every N commits, 0 = off
	MaxCommits int
}

// Result is the outcome of one run.
type Result struct {
	Run          models.RunInfo
	Attributions []models.Attribution
	Unresolved   []string
}

// Pipeline orchestrates attribution runs against one repository.
type Pipeline struct {
	backend Backend
	cache   *cache.Manager // nil disables caching entirely
	logger  *logrus.Logger
}

// New creates a pipeline. cache may be nil.
func New(backend Backend, cacheManager *cache.Manager, logger *logrus.Logger) *Pipeline {
	return &Pipeline{backend: backend, cache: cacheManager, logger: logger}
}

// Run performs one full attribution pass.
//
// When the stream runs dry with paths still unresolved, Run returns BOTH the
// partial result and an IncompleteResolution error naming every leftover
// path: the caller prints what resolved and fails loudly on the rest.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	if opts.Ref == "" {
		opts.Ref = "HEAD"
	}

	commitSHA, err := p.backend.ResolveRef(ctx, opts.Ref)
	if err != nil {
		return nil, err
	}

	logger := p.logger.WithFields(logrus.Fields{
		"ref":    opts.Ref,
		"commit": commitSHA,
	})
	logger.Debug("starting attribution run")

	// Enumerate the tree and open the log concurrently; both must succeed
	// before resolution starts.
	var paths []string
	var source LogSource

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		paths, err = p.backend.List(gctx, opts.Ref, opts.Filters)
		return err
	})
	g.Go(func() error {
		var err error
		source, err = p.backend.OpenLog(gctx, opts.Ref, opts.Filters)
		return err
	})
	if err := g.Wait(); err != nil {
		if source != nil {
			source.Close()
		}
		return nil, err
	}
	defer source.Close()

	run := models.RunInfo{
		ID:        uuid.New().String(),
		Ref:       opts.Ref,
		CommitSHA: commitSHA,
		Backend:   opts.Backend,
		PathCount: len(paths),
		CreatedAt: start,
	}

	// Cache consult: a hit for (commit, path set) skips engine work.
	if p.cache != nil && !opts.NoCache {
		if attrs, ok := p.cache.Get(commitSHA, paths); ok {
			run.ResolvedCount = len(attrs)
			run.FromCache = true
			run.Duration = time.Since(start)
			logger.WithField("attributions", len(attrs)).Debug("served from cache")
			return &Result{Run: run, Attributions: attrs}, nil
		}
	}

	engineOpts := attribution.Options{MaxCommits: opts.MaxCommits}
	if opts.Progress > 0 {
		engineOpts.ProgressInterval = opts.Progress
		engineOpts.Progress = func(read, remaining int) {
			logger.WithFields(logrus.Fields{
				"commits_read": read,
				"remaining":    remaining,
			}).Info("attribution progress")
		}
	}
	engine := attribution.New(engineOpts)

	resolved, err := engine.Resolve(ctx, paths, source)
	if err != nil {
		return nil, err
	}

	run.ResolvedCount = len(resolved.Attributions)
	run.UnresolvedCount = len(resolved.Unresolved)
	run.CommitsRead = resolved.CommitsRead
	run.Duration = time.Since(start)

	result := &Result{
		Run:          run,
		Attributions: resolved.Attributions,
		Unresolved:   resolved.Unresolved,
	}

	logger.WithFields(logrus.Fields{
		"paths":        len(paths),
		"resolved":     run.ResolvedCount,
		"unresolved":   run.UnresolvedCount,
		"commits_read": run.CommitsRead,
		"duration":     run.Duration.String(),
	}).Debug("attribution run finished")

	if !resolved.Complete() {
		return result, errors.IncompleteResolution(resolved.Unresolved)
	}

	if p.cache != nil && !opts.NoCache {
		if err := p.cache.Put(commitSHA, paths, resolved.Attributions); err != nil {
			// Best effort: a broken cache degrades to uncached runs.
			logger.WithError(err).Warn("failed to store attribution cache")
		}
	}

	return result, nil
}
