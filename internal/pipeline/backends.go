package pipeline

import (
	"context"

	"github.com/rohankatakam/lastmod/internal/gitlog"
	"github.com/rohankatakam/lastmod/internal/gitnative"
	"github.com/rohankatakam/lastmod/internal/gitrun"
	"github.com/rohankatakam/lastmod/internal/gittree"
)

// ExecBackend shells out to the git binary. It is the default backend and
// the fastest on large repositories.
type ExecBackend struct {
	dir    string
	runner *gitrun.Runner
	lister *gittree.Lister
}

// NewExecBackend creates an exec backend rooted at dir.
func NewExecBackend(dir string) *ExecBackend {
	return &ExecBackend{
		dir:    dir,
		runner: gitrun.New(dir),
		lister: gittree.NewLister(dir),
	}
}

func (b *ExecBackend) ResolveRef(ctx context.Context, ref string) (string, error) {
	return b.runner.ResolveRef(ctx, ref)
}

func (b *ExecBackend) List(ctx context.Context, ref string, filters []string) ([]string, error) {
	return b.lister.List(ctx, ref, filters)
}

func (b *ExecBackend) OpenLog(ctx context.Context, ref string, filters []string) (LogSource, error) {
	return gitlog.OpenLog(ctx, b.dir, ref, filters)
}

// NativeBackend runs on go-git, for hosts without a git binary.
type NativeBackend struct {
	backend *gitnative.Backend
}

// NewNativeBackend opens the repository at or above dir in-process.
func NewNativeBackend(dir string) (*NativeBackend, error) {
	backend, err := gitnative.Open(dir)
	if err != nil {
		return nil, err
	}
	return &NativeBackend{backend: backend}, nil
}

func (b *NativeBackend) ResolveRef(ctx context.Context, ref string) (string, error) {
	return b.backend.ResolveRef(ctx, ref)
}

func (b *NativeBackend) List(ctx context.Context, ref string, filters []string) ([]string, error) {
	return b.backend.List(ctx, ref, filters)
}

func (b *NativeBackend) OpenLog(ctx context.Context, ref string, filters []string) (LogSource, error) {
	return b.backend.OpenLog(ctx, ref, filters)
}
