package gitlog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rohankatakam/lastmod/internal/errors"
	"github.com/rohankatakam/lastmod/internal/models"
)

// ExecSource streams commit records out of a running `git log` process.
// Closing the source kills the child, which is how the engine's early
// termination avoids draining the rest of the history.
type ExecSource struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc
	stdout io.ReadCloser
	stderr *bytes.Buffer
	stream *Stream
	waited bool
}

// OpenLog starts `git log --name-status` for ref in the repository at dir,
// newest commit first, optionally narrowed by pathspec filters.
func OpenLog(ctx context.Context, dir, ref string, filters []string) (*ExecSource, error) {
	ctx, cancel := context.WithCancel(ctx)

	args := []string{"log", "--name-status", "--format=" + LogFormat, ref}
	if len(filters) > 0 {
		args = append(args, "--")
		args = append(args, filters...)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open git log stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start git log: %w", err)
	}

	log.WithFields(log.Fields{"dir": dir, "ref": ref, "filters": filters}).
		Debug("git log started")

	return &ExecSource{
		cmd:    cmd,
		cancel: cancel,
		stdout: stdout,
		stderr: &stderr,
		stream: NewStream(stdout),
	}, nil
}

// Next returns the next commit record. At clean end of stream it waits on
// the child so a failed invocation (a bad ref, a broken repository)
// surfaces as an error with git's stderr attached instead of a silently
// empty log.
func (s *ExecSource) Next() (*models.Commit, error) {
	commit, err := s.stream.Next()
	if err == io.EOF {
		if waitErr := s.wait(); waitErr != nil {
			return nil, waitErr
		}
		return nil, io.EOF
	}
	if err != nil {
		if errors.IsProtocol(err) {
			return nil, err
		}
		return nil, s.withStderr(err)
	}
	return commit, nil
}

// Close tears the child process down. Safe to call after a clean EOF and
// required after early termination, where the pipe is deliberately left
// undrained.
func (s *ExecSource) Close() error {
	s.cancel()
	s.stdout.Close()
	if !s.waited {
		s.waited = true
		// The child was killed mid-stream; its exit status is noise.
		s.cmd.Wait()
	}
	return nil
}

func (s *ExecSource) wait() error {
	if s.waited {
		return nil
	}
	s.waited = true
	if err := s.cmd.Wait(); err != nil {
		return s.withStderr(fmt.Errorf("git log: %w", err))
	}
	return nil
}

func (s *ExecSource) withStderr(err error) error {
	if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
		return errors.Gitf(err, "git log failed: %s", msg)
	}
	return err
}
