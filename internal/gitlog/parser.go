// Package gitlog parses the commit log stream the attribution engine
// consumes, and runs `git log` to produce it.
//
// Headers are framed with control bytes (NUL lead, unit-separator fields)
// rather than printable separators, so author names and subjects can never
// collide with the framing.
package gitlog

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/rohankatakam/lastmod/internal/errors"
	"github.com/rohankatakam/lastmod/internal/models"
)

const (
	// LogFormat is the --format argument for git log. %x00 marks a header
	// line, %x1f separates hash, author name, author email, strict ISO
	// date, and subject.
	LogFormat = "%x00%H%x1f%an%x1f%ae%x1f%aI%x1f%s"

	headerLead      = "\x00"
	fieldSeparator  = "\x1f"
	headerFieldsLen = 5

	// maxScanTokenSize keeps bufio.Scanner from failing on unusually long
	// lines; subjects are unbounded.
	maxScanTokenSize = 10 * 1024 * 1024 // 10MB
)

// Stream is a pull parser over a raw git log byte stream. It yields one
// Commit per header line, with the name-status lines that follow it
// attached as file changes. Parsing is a pure function of the input bytes.
type Stream struct {
	scanner *bufio.Scanner
	pending *models.Commit
	done    bool
	err     error
}

// NewStream wraps r in a record parser.
func NewStream(r io.Reader) *Stream {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)
	return &Stream{scanner: scanner}
}

// Next returns the next commit record, or io.EOF at the end of the stream.
// A changed-path line before any header is a protocol error: the upstream
// log source violated its contract and the stream is abandoned.
func (s *Stream) Next() (*models.Commit, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if strings.HasPrefix(line, headerLead) {
			header, ok := parseHeader(line)
			if !ok {
				// Tolerate log format variations: a malformed header
				// is skipped, not fatal.
				continue
			}
			if s.pending != nil {
				out := s.pending
				s.pending = header
				return out, nil
			}
			s.pending = header
			continue
		}

		change, ok := parseNameStatus(line)
		if !ok {
			// Blank separators and merge boilerplate.
			continue
		}
		if s.pending == nil {
			s.err = errors.Protocolf("changed-path line %q before any commit header", line)
			return nil, s.err
		}
		s.pending.Files = append(s.pending.Files, change)
	}

	if err := s.scanner.Err(); err != nil {
		s.err = err
		return nil, err
	}

	s.done = true
	if s.pending != nil {
		out := s.pending
		s.pending = nil
		return out, nil
	}
	return nil, io.EOF
}

// parseHeader splits a NUL-led header line into a commit. Reports false when
// the field count is off or the date is not strict ISO.
func parseHeader(line string) (*models.Commit, bool) {
	fields := strings.Split(strings.TrimPrefix(line, headerLead), fieldSeparator)
	if len(fields) != headerFieldsLen {
		return nil, false
	}

	authoredAt, err := time.Parse(time.RFC3339, fields[3])
	if err != nil {
		return nil, false
	}

	return &models.Commit{
		SHA:         fields[0],
		Author:      fields[1],
		AuthorEmail: fields[2],
		AuthoredAt:  authoredAt,
		Subject:     fields[4],
	}, true
}

// parseNameStatus parses one `git log --name-status` line, e.g. "M\tmain.go"
// or "R087\told.go\tnew.go". Rename and copy lines carry both sides.
func parseNameStatus(line string) (models.FileChange, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 || fields[0] == "" {
		return models.FileChange{}, false
	}

	tag := fields[0][0]
	switch tag {
	case 'R', 'C':
		if len(fields) < 3 {
			return models.FileChange{}, false
		}
		return models.FileChange{
			Path:    fields[2],
			OldPath: fields[1],
			Type:    models.ChangeType(string(tag)),
		}, true
	case 'A', 'D', 'M', 'T', 'U', 'X', 'B':
		return models.FileChange{
			Path: fields[1],
			Type: models.ChangeType(string(tag)),
		}, true
	default:
		return models.FileChange{}, false
	}
}

// ParseRecords parses a complete raw log buffer. Fixtures and tests use it;
// live resolution goes through Stream so the engine can stop early.
func ParseRecords(raw []byte) ([]*models.Commit, error) {
	stream := NewStream(bytes.NewReader(raw))

	var commits []*models.Commit
	for {
		commit, err := stream.Next()
		if err == io.EOF {
			return commits, nil
		}
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
}
