package models

import (
	"time"
)

// ChangeType is the git name-status tag for one changed path.
type ChangeType string

const (
	ChangeAdded       ChangeType = "A"
	ChangeCopied      ChangeType = "C"
	ChangeDeleted     ChangeType = "D"
	ChangeModified    ChangeType = "M"
	ChangeRenamed     ChangeType = "R"
	ChangeTypeChanged ChangeType = "T"
	ChangeUnmerged    ChangeType = "U"
	ChangeUnknown     ChangeType = "X"
)

// FileChange represents one file touched by a commit.
// For renames and copies OldPath carries the pre-change side; both sides
// count as touched when matching paths against a commit.
type FileChange struct {
	Path    string     `json:"path"`
	OldPath string     `json:"old_path,omitempty"`
	Type    ChangeType `json:"type"`
}

// Touched returns every path this change counts as touching.
func (fc FileChange) Touched() []string {
	if fc.OldPath != "" && fc.OldPath != fc.Path {
		return []string{fc.Path, fc.OldPath}
	}
	return []string{fc.Path}
}

// Commit represents one parsed commit log record. It is transient: created
// per log entry and discarded once its changed paths have been checked.
type Commit struct {
	SHA         string       `json:"sha"`
	Author      string       `json:"author"`
	AuthorEmail string       `json:"author_email"`
	Subject     string       `json:"subject"`
	AuthoredAt  time.Time    `json:"authored_at"`
	Files       []FileChange `json:"files"`
}

// Attribution maps one path to the commit that most recently touched it.
// Created exactly once per path, immutable afterwards.
type Attribution struct {
	Path        string     `json:"path" yaml:"path" db:"path"`
	CommitSHA   string     `json:"commit" yaml:"commit" db:"commit_sha"`
	Author      string     `json:"author" yaml:"author" db:"author"`
	AuthorEmail string     `json:"author_email" yaml:"author_email" db:"author_email"`
	AuthoredAt  time.Time  `json:"authored_at" yaml:"authored_at" db:"authored_at"`
	ChangeType  ChangeType `json:"change_type" yaml:"change_type" db:"change_type"`
	Subject     string     `json:"subject" yaml:"subject" db:"subject"`
}

// RunInfo records one attribution run for logging and the sqlite export.
type RunInfo struct {
	ID              string        `json:"id" db:"id"`
	Ref             string        `json:"ref" db:"ref"`
	CommitSHA       string        `json:"commit_sha" db:"commit_sha"`
	Backend         string        `json:"backend" db:"backend"`
	PathCount       int           `json:"path_count" db:"path_count"`
	ResolvedCount   int           `json:"resolved_count" db:"resolved_count"`
	UnresolvedCount int           `json:"unresolved_count" db:"unresolved_count"`
	CommitsRead     int           `json:"commits_read" db:"commits_read"`
	FromCache       bool          `json:"from_cache" db:"from_cache"`
	Duration        time.Duration `json:"duration" db:"duration_ns"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
}
