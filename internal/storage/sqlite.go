// Package storage persists attribution runs into sqlite for downstream SQL
// analysis (staleness queries across a tree, author breakdowns).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/lastmod/internal/models"
)

// ErrNotFound is returned when a requested run does not exist
var ErrNotFound = errors.New("not found")

// Store implements run persistence using SQLite
type Store struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// New creates a new SQLite store at path
func New(path string, logger *logrus.Logger) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &Store{
		db:     db,
		logger: logger,
	}

	// Initialize schema
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		ref TEXT NOT NULL,
		commit_sha TEXT NOT NULL,
		backend TEXT,
		path_count INTEGER,
		resolved_count INTEGER,
		unresolved_count INTEGER,
		commits_read INTEGER,
		from_cache INTEGER,
		duration_ns INTEGER,
		created_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS attributions (
		run_id TEXT NOT NULL,
		path TEXT NOT NULL,
		commit_sha TEXT NOT NULL,
		author TEXT,
		author_email TEXT,
		authored_at DATETIME,
		change_type TEXT,
		subject TEXT,
		PRIMARY KEY (run_id, path),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_attributions_run ON attributions(run_id);
	CREATE INDEX IF NOT EXISTS idx_attributions_commit ON attributions(commit_sha);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores one run and its attributions in a single transaction
func (s *Store) SaveRun(ctx context.Context, run *models.RunInfo, attrs []models.Attribution) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runQuery := `
		INSERT INTO runs
		(id, ref, commit_sha, backend, path_count, resolved_count,
		 unresolved_count, commits_read, from_cache, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, runQuery,
		run.ID, run.Ref, run.CommitSHA, run.Backend, run.PathCount,
		run.ResolvedCount, run.UnresolvedCount, run.CommitsRead,
		run.FromCache, int64(run.Duration), run.CreatedAt)
	if err != nil {
		return err
	}

	attrQuery := `
		INSERT INTO attributions
		(run_id, path, commit_sha, author, author_email, authored_at, change_type, subject)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, a := range attrs {
		_, err := tx.ExecContext(ctx, attrQuery,
			run.ID, a.Path, a.CommitSHA, a.Author, a.AuthorEmail,
			a.AuthoredAt, string(a.ChangeType), a.Subject)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"run":          run.ID,
		"attributions": len(attrs),
	}).Debug("run persisted")
	return nil
}

// GetRun loads one run by ID
func (s *Store) GetRun(ctx context.Context, id string) (*models.RunInfo, error) {
	var run models.RunInfo
	query := `SELECT * FROM runs WHERE id = ?`

	err := s.db.GetContext(ctx, &run, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &run, nil
}

// GetAttributions loads the attributions of one run, in insertion order
func (s *Store) GetAttributions(ctx context.Context, runID string) ([]models.Attribution, error) {
	var attrs []models.Attribution
	query := `
		SELECT path, commit_sha, author, author_email, authored_at, change_type, subject
		FROM attributions WHERE run_id = ? ORDER BY rowid
	`

	err := s.db.SelectContext(ctx, &attrs, query, runID)
	if err != nil {
		return nil, err
	}

	return attrs, nil
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.RunInfo, error) {
	var runs []models.RunInfo
	query := `SELECT * FROM runs ORDER BY created_at DESC LIMIT ?`

	err := s.db.SelectContext(ctx, &runs, query, limit)
	if err != nil {
		return nil, err
	}

	return runs, nil
}
