package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"voxpitch/internal/config"
)

// Status tracks a transform job through its lifecycle.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job records one transform invocation. The journal is diagnostic only;
// artifact identity lives entirely on the filesystem.
type Job struct {
	ID           int64
	SourceID     string
	DerivedID    string
	Parameter    float64
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "jobs.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Begin records the start of a transform invocation.
func (s *Store) Begin(ctx context.Context, sourceID string, parameter float64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transform_jobs (source_id, parameter, status, created_at)
         VALUES (?, ?, ?, ?)`,
		sourceID, parameter, StatusRunning, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Complete marks a job as done and records the derived id it produced.
func (s *Store) Complete(ctx context.Context, id int64, derivedID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE transform_jobs SET status = ?, derived_id = ?, finished_at = ? WHERE id = ?`,
		StatusDone, derivedID, now, id,
	)
	if err != nil {
		return fmt.Errorf("complete job %d: %w", id, err)
	}
	return nil
}

// Fail marks a job as failed with a diagnostic message.
func (s *Store) Fail(ctx context.Context, id int64, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE transform_jobs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		StatusFailed, message, now, id,
	)
	if err != nil {
		return fmt.Errorf("fail job %d: %w", id, err)
	}
	return nil
}

// Recent returns the newest jobs, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_id, COALESCE(derived_id, ''), parameter, status,
                COALESCE(error_message, ''), created_at, finished_at
         FROM transform_jobs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		var status string
		var createdAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&job.ID, &job.SourceID, &job.DerivedID, &job.Parameter,
			&status, &job.ErrorMessage, &createdAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.Status = Status(status)
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			job.CreatedAt = parsed
		}
		if finishedAt.Valid {
			if parsed, parseErr := time.Parse(time.RFC3339Nano, finishedAt.String); parseErr == nil {
				job.FinishedAt = &parsed
			}
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
