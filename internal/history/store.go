// Package history records scan runs and the entries they wrote in a SQLite
// database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/todoscan/internal/models"
	"github.com/harrison/todoscan/internal/todo"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one recorded scan.
type Run struct {
	ID               string
	Root             string
	Output           string
	Status           string
	StartedAt        time.Time
	FinishedAt       time.Time // zero while running
	FilesScanned     int
	EntriesWritten   int
	DuplicateSkipped int
	EmptySkipped     int
	Warnings         int
	DurationMS       int64
	ErrorMessage     string
}

// EntryRecord is one written entry of a run.
type EntryRecord struct {
	ID       int64
	RunID    string
	Task     string
	Priority string
	Source   string
	Line     int
	Rendered string
}

// Store manages the history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens the database at dbPath, creating parent directories and
// applying pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// Connection parameters apply to every pooled connection, unlike PRAGMAs.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return store, nil
}

// execWithRetry retries a statement with exponential backoff while the
// database is locked by another process.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// StartRun inserts a running run for root and returns it.
func (s *Store) StartRun(ctx context.Context, root, output string) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Root:      root,
		Output:    output,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}

	query := `INSERT INTO runs (id, root, output, status, started_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, run.ID, run.Root, run.Output, run.Status, run.StartedAt); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordEntry stores an entry written during run runID.
func (s *Store) RecordEntry(ctx context.Context, runID string, e todo.Entry) error {
	query := `INSERT INTO entries (run_id, task, priority, source, line, rendered) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, runID, e.Task, e.Priority, e.Source, e.Line, e.String()); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of run. A non-nil scanErr marks the run
// failed.
func (s *Store) FinishRun(ctx context.Context, run *Run, result models.ScanResult, scanErr error) error {
	run.FinishedAt = time.Now().UTC()
	run.FilesScanned = result.FilesScanned
	run.EntriesWritten = result.EntriesWritten
	run.DuplicateSkipped = result.DuplicateSkipped
	run.EmptySkipped = result.EmptySkipped
	run.Warnings = len(result.Warnings)
	run.DurationMS = result.Duration.Milliseconds()
	run.Status = StatusCompleted
	run.ErrorMessage = ""
	if scanErr != nil {
		run.Status = StatusFailed
		run.ErrorMessage = scanErr.Error()
	}

	query := `UPDATE runs SET status = ?, finished_at = ?, files_scanned = ?, entries_written = ?,
		duplicate_skipped = ?, empty_skipped = ?, warnings = ?, duration_ms = ?, error_message = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query,
		run.Status, run.FinishedAt, run.FilesScanned, run.EntriesWritten,
		run.DuplicateSkipped, run.EmptySkipped, run.Warnings, run.DurationMS, run.ErrorMessage,
		run.ID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run %s: %w", run.ID, sql.ErrNoRows)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, root, output, status, started_at, finished_at, files_scanned, entries_written,
		duplicate_skipped, empty_skipped, warnings, duration_ms, error_message
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run whose id equals or starts with id, or
// sql.ErrNoRows. An ambiguous prefix resolves to the newest run.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, sql.ErrNoRows
	}
	query := `SELECT id, root, output, status, started_at, finished_at, files_scanned, entries_written,
		duplicate_skipped, empty_skipped, warnings, duration_ms, error_message
		FROM runs WHERE id = ? OR substr(id, 1, ?) = ?
		ORDER BY id = ? DESC, started_at DESC, rowid DESC LIMIT 1`
	run, err := scanRun(s.db.QueryRowContext(ctx, query, id, len(id), id, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	return run, err
}

// Entries returns the entries recorded for a run in write order.
func (s *Store) Entries(ctx context.Context, runID string) ([]EntryRecord, error) {
	query := `SELECT id, run_id, task, priority, source, line, rendered FROM entries WHERE run_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []EntryRecord
	for rows.Next() {
		var e EntryRecord
		if err := rows.Scan(&e.ID, &e.RunID, &e.Task, &e.Priority, &e.Source, &e.Line, &e.Rendered); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run      Run
		finished sql.NullTime
		errMsg   sql.NullString
	)
	err := row.Scan(&run.ID, &run.Root, &run.Output, &run.Status, &run.StartedAt, &finished,
		&run.FilesScanned, &run.EntriesWritten, &run.DuplicateSkipped, &run.EmptySkipped,
		&run.Warnings, &run.DurationMS, &errMsg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	run.ErrorMessage = errMsg.String
	return &run, nil
}
