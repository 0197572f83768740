package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Migration represents a database schema migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations is the ordered list of all database migrations
var migrations = []Migration{
	{
		Version:     1,
		Description: "Runs table",
		SQL: `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    root TEXT NOT NULL,
    output TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    files_scanned INTEGER NOT NULL DEFAULT 0,
    entries_written INTEGER NOT NULL DEFAULT 0,
    duplicate_skipped INTEGER NOT NULL DEFAULT 0,
    empty_skipped INTEGER NOT NULL DEFAULT 0,
    warnings INTEGER NOT NULL DEFAULT 0,
    duration_ms INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`,
	},
	{
		Version:     2,
		Description: "Entries written per run",
		SQL: `
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    task TEXT NOT NULL,
    priority TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL,
    line INTEGER NOT NULL,
    rendered TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_entries_run_id ON entries(run_id);
CREATE INDEX IF NOT EXISTS idx_entries_task ON entries(task);
`,
	},
	{
		// Column added in code: SQLite has no ADD COLUMN IF NOT EXISTS.
		Version:     3,
		Description: "Error message for failed runs",
	},
}

// MigrationVersion is an applied migration.
type MigrationVersion struct {
	Version   int
	AppliedAt time.Time
}

// ApplyMigrations applies all pending migrations in a single transaction.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin exclusive transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	if _, err := tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	applied, err := appliedVersionsTx(ctx, tx)
	if err != nil {
		return fmt.Errorf("get applied versions: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v.Version] = true
	}

	for _, migration := range migrations {
		if done[migration.Version] {
			continue
		}

		if migration.Version == 3 {
			if err := addColumnIfNotExistsTx(ctx, tx, "runs", "error_message", "TEXT"); err != nil {
				return fmt.Errorf("apply migration %d (%s): %w", migration.Version, migration.Description, err)
			}
		}

		if migration.SQL != "" {
			if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
				return fmt.Errorf("apply migration %d (%s): %w", migration.Version, migration.Description, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, migration.Version); err != nil {
			return fmt.Errorf("record migration %d: %w", migration.Version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

// GetAppliedVersions retrieves all applied migration versions
func (s *Store) GetAppliedVersions() ([]*MigrationVersion, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	return appliedVersionsTx(context.Background(), tx)
}

// GetLatestVersion returns the latest applied migration version
func (s *Store) GetLatestVersion() (int, error) {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query latest version: %w", err)
	}
	return version, nil
}

func appliedVersionsTx(ctx context.Context, tx *sql.Tx) ([]*MigrationVersion, error) {
	rows, err := tx.QueryContext(ctx, `SELECT version, applied_at FROM schema_version ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("query schema versions: %w", err)
	}
	defer rows.Close()

	var versions []*MigrationVersion
	for rows.Next() {
		v := &MigrationVersion{}
		if err := rows.Scan(&v.Version, &v.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// addColumnIfNotExistsTx adds a column unless PRAGMA table_info already
// lists it. A concurrent "duplicate column name" counts as success.
func addColumnIfNotExistsTx(ctx context.Context, tx *sql.Tx, table, column, definition string) error {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("query table info: %w", err)
	}

	exists := false
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("scan table info: %w", err)
		}
		if name == column {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate table info: %w", err)
	}
	rows.Close()

	if exists {
		return nil
	}

	alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)
	if _, err := tx.ExecContext(ctx, alter); err != nil {
		if strings.Contains(err.Error(), "duplicate column name") {
			return nil
		}
		return fmt.Errorf("alter table: %w", err)
	}
	return nil
}
