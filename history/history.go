// Package history persists run outcomes in a SQLite database.
//
// The history store is opt-in and additive: the CSV/JSON reports remain the
// run's required durable output, and a history failure is never allowed to
// fail a run. The database accumulates one row per run and one per folder
// record, which makes size growth queryable across runs.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zstow/zstow/report"
)

// DefaultFileName is the history database name inside the output directory.
const DefaultFileName = "zstow_history.db"

// Store persists run history inside a SQLite database.
type Store struct {
	db *sql.DB
}

// Open initializes (or reuses) a SQLite database at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path cannot be empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the underlying database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
        stamp TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        out TEXT NOT NULL,
        total_input_bytes INTEGER NOT NULL,
        total_output_bytes INTEGER NOT NULL,
        folder_count INTEGER NOT NULL,
        failed_count INTEGER NOT NULL,
        recorded_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS folders (
        run_stamp TEXT NOT NULL REFERENCES runs(stamp) ON DELETE CASCADE,
        name TEXT NOT NULL,
        path TEXT NOT NULL,
        size_bytes INTEGER NOT NULL,
        bucket TEXT NOT NULL,
        status TEXT NOT NULL,
        archive_ok INTEGER NOT NULL,
        duration_seconds REAL NOT NULL,
        note TEXT NOT NULL DEFAULT '',
        PRIMARY KEY (run_stamp, name)
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// RecordRun appends one run and all of its folder records atomically.
func (s *Store) RecordRun(rep *report.RunReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, failed := rep.Counts()
	_, err = tx.Exec(`INSERT INTO runs
                (stamp, source, out, total_input_bytes, total_output_bytes, folder_count, failed_count, recorded_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.Stamp, rep.Source, rep.OutDir,
		rep.TotalInputBytes, rep.TotalOutputBytes,
		rep.Len(), failed, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", rep.Stamp, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO folders
                (run_stamp, name, path, size_bytes, bucket, status, archive_ok, duration_seconds, note)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare folder insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range rep.Records {
		if _, err := stmt.Exec(rep.Stamp, rec.Name, rec.Path, rec.SizeBytes,
			rec.Bucket, string(rec.Status), rec.ArchiveOK, rec.DurationSeconds, rec.Note); err != nil {
			return fmt.Errorf("insert folder %s: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history transaction: %w", err)
	}
	return nil
}

// RunSummary is one row of `zstow history` output.
type RunSummary struct {
	Stamp            string
	Source           string
	FolderCount      int
	FailedCount      int
	TotalInputBytes  int64
	TotalOutputBytes int64
}

// LastRuns returns up to limit of the most recent runs, newest first.
func (s *Store) LastRuns(limit int) ([]RunSummary, error) {
	rows, err := s.db.Query(`SELECT stamp, source, folder_count, failed_count,
                total_input_bytes, total_output_bytes
                FROM runs ORDER BY recorded_at DESC, stamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.Stamp, &r.Source, &r.FolderCount, &r.FailedCount,
			&r.TotalInputBytes, &r.TotalOutputBytes); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
