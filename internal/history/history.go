package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; the journal carries no state of record, so deleting the database
// after a bump is always safe.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run is one recorded invocation.
type Run struct {
	ID         string
	StartedAt  string
	FinishedAt string
	DryRun     bool
	Scanned    int
	Processed  int
	Skipped    int
}

// Decision is one per-folder outcome within a run.
type Decision struct {
	RunID      string
	RelPath    string
	Status     string
	Reason     string
	Confidence string
	TargetDir  string
	CreatedAt  string
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
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

// Path returns the journal database location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, runID string, dryRun bool) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, dry_run) VALUES (?, ?, ?)",
		runID, nowUTC(), boolToInt(dryRun))
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

// RecordDecision appends one per-folder outcome to the run.
func (s *Store) RecordDecision(ctx context.Context, runID string, decision Decision) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (run_id, rel_path, status, reason, confidence, target_dir, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, decision.RelPath, decision.Status, decision.Reason,
		decision.Confidence, decision.TargetDir, nowUTC())
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// FinishRun records run completion and its summary counts.
func (s *Store) FinishRun(ctx context.Context, runID string, scanned, processed, skipped int) error {
	if s == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, scanned = ?, processed = ?, skipped = ? WHERE id = ?",
		nowUTC(), scanned, processed, skipped, runID)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), dry_run, scanned, processed, skipped
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var dryRun int
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &dryRun,
			&run.Scanned, &run.Processed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.DryRun = dryRun != 0
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListDecisions returns the decisions recorded for a run in insertion order.
func (s *Store) ListDecisions(ctx context.Context, runID string) ([]Decision, error) {
	if s == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, rel_path, status, reason, confidence, target_dir, created_at
		 FROM decisions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(&d.RunID, &d.RelPath, &d.Status, &d.Reason,
			&d.Confidence, &d.TargetDir, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decision row: %w", err)
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
