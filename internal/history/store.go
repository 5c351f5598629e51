package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reelist/internal/match"
	"reelist/internal/reconcile"
)

// Run is one completed (or aborted) sync run.
type Run struct {
	ID         string
	Collection string
	Library    string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Added      int
	Skipped    int
	Missing    int
	Failed     int
}

// Total returns the number of entries the run covered.
func (r Run) Total() int { return r.Added + r.Skipped + r.Missing + r.Failed }

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path and
// applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
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
	if err := store.migrate(context.Background()); err != nil {
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

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            collection TEXT NOT NULL,
            library TEXT NOT NULL,
            source TEXT,
            started_at TEXT NOT NULL,
            finished_at TEXT NOT NULL,
            added INTEGER NOT NULL DEFAULT 0,
            skipped INTEGER NOT NULL DEFAULT 0,
            missing INTEGER NOT NULL DEFAULT 0,
            failed INTEGER NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS run_records (
            run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
            position INTEGER NOT NULL,
            title TEXT,
            year TEXT,
            imdb_id TEXT,
            status TEXT NOT NULL,
            method TEXT,
            matched_title TEXT,
            matched_year INTEGER,
            note TEXT,
            PRIMARY KEY (run_id, position)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}

// SaveRun persists one run with its per-entry records atomically.
func (s *Store) SaveRun(ctx context.Context, run Run, records []reconcile.Record) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (id, collection, library, source, started_at, finished_at, added, skipped, missing, failed)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Collection,
		run.Library,
		nullableString(run.Source),
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Added,
		run.Skipped,
		run.Missing,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for position, rec := range records {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO run_records (run_id, position, title, year, imdb_id, status, method, matched_title, matched_year, note)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			position,
			nullableString(rec.Entry.Title),
			nullableString(rec.Entry.Year),
			nullableString(rec.Entry.IMDBID),
			string(rec.Status),
			nullableString(string(rec.Method)),
			nullableString(rec.MatchedTitle),
			rec.MatchedYear,
			nullableString(rec.Note),
		)
		if err != nil {
			return fmt.Errorf("insert run record %d: %w", position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run save: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, collection, library, source, started_at, finished_at, added, skipped, missing, failed
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunRecords returns one run's per-entry records in source-list order.
func (s *Store) RunRecords(ctx context.Context, runID string) ([]reconcile.Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT title, year, imdb_id, status, method, matched_title, matched_year, note
         FROM run_records WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run records: %w", err)
	}
	defer rows.Close()

	var records []reconcile.Record
	for rows.Next() {
		var (
			title        sql.NullString
			year         sql.NullString
			imdbID       sql.NullString
			status       string
			method       sql.NullString
			matchedTitle sql.NullString
			matchedYear  sql.NullInt64
			note         sql.NullString
		)
		if err := rows.Scan(&title, &year, &imdbID, &status, &method, &matchedTitle, &matchedYear, &note); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec := reconcile.Record{
			Status:       reconcile.Status(status),
			MatchedTitle: matchedTitle.String,
			MatchedYear:  int(matchedYear.Int64),
			Note:         note.String,
		}
		rec.Entry.Title = title.String
		rec.Entry.Year = year.String
		rec.Entry.IMDBID = imdbID.String
		rec.Method = match.Method(method.String)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		source      sql.NullString
		startedRaw  string
		finishedRaw string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Collection,
		&run.Library,
		&source,
		&startedRaw,
		&finishedRaw,
		&run.Added,
		&run.Skipped,
		&run.Missing,
		&run.Failed,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Source = source.String
	if started, err := time.Parse(time.RFC3339Nano, startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := time.Parse(time.RFC3339Nano, finishedRaw); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
