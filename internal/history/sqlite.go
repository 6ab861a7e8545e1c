// Package history persists per-run summaries and broken links in SQLite.
// History is write-only bookkeeping for the history subcommand and daemon
// mode; it is never consulted during validation.
package history

import (
	"context"
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/linkcheck/internal/checker"
	"git.home.luguber.info/inful/linkcheck/internal/errors"
)

// Store records validation runs in a SQLite database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// RunSummary is one persisted run.
type RunSummary struct {
	RunID        string
	Root         string
	StartedAt    time.Time
	Duration     time.Duration
	TotalLinks   int
	BrokenLinks  int
	CheckedFiles int
	SkippedFiles int
}

// Open creates or opens the history database. Use ":memory:" for an
// in-memory database in tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to open history database").WithContext("path", dbPath)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to initialize history schema")
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		root TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		total_links INTEGER NOT NULL,
		broken_links INTEGER NOT NULL,
		checked_files INTEGER NOT NULL,
		skipped_files INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS broken_links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		href TEXT NOT NULL,
		source_file TEXT NOT NULL,
		link_type TEXT NOT NULL,
		reason TEXT NOT NULL,
		error TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_broken_run_id ON broken_links(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun persists a run summary and its broken links.
func (s *Store) RecordRun(ctx context.Context, result *checker.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to begin history transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, root, started_at, duration_ms, total_links, broken_links, checked_files, skipped_files) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		result.RunID, result.Root, result.StartedAt.Unix(), result.Duration.Milliseconds(),
		result.TotalLinks, len(result.BrokenLinks), len(result.CheckedFiles), len(result.SkippedFiles),
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to insert run")
	}

	for _, bl := range result.BrokenLinks {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO broken_links (run_id, href, source_file, link_type, reason, error) VALUES (?, ?, ?, ?, ?, ?)",
			result.RunID, bl.Href, bl.SourceFile, string(bl.Type), string(bl.Reason), bl.Error,
		)
		if err != nil {
			return errors.WrapError(err, errors.CategoryInternal, "failed to insert broken link")
		}
	}

	return tx.Commit()
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, root, started_at, duration_ms, total_links, broken_links, checked_files, skipped_files FROM runs ORDER BY started_at DESC, run_id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to query runs")
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started int64
		var durationMS int64
		if err := rows.Scan(&r.RunID, &r.Root, &started, &durationMS, &r.TotalLinks, &r.BrokenLinks, &r.CheckedFiles, &r.SkippedFiles); err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "failed to scan run")
		}
		r.StartedAt = time.Unix(started, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// BrokenLinksForRun returns the persisted broken links of one run in
// insertion order.
func (s *Store) BrokenLinksForRun(ctx context.Context, runID string) ([]checker.BrokenLink, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT href, source_file, link_type, reason, error FROM broken_links WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to query broken links")
	}
	defer func() {
		_ = rows.Close()
	}()

	var links []checker.BrokenLink
	for rows.Next() {
		var bl checker.BrokenLink
		var linkType, reason string
		if err := rows.Scan(&bl.Href, &bl.SourceFile, &linkType, &reason, &bl.Error); err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "failed to scan broken link")
		}
		bl.Type = linkTypeFrom(linkType)
		bl.Reason = checker.Reason(reason)
		links = append(links, bl)
	}
	return links, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
