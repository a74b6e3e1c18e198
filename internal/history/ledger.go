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

	_ "modernc.org/sqlite"
)

// timestampLayout has fixed-width fractional seconds so stored values sort
// lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded indexer run.
type Run struct {
	ID            string     `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    time.Time  `json:"finished_at"`
	Repository    string     `json:"repository"`
	Considered    int        `json:"considered"`
	Skipped       int        `json:"skipped"`
	Added         int        `json:"added"`
	Duplicates    int        `json:"duplicates"`
	StoresWritten int        `json:"stores_written"`
	Additions     []Addition `json:"additions,omitempty"`
}

// Addition is a record appended to a store during a run.
type Addition struct {
	Store       string `json:"store"`
	QuestionURL string `json:"question_url"`
}

// Ledger is the SQLite-backed run history.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open creates or opens the ledger database at path and applies migrations.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
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
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	l := &Ledger{db: db, path: path}
	if err := l.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Path returns the database file location.
func (l *Ledger) Path() string { return l.path }

// Close closes the underlying database connection.
func (l *Ledger) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Record stores run and its additions in one transaction.
func (l *Ledger) Record(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, started_at, finished_at, repository,
            considered, skipped, added, duplicates, stores_written
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timestampLayout),
		run.FinishedAt.UTC().Format(timestampLayout),
		run.Repository,
		run.Considered,
		run.Skipped,
		run.Added,
		run.Duplicates,
		run.StoresWritten,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, add := range run.Additions {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO additions (run_id, position, store, question_url) VALUES (?, ?, ?, ?)",
			run.ID, i, add.Store, add.QuestionURL,
		); err != nil {
			return fmt.Errorf("insert addition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. Additions are not loaded.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, repository,
                considered, skipped, added, duplicates, stores_written
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(
			&run.ID, &started, &finished, &run.Repository,
			&run.Considered, &run.Skipped, &run.Added, &run.Duplicates, &run.StoresWritten,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Additions returns the records a run appended, in order.
func (l *Ledger) Additions(ctx context.Context, runID string) ([]Addition, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT store, question_url FROM additions WHERE run_id = ? ORDER BY position", runID)
	if err != nil {
		return nil, fmt.Errorf("query additions: %w", err)
	}
	defer rows.Close()

	var additions []Addition
	for rows.Next() {
		var add Addition
		if err := rows.Scan(&add.Store, &add.QuestionURL); err != nil {
			return nil, fmt.Errorf("scan addition: %w", err)
		}
		additions = append(additions, add)
	}
	return additions, rows.Err()
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
