// Package runlog persists run summaries to a local SQLite database so past
// runs can be compared without keeping terminal scrollback around.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/statmix/samplegen/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	created_at  INTEGER NOT NULL,
	sampler     TEXT NOT NULL,
	label       TEXT NOT NULL,
	entries     INTEGER NOT NULL,
	workers     INTEGER NOT NULL,
	mean        REAL NOT NULL,
	std_dev     REAL NOT NULL,
	z_score     REAL NOT NULL,
	p_value     REAL NOT NULL,
	elapsed_ms  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);
`

// Store is a SQLite-backed log of run summaries.
type Store struct {
	db *sql.DB
}

// Entry is one stored run.
type Entry struct {
	Summary   report.Summary
	CreatedAt time.Time
}

// Open opens the run log at path, creating the file and schema as needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("run log path is required")
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping run log: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create run log schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one summary to the log.
func (s *Store) Record(ctx context.Context, sum report.Summary) error {
	const q = `INSERT INTO runs
		(id, created_at, sampler, label, entries, workers, mean, std_dev, z_score, p_value, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		sum.RunID,
		time.Now().UTC().UnixMilli(),
		sum.Sampler,
		sum.Label,
		int64(sum.Entries),
		sum.Workers,
		sum.Mean,
		sum.StdDev,
		sum.ZScore,
		sum.PValue,
		sum.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", sum.RunID, err)
	}
	return nil
}

// List returns the most recent runs, newest first. A limit below 1 falls
// back to 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 20
	}
	const q = `SELECT id, created_at, sampler, label, entries, workers, mean, std_dev, z_score, p_value, elapsed_ms
		FROM runs ORDER BY created_at DESC, id LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			createdAt int64
			entries   int64
			elapsedMS int64
		)
		if err := rows.Scan(
			&e.Summary.RunID,
			&createdAt,
			&e.Summary.Sampler,
			&e.Summary.Label,
			&entries,
			&e.Summary.Workers,
			&e.Summary.Mean,
			&e.Summary.StdDev,
			&e.Summary.ZScore,
			&e.Summary.PValue,
			&elapsedMS,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.CreatedAt = time.UnixMilli(createdAt).UTC()
		e.Summary.Entries = uint64(entries)
		e.Summary.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
