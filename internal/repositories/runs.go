// package repositories provides the persistence layer for the run archive.
//
// The archive is write-only audit history: a finished run's summary and its
// failure list are recorded for the history command, and reconciliation
// never reads them back.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dashed/tbsync/internal/shared"
	"github.com/dashed/tbsync/internal/tasks"
)

// Entry kinds stored in the archive.
const (
	EntryKindFailed  = "failed"
	EntryKindInvalid = "invalid"
)

// ArchivedRun is one recorded run, as read back from the archive.
type ArchivedRun struct {
	RunID            string          `json:"run_id"`
	Mode             string          `json:"mode"`
	StartedAt        time.Time       `json:"started_at"`
	Duration         time.Duration   `json:"duration"`
	Total            int             `json:"total"`
	Added            int             `json:"added"`
	Succeeded        int             `json:"succeeded"`
	Failed           int             `json:"failed"`
	SkippedDuplicate int             `json:"skipped_duplicate"`
	SkippedInvalid   int             `json:"skipped_invalid"`
	Entries          []ArchivedEntry `json:"entries,omitempty"`
}

// ArchivedEntry is one failed or invalid record from an archived run.
type ArchivedEntry struct {
	Position int    `json:"position"`
	Kind     string `json:"kind"`
	Hash     string `json:"hash,omitempty"`
	Name     string `json:"name,omitempty"`
	Reason   string `json:"reason"`
	Retries  int    `json:"retries,omitempty"`
}

// RunRepository persists run summaries to the archive database.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Archive records a finished run and its failure list in one transaction.
func (r *RunRepository) Archive(summary *tasks.RunSummary) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (
			id, mode, started_at, duration_ms, total, added, succeeded,
			failed, skipped_duplicate, skipped_invalid
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		summary.RunID,
		summary.Mode,
		summary.StartedAt.UTC(),
		summary.Duration.Milliseconds(),
		summary.Total,
		summary.Added,
		summary.Succeeded,
		summary.Failed,
		summary.SkippedDuplicate,
		summary.SkippedInvalid,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	insert := func(kind string, f tasks.Failure) error {
		_, err := tx.Exec(`
			INSERT INTO run_entries (run_id, position, kind, hash, name, reason, retries)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, summary.RunID, f.Index, kind, f.Hash, f.Name, f.Reason, f.Retries)
		return err
	}

	for _, f := range summary.Failures {
		if err := insert(EntryKindFailed, f); err != nil {
			return fmt.Errorf("failed to insert run entry: %w", err)
		}
	}
	for _, f := range summary.Invalid {
		if err := insert(EntryKindInvalid, f); err != nil {
			return fmt.Errorf("failed to insert run entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run archive: %w", err)
	}
	return nil
}

// List returns archived runs newest first, without their entries.
// A non-positive limit returns every run.
func (r *RunRepository) List(limit int) ([]ArchivedRun, error) {
	query := `
		SELECT id, mode, started_at, duration_ms, total, added, succeeded,
		       failed, skipped_duplicate, skipped_invalid
		FROM runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []ArchivedRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Get returns one archived run with its entries in backup order.
func (r *RunRepository) Get(runID string) (*ArchivedRun, error) {
	row := r.db.QueryRow(`
		SELECT id, mode, started_at, duration_ms, total, added, succeeded,
		       failed, skipped_duplicate, skipped_invalid
		FROM runs
		WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(`
		SELECT position, kind, hash, name, reason, retries
		FROM run_entries
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e ArchivedEntry
		if err := rows.Scan(&e.Position, &e.Kind, &e.Hash, &e.Name, &e.Reason, &e.Retries); err != nil {
			return nil, fmt.Errorf("failed to scan run entry: %w", err)
		}
		run.Entries = append(run.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run entries: %w", err)
	}

	return run, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*ArchivedRun, error) {
	var run ArchivedRun
	var durationMS int64

	err := s.Scan(
		&run.RunID,
		&run.Mode,
		&run.StartedAt,
		&durationMS,
		&run.Total,
		&run.Added,
		&run.Succeeded,
		&run.Failed,
		&run.SkippedDuplicate,
		&run.SkippedInvalid,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
