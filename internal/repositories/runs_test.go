package repositories

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dashed/tbsync/internal/shared"
	"github.com/dashed/tbsync/internal/tasks"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func sampleSummary(runID string, started time.Time) *tasks.RunSummary {
	return &tasks.RunSummary{
		RunID:            runID,
		Mode:             tasks.ModeLive,
		StartedAt:        started,
		Duration:         90 * time.Second,
		Total:            5,
		Added:            3,
		Succeeded:        2,
		Failed:           1,
		SkippedDuplicate: 1,
		SkippedInvalid:   1,
		Failures: []tasks.Failure{
			{Index: 2, Hash: strings.Repeat("a", 40), Name: "MovieA", Reason: "rejected", Retries: 3},
		},
		Invalid: []tasks.Failure{
			{Index: 4, Name: "broken", Reason: "no hash"},
		},
	}
}

func TestRunRepository_Archive(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	started := time.Date(2025, 8, 21, 14, 30, 0, 0, time.UTC)

	if err := repo.Archive(sampleSummary("run-1", started)); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	run, err := repo.Get("run-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if run.Mode != tasks.ModeLive || run.Total != 5 || run.Added != 3 || run.Failed != 1 {
		t.Errorf("run = %+v", run)
	}
	if run.Duration != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", run.Duration)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, started)
	}

	if len(run.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(run.Entries))
	}
	if run.Entries[0].Kind != EntryKindFailed || run.Entries[0].Retries != 3 {
		t.Errorf("Entries[0] = %+v", run.Entries[0])
	}
	if run.Entries[1].Kind != EntryKindInvalid || run.Entries[1].Reason != "no hash" {
		t.Errorf("Entries[1] = %+v", run.Entries[1])
	}
}

func TestRunRepository_Archive_DuplicateRunID(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	started := time.Now().UTC()

	if err := repo.Archive(sampleSummary("run-1", started)); err != nil {
		t.Fatalf("first Archive() error = %v", err)
	}
	if err := repo.Archive(sampleSummary("run-1", started)); err == nil {
		t.Error("second Archive() with same run ID should fail")
	}
}

func TestRunRepository_List(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	base := time.Date(2025, 8, 21, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		if err := repo.Archive(sampleSummary(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Archive(%s) error = %v", id, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		runs, err := repo.List(0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("got %d runs, want 3", len(runs))
		}
		if runs[0].RunID != "run-3" || runs[2].RunID != "run-1" {
			t.Errorf("order = %s, %s, %s", runs[0].RunID, runs[1].RunID, runs[2].RunID)
		}
	})

	t.Run("limit applies", func(t *testing.T) {
		runs, err := repo.List(2)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(runs) != 2 || runs[0].RunID != "run-3" {
			t.Errorf("got %d runs starting with %s", len(runs), runs[0].RunID)
		}
	})

	t.Run("list omits entries", func(t *testing.T) {
		runs, err := repo.List(1)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(runs[0].Entries) != 0 {
			t.Errorf("List() loaded %d entries, want none", len(runs[0].Entries))
		}
	})
}

func TestRunRepository_Get_NotFound(t *testing.T) {
	repo := NewRunRepository(setupDB(t))

	_, err := repo.Get("missing")
	if !errors.Is(err, shared.ErrRunNotFound) {
		t.Errorf("error = %v, want wrapped ErrRunNotFound", err)
	}
}
