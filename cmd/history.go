package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dashed/tbsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints archived runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	repo, closeDB, err := r.openArchive(config)
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("%w: run archive is disabled (set archive.path in config)", shared.ErrInvalidConfig)
	}
	defer closeDB()

	runs, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}

	if len(runs) == 0 {
		r.writePlain("No archived runs.\n")
		return nil
	}

	for _, run := range runs {
		r.writePlain("%s  %s  %-8s  added %d/%d, failed %d, skipped %d\n",
			run.RunID,
			run.StartedAt.UTC().Format(time.RFC3339),
			run.Mode,
			run.Succeeded,
			run.Added,
			run.Failed,
			run.SkippedDuplicate+run.SkippedInvalid,
		)
	}
	return nil
}

// HistoryShow prints one archived run with its failure list.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.StringArg("run-id")
	if runID == "" {
		return fmt.Errorf("%w: run-id", shared.ErrMissingArgument)
	}

	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	repo, closeDB, err := r.openArchive(config)
	if err != nil {
		return err
	}
	if repo == nil {
		return fmt.Errorf("%w: run archive is disabled (set archive.path in config)", shared.ErrInvalidConfig)
	}
	defer closeDB()

	run, err := repo.Get(runID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(run, true)
	}

	r.writePlain("Run %s (%s)\n", run.RunID, run.Mode)
	r.writePlain("Started:  %s\n", run.StartedAt.UTC().Format(time.RFC3339))
	r.writePlain("Duration: %s\n\n", run.Duration)
	r.writePlain("Records: %d total, %d added (%d succeeded, %d failed), %d duplicate, %d invalid\n",
		run.Total, run.Added, run.Succeeded, run.Failed, run.SkippedDuplicate, run.SkippedInvalid)

	if len(run.Entries) > 0 {
		r.writePlain("\nRecorded entries:\n")
		for _, e := range run.Entries {
			label := e.Hash
			if e.Name != "" {
				label = fmt.Sprintf("%s (%s)", e.Hash, e.Name)
			}
			if e.Hash == "" {
				label = e.Name
			}
			r.writePlain("  %d. [%s] %s: %s\n", e.Position+1, e.Kind, label, e.Reason)
		}
	}
	return nil
}
