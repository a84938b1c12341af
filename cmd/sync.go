package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dashed/tbsync/internal/backup"
	"github.com/dashed/tbsync/internal/formatter"
	"github.com/dashed/tbsync/internal/shared"
	"github.com/dashed/tbsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync runs the import pipeline: parse, fetch inventory, reconcile, submit, report.
//
// Per-entry failures end up in the summary and still exit zero; only an
// unreadable backup, an unreachable inventory, or bad configuration return
// an error.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	input := cmd.String("input")
	if input == "" {
		input = config.Sync.InputFile
	}
	if input == "" {
		return fmt.Errorf("%w: backup file (set --input, DMM_BACKUP_JSON_FILE, or sync.input_file in config)", shared.ErrMissingArgument)
	}

	library, err := r.newLibrary(cmd, config)
	if err != nil {
		return err
	}

	logger := r.logger
	started := time.Now()
	if !cmd.Bool("no-log-file") {
		logFile, logPath, err := shared.OpenRunLog(config.Logs.Directory, started)
		if err != nil {
			return err
		}
		defer logFile.Close()
		logger = shared.NewLogger(io.MultiWriter(os.Stderr, logFile))
		logger.Info("logging run to file", "path", logPath)
	}

	dryRun := cmd.Bool("dry-run")
	logger.Info("starting sync", "input", input, "mode", modeLabel(dryRun))

	records, err := readBackup(input)
	if err != nil {
		return err
	}
	logger.Info("parsed backup", "records", len(records))

	engine := tasks.NewImportEngine(tasks.EngineOpts{
		Remote: library,
		Retry: tasks.RetryPolicy{
			MaxRetries: config.Sync.MaxRetries,
			Backoff:    time.Duration(config.Sync.RetryBackoffSeconds) * time.Second,
		},
		Logger:         logger,
		PageSize:       config.Sync.PageSize,
		SubmitInterval: time.Duration(config.Sync.SubmitIntervalSeconds) * time.Second,
		DryRun:         dryRun,
	})

	jsonOut := cmd.Bool("json")
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if jsonOut {
				// Keep stdout parseable; progress still reaches the log.
				logger.Debug(update.Message, "phase", update.Phase.String())
				continue
			}
			switch update.Phase {
			case tasks.FetchInventoryPhase, tasks.ReconcilePhase:
				r.writePlain("%s\n", update.Message)
			case tasks.SubmitPhase:
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()

	summary, err := engine.Run(ctx, records, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(summary, true); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s", formatter.SummaryStyled(summary))
	}

	if path := cmd.String("failures-csv"); path != "" {
		if err := formatter.WriteFailuresCSV(summary, path); err != nil {
			return err
		}
		logger.Info("wrote failures CSV", "path", path)
	}

	if !cmd.Bool("no-archive") {
		if err := r.archiveRun(config, summary, logger); err != nil {
			// Archiving is audit history, not part of the run contract.
			logger.Warn("failed to archive run", "error", err)
		}
	}

	return nil
}

func (r *Runner) archiveRun(config *shared.Config, summary *tasks.RunSummary, logger *log.Logger) error {
	repo, closeDB, err := r.openArchive(config)
	if err != nil {
		return err
	}
	if repo == nil {
		return nil
	}
	defer closeDB()

	if err := repo.Archive(summary); err != nil {
		return err
	}
	logger.Debug("archived run", "run_id", summary.RunID)
	return nil
}

// readBackup drains a backup file into memory.
func readBackup(path string) ([]backup.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrBackupUnreadable, err)
	}
	defer f.Close()

	return backup.ReadAll(f)
}

func modeLabel(dryRun bool) string {
	if dryRun {
		return tasks.ModeSimulate
	}
	return tasks.ModeLive
}
