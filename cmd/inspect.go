package main

import (
	"context"
	"fmt"

	"github.com/dashed/tbsync/internal/shared"
	"github.com/dashed/tbsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// inspectReport is the offline parse result for one backup file.
type inspectReport struct {
	File    string          `json:"file"`
	Total   int             `json:"total"`
	Valid   int             `json:"valid"`
	Invalid []tasks.Failure `json:"invalid,omitempty"`
}

// Inspect parses a backup offline and reports valid and invalid records.
// No network, no reconciliation: a quick sanity check before a sync.
func (r *Runner) Inspect(ctx context.Context, cmd *cli.Command) error {
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

	records, err := readBackup(input)
	if err != nil {
		return err
	}

	report := inspectReport{File: input, Total: len(records)}
	for _, rec := range records {
		if rec.Err != nil {
			report.Invalid = append(report.Invalid, tasks.Failure{
				Index:  rec.Index,
				Name:   rec.Entry.DisplayName,
				Reason: rec.Err.Error(),
			})
			continue
		}
		report.Valid++
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	r.writePlain("Backup: %s\n", report.File)
	r.writePlain("Records: %d (%d valid, %d invalid)\n", report.Total, report.Valid, len(report.Invalid))
	if len(report.Invalid) > 0 {
		r.writePlain("\nInvalid records:\n")
		for _, f := range report.Invalid {
			if f.Name != "" {
				r.writePlain("  %d. (%s) %s\n", f.Index+1, f.Name, f.Reason)
			} else {
				r.writePlain("  %d. %s\n", f.Index+1, f.Reason)
			}
		}
	}

	return nil
}
