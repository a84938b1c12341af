package main

import (
	"context"
	"sort"
	"time"

	"github.com/dashed/tbsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Inventory fetches and prints the remote hash set.
func (r *Runner) Inventory(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	library, err := r.newLibrary(cmd, config)
	if err != nil {
		return err
	}

	engine := tasks.NewImportEngine(tasks.EngineOpts{
		Remote: library,
		Retry: tasks.RetryPolicy{
			MaxRetries: config.Sync.MaxRetries,
			Backoff:    time.Duration(config.Sync.RetryBackoffSeconds) * time.Second,
		},
		Logger:   r.logger,
		PageSize: config.Sync.PageSize,
	})

	inventory, err := engine.FetchInventory(ctx, nil)
	if err != nil {
		return err
	}

	hashes := make([]string, 0, len(inventory))
	for hash := range inventory {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"count": len(hashes), "hashes": hashes}, true)
	}

	r.writePlain("Remote inventory: %d torrents\n", len(hashes))
	return nil
}
