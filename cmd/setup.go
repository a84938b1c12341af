package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dashed/tbsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates a config file from the embedded template and initializes
// the archive database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
		r.logger.Info("using existing config", "path", configPath)
	} else {
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.logger.Info("config file created", "path", configPath)
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
	}

	dbPath := cmd.String("db")
	if dbPath == "" {
		dbPath = config.Archive.Path
	}
	if dbPath == "" {
		r.writePlain("Config ready at %s; run archive disabled.\n", configPath)
		return nil
	}

	r.logger.Info("initializing archive database", "path", dbPath)

	db, err := shared.NewDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Archive.MaxOpenConns, config.Archive.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}
	r.logger.Info("setup complete", "database", dbPath, "schema_version", version)
	r.writePlain("Config ready at %s; archive database at %s.\n", configPath, dbPath)
	return nil
}
