// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// remoteFlags are shared by every command that talks to the TorBox API.
func remoteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"k"},
			Usage:   "TorBox account API key",
			Sources: cli.EnvVars("TORBOX_API_KEY"),
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "TorBox API root (for testing against a different host)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
	}
}

// syncCommand runs the full import pipeline.
func syncCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "DMM backup JSON file",
			Sources: cli.EnvVars("DMM_BACKUP_JSON_FILE"),
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Compute all decisions without submitting anything",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the run summary as JSON",
		},
		&cli.BoolFlag{
			Name:  "no-log-file",
			Usage: "Skip writing the per-run log file",
		},
		&cli.BoolFlag{
			Name:  "no-archive",
			Usage: "Skip recording the run in the archive database",
		},
		&cli.StringFlag{
			Name:  "failures-csv",
			Usage: "Export the failure list to a CSV file",
		},
	}

	return &cli.Command{
		Name:   "sync",
		Usage:  "Import backup magnets not already in the account",
		Flags:  append(flags, remoteFlags()...),
		Action: r.Sync,
	}
}

// inspectCommand parses a backup offline.
func inspectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Parse a backup file and report its records without touching the network",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "DMM backup JSON file",
				Sources: cli.EnvVars("DMM_BACKUP_JSON_FILE"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the report as JSON",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
		},
		Action: r.Inspect,
	}
}

// inventoryCommand fetches the remote hash set.
func inventoryCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the full hash set as JSON",
		},
	}

	return &cli.Command{
		Name:   "inventory",
		Usage:  "Fetch the set of magnet hashes already in the account",
		Flags:  append(flags, remoteFlags()...),
		Action: r.Inventory,
	}
}

// authCommand handles credential operations.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Credential operations",
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Verify the API key against the account endpoint",
				Flags:  remoteFlags(),
				Action: r.AuthCheck,
			},
		},
	}
}

// historyCommand reads the run archive.
func historyCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
	}

	return &cli.Command{
		Name:  "history",
		Usage: "Review archived runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List archived runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of runs to show",
						Value:   20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print runs as JSON",
					},
					configFlag,
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one archived run with its failure list",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "run-id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the run as JSON",
					},
					configFlag,
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// setupCommand initializes the config file and archive database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and initialize the archive database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Archive database path (overrides config)",
			},
		},
		Action: r.Setup,
	}
}
