package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dashed/tbsync/internal/repositories"
	"github.com/dashed/tbsync/internal/shared"
	"github.com/dashed/tbsync/internal/tasks"
	"github.com/dashed/tbsync/internal/torbox"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The library and db fields are normally nil and built per command from the
// resolved configuration; tests inject fakes through RunnerOpts instead.
type Runner struct {
	config  *shared.Config
	library tasks.RemoteLibrary
	account AccountChecker
	db      *sql.DB
	logger  *log.Logger
	output  io.Writer
}

// AccountChecker is the credential-check surface of the remote API.
type AccountChecker interface {
	Me(ctx context.Context) (*torbox.User, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Library tasks.RemoteLibrary
	Account AccountChecker
	DB      *sql.DB
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		library: opts.Library,
		account: opts.Account,
		db:      opts.DB,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, inspectCommand, inventoryCommand, authCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfig loads configuration for one command invocation.
//
// An injected config wins; otherwise the search order is the --config flag,
// ./config.toml, then the XDG config directory, falling back to built-in
// defaults when no file exists. An explicit --config path that cannot be
// loaded is an error rather than a silent fallback.
func (r *Runner) resolveConfig(cmd *cli.Command) (*shared.Config, error) {
	if r.config != nil {
		return r.config, nil
	}

	explicit := cmd.String("config")
	path, err := shared.FindConfigFile(explicit)
	if err != nil {
		if explicit != "" {
			return nil, err
		}
		return shared.DefaultConfig(), nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("loaded config", "path", path)
	return config, nil
}

// newLibrary returns the remote library for a command, building a TorBox
// client from flags and config unless one was injected.
func (r *Runner) newLibrary(cmd *cli.Command, config *shared.Config) (tasks.RemoteLibrary, error) {
	if r.library != nil {
		return r.library, nil
	}

	key, err := r.apiKey(cmd, config)
	if err != nil {
		return nil, err
	}
	return torbox.NewClient(r.baseURL(cmd, config), key), nil
}

// newAccount returns the credential-check client, mirroring newLibrary.
func (r *Runner) newAccount(cmd *cli.Command, config *shared.Config) (AccountChecker, error) {
	if r.account != nil {
		return r.account, nil
	}

	key, err := r.apiKey(cmd, config)
	if err != nil {
		return nil, err
	}
	return torbox.NewClient(r.baseURL(cmd, config), key), nil
}

// apiKey resolves the account key: flag (or TORBOX_API_KEY through the
// flag's sources), then config file.
func (r *Runner) apiKey(cmd *cli.Command, config *shared.Config) (string, error) {
	if key := cmd.String("api-key"); key != "" {
		return key, nil
	}
	if config.TorBox.APIKey != "" {
		return config.TorBox.APIKey, nil
	}
	return "", fmt.Errorf("%w: TorBox API key (set --api-key, TORBOX_API_KEY, or torbox.api_key in config)", shared.ErrMissingCredentials)
}

func (r *Runner) baseURL(cmd *cli.Command, config *shared.Config) string {
	if url := cmd.String("base-url"); url != "" {
		return url
	}
	return config.TorBox.BaseURL
}

// openArchive opens the run-archive repository, running migrations on the
// way. Returns a nil repository when archiving is disabled.
func (r *Runner) openArchive(config *shared.Config) (*repositories.RunRepository, func(), error) {
	if r.db != nil {
		return repositories.NewRunRepository(r.db), func() {}, nil
	}
	if config.Archive.Path == "" {
		return nil, func() {}, nil
	}

	db, err := shared.NewDatabase(config.Archive.Path)
	if err != nil {
		return nil, nil, err
	}
	shared.ConfigureDatabase(db, config.Archive.MaxOpenConns, config.Archive.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewRunRepository(db), func() { db.Close() }, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
