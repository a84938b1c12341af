// package tasks implements the backup import pipeline against a remote debrid library.
//
// The core abstraction is ImportEngine, which orchestrates inventory fetching,
// reconciliation, and magnet submission for one run.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dashed/tbsync/internal/backup"
	"github.com/dashed/tbsync/internal/magnet"
	"github.com/dashed/tbsync/internal/shared"
	"golang.org/x/time/rate"
)

// Execution modes for a run. The pipeline is identical in both; simulate
// suppresses the add requests at the submission boundary.
const (
	ModeLive     = "live"
	ModeSimulate = "simulate"
)

// Action is the reconciler's verdict for one backup record.
type Action int

const (
	ActionAdd Action = iota
	ActionSkipDuplicate
	ActionSkipInvalid
)

func (a Action) String() string {
	switch a {
	case ActionAdd:
		return "add"
	case ActionSkipDuplicate:
		return "skip_duplicate"
	case ActionSkipInvalid:
		return "skip_invalid"
	default:
		return ""
	}
}

// Outcome is the terminal state of an ADD decision after submission.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return ""
	}
}

// Decision tracks one backup record through the pipeline.
//
// The reconciler assigns Action; the submission loop resolves Outcome,
// Reason, and Retries for ADD decisions. Skip decisions keep OutcomePending.
type Decision struct {
	Index   int
	Entry   magnet.Entry
	Action  Action
	Outcome Outcome
	Reason  string
	Retries int
}

// RemoteLibrary is the remote account surface the pipeline consumes.
//
// Implemented by the torbox client; faked in tests so the engine runs
// without network access.
type RemoteLibrary interface {
	// TorrentHashes returns one page of info hashes from the account's torrent list.
	TorrentHashes(ctx context.Context, offset, limit int) ([]string, error)

	// QueuedHashes returns info hashes of torrents queued but not yet started.
	QueuedHashes(ctx context.Context) ([]string, error)

	// AddMagnet submits a magnet URI to the account.
	AddMagnet(ctx context.Context, magnetURI string) error
}

// ImportEngine runs the import pipeline: fetch inventory, reconcile, submit.
type ImportEngine struct {
	remote   RemoteLibrary
	retry    RetryPolicy
	limiter  *rate.Limiter
	logger   *log.Logger
	pageSize int
	dryRun   bool
}

// EngineOpts contains configuration options for creating an ImportEngine.
type EngineOpts struct {
	Remote         RemoteLibrary
	Retry          RetryPolicy
	Logger         *log.Logger
	PageSize       int           // torrent list page size, defaults to 1000
	SubmitInterval time.Duration // minimum delay between add requests, 0 disables pacing
	DryRun         bool
}

// NewImportEngine creates an ImportEngine with the provided options.
func NewImportEngine(opts EngineOpts) *ImportEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}

	var limiter *rate.Limiter
	if opts.SubmitInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.SubmitInterval), 1)
	}

	return &ImportEngine{
		remote:   opts.Remote,
		retry:    opts.Retry,
		limiter:  limiter,
		logger:   opts.Logger,
		pageSize: opts.PageSize,
		dryRun:   opts.DryRun,
	}
}

// Mode returns the engine's execution mode label.
func (e *ImportEngine) Mode() string {
	if e.dryRun {
		return ModeSimulate
	}
	return ModeLive
}

// Run executes the full pipeline over the parsed backup records.
//
// The inventory is fetched in both modes since the dedup preview is
// meaningless without it; only the add requests differ between modes. An
// inventory failure is fatal and returns before any submission. Per-entry
// submission failures never abort the run.
func (e *ImportEngine) Run(ctx context.Context, records []backup.Record, progress chan<- ProgressUpdate) (*RunSummary, error) {
	if e.remote == nil {
		return nil, fmt.Errorf("%w: remote library not initialized", shared.ErrRemoteUnavailable)
	}

	started := time.Now()

	inventory, err := e.FetchInventory(ctx, progress)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, reconcileUpdate(len(records), len(inventory)))
	decisions := Reconcile(records, inventory)

	if err := e.Submit(ctx, decisions, progress); err != nil {
		return nil, err
	}

	summary := Summarize(decisions, e.Mode(), started, time.Since(started))
	e.sendProgress(progress, reportUpdate(summary))
	return summary, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
