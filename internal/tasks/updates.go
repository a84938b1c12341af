package tasks

import (
	"fmt"

	"github.com/dashed/tbsync/internal/magnet"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Pipeline phase enumeration
type Phase int

const (
	FetchInventoryPhase Phase = iota
	ReconcilePhase
	SubmitPhase
	ReportPhase
)

func (p Phase) String() string {
	switch p {
	case FetchInventoryPhase:
		return "fetch_inventory"
	case ReconcilePhase:
		return "reconcile"
	case SubmitPhase:
		return "submit"
	case ReportPhase:
		return "report"
	default:
		return ""
	}
}

func inventoryPageUpdate(page, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchInventoryPhase,
		Step:    page,
		Message: fmt.Sprintf("Fetched inventory page %d (%d hashes so far)...", page, total),
	}
}

func inventoryDoneUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchInventoryPhase,
		Message: fmt.Sprintf("Remote inventory: %d existing torrents", total),
	}
}

func reconcileUpdate(records, inventory int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReconcilePhase,
		Total:   records,
		Message: fmt.Sprintf("Reconciling %d backup records against %d remote hashes...", records, inventory),
	}
}

func submitUpdate(step, total int, entry magnet.Entry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitPhase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, entry.Label()),
		Data:    entry,
	}
}

func submitFailedUpdate(step, total int, entry magnet.Entry, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitPhase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, entry.Label(), err),
	}
}

func reportUpdate(summary *RunSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReportPhase,
		Message: fmt.Sprintf("Run complete: %d added, %d skipped, %d failed", summary.Added, summary.SkippedDuplicate+summary.SkippedInvalid, summary.Failed),
		Data:    summary,
	}
}
