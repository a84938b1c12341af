package tasks

import (
	"time"

	"github.com/dashed/tbsync/internal/shared"
)

// Failure identifies one record the run could not import, in backup order.
type Failure struct {
	Index   int    `json:"index"`
	Hash    string `json:"hash,omitempty"`
	Name    string `json:"name,omitempty"`
	Reason  string `json:"reason"`
	Retries int    `json:"retries,omitempty"`
}

// RunSummary aggregates a run's decisions. Derived once from the final
// decision list and never mutated afterwards; identical in shape for
// simulate and live runs.
type RunSummary struct {
	RunID            string        `json:"run_id"`
	Mode             string        `json:"mode"`
	StartedAt        time.Time     `json:"started_at"`
	Duration         time.Duration `json:"duration"`
	Total            int           `json:"total"`
	Added            int           `json:"added"`
	Succeeded        int           `json:"succeeded"`
	Failed           int           `json:"failed"`
	SkippedDuplicate int           `json:"skipped_duplicate"`
	SkippedInvalid   int           `json:"skipped_invalid"`
	Failures         []Failure     `json:"failures,omitempty"`
	Invalid          []Failure     `json:"invalid,omitempty"`
}

// Summarize builds the RunSummary for a finished decision list.
//
// Added counts ADD decisions regardless of outcome; Succeeded and Failed
// split them by terminal state. Failures and Invalid preserve backup order.
func Summarize(decisions []Decision, mode string, startedAt time.Time, duration time.Duration) *RunSummary {
	s := &RunSummary{
		RunID:     shared.GenerateID(),
		Mode:      mode,
		StartedAt: startedAt,
		Duration:  duration,
		Total:     len(decisions),
	}

	for _, d := range decisions {
		switch d.Action {
		case ActionAdd:
			s.Added++
			switch d.Outcome {
			case OutcomeSucceeded:
				s.Succeeded++
			case OutcomeFailed:
				s.Failed++
				s.Failures = append(s.Failures, Failure{
					Index:   d.Index,
					Hash:    d.Entry.Hash,
					Name:    d.Entry.DisplayName,
					Reason:  d.Reason,
					Retries: d.Retries,
				})
			}

		case ActionSkipDuplicate:
			s.SkippedDuplicate++

		case ActionSkipInvalid:
			s.SkippedInvalid++
			s.Invalid = append(s.Invalid, Failure{
				Index:  d.Index,
				Hash:   d.Entry.Hash,
				Name:   d.Entry.DisplayName,
				Reason: d.Reason,
			})
		}
	}

	return s
}
