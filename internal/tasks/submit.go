package tasks

import (
	"context"
)

// Submit resolves every ADD decision in order, mutating outcomes in place.
//
// Submissions are strictly serial with one in-flight request, paced by the
// engine's limiter. In simulate mode each ADD is marked SUCCEEDED without
// touching the remote. A failed entry records FAILED with its terminal
// error and the loop moves on; only context cancellation stops the batch.
func (e *ImportEngine) Submit(ctx context.Context, decisions []Decision, progress chan<- ProgressUpdate) error {
	total := 0
	for _, d := range decisions {
		if d.Action == ActionAdd {
			total++
		}
	}

	step := 0
	for i := range decisions {
		d := &decisions[i]
		if d.Action != ActionAdd {
			continue
		}
		step++
		e.sendProgress(progress, submitUpdate(step, total, d.Entry))

		if e.dryRun {
			d.Outcome = OutcomeSucceeded
			continue
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		retries, err := e.retry.Do(ctx, func(ctx context.Context) error {
			return e.remote.AddMagnet(ctx, d.Entry.URI())
		})
		d.Retries = retries

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.Outcome = OutcomeFailed
			d.Reason = err.Error()
			e.logger.Warn("submission failed", "hash", d.Entry.Hash, "name", d.Entry.DisplayName, "retries", retries, "error", err)
			e.sendProgress(progress, submitFailedUpdate(step, total, d.Entry, err))
			continue
		}

		d.Outcome = OutcomeSucceeded
		e.logger.Debug("submitted magnet", "hash", d.Entry.Hash, "retries", retries)
	}

	return nil
}
