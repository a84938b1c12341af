package tasks

import "github.com/dashed/tbsync/internal/backup"

// Reconcile assigns an action to every backup record against the inventory
// snapshot. Pure function, no I/O; separately testable from networking.
//
// Records keep their original order. A record with a parse defect becomes
// SKIP_INVALID. A hash already in the inventory, or already seen earlier in
// this batch, becomes SKIP_DUPLICATE; ties inside the batch go to the first
// occurrence. Everything else is an ADD with a pending outcome, so the set
// of hashes submitted in one run never contains duplicates.
func Reconcile(records []backup.Record, inventory Inventory) []Decision {
	decisions := make([]Decision, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, rec := range records {
		d := Decision{Index: rec.Index, Entry: rec.Entry}

		switch {
		case rec.Err != nil:
			d.Action = ActionSkipInvalid
			d.Reason = rec.Err.Error()

		case inventory.Has(rec.Entry.Hash):
			d.Action = ActionSkipDuplicate
			d.Reason = "already in remote library"

		default:
			if _, dup := seen[rec.Entry.Hash]; dup {
				d.Action = ActionSkipDuplicate
				d.Reason = "duplicate of an earlier backup entry"
				break
			}
			seen[rec.Entry.Hash] = struct{}{}
			d.Action = ActionAdd
			d.Outcome = OutcomePending
		}

		decisions = append(decisions, d)
	}

	return decisions
}
