package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/dashed/tbsync/internal/magnet"
	"github.com/dashed/tbsync/internal/shared"
)

// Inventory is the set of normalized hashes present in the remote account,
// built once per run and treated as a read-only snapshot thereafter.
type Inventory map[string]struct{}

// Has reports whether a normalized hash is in the inventory.
func (inv Inventory) Has(hash string) bool {
	_, ok := inv[hash]
	return ok
}

// add normalizes a remote hash into the set.
//
// Remote hashes that fail normalization are kept in lowercased trimmed form
// rather than dropped: an unrecognizable remote hash can never match a
// parsed backup entry anyway, and keeping it makes the inventory count
// honest.
func (inv Inventory) add(raw string) {
	hash, err := magnet.NormalizeHash(raw)
	if err != nil {
		hash = strings.ToLower(strings.TrimSpace(raw))
	}
	if hash == "" {
		return
	}
	inv[hash] = struct{}{}
}

// FetchInventory builds the dedup baseline from the remote account.
//
// Pages through the torrent list until a short page, then merges the queued
// torrents, which occupy the account but do not appear in the list yet.
// Each remote call runs under the engine's retry policy; a page that still
// fails afterwards makes the whole fetch fail with
// [shared.ErrRemoteUnavailable], since dedup cannot be trusted against a
// partial baseline.
func (e *ImportEngine) FetchInventory(ctx context.Context, progress chan<- ProgressUpdate) (Inventory, error) {
	inventory := make(Inventory)

	offset := 0
	for page := 1; ; page++ {
		var hashes []string
		_, err := e.retry.Do(ctx, func(ctx context.Context) error {
			var callErr error
			hashes, callErr = e.remote.TorrentHashes(ctx, offset, e.pageSize)
			return callErr
		})
		if err != nil {
			return nil, fmt.Errorf("%w: listing torrents at offset %d: %v", shared.ErrRemoteUnavailable, offset, err)
		}

		for _, h := range hashes {
			inventory.add(h)
		}
		e.logger.Debug("fetched inventory page", "page", page, "hashes", len(hashes), "total", len(inventory))
		e.sendProgress(progress, inventoryPageUpdate(page, len(inventory)))

		if len(hashes) < e.pageSize {
			break
		}
		offset += len(hashes)
	}

	var queued []string
	_, err := e.retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		queued, callErr = e.remote.QueuedHashes(ctx)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing queued torrents: %v", shared.ErrRemoteUnavailable, err)
	}

	for _, h := range queued {
		inventory.add(h)
	}
	e.sendProgress(progress, inventoryDoneUpdate(len(inventory)))

	return inventory, nil
}
