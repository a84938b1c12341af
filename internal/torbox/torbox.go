// Package torbox implements the TorBox HTTP API client used by the importer.
//
// # API Shape
//
// Every TorBox endpoint wraps its payload in a common envelope:
//
//	{"success": bool, "error": slug, "detail": message, "data": ...}
//
// [Client] unwraps the envelope, decoding data into typed results and
// converting failures (HTTP status or success=false) into [*APIError].
//
// # Endpoints
//
//   - [Client.Torrents] : GET api/torrents/mylist, one page of the account's torrents
//   - [Client.QueuedTorrents] : GET api/torrents/getqueued, torrents waiting to start
//   - [Client.CreateTorrent] : POST api/torrents/createtorrent, submits a magnet link
//   - [Client.Me] : GET api/user/me, credential check
//
// # Error Classification
//
// [APIError.Retriable] marks rate limiting (429) and server-side failures
// (5xx) as worth another attempt; all other rejections are terminal. The
// retry loop itself lives with the caller.
package torbox

import (
	"fmt"
	"net/http"
)

// DefaultBaseURL is the production TorBox API root.
const DefaultBaseURL = "https://api.torbox.app/v1"

// Torrent is the subset of TorBox torrent metadata the importer reads.
type Torrent struct {
	ID   int64  `json:"id"`
	Hash string `json:"hash"`
	Name string `json:"name"`
}

// User identifies the authenticated TorBox account.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Plan      int    `json:"plan"`
	TotalDled int    `json:"total_downloaded"`
}

// APIError is a TorBox request that completed with a failure, either an
// HTTP error status or a success=false envelope.
type APIError struct {
	StatusCode int
	Code       string // envelope error slug, e.g. "AUTH_ERROR"
	Detail     string // envelope detail message
}

func (e *APIError) Error() string {
	switch {
	case e.Detail != "" && e.Code != "":
		return fmt.Sprintf("torbox: %s (%s, status %d)", e.Detail, e.Code, e.StatusCode)
	case e.Detail != "":
		return fmt.Sprintf("torbox: %s (status %d)", e.Detail, e.StatusCode)
	default:
		return fmt.Sprintf("torbox: status %d", e.StatusCode)
	}
}

// Retriable reports whether the request may succeed on a later attempt.
func (e *APIError) Retriable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
