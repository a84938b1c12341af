// package magnet defines the magnet-link domain types and the hash normalization rules used for deduplication.
package magnet

import (
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/dashed/tbsync/internal/shared"
)

// Entry is a single magnet link candidate from a backup.
//
// Hash is the normalized lowercase hex info hash and is the identity key:
// two entries are the same torrent iff their hashes match, regardless of
// display name. Entries are immutable once built.
type Entry struct {
	Hash        string `json:"hash"`
	DisplayName string `json:"name,omitempty"`
	RawURI      string `json:"-"`
}

// URI returns the magnet URI to submit for this entry.
//
// The original URI from the backup is preferred when present since it may
// carry trackers; otherwise a minimal one is built from hash and name.
func (e Entry) URI() string {
	if e.RawURI != "" {
		return e.RawURI
	}
	return BuildURI(e.Hash, e.DisplayName)
}

// Label returns a human-readable identifier for progress and reports.
func (e Entry) Label() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Hash
}

// BuildURI constructs a magnet URI from an info hash and optional display name.
func BuildURI(hash, name string) string {
	uri := "magnet:?xt=urn:btih:" + hash
	if name != "" {
		uri += "&dn=" + url.QueryEscape(name)
	}
	return uri
}

const btihPrefix = "urn:btih:"

// NormalizeHash canonicalizes a BitTorrent info hash for dedup comparison.
//
// Rules: surrounding whitespace is trimmed, an optional urn:btih: prefix is
// stripped, a 40-character hex hash is lowercased, a 32-character base32
// hash is decoded and re-encoded as lowercase hex. Anything else is an
// invalid entry.
func NormalizeHash(raw string) (string, error) {
	h := strings.TrimSpace(raw)
	if len(h) >= len(btihPrefix) && strings.EqualFold(h[:len(btihPrefix)], btihPrefix) {
		h = h[len(btihPrefix):]
	}

	switch len(h) {
	case 40:
		h = strings.ToLower(h)
		if !isHex(h) {
			return "", fmt.Errorf("%w: non-hex character in hash %q", shared.ErrInvalidEntry, raw)
		}
		return h, nil
	case 32:
		decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(h))
		if err != nil {
			return "", fmt.Errorf("%w: malformed base32 hash %q", shared.ErrInvalidEntry, raw)
		}
		return hex.EncodeToString(decoded), nil
	case 0:
		return "", fmt.Errorf("%w: empty hash", shared.ErrInvalidEntry)
	default:
		return "", fmt.Errorf("%w: hash %q has length %d, want 40 hex or 32 base32 characters", shared.ErrInvalidEntry, raw, len(h))
	}
}

// ParseURI extracts the normalized info hash and display name from a magnet URI.
func ParseURI(raw string) (hash, name string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "magnet" {
		return "", "", fmt.Errorf("%w: not a magnet URI: %q", shared.ErrInvalidEntry, raw)
	}

	params, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed magnet query in %q", shared.ErrInvalidEntry, raw)
	}

	for _, xt := range params["xt"] {
		if len(xt) >= len(btihPrefix) && strings.EqualFold(xt[:len(btihPrefix)], btihPrefix) {
			hash, err = NormalizeHash(xt[len(btihPrefix):])
			if err != nil {
				return "", "", err
			}
			return hash, params.Get("dn"), nil
		}
	}

	return "", "", fmt.Errorf("%w: magnet URI %q has no btih topic", shared.ErrInvalidEntry, raw)
}

func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
