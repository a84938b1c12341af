package torbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dashed/tbsync/internal/shared"
	"golang.org/x/oauth2"
)

// Client is an authenticated TorBox API client.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given API root and account key.
//
// The underlying [http.Client] attaches the key as a bearer token on every
// request via [oauth2.NewClient]. An empty baseURL selects [DefaultBaseURL].
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey})
	hc := oauth2.NewClient(context.Background(), src)
	hc.Timeout = 60 * time.Second

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    hc,
	}
}

// envelope is the wrapper TorBox puts around every response payload.
type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

// do issues one request and decodes the envelope into out.
//
// A non-2xx status or a success=false envelope becomes an [*APIError];
// transport failures wrap [shared.ErrAPIRequest].
func (c *Client) do(ctx context.Context, method, path string, query, form url.Values, out any) error {
	endpoint := c.baseURL + "/" + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %v", shared.ErrAPIRequest, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			// Error bodies are not guaranteed to carry the envelope.
			return &APIError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("%w: %s %s: malformed response: %v", shared.ErrAPIRequest, method, path, err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Error, Detail: env.Detail}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: %s %s: malformed data payload: %v", shared.ErrAPIRequest, method, path, err)
		}
	}

	return nil
}

// Torrents fetches one page of the account's torrent list.
func (c *Client) Torrents(ctx context.Context, offset, limit int) ([]Torrent, error) {
	query := url.Values{
		"bypass_cache": {"true"},
		"offset":       {strconv.Itoa(offset)},
		"limit":        {strconv.Itoa(limit)},
	}

	var torrents []Torrent
	if err := c.do(ctx, http.MethodGet, "api/torrents/mylist", query, nil, &torrents); err != nil {
		return nil, err
	}
	return torrents, nil
}

// QueuedTorrents fetches torrents queued but not yet started.
func (c *Client) QueuedTorrents(ctx context.Context) ([]Torrent, error) {
	var torrents []Torrent
	if err := c.do(ctx, http.MethodGet, "api/torrents/getqueued", nil, nil, &torrents); err != nil {
		return nil, err
	}
	return torrents, nil
}

// CreateResult is the payload returned by a successful torrent submission.
type CreateResult struct {
	TorrentID int64  `json:"torrent_id"`
	Hash      string `json:"hash"`
}

// CreateTorrent submits a magnet link to the account.
func (c *Client) CreateTorrent(ctx context.Context, magnetURI string) (*CreateResult, error) {
	form := url.Values{"magnet": {magnetURI}}

	var result CreateResult
	if err := c.do(ctx, http.MethodPost, "api/torrents/createtorrent", nil, form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me fetches the authenticated account, verifying the API key works.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "api/user/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TorrentHashes returns the raw info hashes of one page of the torrent list.
func (c *Client) TorrentHashes(ctx context.Context, offset, limit int) ([]string, error) {
	torrents, err := c.Torrents(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	hashes := make([]string, 0, len(torrents))
	for _, t := range torrents {
		hashes = append(hashes, t.Hash)
	}
	return hashes, nil
}

// QueuedHashes returns the raw info hashes of queued torrents.
func (c *Client) QueuedHashes(ctx context.Context) ([]string, error) {
	torrents, err := c.QueuedTorrents(ctx)
	if err != nil {
		return nil, err
	}

	hashes := make([]string, 0, len(torrents))
	for _, t := range torrents {
		hashes = append(hashes, t.Hash)
	}
	return hashes, nil
}

// AddMagnet submits a magnet URI, discarding the created torrent's metadata.
func (c *Client) AddMagnet(ctx context.Context, magnetURI string) error {
	_, err := c.CreateTorrent(ctx, magnetURI)
	return err
}
