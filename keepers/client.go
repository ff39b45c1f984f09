package keepers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidvatten/tidvatten/common"
	"github.com/tidvatten/tidvatten/interfaces"
)

// KeepersPath is appended to the upstream base URL.
const KeepersPath = "/static/keepers_user_data"

// MaxBodySize caps the size of an upstream keepers document.
const MaxBodySize = 16 << 20

// HTTPClient is the subset of *http.Client used by Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches keeper snapshots from a single upstream.
type Client struct {
	client      HTTPClient
	baseURL     string
	userAgent   string
	maxBodySize int64
}

// NewClient returns a Client for baseURL. A nil httpClient uses http.DefaultClient.
// The base URL is not validated; a malformed URL fails on Fetch as a
// transport error.
func NewClient(baseURL string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		client:      httpClient,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		userAgent:   common.PackageName + "/" + common.Version,
		maxBodySize: MaxBodySize,
	}
}

// URL returns the full snapshot URL this client requests.
func (c *Client) URL() string {
	return c.baseURL + KeepersPath
}

// Fetch performs a single GET of the keepers snapshot.
//
// The caller bounds the request duration through ctx.
func (c *Client) Fetch(ctx context.Context) (*interfaces.KeeperSnapshot, error) {
	url := c.URL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportError(url, fmt.Errorf("could not initialize request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(url, fmt.Errorf("could not request keepers: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transportError(url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, transportError(url, fmt.Errorf("could not read keepers response: %w", err))
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, transportError(url, fmt.Errorf("keepers response exceeds %d bytes", c.maxBodySize))
	}

	snapshot, err := ParseSnapshot(body)
	if err != nil {
		return nil, decodeError(url, err)
	}
	return snapshot, nil
}

// Fetch is a convenience wrapper performing a single fetch from baseURL
// with http.DefaultClient.
func Fetch(ctx context.Context, baseURL string) (*interfaces.KeeperSnapshot, error) {
	return NewClient(baseURL, nil).Fetch(ctx)
}

type keeperEntry struct {
	Username *string `json:"username"`
}

type keepersResponse struct {
	UpdateTime *int64                  `json:"update_time"`
	Result     map[string]*keeperEntry `json:"result"`
}

// ParseSnapshot decodes an upstream keepers document.
// Both update_time and result are required, every key of result must be a
// decimal keeper id and every entry must carry a username.
func ParseSnapshot(body []byte) (*interfaces.KeeperSnapshot, error) {
	var parsed keepersResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("could not parse keepers response: %w", err)
	}
	if parsed.UpdateTime == nil {
		return nil, errors.New("missing field update_time")
	}
	if parsed.Result == nil {
		return nil, errors.New("missing field result")
	}

	keepers := make(interfaces.Keepers, len(parsed.Result))
	for key, entry := range parsed.Result {
		id, err := interfaces.ParseKeeperID(key)
		if err != nil {
			return nil, fmt.Errorf("invalid keeper id %q: %w", key, err)
		}
		if entry == nil || entry.Username == nil {
			return nil, fmt.Errorf("keeper %d: missing field username", id)
		}
		keepers[id] = interfaces.Keeper{ID: id, Username: *entry.Username}
	}

	return &interfaces.KeeperSnapshot{
		FetchedAt: time.Unix(*parsed.UpdateTime, 0).UTC(),
		Keepers:   keepers,
	}, nil
}
