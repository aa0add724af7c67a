// Package gerrit is a minimal client for the Gerrit REST API, covering
// the two calls triage needs: change status lookup by number and an
// open-change query by commit message.
package gerrit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/osops/bugtriage/internal/log"
)

// magicPrefix is the anti-JSON-hijacking line Gerrit prepends to every
// JSON response body. It must be stripped before parsing.
// https://review.openstack.org/Documentation/rest-api.html
const magicPrefix = ")]}'"

// StatusNew is the Gerrit change status meaning the review is open.
const StatusNew = "NEW"

// Client talks to one Gerrit server.
type Client struct {
	root       string
	httpClient *http.Client
}

// NewClient creates a Gerrit client for the given server root. When a
// token is supplied, requests carry it as an OAuth2 bearer credential;
// anonymous access is fine for public servers.
func NewClient(ctx context.Context, root, token string) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	return &Client{
		root:       strings.TrimRight(root, "/"),
		httpClient: httpClient,
	}
}

// stripMagic removes the magic prefix line from a Gerrit response body.
func stripMagic(body []byte) []byte {
	if len(body) >= len(magicPrefix) && string(body[:len(magicPrefix)]) == magicPrefix {
		body = body[len(magicPrefix):]
	}
	return body
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.root+path, nil)
	if err != nil {
		return nil, err
	}
	log.Trace("gerrit GET", "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gerrit request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading gerrit response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gerrit returned %d for %s", resp.StatusCode, path)
	}
	return body, nil
}

// ChangeStatus returns the status string of the given change number.
// When the body does not parse as a change record, the raw text is
// returned as the status: error pages then simply fail any "is open"
// check instead of aborting the caller.
func (c *Client) ChangeStatus(ctx context.Context, id int) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("/changes/%d", id))
	if err != nil {
		return "", err
	}

	var change struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(stripMagic(body), &change); err != nil {
		return strings.TrimSpace(string(body)), nil
	}
	return change.Status, nil
}

// Change is one result from a change query.
type Change struct {
	Number          int                 `json:"_number"`
	Branch          string              `json:"branch"`
	Status          string              `json:"status"`
	CurrentRevision string              `json:"current_revision"`
	Revisions       map[string]Revision `json:"revisions"`
}

// Revision carries the commit for one patch set.
type Revision struct {
	Commit struct {
		Message string `json:"message"`
	} `json:"commit"`
}

// CommitMessage returns the commit message of the change's current
// revision, or of any revision when the current one is not marked.
func (ch *Change) CommitMessage() string {
	if rev, ok := ch.Revisions[ch.CurrentRevision]; ok {
		return rev.Commit.Message
	}
	for _, rev := range ch.Revisions {
		return rev.Commit.Message
	}
	return ""
}

// QueryOpenChanges returns the open changes for a Gerrit project whose
// commit message mentions a bug reference.
func (c *Client) QueryOpenChanges(ctx context.Context, project string) ([]Change, error) {
	q := fmt.Sprintf("status:open+project:%s+message:%s",
		url.QueryEscape(project), url.QueryEscape(`"bug:"`))
	path := "/changes/?q=" + q + "&o=CURRENT_COMMIT&o=CURRENT_REVISION"

	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var changes []Change
	if err := json.Unmarshal(stripMagic(body), &changes); err != nil {
		return nil, fmt.Errorf("malformed gerrit change list: %w", err)
	}
	return changes, nil
}
