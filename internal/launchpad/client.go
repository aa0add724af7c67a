// Package launchpad is a client for the Launchpad web service API,
// scoped to what bug triage needs: task search, bug loading, and the
// small set of mutations the triage policies emit.
package launchpad

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/osops/bugtriage/internal/log"
	"github.com/osops/bugtriage/internal/model"
)

// ErrNoTask means the bug has no task for the requested target. Per
// policy this is a skip, not an error: the bug simply does not track
// the project or series being triaged.
var ErrNoTask = errors.New("bug has no task for target")

// IsNoTask reports whether err means "no task for this target".
func IsNoTask(err error) bool {
	return errors.Is(err, ErrNoTask)
}

// Credentials holds an OAuth 1.0a access token for Launchpad. The
// PLAINTEXT signature method is what Launchpad itself uses over TLS.
type Credentials struct {
	ConsumerKey string `yaml:"consumer_key"`
	Token       string `yaml:"token"`
	TokenSecret string `yaml:"token_secret"`
}

// Client talks to the Launchpad web service. Reads work anonymously;
// mutations require credentials.
type Client struct {
	root       string
	httpClient *http.Client
	creds      *Credentials

	// Per-run link cache so mutations do not have to re-search for the
	// task they target. Never persisted across runs.
	mu        sync.Mutex
	taskLinks map[string]string // issueID + "\x00" + target -> task self_link
	bugLinks  map[string]string // issueID -> bug self_link
	bugTags   map[string][]string
}

// NewClient creates a Launchpad client for the given API root. creds
// may be nil for read-only (dry-run) use.
func NewClient(root string, creds *Credentials) *Client {
	return &Client{
		root:       strings.TrimRight(root, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		creds:      creds,
		taskLinks:  make(map[string]string),
		bugLinks:   make(map[string]string),
		bugTags:    make(map[string][]string),
	}
}

// authorize attaches an OAuth 1.0a PLAINTEXT Authorization header.
// golang.org/x/oauth2 only speaks OAuth 2; Launchpad never moved off
// OAuth 1, but PLAINTEXT signing over TLS is just a header.
func (c *Client) authorize(req *http.Request) {
	if c.creds == nil {
		return
	}
	nonce := make([]byte, 16)
	_, _ = rand.Read(nonce)
	req.Header.Set("Authorization", fmt.Sprintf(
		`OAuth realm="https://api.launchpad.net/", `+
			`oauth_consumer_key=%q, oauth_token=%q, `+
			`oauth_signature_method="PLAINTEXT", oauth_signature="&%s", `+
			`oauth_timestamp="%d", oauth_nonce=%q, oauth_version="1.0"`,
		c.creds.ConsumerKey, c.creds.Token, c.creds.TokenSecret,
		time.Now().Unix(), hex.EncodeToString(nonce)))
}

func (c *Client) do(ctx context.Context, method, rawURL string, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.authorize(req)
	log.Trace("launchpad request", "method", method, "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("launchpad request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading launchpad response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("launchpad returned %d for %s %s: %s",
			resp.StatusCode, method, rawURL, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	data, err := c.do(ctx, http.MethodGet, rawURL, "", nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed launchpad response from %s: %w", rawURL, err)
	}
	return nil
}

// patch applies a partial update to a Launchpad resource.
func (c *Client) patch(ctx context.Context, rawURL string, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPatch, rawURL, "application/json", strings.NewReader(string(body)))
	return err
}

// collectAll follows next_collection_link until the collection is
// exhausted.
func collectAll[T any](ctx context.Context, c *Client, firstURL string) ([]T, error) {
	var out []T
	next := firstURL
	for next != "" {
		var page collection[T]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Entries...)
		next = page.NextLink
	}
	return out, nil
}

// SearchTasks runs a task search against a project target.
func (c *Client) SearchTasks(ctx context.Context, project string, opts SearchOptions) ([]Task, error) {
	params := url.Values{}
	params.Set("ws.op", "searchTasks")
	for _, s := range opts.Statuses {
		params.Add("status", string(s))
	}
	if opts.SearchText != "" {
		params.Set("search_text", opts.SearchText)
	}
	if opts.OrderBy != "" {
		params.Set("order_by", opts.OrderBy)
	}
	if !opts.ModifiedSince.IsZero() {
		params.Set("modified_since", opts.ModifiedSince.Format(time.RFC3339))
	}
	if opts.OmitDuplicates {
		params.Set("omit_duplicates", "true")
	}

	searchURL := c.root + "/" + url.PathEscape(project) + "?" + params.Encode()
	tasks, err := collectAll[Task](ctx, c, searchURL)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", project, err)
	}
	log.Debug("task search complete", "project", project, "tasks", len(tasks))
	return tasks, nil
}

// loadBug fetches the bug a task points at, plus its comments and
// activity log, and locates the task for the requested target.
func (c *Client) loadBug(ctx context.Context, bugLink, target string) (*Bug, *Task, []Message, []Activity, error) {
	var bug Bug
	if err := c.getJSON(ctx, bugLink, &bug); err != nil {
		return nil, nil, nil, nil, err
	}

	tasks, err := collectAll[Task](ctx, c, bug.TasksLink)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var targetTask *Task
	for i := range tasks {
		if tasks[i].BugTargetName == target {
			targetTask = &tasks[i]
			break
		}
	}
	if targetTask == nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: bug %d, target %s", ErrNoTask, bug.ID, target)
	}

	messages, err := collectAll[Message](ctx, c, bug.MessagesLink)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	activity, err := collectAll[Activity](ctx, c, bug.ActivityLink)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return &bug, targetTask, messages, activity, nil
}

func (c *Client) cacheLinks(issueID, target string, bug *Bug, task *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taskLinks[issueID+"\x00"+target] = task.SelfLink
	c.bugLinks[issueID] = bug.SelfLink
	c.bugTags[issueID] = append([]string(nil), bug.Tags...)
}

// LoadIssue builds an IssueView for one search result against the
// given target (project, or project/series composite).
func (c *Client) LoadIssue(ctx context.Context, task Task, target string) (*model.IssueView, error) {
	bug, targetTask, messages, activity, err := c.loadBug(ctx, task.BugLink, target)
	if err != nil {
		return nil, err
	}
	view := buildView(bug, targetTask, target, messages, activity, time.Now())
	c.cacheLinks(view.ID, target, bug, targetTask)
	return view, nil
}

// LoadIssueByID builds an IssueView for a bug id, used when the bug
// came from a Gerrit query rather than a task search.
func (c *Client) LoadIssueByID(ctx context.Context, bugID, target string) (*model.IssueView, error) {
	return c.LoadIssue(ctx, Task{BugLink: c.root + "/bugs/" + url.PathEscape(bugID)}, target)
}

func (c *Client) taskLink(issueID, target string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.taskLinks[issueID+"\x00"+target]
	if !ok {
		return "", fmt.Errorf("%w: bug %s, target %s (not loaded this run)", ErrNoTask, issueID, target)
	}
	return link, nil
}

func (c *Client) bugLink(issueID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.bugLinks[issueID]
	if !ok {
		return "", fmt.Errorf("bug %s not loaded this run", issueID)
	}
	return link, nil
}

// SetStatus writes a new status to the bug's task for the target.
func (c *Client) SetStatus(ctx context.Context, issueID, target string, status model.Status) error {
	link, err := c.taskLink(issueID, target)
	if err != nil {
		return err
	}
	return c.patch(ctx, link, map[string]any{"status": string(status)})
}

// ClearAssignee drops the assignee on the bug's task for the target.
func (c *Client) ClearAssignee(ctx context.Context, issueID, target string) error {
	link, err := c.taskLink(issueID, target)
	if err != nil {
		return err
	}
	return c.patch(ctx, link, map[string]any{"assignee_link": nil})
}

// AddTags adds tags to the bug, preserving existing ones. Tags already
// present are left alone, keeping the write idempotent.
func (c *Client) AddTags(ctx context.Context, issueID string, tags []string) error {
	link, err := c.bugLink(issueID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	current := append([]string(nil), c.bugTags[issueID]...)
	c.mu.Unlock()

	updated := current
	changed := false
	for _, tag := range tags {
		if !containsTag(updated, tag) {
			updated = append(updated, tag)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := c.patch(ctx, link, map[string]any{"tags": updated}); err != nil {
		return err
	}

	c.mu.Lock()
	c.bugTags[issueID] = updated
	c.mu.Unlock()
	return nil
}

// RemoveTags removes the given tags from the bug, ignoring absent ones.
func (c *Client) RemoveTags(ctx context.Context, issueID string, tags []string) error {
	link, err := c.bugLink(issueID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	current := append([]string(nil), c.bugTags[issueID]...)
	c.mu.Unlock()

	updated := make([]string, 0, len(current))
	for _, t := range current {
		if !containsTag(tags, t) {
			updated = append(updated, t)
		}
	}
	if len(updated) == len(current) {
		return nil
	}
	if err := c.patch(ctx, link, map[string]any{"tags": updated}); err != nil {
		return err
	}

	c.mu.Lock()
	c.bugTags[issueID] = updated
	c.mu.Unlock()
	return nil
}

// RemoveTagsMatching removes all tags matching the pattern, e.g. to
// strip stale "openstack-version.*" tags before retagging.
func (c *Client) RemoveTagsMatching(ctx context.Context, issueID string, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("bad tag pattern %q: %w", pattern, err)
	}

	c.mu.Lock()
	current := append([]string(nil), c.bugTags[issueID]...)
	c.mu.Unlock()

	var doomed []string
	for _, t := range current {
		if re.MatchString(t) {
			doomed = append(doomed, t)
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	return c.RemoveTags(ctx, issueID, doomed)
}

// PostComment adds a comment to the bug.
func (c *Client) PostComment(ctx context.Context, issueID, content string) error {
	link, err := c.bugLink(issueID)
	if err != nil {
		return err
	}
	form := url.Values{}
	form.Set("ws.op", "newMessage")
	form.Set("content", content)
	_, err = c.do(ctx, http.MethodPost, link, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	return err
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// BugIDFromLink pulls the numeric bug id out of a bug link.
func BugIDFromLink(link string) string {
	i := strings.LastIndexByte(link, '/')
	if i < 0 {
		return link
	}
	id := link[i+1:]
	if _, err := strconv.Atoi(id); err != nil {
		return link
	}
	return id
}
