package launchpad

import (
	"context"

	"github.com/osops/bugtriage/internal/model"
)

// Tracker is the tracker surface the triage engine consumes. It exists
// so the engine and applier can be exercised against a fake in tests.
type Tracker interface {
	// SearchTasks lists the bug tasks of a project matching opts.
	SearchTasks(ctx context.Context, project string, opts SearchOptions) ([]Task, error)

	// LoadIssue builds the immutable snapshot for one search result
	// against the given target. Returns ErrNoTask (wrapped) when the
	// bug has no task for the target.
	LoadIssue(ctx context.Context, task Task, target string) (*model.IssueView, error)

	// LoadIssueByID is LoadIssue for a bare bug id, used by the
	// review-sync flow where bugs come from Gerrit commit messages.
	LoadIssueByID(ctx context.Context, bugID, target string) (*model.IssueView, error)

	// Mutations. All are idempotent at the tracker: setting an already
	// set status, adding a present tag, or clearing a missing assignee
	// leaves remote state unchanged.
	SetStatus(ctx context.Context, issueID, target string, status model.Status) error
	ClearAssignee(ctx context.Context, issueID, target string) error
	AddTags(ctx context.Context, issueID string, tags []string) error
	RemoveTags(ctx context.Context, issueID string, tags []string) error
	PostComment(ctx context.Context, issueID, content string) error
}

// Ensure Client implements Tracker.
var _ Tracker = (*Client)(nil)
