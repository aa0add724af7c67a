package engine

import (
	"context"
	"fmt"

	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/log"
	"github.com/osops/bugtriage/internal/model"
)

// Applier translates an Action into tracker calls. It is the only
// component that writes to the tracker; everything upstream deals in
// data. In dry-run mode every apply short-circuits after logging.
type Applier struct {
	tracker launchpad.Tracker
	dryRun  bool
}

// NewApplier creates an applier over the given tracker.
func NewApplier(tracker launchpad.Tracker, dryRun bool) *Applier {
	return &Applier{tracker: tracker, dryRun: dryRun}
}

// DryRun reports whether the applier suppresses writes.
func (a *Applier) DryRun() bool { return a.dryRun }

// Apply executes one merged action against the tracker. The view is
// the snapshot the action was computed from; it is used to skip writes
// that would be remote no-ops, keeping repeated runs idempotent.
func (a *Applier) Apply(ctx context.Context, view *model.IssueView, act *model.Action) error {
	if act.Empty() {
		return nil
	}

	if a.dryRun {
		log.Info("dry run, skipping apply",
			"bug", act.IssueID, "policy", act.Policy, "reason", act.Reason)
		return nil
	}

	if tags := newTags(view, act.AddTags); len(tags) > 0 {
		if err := a.tracker.AddTags(ctx, act.IssueID, tags); err != nil {
			return fmt.Errorf("adding tags to bug %s: %w", act.IssueID, err)
		}
	}

	if len(act.RemoveTags) > 0 {
		if err := a.tracker.RemoveTags(ctx, act.IssueID, act.RemoveTags); err != nil {
			return fmt.Errorf("removing tags from bug %s: %w", act.IssueID, err)
		}
	}

	if act.Comment != "" {
		if err := a.tracker.PostComment(ctx, act.IssueID, act.Comment); err != nil {
			return fmt.Errorf("commenting on bug %s: %w", act.IssueID, err)
		}
	}

	if act.Status != nil && *act.Status != view.Status {
		if err := a.tracker.SetStatus(ctx, act.IssueID, act.Target, *act.Status); err != nil {
			return fmt.Errorf("setting status on bug %s: %w", act.IssueID, err)
		}
	}

	if act.ClearAssignee && view.Assignee != "" {
		if err := a.tracker.ClearAssignee(ctx, act.IssueID, act.Target); err != nil {
			return fmt.Errorf("clearing assignee on bug %s: %w", act.IssueID, err)
		}
	}

	log.Info("applied action",
		"bug", act.IssueID, "policy", act.Policy, "reason", act.Reason)
	return nil
}

// newTags filters out tags the bug already carries.
func newTags(view *model.IssueView, tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !view.HasTag(tag) {
			out = append(out, tag)
		}
	}
	return out
}
