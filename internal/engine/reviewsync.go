package engine

import (
	"context"
	"sort"

	"github.com/osops/bugtriage/internal/gerrit"
	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/log"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/policy"
)

// ReviewFinder locates open Gerrit reviews grouped by the bug ids
// their commit messages reference.
type ReviewFinder interface {
	OpenReviewsByBug(ctx context.Context, project string) (map[string][]gerrit.ReviewRef, error)
}

// ReviewSync walks Gerrit rather than the bug tracker: every open
// change that references a bug should have that bug In Progress. Bugs
// already In Progress or Fix Released are left alone.
type ReviewSync struct {
	tracker    launchpad.Tracker
	finder     ReviewFinder
	applier    *Applier
	project    string
	gerritRoot string
}

// NewReviewSync creates the Gerrit-driven sync runner. project is the
// Launchpad project name; the Gerrit project is derived from it.
func NewReviewSync(tracker launchpad.Tracker, finder ReviewFinder, applier *Applier, project, gerritRoot string) *ReviewSync {
	return &ReviewSync{
		tracker:    tracker,
		finder:     finder,
		applier:    applier,
		project:    project,
		gerritRoot: gerritRoot,
	}
}

// Run performs one sync pass. Like the engine, it is fail-isolated per
// bug; only the Gerrit query itself is fatal.
func (s *ReviewSync) Run(ctx context.Context) (*RunStats, error) {
	stats := NewRunStats(s.applier.DryRun())

	byBug, err := s.finder.OpenReviewsByBug(ctx, "openstack/"+s.project)
	if err != nil {
		return stats, err
	}

	// Deterministic order so the running tally reads the same way on
	// every run.
	bugIDs := make([]string, 0, len(byBug))
	for id := range byBug {
		bugIDs = append(bugIDs, id)
	}
	sort.Strings(bugIDs)

	for _, bugID := range bugIDs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Scanned++
		s.processBug(ctx, bugID, byBug[bugID], stats)
	}

	return stats, nil
}

func (s *ReviewSync) processBug(ctx context.Context, bugID string, refs []gerrit.ReviewRef, stats *RunStats) {
	if _, ok := gerrit.ParseBugID(bugID); !ok {
		log.Debug("ignoring malformed bug reference", "ref", bugID)
		stats.Skipped++
		return
	}

	view, err := s.tracker.LoadIssueByID(ctx, bugID, s.project)
	if err != nil {
		if launchpad.IsNoTask(err) {
			stats.Skipped++
			log.Debug("bug does not track project, skipping", "bug", bugID, "project", s.project)
			return
		}
		log.Warn("failed to load bug, continuing", "bug", bugID, "error", err)
		stats.recordError(bugID, err)
		return
	}

	if view.Status == model.StatusInProgress || view.Status == model.StatusFixReleased {
		return
	}

	act := &model.Action{
		IssueID: view.ID,
		Target:  view.Target,
		Policy:  "review-sync",
		Comment: policy.ReviewSyncComment(s.gerritRoot, refs),
		Reason:  "open gerrit reviews reference this bug",
	}
	act.SetStatus(model.StatusInProgress)

	if err := s.applier.Apply(ctx, view, act); err != nil {
		log.Warn("failed to apply action, continuing", "bug", view.ID, "error", err)
		stats.recordError(view.ID, err)
		return
	}
	stats.ActionsTaken++
	stats.PerPolicy["review-sync"]++
}
