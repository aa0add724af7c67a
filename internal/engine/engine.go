// Package engine orchestrates a triage pass: it walks a task search,
// builds one immutable snapshot per bug, runs the configured policies
// in a fixed order, and applies the merged result.
package engine

import (
	"context"

	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/log"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/policy"
)

// ReviewResolver answers which of a bug's review references are open.
type ReviewResolver interface {
	OpenReviews(ctx context.Context, ids []int) []int
}

// Progress carries optional callbacks for surfacing run progress.
// Any field may be nil.
type Progress struct {
	// SearchDone fires once the task search returns.
	SearchDone func(total int)

	// IssueDone fires after each bug is fully processed.
	IssueDone func(done, total int, view *model.IssueView)

	// ActionTaken fires for each bug that produced a non-empty action.
	ActionTaken func(view *model.IssueView, act *model.Action)
}

func (p Progress) searchDone(total int) {
	if p.SearchDone != nil {
		p.SearchDone(total)
	}
}

func (p Progress) issueDone(done, total int, view *model.IssueView) {
	if p.IssueDone != nil {
		p.IssueDone(done, total, view)
	}
}

func (p Progress) actionTaken(view *model.IssueView, act *model.Action) {
	if p.ActionTaken != nil {
		p.ActionTaken(view, act)
	}
}

// Options configures one engine run.
type Options struct {
	// Project is the Launchpad project searched.
	Project string

	// Target is the bug task target views are built against. Defaults
	// to Project; the stable-series pass sets "project/series".
	Target string

	// Verbose echoes bug descriptions as they are processed.
	Verbose bool
}

// Engine is stateless across runs: every invocation re-evaluates from
// the latest remote state, and the tracker remains the sole source of
// truth between runs.
type Engine struct {
	tracker  launchpad.Tracker
	resolver ReviewResolver
	policies []policy.Policy
	applier  *Applier
	progress Progress
	opts     Options

	needsReviews bool
}

// New creates an engine. resolver may be nil when no policy needs
// review state; the affected policies then decline to act.
func New(tracker launchpad.Tracker, resolver ReviewResolver, applier *Applier, policies []policy.Policy, opts Options) *Engine {
	if opts.Target == "" {
		opts.Target = opts.Project
	}
	needs := false
	for _, p := range policies {
		if p.NeedsReviews() {
			needs = true
		}
	}
	return &Engine{
		tracker:      tracker,
		resolver:     resolver,
		policies:     policies,
		applier:      applier,
		opts:         opts,
		needsReviews: needs && resolver != nil,
	}
}

// SetProgress installs progress callbacks; call before Run.
func (e *Engine) SetProgress(p Progress) { e.progress = p }

// Run executes one full pass over the search results. Per-bug failures
// are recorded and skipped; only the search itself is fatal. One bug is
// fully processed (view, policies, apply) before the next is touched,
// so the running tally stays exact under interruption.
func (e *Engine) Run(ctx context.Context, search launchpad.SearchOptions) (*RunStats, error) {
	stats := NewRunStats(e.applier.DryRun())

	tasks, err := e.tracker.SearchTasks(ctx, e.opts.Project, search)
	if err != nil {
		return stats, err
	}
	e.progress.searchDone(len(tasks))

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Scanned++
		e.processTask(ctx, task, stats)
		e.progress.issueDone(i+1, len(tasks), nil)
	}

	return stats, nil
}

func (e *Engine) processTask(ctx context.Context, task launchpad.Task, stats *RunStats) {
	view, err := e.tracker.LoadIssue(ctx, task, e.opts.Target)
	if err != nil {
		if launchpad.IsNoTask(err) {
			stats.Skipped++
			log.Debug("no task for target, skipping", "target", e.opts.Target, "bug", task.BugLink)
			return
		}
		log.Warn("failed to load bug, continuing", "bug", task.BugLink, "error", err)
		stats.recordError(launchpad.BugIDFromLink(task.BugLink), err)
		return
	}

	if e.opts.Verbose {
		log.Info("processing bug", "bug", view.ID, "title", view.Title, "status", string(view.Status))
		log.Debug("bug description", "bug", view.ID, "description", view.Description)
	}

	act := e.evaluate(ctx, view, stats)
	if act.Empty() {
		return
	}

	if err := e.applier.Apply(ctx, view, act); err != nil {
		log.Warn("failed to apply action, continuing", "bug", view.ID, "error", err)
		stats.recordError(view.ID, err)
		return
	}
	stats.ActionsTaken++
	e.progress.actionTaken(view, act)
}

// evaluate runs every policy against the view in configuration order
// and merges their actions. Later policies win conflicting fields; each
// conflict is logged and counted.
func (e *Engine) evaluate(ctx context.Context, view *model.IssueView, stats *RunStats) *model.Action {
	sig := policy.Signals{}
	if e.needsReviews && view.Assignee != "" {
		sig.OpenReviews = e.resolver.OpenReviews(ctx, view.SortedReviewRefs())
		sig.ReviewsResolved = true
	}

	var merged *model.Action
	for _, p := range e.policies {
		act := p.Evaluate(view, sig)
		if act == nil || act.Empty() {
			continue
		}
		stats.PerPolicy[p.Name()]++
		if merged == nil {
			merged = act
			continue
		}
		for _, conflict := range merged.Merge(act) {
			stats.Conflicts++
			log.Warn("conflicting policy actions", "bug", view.ID, "conflict", conflict)
		}
	}
	return merged
}
