// Package model defines the value types shared across the triage
// engine: the immutable per-bug snapshot and the mutation intent record.
package model

import "sort"

// IssueView is a read-only snapshot of one tracker bug, taken once per
// triage pass. Policies are pure functions of a view; nothing mutates a
// view after construction. All mutation intent is expressed as an
// Action and carried out by the applier.
type IssueView struct {
	// ID is the bug's tracker identifier (e.g. "1542341").
	ID string

	// Target is the bug task this view was built against: a project
	// name, or a project/series composite for stable-series work.
	Target string

	Title       string
	Description string

	Status   Status
	Assignee string // empty when unassigned

	Tags []string

	// AgeDays and LastActivityDays are computed relative to "now" at
	// view-construction time.
	AgeDays          int
	LastActivityDays int

	// PriorStatus is the status the task held immediately before the
	// current one, reconstructed from the activity log. Defaults to
	// New when no transition is recorded.
	PriorStatus Status

	// ReviewRefs holds Gerrit change numbers extracted from comment
	// text, de-duplicated and sorted.
	ReviewRefs []int

	WebLink string
}

// HasTag reports whether the bug carries the given tag.
func (v *IssueView) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SortedReviewRefs returns a sorted copy of the review references.
func (v *IssueView) SortedReviewRefs() []int {
	refs := make([]int, len(v.ReviewRefs))
	copy(refs, v.ReviewRefs)
	sort.Ints(refs)
	return refs
}
