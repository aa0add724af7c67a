// Package policy holds the triage decision logic: small, composable
// evaluators that map a bug snapshot (plus resolved review state) to at
// most one mutation intent each.
package policy

import "github.com/osops/bugtriage/internal/model"

// Signals carries externally resolved state a policy may depend on.
type Signals struct {
	// OpenReviews is the subset of the view's review references that
	// are currently open in Gerrit.
	OpenReviews []int

	// ReviewsResolved is true when the engine actually consulted the
	// review system for this view. Policies that depend on review
	// state must treat false as "unknown" and decline to act, so a
	// skipped resolution never unassigns anyone.
	ReviewsResolved bool
}

// Policy is one triage rule. Evaluate is a pure function of the view
// and signals; it returns nil when the rule does not apply.
type Policy interface {
	// Name identifies the policy in stats, logs, and --policies flags.
	Name() string

	// NeedsReviews reports whether Evaluate reads Signals.OpenReviews,
	// letting the engine skip Gerrit round trips when nothing will
	// look at the result.
	NeedsReviews() bool

	Evaluate(view *model.IssueView, sig Signals) *model.Action
}

// statusIn reports whether s is in the given set.
func statusIn(s model.Status, set []model.Status) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}
