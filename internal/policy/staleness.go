package policy

import (
	"fmt"

	"github.com/osops/bugtriage/internal/model"
)

// Staleness closes bugs that have seen no activity for longer than the
// threshold. It only looks at the activity clock, never at reviews or
// tags.
type Staleness struct {
	// Project is interpolated into the closing comment.
	Project string

	// ThresholdDays is the inactivity window. Strictly greater-than:
	// a bug exactly at the threshold is left alone.
	ThresholdDays int
}

// NewStaleness creates the staleness policy.
func NewStaleness(project string, thresholdDays int) *Staleness {
	return &Staleness{Project: project, ThresholdDays: thresholdDays}
}

// Name implements Policy.
func (p *Staleness) Name() string { return "staleness" }

// NeedsReviews implements Policy.
func (p *Staleness) NeedsReviews() bool { return false }

// Evaluate marks inactive bugs Invalid with an explanatory comment.
func (p *Staleness) Evaluate(view *model.IssueView, _ Signals) *model.Action {
	if !view.Status.Active() {
		return nil
	}
	if view.LastActivityDays <= p.ThresholdDays {
		return nil
	}

	a := &model.Action{
		IssueID: view.ID,
		Target:  view.Target,
		Policy:  p.Name(),
		Comment: InactiveBugComment(p.ThresholdDays, p.Project),
		Reason:  fmt.Sprintf("no activity in %d days", view.LastActivityDays),
	}
	return a.SetStatus(model.StatusInvalid)
}
