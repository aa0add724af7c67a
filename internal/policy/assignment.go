package policy

import (
	"fmt"

	"github.com/osops/bugtriage/internal/model"
)

// Assignment validates that assigned bugs have an active review behind
// them. A bug held by someone with no open review discourages everyone
// else from picking it up, so the assignee is dropped and, when the bug
// was In Progress, the status reverts to what it was before.
type Assignment struct {
	// Reinforce moves bugs with open reviews to In Progress. The
	// narrow In Progress-only sweep leaves this off; the broader
	// sweep over all open statuses turns it on.
	Reinforce bool
}

// NewAssignment creates the assignment-validation policy.
func NewAssignment(reinforce bool) *Assignment {
	return &Assignment{Reinforce: reinforce}
}

// Name implements Policy.
func (p *Assignment) Name() string { return "assignment" }

// NeedsReviews implements Policy.
func (p *Assignment) NeedsReviews() bool { return true }

// Evaluate unassigns bugs without open reviews, or optionally
// reinforces In Progress on bugs that do have one.
func (p *Assignment) Evaluate(view *model.IssueView, sig Signals) *model.Action {
	if view.Assignee == "" {
		return nil
	}
	if !statusIn(view.Status, model.UnassignStatuses) {
		return nil
	}
	if !sig.ReviewsResolved {
		// Review state unknown: do not unassign anyone on a guess.
		return nil
	}

	if len(sig.OpenReviews) == 0 {
		a := &model.Action{
			IssueID:       view.ID,
			Target:        view.Target,
			Policy:        p.Name(),
			ClearAssignee: true,
			Comment:       NoReviewsComment(),
			Reason:        fmt.Sprintf("assigned to %s with no open reviews", view.Assignee),
		}
		if view.Status == model.StatusInProgress {
			a.SetStatus(view.PriorStatus)
		}
		return a
	}

	if p.Reinforce && view.Status != model.StatusInProgress {
		a := &model.Action{
			IssueID: view.ID,
			Target:  view.Target,
			Policy:  p.Name(),
			Reason:  fmt.Sprintf("open reviews %v, marking in progress", sig.OpenReviews),
		}
		return a.SetStatus(model.StatusInProgress)
	}

	return nil
}
