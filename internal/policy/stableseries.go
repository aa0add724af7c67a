package policy

import (
	"fmt"

	"github.com/osops/bugtriage/internal/model"
)

// StableSeries reconciles status on a stable maintenance series task.
// The view it evaluates must be constructed against the project/series
// composite target, not the parent project.
type StableSeries struct {
	// CloseAll additionally closes every non-terminal task as Won't
	// Fix, used when a series reaches end of life.
	CloseAll bool
}

// NewStableSeries creates the stable-series sync policy.
func NewStableSeries(closeAll bool) *StableSeries {
	return &StableSeries{CloseAll: closeAll}
}

// Name implements Policy.
func (p *StableSeries) Name() string { return "stable" }

// NeedsReviews implements Policy.
func (p *StableSeries) NeedsReviews() bool { return false }

// Evaluate promotes Fix Committed to Fix Released (the stable branch
// has shipped), and under CloseAll retires everything else still open.
func (p *StableSeries) Evaluate(view *model.IssueView, _ Signals) *model.Action {
	if view.Status == model.StatusFixCommitted {
		a := &model.Action{
			IssueID: view.ID,
			Target:  view.Target,
			Policy:  p.Name(),
			Reason:  fmt.Sprintf("%s fix committed, series released", view.Target),
		}
		return a.SetStatus(model.StatusFixReleased)
	}

	if p.CloseAll && !view.Status.Complete() {
		a := &model.Action{
			IssueID: view.ID,
			Target:  view.Target,
			Policy:  p.Name(),
			Reason:  fmt.Sprintf("closing out %s", view.Target),
		}
		return a.SetStatus(model.StatusWontFix)
	}

	return nil
}
