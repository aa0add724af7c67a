package policy

import (
	"fmt"

	"github.com/osops/bugtriage/internal/constants"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/version"
)

// VersionTag tags bugs with the OpenStack release discovered in their
// description, and optionally marks young bugs without any version as
// Incomplete until the reporter supplies one.
type VersionTag struct {
	// Project scopes the extraction patterns and comment wording.
	Project string

	// RequireWithinDays enables the incomplete-marking branch for bugs
	// at most this many days old. Zero disables it entirely: old bugs
	// predate the version requirement and are left in peace.
	RequireWithinDays int
}

// NewVersionTag creates the version-tagging policy.
func NewVersionTag(project string, requireWithinDays int) *VersionTag {
	return &VersionTag{Project: project, RequireWithinDays: requireWithinDays}
}

// Name implements Policy.
func (p *VersionTag) Name() string { return "version" }

// NeedsReviews implements Policy.
func (p *VersionTag) NeedsReviews() bool { return false }

// Evaluate applies the version tag or the needs-version sentinel. The
// two branches are mutually exclusive per pass, and the Incomplete
// status change is coupled to a fresh sentinel-tag add: a bug already
// carrying the sentinel is never re-marked, even if a human reverted
// the status without removing the tag.
func (p *VersionTag) Evaluate(view *model.IssueView, _ Signals) *model.Action {
	if !statusIn(view.Status, model.TriageStatuses) {
		return nil
	}

	if v := version.Extract(p.Project, view.Description); v != "" {
		tag := constants.VersionTagPrefix + v
		if view.HasTag(tag) {
			return nil
		}
		return &model.Action{
			IssueID: view.ID,
			Target:  view.Target,
			Policy:  p.Name(),
			AddTags: []string{tag},
			Comment: DiscoveredVersionComment(v, p.Project),
			Reason:  fmt.Sprintf("discovered version %s", v),
		}
	}

	if p.RequireWithinDays <= 0 {
		return nil
	}
	if view.AgeDays > p.RequireWithinDays {
		return nil
	}
	if view.Status == model.StatusIncomplete {
		return nil
	}
	if view.HasTag(constants.NeedsVersionTag) {
		return nil
	}

	a := &model.Action{
		IssueID: view.ID,
		Target:  view.Target,
		Policy:  p.Name(),
		AddTags: []string{constants.NeedsVersionTag},
		Comment: NoVersionFoundComment(p.Project),
		Reason:  "no version in description",
	}
	return a.SetStatus(model.StatusIncomplete)
}
