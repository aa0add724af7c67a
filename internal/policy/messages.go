package policy

import (
	"fmt"
	"strings"

	"github.com/osops/bugtriage/internal/gerrit"
)

// Comment templates posted by the policies. Wording is load-bearing:
// humans read these on their bugs, so keep them polite and actionable.

const inactiveBug = "This bug was last updated over %d days ago. As %s " +
	"is a fast moving project, and we'd like to get the tracker down to " +
	"currently actionable bugs, this is getting marked as Invalid. If the " +
	"issue still exists, please feel free to reopen it."

const noReviews = "There are no currently open reviews on this bug. " +
	"Unassigning it, and setting it back to its previous status, so that " +
	"others know it is available to work on. If you are still working on " +
	"this, please assign yourself again and put a review up for it."

const discoveredVersion = "Automatically discovered version %s in " +
	"description. If this is incorrect, please update the description to " +
	"include '%s version: ...'"

const noVersionFound = "No version was found in the description, which is " +
	"required, marking as Incomplete. Please update the bug description " +
	"to include '%s version: ... '."

const reviewSyncHeader = "Found open reviews for this bug in gerrit, " +
	"setting to In Progress.\n\n"

// InactiveBugComment interpolates the staleness notice.
func InactiveBugComment(thresholdDays int, project string) string {
	return fmt.Sprintf(inactiveBug, thresholdDays, project)
}

// NoReviewsComment is the unassignment notice.
func NoReviewsComment() string {
	return noReviews
}

// DiscoveredVersionComment interpolates the version discovery notice.
func DiscoveredVersionComment(version, project string) string {
	return fmt.Sprintf(discoveredVersion, version, project)
}

// NoVersionFoundComment interpolates the missing-version notice.
func NoVersionFoundComment(project string) string {
	return fmt.Sprintf(noVersionFound, project)
}

// ReviewSyncComment lists the open reviews that justify moving a bug
// to In Progress.
func ReviewSyncComment(gerritRoot string, refs []gerrit.ReviewRef) string {
	var b strings.Builder
	b.WriteString(reviewSyncHeader)
	for _, ref := range refs {
		fmt.Fprintf(&b, "review: %s/%d in branch: %s\n", gerritRoot, ref.Number, ref.Branch)
	}
	return b.String()
}
