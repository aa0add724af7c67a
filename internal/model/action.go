package model

import "fmt"

// Action is a pure intent record produced by a policy: the set of
// mutations to apply to one bug. It carries no side effects until the
// applier executes it. Unset fields mean "leave alone".
type Action struct {
	// IssueID and Target identify the bug task the action applies to.
	IssueID string
	Target  string

	// Policy names the policy (or policies, comma-joined after a
	// merge) that produced this action.
	Policy string

	// Status, when non-nil, is the new task status.
	Status *Status

	// ClearAssignee drops the current assignee. Setting an assignee is
	// never done by the engine; only humans claim bugs.
	ClearAssignee bool

	// AddTags and RemoveTags adjust the bug's tag set. Adding a tag
	// that is already present is a no-op, as is removing a missing one.
	AddTags    []string
	RemoveTags []string

	// Comment, when non-empty, is posted to the bug.
	Comment string

	// Reason is a short human-readable explanation shown in dry-run
	// and verbose output.
	Reason string
}

// SetStatus is a convenience for populating the optional status field.
func (a *Action) SetStatus(s Status) *Action {
	a.Status = &s
	return a
}

// Empty reports whether the action carries no mutations at all.
func (a *Action) Empty() bool {
	return a == nil ||
		(a.Status == nil && !a.ClearAssignee && len(a.AddTags) == 0 &&
			len(a.RemoveTags) == 0 && a.Comment == "")
}

// Merge folds src into a, field by field. Fields set by src overwrite
// fields set by a (last writer wins); fields src leaves unset are kept.
// It returns a description of each genuine conflict so the caller can
// log them. Comments never conflict; both are posted, joined in order.
func (a *Action) Merge(src *Action) []string {
	var conflicts []string

	if src.Status != nil {
		if a.Status != nil && *a.Status != *src.Status {
			conflicts = append(conflicts, fmt.Sprintf(
				"status %q (%s) overridden by %q (%s)",
				*a.Status, a.Policy, *src.Status, src.Policy))
		}
		a.Status = src.Status
	}

	if src.ClearAssignee {
		a.ClearAssignee = true
	}

	a.AddTags = mergeTagSets(a.AddTags, src.AddTags)
	a.RemoveTags = mergeTagSets(a.RemoveTags, src.RemoveTags)

	if src.Comment != "" {
		if a.Comment != "" {
			a.Comment = a.Comment + "\n\n" + src.Comment
		} else {
			a.Comment = src.Comment
		}
	}

	if src.Reason != "" {
		if a.Reason != "" {
			a.Reason = a.Reason + "; " + src.Reason
		} else {
			a.Reason = src.Reason
		}
	}

	if src.Policy != "" {
		if a.Policy != "" {
			a.Policy = a.Policy + "," + src.Policy
		} else {
			a.Policy = src.Policy
		}
	}

	// A tag both added and removed in one pass is a real conflict: the
	// remove wins because removals are applied after adds.
	for _, add := range a.AddTags {
		for _, rm := range a.RemoveTags {
			if add == rm {
				conflicts = append(conflicts, fmt.Sprintf(
					"tag %q both added and removed", add))
			}
		}
	}

	return conflicts
}

func mergeTagSets(dst, src []string) []string {
	for _, tag := range src {
		found := false
		for _, existing := range dst {
			if existing == tag {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, tag)
		}
	}
	return dst
}
