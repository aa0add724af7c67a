package launchpad

import (
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/osops/bugtriage/internal/model"
)

// reviewLinkPattern matches Gerrit review links in comment text. The
// leading space is deliberate: it avoids matching the review number out
// of longer URLs (e.g. links into the Gerrit UI with fragments).
var reviewLinkPattern = regexp.MustCompile(` https://review\.openstack\.org/(\d+)`)

// reviewRefs extracts the de-duplicated Gerrit change numbers mentioned
// across a bug's comments.
func reviewRefs(messages []Message) []int {
	seen := make(map[int]bool)
	for _, msg := range messages {
		for _, m := range reviewLinkPattern.FindAllStringSubmatch(msg.Content, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil {
				seen[n] = true
			}
		}
	}
	refs := make([]int, 0, len(seen))
	for n := range seen {
		refs = append(refs, n)
	}
	sort.Ints(refs)
	return refs
}

// priorStatus reconstructs the status the target's task held before the
// current one by walking the activity log in order. Falls back to New
// when no status transition for the target is recorded.
func priorStatus(activity []Activity, target string) model.Status {
	last := model.StatusNew
	want := target + ": status"
	for _, a := range activity {
		if a.WhatChanged == want {
			last = model.Status(a.OldValue)
		}
	}
	return last
}

// buildView assembles the immutable per-bug snapshot the policies run
// against. now is passed in so tests control the clock.
func buildView(bug *Bug, task *Task, target string, messages []Message, activity []Activity, now time.Time) *model.IssueView {
	tags := make([]string, len(bug.Tags))
	copy(tags, bug.Tags)

	description := bug.Description
	if description == "" && len(messages) > 0 {
		// Older bugs carry the description as the first comment.
		description = messages[0].Content
	}

	return &model.IssueView{
		ID:               strconv.Itoa(bug.ID),
		Target:           target,
		Title:            bug.Title,
		Description:      description,
		Status:           model.Status(task.Status),
		Assignee:         task.Assignee(),
		Tags:             tags,
		AgeDays:          daysSince(now, bug.DateCreated),
		LastActivityDays: daysSince(now, bug.DateLastUpdated),
		PriorStatus:      priorStatus(activity, target),
		ReviewRefs:       reviewRefs(messages),
		WebLink:          task.WebLink,
	}
}
