package launchpad

import (
	"strings"
	"time"

	"github.com/osops/bugtriage/internal/model"
)

// Task is a Launchpad bug task: the per-target tracking record that
// carries status and assignee for one bug on one project or series.
type Task struct {
	SelfLink      string `json:"self_link"`
	WebLink       string `json:"web_link"`
	BugLink       string `json:"bug_link"`
	BugTargetName string `json:"bug_target_name"`
	Status        string `json:"status"`
	AssigneeLink  string `json:"assignee_link"`
	DateCreated   string `json:"date_created"`
	IsComplete    bool   `json:"is_complete"`
}

// Assignee extracts the bare username from the assignee link
// (".../~username"), or "" when unassigned.
func (t *Task) Assignee() string {
	if t.AssigneeLink == "" {
		return ""
	}
	if i := strings.LastIndex(t.AssigneeLink, "~"); i >= 0 {
		return t.AssigneeLink[i+1:]
	}
	return t.AssigneeLink
}

// Bug is the target-independent part of a Launchpad bug.
type Bug struct {
	ID              int      `json:"id"`
	SelfLink        string   `json:"self_link"`
	WebLink         string   `json:"web_link"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	DateCreated     string   `json:"date_created"`
	DateLastUpdated string   `json:"date_last_updated"`
	MessagesLink    string   `json:"messages_collection_link"`
	ActivityLink    string   `json:"activity_collection_link"`
	TasksLink       string   `json:"bug_tasks_collection_link"`
}

// Message is one comment on a bug.
type Message struct {
	Content     string `json:"content"`
	DateCreated string `json:"date_created"`
	OwnerLink   string `json:"owner_link"`
}

// Activity is one entry in a bug's activity log.
type Activity struct {
	WhatChanged string `json:"whatchanged"`
	OldValue    string `json:"oldvalue"`
	NewValue    string `json:"newvalue"`
	DateChanged string `json:"datechanged"`
}

// collection is the Launchpad paged-collection envelope.
type collection[T any] struct {
	Entries  []T    `json:"entries"`
	NextLink string `json:"next_collection_link"`
	Total    int    `json:"total_size"`
}

// SearchOptions narrows a task search.
type SearchOptions struct {
	// Statuses limits results to tasks in the given statuses. Empty
	// means Launchpad's default (open statuses).
	Statuses []model.Status

	// SearchText is a free text filter.
	SearchText string

	// OrderBy names the sort field, e.g. "date_last_updated".
	OrderBy string

	// ModifiedSince limits results to bugs touched after this time.
	ModifiedSince time.Time

	// OmitDuplicates drops bugs marked as duplicates of another.
	OmitDuplicates bool
}

// parseDate parses the timestamp format Launchpad emits.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// daysSince returns whole days between then and now, never negative.
func daysSince(now time.Time, s string) int {
	then, ok := parseDate(s)
	if !ok {
		return 0
	}
	d := int(now.Sub(then).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
