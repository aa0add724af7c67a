package policy

import (
	"strings"
	"testing"

	"github.com/osops/bugtriage/internal/model"
)

func TestVersionTagDiscovery(t *testing.T) {
	p := NewVersionTag("nova", 14)
	view := &model.IssueView{
		ID:          "1",
		Target:      "nova",
		Status:      model.StatusNew,
		Description: "OpenStack Version: Liberty",
		AgeDays:     5,
	}

	got := p.Evaluate(view, Signals{})

	if got == nil {
		t.Fatal("expected a tagging action")
	}
	if len(got.AddTags) != 1 || got.AddTags[0] != "openstack-version.liberty" {
		t.Errorf("AddTags = %v", got.AddTags)
	}
	if got.Status != nil {
		t.Errorf("discovery must not change status, got %v", *got.Status)
	}
	if !strings.Contains(got.Comment, "liberty") {
		t.Errorf("comment should name the version: %q", got.Comment)
	}
}

func TestVersionTagIdempotent(t *testing.T) {
	p := NewVersionTag("nova", 14)
	view := &model.IssueView{
		ID:          "1",
		Status:      model.StatusNew,
		Description: "OpenStack Version: Liberty",
		AgeDays:     5,
	}

	first := p.Evaluate(view, Signals{})
	if first == nil {
		t.Fatal("expected action on first pass")
	}

	// Second pass sees the tag applied; same view otherwise.
	tagged := *view
	tagged.Tags = append([]string(nil), first.AddTags...)
	if second := p.Evaluate(&tagged, Signals{}); second != nil {
		t.Errorf("second pass should be a no-op, got %+v", second)
	}
}

func TestVersionTagMarksIncomplete(t *testing.T) {
	p := NewVersionTag("nova", 14)
	view := &model.IssueView{
		ID:          "1",
		Status:      model.StatusNew,
		Description: "It crashes.",
		AgeDays:     3,
	}

	got := p.Evaluate(view, Signals{})

	if got == nil {
		t.Fatal("expected incomplete-marking action")
	}
	if got.Status == nil || *got.Status != model.StatusIncomplete {
		t.Errorf("status = %v, want Incomplete", got.Status)
	}
	if len(got.AddTags) != 1 || got.AddTags[0] != "needs.openstack-version" {
		t.Errorf("AddTags = %v", got.AddTags)
	}
}

func TestVersionTagIncompleteBranchGuards(t *testing.T) {
	tests := []struct {
		name string
		view model.IssueView
		age  int
	}{
		{
			name: "age disabled",
			view: model.IssueView{Status: model.StatusNew, Description: "nothing", AgeDays: 1},
			age:  0,
		},
		{
			name: "too old for requirement",
			view: model.IssueView{Status: model.StatusNew, Description: "nothing", AgeDays: 30},
			age:  14,
		},
		{
			name: "already incomplete",
			view: model.IssueView{Status: model.StatusIncomplete, Description: "nothing", AgeDays: 3},
			age:  14,
		},
		{
			name: "sentinel tag already present",
			view: model.IssueView{
				Status:      model.StatusNew,
				Description: "nothing",
				AgeDays:     3,
				Tags:        []string{"needs.openstack-version"},
			},
			age: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewVersionTag("nova", tt.age)
			if got := p.Evaluate(&tt.view, Signals{}); got != nil {
				t.Errorf("expected no action, got %+v", got)
			}
		})
	}
}

func TestVersionTagBranchesMutuallyExclusive(t *testing.T) {
	// A young bug with a discoverable version takes the found branch,
	// never the incomplete branch.
	p := NewVersionTag("nova", 14)
	view := &model.IssueView{
		ID:          "1",
		Status:      model.StatusNew,
		Description: "nova version: 14.0.1",
		AgeDays:     2,
	}

	got := p.Evaluate(view, Signals{})
	if got == nil {
		t.Fatal("expected action")
	}
	if got.Status != nil {
		t.Error("found branch must not set status")
	}
	if got.AddTags[0] != "openstack-version.newton" {
		t.Errorf("AddTags = %v", got.AddTags)
	}
}

func TestVersionTagSkipsNonTriageStatuses(t *testing.T) {
	p := NewVersionTag("nova", 14)
	view := &model.IssueView{
		Status:      model.StatusFixReleased,
		Description: "OpenStack Version: Liberty",
	}
	if got := p.Evaluate(view, Signals{}); got != nil {
		t.Errorf("released bug should be skipped, got %+v", got)
	}
}
