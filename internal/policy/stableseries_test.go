package policy

import (
	"testing"

	"github.com/osops/bugtriage/internal/model"
)

func TestStableSeries(t *testing.T) {
	tests := []struct {
		name     string
		status   model.Status
		closeAll bool
		want     *model.Status
	}{
		{name: "fix committed releases", status: model.StatusFixCommitted, want: statusPtr(model.StatusFixReleased)},
		{name: "fix committed releases even without close-all", status: model.StatusFixCommitted, closeAll: false, want: statusPtr(model.StatusFixReleased)},
		{name: "open task kept without close-all", status: model.StatusConfirmed, want: nil},
		{name: "open task closed with close-all", status: model.StatusConfirmed, closeAll: true, want: statusPtr(model.StatusWontFix)},
		{name: "in progress closed with close-all", status: model.StatusInProgress, closeAll: true, want: statusPtr(model.StatusWontFix)},
		{name: "released task untouched with close-all", status: model.StatusFixReleased, closeAll: true, want: nil},
		{name: "invalid task untouched with close-all", status: model.StatusInvalid, closeAll: true, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewStableSeries(tt.closeAll)
			view := &model.IssueView{
				ID:     "1",
				Target: "nova/mitaka",
				Status: tt.status,
			}
			got := p.Evaluate(view, Signals{})
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected no action, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected an action")
			}
			if got.Status == nil || *got.Status != *tt.want {
				t.Errorf("status = %v, want %q", got.Status, *tt.want)
			}
		})
	}
}

func statusPtr(s model.Status) *model.Status { return &s }
