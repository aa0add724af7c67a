package gerrit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
)

func TestChangeStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/changes/123":
			fmt.Fprint(w, ")]}'\n{\"status\": \"NEW\", \"_number\": 123}")
		case "/changes/456":
			fmt.Fprint(w, ")]}'\n{\"status\": \"MERGED\", \"_number\": 456}")
		case "/changes/789":
			// No magic prefix and not JSON: the raw body becomes the status.
			fmt.Fprint(w, "Not found: 789")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(context.Background(), srv.URL, "")

	tests := []struct {
		name string
		id   int
		want string
	}{
		{name: "open change", id: 123, want: "NEW"},
		{name: "merged change", id: 456, want: "MERGED"},
		{name: "error text as status", id: 789, want: "Not found: 789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ChangeStatus(context.Background(), tt.id)
			if err != nil {
				t.Fatalf("ChangeStatus(%d): %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("ChangeStatus(%d) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestChangeStatusHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(context.Background(), srv.URL, "")
	if _, err := c.ChangeStatus(context.Background(), 1); err == nil {
		t.Error("expected error on HTTP 500")
	}
}

func TestQueryOpenChanges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
[
  {
    "_number": 100,
    "branch": "master",
    "status": "NEW",
    "current_revision": "abc",
    "revisions": {"abc": {"commit": {"message": "Fix the thing\n\nCloses bug: #1542341"}}}
  },
  {
    "_number": 101,
    "branch": "stable/mitaka",
    "status": "NEW",
    "current_revision": "def",
    "revisions": {"def": {"commit": {"message": "Backport\n\nbug: 1542341"}}}
  },
  {
    "_number": 102,
    "branch": "master",
    "status": "NEW",
    "current_revision": "ghi",
    "revisions": {"ghi": {"commit": {"message": "No reference here"}}}
  }
]`)
	}))
	defer srv.Close()

	c := NewClient(context.Background(), srv.URL, "")
	byBug, err := c.OpenReviewsByBug(context.Background(), "openstack/nova")
	if err != nil {
		t.Fatalf("OpenReviewsByBug: %v", err)
	}

	want := map[string][]ReviewRef{
		"1542341": {
			{Number: 100, Branch: "master"},
			{Number: 101, Branch: "stable/mitaka"},
		},
	}
	if !reflect.DeepEqual(byBug, want) {
		t.Errorf("OpenReviewsByBug = %v, want %v", byBug, want)
	}
}

// fakeLookup maps change ids to statuses and records call counts.
type fakeLookup struct {
	mu       sync.Mutex
	statuses map[int]string
	failing  map[int]bool
	calls    int
}

func (f *fakeLookup) ChangeStatus(_ context.Context, id int) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failing[id] {
		return "", errors.New("connection reset")
	}
	if s, ok := f.statuses[id]; ok {
		return s, nil
	}
	return "Not found", nil
}

func TestResolverOpenReviews(t *testing.T) {
	lookup := &fakeLookup{
		statuses: map[int]string{
			1: "NEW",
			2: "MERGED",
			3: "NEW",
			4: "ABANDONED",
		},
		failing: map[int]bool{5: true},
	}
	r := NewResolver(lookup, 3)

	got := r.OpenReviews(context.Background(), []int{5, 4, 3, 2, 1})

	want := []int{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OpenReviews = %v, want %v", got, want)
	}
	if lookup.calls != 5 {
		t.Errorf("expected 5 lookups despite failure, got %d", lookup.calls)
	}
}

func TestResolverEmptyInput(t *testing.T) {
	r := NewResolver(&fakeLookup{}, 2)
	if got := r.OpenReviews(context.Background(), nil); got != nil {
		t.Errorf("OpenReviews(nil) = %v, want nil", got)
	}
}

func TestParseBugID(t *testing.T) {
	if id, ok := ParseBugID("1542341"); !ok || id != 1542341 {
		t.Errorf("ParseBugID(1542341) = %d, %v", id, ok)
	}
	if _, ok := ParseBugID("zero"); ok {
		t.Error("ParseBugID should reject non-numeric input")
	}
	if _, ok := ParseBugID("-4"); ok {
		t.Error("ParseBugID should reject negative ids")
	}
}
