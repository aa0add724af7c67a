package launchpad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/osops/bugtriage/internal/model"
)

// newTestServer serves a single bug (1000) with one nova task and
// records mutation requests.
type testServer struct {
	*httptest.Server

	mu      sync.Mutex
	patches []map[string]any
	posts   []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/nova", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ws.op") != "searchTasks" {
			http.Error(w, "bad op", http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, `{"total_size": 1, "entries": [
			{"self_link": %q, "bug_link": %q, "bug_target_name": "nova", "status": "Confirmed"}
		]}`, ts.URL+"/nova/+bug/1000", ts.URL+"/bugs/1000")
	})

	mux.HandleFunc("/bugs/1000", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintf(w, `{
				"id": 1000,
				"self_link": %q,
				"title": "things are broken",
				"description": "nova version: 13.0.0",
				"tags": ["compute"],
				"date_created": "2017-05-01T00:00:00+00:00",
				"date_last_updated": "2017-05-20T00:00:00+00:00",
				"messages_collection_link": %q,
				"activity_collection_link": %q,
				"bug_tasks_collection_link": %q
			}`, ts.URL+"/bugs/1000", ts.URL+"/bugs/1000/messages",
				ts.URL+"/bugs/1000/activity", ts.URL+"/bugs/1000/bug_tasks")
		case http.MethodPatch:
			ts.recordPatch(t, r)
			w.WriteHeader(http.StatusOK)
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			ts.mu.Lock()
			ts.posts = append(ts.posts, string(body))
			ts.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
		}
	})

	mux.HandleFunc("/bugs/1000/bug_tasks", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"entries": [
			{"self_link": %q, "bug_target_name": "nova", "status": "Confirmed",
			 "assignee_link": "https://api.launchpad.net/1.0/~jdoe"},
			{"self_link": %q, "bug_target_name": "nova/mitaka", "status": "Fix Committed"}
		]}`, ts.URL+"/nova/+bug/1000", ts.URL+"/nova/mitaka/+bug/1000")
	})

	mux.HandleFunc("/bugs/1000/messages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"entries": [{"content": "fix up at https://review.openstack.org/321"}]}`)
	})

	mux.HandleFunc("/bugs/1000/activity", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"entries": [
			{"whatchanged": "nova: status", "oldvalue": "New", "newvalue": "Confirmed"}
		]}`)
	})

	mux.HandleFunc("/nova/+bug/1000", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			ts.recordPatch(t, r)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	})

	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) recordPatch(t *testing.T, r *http.Request) {
	t.Helper()
	body, _ := io.ReadAll(r.Body)
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Errorf("PATCH body not JSON: %s", body)
		return
	}
	ts.mu.Lock()
	ts.patches = append(ts.patches, fields)
	ts.mu.Unlock()
}

func TestSearchAndLoadIssue(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, nil)
	ctx := context.Background()

	tasks, err := c.SearchTasks(ctx, "nova", SearchOptions{
		Statuses:   []model.Status{model.StatusConfirmed},
		OrderBy:    "date_last_updated",
		SearchText: "broken",
	})
	if err != nil {
		t.Fatalf("SearchTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}

	view, err := c.LoadIssue(ctx, tasks[0], "nova")
	if err != nil {
		t.Fatalf("LoadIssue: %v", err)
	}
	if view.ID != "1000" {
		t.Errorf("ID = %q", view.ID)
	}
	if view.Status != model.StatusConfirmed {
		t.Errorf("Status = %q", view.Status)
	}
	if view.Assignee != "jdoe" {
		t.Errorf("Assignee = %q", view.Assignee)
	}
	if !reflect.DeepEqual(view.ReviewRefs, []int{321}) {
		t.Errorf("ReviewRefs = %v", view.ReviewRefs)
	}
	if view.PriorStatus != model.StatusNew {
		t.Errorf("PriorStatus = %q", view.PriorStatus)
	}
}

func TestLoadIssueSeriesTarget(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, nil)

	view, err := c.LoadIssueByID(context.Background(), "1000", "nova/mitaka")
	if err != nil {
		t.Fatalf("LoadIssueByID: %v", err)
	}
	if view.Status != model.StatusFixCommitted {
		t.Errorf("series task status = %q", view.Status)
	}
	if view.Target != "nova/mitaka" {
		t.Errorf("Target = %q", view.Target)
	}
}

func TestLoadIssueNoTask(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, nil)

	_, err := c.LoadIssueByID(context.Background(), "1000", "glance")
	if !errors.Is(err, ErrNoTask) {
		t.Errorf("expected ErrNoTask, got %v", err)
	}
}

func TestMutations(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, nil)
	ctx := context.Background()

	// Mutations need the link cache primed by a load.
	if _, err := c.LoadIssueByID(ctx, "1000", "nova"); err != nil {
		t.Fatalf("LoadIssueByID: %v", err)
	}

	if err := c.SetStatus(ctx, "1000", "nova", model.StatusInvalid); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := c.ClearAssignee(ctx, "1000", "nova"); err != nil {
		t.Fatalf("ClearAssignee: %v", err)
	}
	if err := c.AddTags(ctx, "1000", []string{"openstack-version.mitaka"}); err != nil {
		t.Fatalf("AddTags: %v", err)
	}
	// Re-adding the same tag must be a remote no-op.
	if err := c.AddTags(ctx, "1000", []string{"openstack-version.mitaka"}); err != nil {
		t.Fatalf("AddTags again: %v", err)
	}
	if err := c.PostComment(ctx, "1000", "hello there"); err != nil {
		t.Fatalf("PostComment: %v", err)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	if len(srv.patches) != 3 {
		t.Fatalf("got %d PATCHes, want 3 (status, assignee, one tag write): %v",
			len(srv.patches), srv.patches)
	}
	if srv.patches[0]["status"] != "Invalid" {
		t.Errorf("status patch = %v", srv.patches[0])
	}
	if v, ok := srv.patches[1]["assignee_link"]; !ok || v != nil {
		t.Errorf("assignee patch = %v", srv.patches[1])
	}
	wantTags := []any{"compute", "openstack-version.mitaka"}
	if !reflect.DeepEqual(srv.patches[2]["tags"], wantTags) {
		t.Errorf("tags patch = %v, want %v", srv.patches[2]["tags"], wantTags)
	}

	if len(srv.posts) != 1 {
		t.Fatalf("got %d comment posts, want 1", len(srv.posts))
	}
	if got := srv.posts[0]; got != "content=hello+there&ws.op=newMessage" {
		t.Errorf("comment body = %q", got)
	}
}

func TestRemoveTagsMatching(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, nil)
	ctx := context.Background()

	if _, err := c.LoadIssueByID(ctx, "1000", "nova"); err != nil {
		t.Fatalf("LoadIssueByID: %v", err)
	}
	if err := c.AddTags(ctx, "1000", []string{"openstack-version.kilo", "openstack-version.juno"}); err != nil {
		t.Fatalf("AddTags: %v", err)
	}
	if err := c.RemoveTagsMatching(ctx, "1000", `^openstack-version\.`); err != nil {
		t.Fatalf("RemoveTagsMatching: %v", err)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	last := srv.patches[len(srv.patches)-1]
	if !reflect.DeepEqual(last["tags"], []any{"compute"}) {
		t.Errorf("final tags = %v, want [compute]", last["tags"])
	}
}
