package gerrit

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/osops/bugtriage/internal/log"
)

// StatusLookup is the part of the Gerrit client the resolver needs.
// It exists so tests can substitute a fake.
type StatusLookup interface {
	ChangeStatus(ctx context.Context, id int) (string, error)
}

// Resolver answers "which of these reviews are still open". Lookups
// are independent and read-only, so they run on a bounded worker pool.
// A failed lookup counts as "status unknown" and therefore not open; it
// never aborts the rest of the batch.
type Resolver struct {
	lookup  StatusLookup
	workers int
}

// NewResolver creates a resolver on top of a status lookup. workers
// bounds concurrent lookups; values below 1 mean sequential.
func NewResolver(lookup StatusLookup, workers int) *Resolver {
	if workers < 1 {
		workers = 1
	}
	return &Resolver{lookup: lookup, workers: workers}
}

// OpenReviews returns the sorted subset of ids that are currently open.
func (r *Resolver) OpenReviews(ctx context.Context, ids []int) []int {
	if len(ids) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		open []int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			status, err := r.lookup.ChangeStatus(gctx, id)
			if err != nil {
				log.Debug("review status lookup failed", "review", id, "error", err)
				return nil
			}
			log.Trace("review status", "review", id, "status", status)
			if status == StatusNew {
				mu.Lock()
				open = append(open, id)
				mu.Unlock()
			}
			return nil
		})
	}

	// Workers swallow their own errors, so Wait only fans in.
	_ = g.Wait()

	sort.Ints(open)
	return open
}

// bugRefPattern matches "bug: #123" style references in commit messages.
var bugRefPattern = regexp.MustCompile(`(?im).*bug:\s*#?(\d+)`)

// ReviewRef locates one open review on a branch.
type ReviewRef struct {
	Number int
	Branch string
}

// OpenReviewsByBug queries the open changes of a Gerrit project and
// groups them by the bug ids their commit messages reference. Changes
// without a bug reference are skipped.
func (c *Client) OpenReviewsByBug(ctx context.Context, project string) (map[string][]ReviewRef, error) {
	changes, err := c.QueryOpenChanges(ctx, project)
	if err != nil {
		return nil, err
	}

	byBug := make(map[string][]ReviewRef)
	for _, ch := range changes {
		for _, m := range bugRefPattern.FindAllStringSubmatch(ch.CommitMessage(), -1) {
			bugID := m[1]
			byBug[bugID] = append(byBug[bugID], ReviewRef{
				Number: ch.Number,
				Branch: ch.Branch,
			})
		}
	}
	return byBug, nil
}

// ParseBugID is a small helper for validating bug ids found in commit
// messages before hitting the tracker with them.
func ParseBugID(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
