package engine

// IssueError records a per-bug failure that did not stop the run.
type IssueError struct {
	IssueID string
	Err     error
}

// RunStats accumulates the tally for one triage pass. The counters are
// updated as each bug finishes, so an interrupted run's stats reflect
// exactly the bugs processed so far.
type RunStats struct {
	// Scanned counts bugs returned by the search, including skips.
	Scanned int

	// Skipped counts bugs without a task for the target.
	Skipped int

	// ActionsTaken counts bugs that received (or, in dry-run, would
	// have received) a mutation.
	ActionsTaken int

	// PerPolicy breaks actions down by the policy that proposed them.
	PerPolicy map[string]int

	// Conflicts counts merged-action field conflicts (logged, not fatal).
	Conflicts int

	// Errors holds the per-bug failures the run survived.
	Errors []IssueError

	// DryRun records whether mutations were suppressed.
	DryRun bool
}

// NewRunStats creates an empty tally.
func NewRunStats(dryRun bool) *RunStats {
	return &RunStats{
		PerPolicy: make(map[string]int),
		DryRun:    dryRun,
	}
}

func (s *RunStats) recordError(issueID string, err error) {
	s.Errors = append(s.Errors, IssueError{IssueID: issueID, Err: err})
}
