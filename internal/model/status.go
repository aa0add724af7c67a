package model

// Status is a Launchpad bug task status. The set is closed; Launchpad
// rejects writes outside it.
type Status string

const (
	StatusNew          Status = "New"
	StatusIncomplete   Status = "Incomplete"
	StatusOpinion      Status = "Opinion"
	StatusInvalid      Status = "Invalid"
	StatusWontFix      Status = "Won't Fix"
	StatusExpired      Status = "Expired"
	StatusConfirmed    Status = "Confirmed"
	StatusTriaged      Status = "Triaged"
	StatusInProgress   Status = "In Progress"
	StatusFixCommitted Status = "Fix Committed"
	StatusFixReleased  Status = "Fix Released"
)

// AllStatuses lists every Launchpad task status, in Launchpad's own order.
var AllStatuses = []Status{
	StatusNew,
	StatusIncomplete,
	StatusOpinion,
	StatusInvalid,
	StatusWontFix,
	StatusExpired,
	StatusConfirmed,
	StatusTriaged,
	StatusInProgress,
	StatusFixCommitted,
	StatusFixReleased,
}

// ActiveStatuses is the set considered "open and actionable" by the
// staleness policy.
var ActiveStatuses = []Status{
	StatusNew,
	StatusConfirmed,
	StatusTriaged,
	StatusInProgress,
	StatusIncomplete,
}

// TriageStatuses is the set of statuses eligible for version tagging.
var TriageStatuses = []Status{
	StatusNew,
	StatusInProgress,
	StatusIncomplete,
	StatusConfirmed,
	StatusTriaged,
}

// UnassignStatuses is the set of statuses checked by the assignment
// policy when looking for bugs held without an active review.
var UnassignStatuses = []Status{
	StatusNew,
	StatusIncomplete,
	StatusConfirmed,
	StatusTriaged,
	StatusInProgress,
}

// Valid reports whether s is a recognized Launchpad status.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Complete reports whether s is a terminal status: nothing further is
// expected to happen to the task. Mirrors Launchpad's is_complete.
func (s Status) Complete() bool {
	switch s {
	case StatusOpinion, StatusInvalid, StatusWontFix, StatusExpired, StatusFixReleased:
		return true
	}
	return false
}

// Active reports whether s is in the open-and-actionable set.
func (s Status) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// StatusStrings converts a status slice to plain strings for query building.
func StatusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
