// Package duration provides parsing for human-readable duration strings
// and calendar dates.
package duration

import (
	"fmt"
	"time"
)

// Parse parses human-readable durations like "1w", "30d", "6mo" and
// returns the time that is the given duration in the past from now.
func Parse(s string) (time.Time, error) {
	now := time.Now()

	var d time.Duration
	var n int
	var unit string

	if _, err := fmt.Sscanf(s, "%d%s", &n, &unit); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration format: %s (use e.g., 1w, 30d, 6mo)", s)
	}

	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		d = time.Duration(n) * time.Hour
	case "d", "day", "days":
		d = time.Duration(n) * 24 * time.Hour
	case "w", "wk", "wks", "week", "weeks":
		d = time.Duration(n) * 7 * 24 * time.Hour
	case "mo", "month", "months":
		d = time.Duration(n) * 30 * 24 * time.Hour
	case "y", "yr", "yrs", "year", "years":
		d = time.Duration(n) * 365 * 24 * time.Hour
	default:
		return time.Time{}, fmt.Errorf("unknown duration unit: %s", unit)
	}

	return now.Add(-d), nil
}

// ParseSince parses the --since flag, which accepts either a calendar
// date (2016-03-01, or RFC 3339) or a relative duration (30d, 6mo).
func ParseSince(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return Parse(s)
}
