// Package output renders the end-of-run report: one line per action
// taken, followed by the run tally.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/osops/bugtriage/internal/engine"
	"github.com/osops/bugtriage/internal/format"
	"github.com/osops/bugtriage/internal/model"
)

const (
	colBug    = 9
	colStatus = 28
	colPolicy = 20
	colReason = 44
)

type row struct {
	bug    string
	status string
	policy string
	reason string
	link   string
}

// Report accumulates the actions of one run. Record is shaped to plug
// straight into the engine's ActionTaken progress callback.
type Report struct {
	rows []row
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Record adds one applied (or dry-run) action to the report.
func (r *Report) Record(view *model.IssueView, act *model.Action) {
	status := string(view.Status)
	if act.Status != nil && *act.Status != view.Status {
		status = fmt.Sprintf("%s -> %s", view.Status, *act.Status)
	}
	r.rows = append(r.rows, row{
		bug:    view.ID,
		status: status,
		policy: act.Policy,
		reason: act.Reason,
		link:   view.WebLink,
	})
}

// Render writes the action table and the tally. Safe to call with no
// recorded rows; the tally is always printed.
func (r *Report) Render(w io.Writer, stats *engine.RunStats) {
	if len(r.rows) > 0 {
		fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n",
			colBug, "Bug",
			colStatus, "Status",
			colPolicy, "Policy",
			"Reason")
		fmt.Fprintln(w, strings.Repeat("-", colBug+colStatus+colPolicy+colReason+6))

		for _, row := range r.rows {
			bug := hyperlink(row.bug, row.link)
			bug = format.PadRight(bug, format.DisplayWidth(row.bug), colBug)

			status := format.Truncate(row.status, colStatus)
			status = format.PadRight(colorStatus(status), format.DisplayWidth(status), colStatus)

			policy := format.Truncate(row.policy, colPolicy)

			fmt.Fprintf(w, "%s  %s  %-*s  %s\n",
				bug, status, colPolicy, policy,
				format.Truncate(row.reason, colReason))
		}
		fmt.Fprintln(w)
	}

	r.renderTally(w, stats)
}

func (r *Report) renderTally(w io.Writer, stats *engine.RunStats) {
	fmt.Fprintf(w, "Scanned %d bugs: %d actions, %d skipped, %d errors\n",
		stats.Scanned, stats.ActionsTaken, stats.Skipped, len(stats.Errors))

	if len(stats.PerPolicy) > 0 {
		names := make([]string, 0, len(stats.PerPolicy))
		for name := range stats.PerPolicy {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, stats.PerPolicy[name])
		}
	}

	if stats.Conflicts > 0 {
		fmt.Fprintf(w, "%s %d conflicting policy decisions were merged; see the log\n",
			color.YellowString("!"), stats.Conflicts)
	}
	for _, e := range stats.Errors {
		fmt.Fprintf(w, "%s bug %s: %v\n", color.RedString("✗"), e.IssueID, e.Err)
	}
	if stats.DryRun {
		fmt.Fprintln(w, color.YellowString("Dry run: no changes were made."))
	}
}

// colorStatus highlights the transitions that close or reopen work.
func colorStatus(s string) string {
	switch {
	case strings.Contains(s, string(model.StatusInvalid)),
		strings.Contains(s, string(model.StatusWontFix)):
		return color.RedString(s)
	case strings.Contains(s, string(model.StatusFixReleased)):
		return color.GreenString(s)
	case strings.Contains(s, string(model.StatusInProgress)):
		return color.CyanString(s)
	}
	return s
}

// hyperlink wraps text in an OSC 8 terminal hyperlink when stdout is a
// terminal; otherwise the bare text is returned.
func hyperlink(text, url string) string {
	if url == "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}
