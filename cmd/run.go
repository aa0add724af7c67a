package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/policy"
)

// policyOrder is the fixed evaluation order for combined runs. The
// --policies flag selects a subset; it never reorders.
var policyOrder = []string{"staleness", "assignment", "version", "stable"}

// NewCmdRun creates the run command.
func NewCmdRun(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run multiple triage policies in one pass",
		Long: `Evaluates the selected policies against each bug in a single
pass, merging their decisions into one set of mutations per bug.
Including "stable" requires --series; the whole pass then evaluates
against the project/series tasks.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Policies, "policies",
		[]string{"staleness", "assignment", "version"},
		"Policies to run (staleness, assignment, version, stable)")
	cmd.Flags().IntVar(&opts.NoActivity, "no-activity", 0, "Inactivity threshold in days (default from config)")
	cmd.Flags().IntVar(&opts.Age, "age", 0, "Mark version-less bugs up to this age Incomplete (0 disables)")
	cmd.Flags().BoolVar(&opts.Reinforce, "reinforce", false, "Also mark bugs with open reviews In Progress")
	cmd.Flags().StringVar(&opts.Series, "series", "", "Series name, required when running the stable policy")
	cmd.Flags().BoolVar(&opts.CloseAll, "close-all", false, "Stable policy: close every remaining open task")
	return cmd
}

func runRun(ctx context.Context, opts *Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	project, err := rt.project()
	if err != nil {
		return err
	}

	selected := make(map[string]bool, len(opts.Policies))
	for _, name := range opts.Policies {
		selected[name] = true
	}
	for name := range selected {
		if !contains(policyOrder, name) {
			return fmt.Errorf("unknown policy %q (choose from %v)", name, policyOrder)
		}
	}
	if selected["stable"] && opts.Series == "" {
		return fmt.Errorf("the stable policy requires --series")
	}

	days := opts.NoActivity
	if days <= 0 {
		days = rt.settings.StaleDays
	}
	age := opts.Age
	if age <= 0 {
		age = rt.settings.VersionAgeDays
	}

	var policies []policy.Policy
	for _, name := range policyOrder {
		if !selected[name] {
			continue
		}
		switch name {
		case "staleness":
			policies = append(policies, policy.NewStaleness(project, days))
		case "assignment":
			policies = append(policies, policy.NewAssignment(opts.Reinforce))
		case "version":
			policies = append(policies, policy.NewVersionTag(project, age))
		case "stable":
			policies = append(policies, policy.NewStableSeries(opts.CloseAll))
		}
	}

	target := project
	statuses := model.ActiveStatuses
	if selected["stable"] {
		target = project + "/" + opts.Series
		statuses = model.AllStatuses
	}

	return rt.runPolicies(ctx, policies, target, target,
		launchpad.SearchOptions{
			Statuses:       statuses,
			SearchText:     opts.Search,
			OmitDuplicates: true,
		})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
