package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/policy"
)

// NewCmdClose creates the close command.
func NewCmdClose(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close bugs with no recent activity",
		Long: `Marks open bugs as Invalid when they have seen no activity for
longer than the threshold, with a comment inviting the reporter to
reopen if the issue still exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClose(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.NoActivity, "no-activity", 0, "Inactivity threshold in days (default from config)")
	return cmd
}

func runClose(ctx context.Context, opts *Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	project, err := rt.project()
	if err != nil {
		return err
	}

	days := opts.NoActivity
	if days <= 0 {
		days = rt.settings.StaleDays
	}

	return rt.runPolicies(ctx,
		[]policy.Policy{policy.NewStaleness(project, days)},
		project, project,
		launchpad.SearchOptions{
			Statuses:       model.ActiveStatuses,
			SearchText:     opts.Search,
			OrderBy:        "date_last_updated",
			OmitDuplicates: true,
		})
}
