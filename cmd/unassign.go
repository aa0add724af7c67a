package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/policy"
)

// NewCmdUnassign creates the unassign command.
func NewCmdUnassign(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassign",
		Short: "Unassign bugs without an active review",
		Long: `Drops the assignee from open bugs whose assignee has no open
Gerrit review, so others know the bug is available. In Progress bugs
additionally revert to their previous status. With --reinforce, bugs
that do have open reviews are moved to In Progress.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUnassign(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Reinforce, "reinforce", false, "Also mark bugs with open reviews In Progress")
	return cmd
}

func runUnassign(ctx context.Context, opts *Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	project, err := rt.project()
	if err != nil {
		return err
	}

	return rt.runPolicies(ctx,
		[]policy.Policy{policy.NewAssignment(opts.Reinforce)},
		project, project,
		launchpad.SearchOptions{
			Statuses:       model.UnassignStatuses,
			SearchText:     opts.Search,
			OmitDuplicates: true,
		})
}
