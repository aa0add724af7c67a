package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/policy"
)

// NewCmdTagVersion creates the tag-version command.
func NewCmdTagVersion(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag-version",
		Short: "Tag bugs with the version found in their description",
		Long: `Scans bug descriptions for an OpenStack release version and adds
an openstack-version.<release> tag. With --age, bugs younger than the
given number of days that state no version are marked Incomplete and
tagged for follow-up.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTagVersion(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.Age, "age", 0, "Mark version-less bugs up to this age Incomplete (0 disables)")
	return cmd
}

func runTagVersion(ctx context.Context, opts *Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	project, err := rt.project()
	if err != nil {
		return err
	}

	age := opts.Age
	if age <= 0 {
		age = rt.settings.VersionAgeDays
	}

	return rt.runPolicies(ctx,
		[]policy.Policy{policy.NewVersionTag(project, age)},
		project, project,
		launchpad.SearchOptions{
			Statuses:       model.TriageStatuses,
			SearchText:     opts.Search,
			OmitDuplicates: true,
		})
}
