package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osops/bugtriage/internal/duration"
	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/policy"
)

// NewCmdStable creates the stable command.
func NewCmdStable(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stable",
		Short: "Synchronize stable-series task status",
		Long: `Reconciles the bug tasks of a stable maintenance series:
Fix Committed tasks become Fix Released once the series has shipped,
and with --close-all every remaining open task is closed Won't Fix
(used when a series reaches end of life).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStable(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Series, "series", "", "Series name, e.g. mitaka (required)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Only bugs modified since (YYYY-MM-DD or 30d, 6mo)")
	cmd.Flags().BoolVar(&opts.CloseAll, "close-all", false, "Close every remaining open task Won't Fix")
	_ = cmd.MarkFlagRequired("series")
	return cmd
}

func runStable(ctx context.Context, opts *Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	project, err := rt.project()
	if err != nil {
		return err
	}
	if opts.Series == "" {
		return fmt.Errorf("no series given: use --series")
	}
	target := project + "/" + opts.Series

	search := launchpad.SearchOptions{
		Statuses:       model.AllStatuses,
		SearchText:     opts.Search,
		OmitDuplicates: true,
	}
	if opts.Since != "" {
		since, err := duration.ParseSince(opts.Since)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		search.ModifiedSince = since
	}

	return rt.runPolicies(ctx,
		[]policy.Policy{policy.NewStableSeries(opts.CloseAll)},
		target, target, search)
}
