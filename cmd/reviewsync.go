package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/osops/bugtriage/internal/engine"
	"github.com/osops/bugtriage/internal/output"
	"github.com/osops/bugtriage/internal/tui"
)

// NewCmdReviewSync creates the review-sync command.
func NewCmdReviewSync(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "review-sync",
		Short: "Mark bugs referenced by open reviews In Progress",
		Long: `Walks the open Gerrit changes of a project, finds the bugs their
commit messages reference, and moves those bugs to In Progress with a
comment listing the reviews. Bugs already In Progress or Fix Released
are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReviewSync(cmd.Context(), opts)
		},
	}
}

func runReviewSync(ctx context.Context, opts *Options) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	project, err := rt.project()
	if err != nil {
		return err
	}

	rt.startTUI()
	defer rt.closeTUI()

	rt.sendEvent(tui.TaskConnect, tui.StatusRunning)
	tracker := rt.tracker()
	finder := rt.gerritClient(ctx)
	applier := engine.NewApplier(tracker, opts.DryRun)
	rt.sendEvent(tui.TaskConnect, tui.StatusComplete)

	sync := engine.NewReviewSync(tracker, finder, applier, project, rt.settings.GerritRoot)

	rt.sendEvent(tui.TaskSearch, tui.StatusRunning)
	rt.sendEvent(tui.TaskTriage, tui.StatusRunning)
	stats, err := sync.Run(ctx)
	if err != nil {
		rt.sendEvent(tui.TaskSearch, tui.StatusError, tui.WithError(err))
		rt.closeTUI()
		return err
	}
	rt.sendEvent(tui.TaskSearch, tui.StatusComplete, tui.WithCount(stats.Scanned))
	rt.sendEvent(tui.TaskTriage, tui.StatusComplete, tui.WithCount(stats.ActionsTaken))
	rt.closeTUI()

	output.NewReport().Render(os.Stdout, stats)
	return nil
}
