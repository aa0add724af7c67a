package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/osops/bugtriage/config"
	"github.com/osops/bugtriage/internal/engine"
	"github.com/osops/bugtriage/internal/gerrit"
	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/log"
	"github.com/osops/bugtriage/internal/model"
	"github.com/osops/bugtriage/internal/output"
	"github.com/osops/bugtriage/internal/policy"
	"github.com/osops/bugtriage/internal/tui"
)

// runtime bundles the per-invocation wiring shared by all commands:
// resolved config, logging, and the optional progress display.
type runtime struct {
	opts     *Options
	cfg      *config.Config
	settings config.Settings

	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

func newRuntime(opts *Options) (*runtime, error) {
	useTUI := shouldUseTUI(opts)

	// Logs would interleave with the progress display, so discard them
	// while it is up.
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	path := opts.ConfigPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	cfg.RegisterVersions()

	settings := cfg.Resolve()
	if opts.Workers > 0 {
		settings.Workers = opts.Workers
	}
	if opts.Project == "" {
		opts.Project = settings.Project
	}

	return &runtime{opts: opts, cfg: cfg, settings: settings, useTUI: useTUI}, nil
}

func (rt *runtime) project() (string, error) {
	if rt.opts.Project == "" {
		return "", fmt.Errorf("no project given: use --project or set one in %s", config.Path())
	}
	return rt.opts.Project, nil
}

func (rt *runtime) startTUI() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events)
	}()
}

// closeTUI closes the event channel and waits for the display to
// settle. Safe to call more than once.
func (rt *runtime) closeTUI() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	<-rt.tuiDone
	rt.events = nil
}

func (rt *runtime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

func (rt *runtime) tracker() *launchpad.Client {
	return launchpad.NewClient(rt.settings.LaunchpadRoot, rt.cfg.LaunchpadCredentials())
}

func (rt *runtime) gerritClient(ctx context.Context) *gerrit.Client {
	return gerrit.NewClient(ctx, rt.settings.GerritRoot, rt.cfg.GerritToken())
}

// runPolicies is the shared engine invocation behind close, unassign,
// tag-version, stable and run. searchTarget names the project (or
// project/series) the task search walks; viewTarget is the task the
// policies evaluate and mutate.
func (rt *runtime) runPolicies(ctx context.Context, policies []policy.Policy, searchTarget, viewTarget string, search launchpad.SearchOptions) error {
	rt.startTUI()
	defer rt.closeTUI()

	rt.sendEvent(tui.TaskConnect, tui.StatusRunning)
	tracker := rt.tracker()

	var resolver engine.ReviewResolver
	for _, p := range policies {
		if p.NeedsReviews() {
			resolver = gerrit.NewResolver(rt.gerritClient(ctx), rt.settings.Workers)
			break
		}
	}
	rt.sendEvent(tui.TaskConnect, tui.StatusComplete)

	applier := engine.NewApplier(tracker, rt.opts.DryRun)
	eng := engine.New(tracker, resolver, applier, policies, engine.Options{
		Project: searchTarget,
		Target:  viewTarget,
		Verbose: rt.opts.Verbosity > 0,
	})

	report := output.NewReport()
	rt.sendEvent(tui.TaskSearch, tui.StatusRunning)
	eng.SetProgress(engine.Progress{
		SearchDone: func(total int) {
			rt.sendEvent(tui.TaskSearch, tui.StatusComplete, tui.WithCount(total))
			rt.sendEvent(tui.TaskTriage, tui.StatusRunning)
		},
		IssueDone: func(done, total int, _ *model.IssueView) {
			if total > 0 {
				rt.sendEvent(tui.TaskTriage, tui.StatusRunning,
					tui.WithProgress(float64(done)/float64(total)),
					tui.WithMessage(fmt.Sprintf("%d/%d", done, total)))
			}
		},
		ActionTaken: report.Record,
	})

	stats, err := eng.Run(ctx, search)
	if err != nil {
		rt.sendEvent(tui.TaskTriage, tui.StatusError, tui.WithError(err))
		rt.closeTUI()
		return err
	}
	rt.sendEvent(tui.TaskTriage, tui.StatusComplete, tui.WithCount(stats.ActionsTaken))
	rt.closeTUI()

	report.Render(os.Stdout, stats)
	return nil
}
