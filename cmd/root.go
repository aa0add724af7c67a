package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "bugtriage",
		Short: "Launchpad bug triage automation",
		Long: `Automates routine triage on a Launchpad bug tracker: closing
inactive bugs, unassigning bugs that have no active Gerrit review,
tagging bugs with the OpenStack version found in their description, and
synchronizing stable-series task status.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.Project, "project", "p", "", "Launchpad project to triage")
	pf.StringVar(&opts.Search, "search", "", "Free-text filter for the bug search")
	pf.BoolVar(&opts.DryRun, "dryrun", false, "Log intended actions without applying them")
	pf.CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	pf.IntVarP(&opts.Workers, "workers", "w", 0, "Concurrent review lookups (default from config)")
	pf.Var(newTUIFlag(opts), "tui", "Enable/disable progress display (default: auto-detect)")
	pf.StringVar(&opts.ConfigPath, "config", "", "Config file path (default ~/.config/bugtriage/config.yaml)")

	rootCmd.AddCommand(
		NewCmdClose(opts),
		NewCmdUnassign(opts),
		NewCmdTagVersion(opts),
		NewCmdStable(opts),
		NewCmdReviewSync(opts),
		NewCmdRun(opts),
		NewCmdVersion(),
	)

	return rootCmd
}
