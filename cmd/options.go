package cmd

// Options holds the shared command-line options for the bugtriage CLI.
type Options struct {
	Project    string
	Search     string
	DryRun     bool
	Verbosity  int
	Workers    int
	ConfigPath string
	TUI        *bool // nil = auto-detect, true = force, false = disable

	// Per-command knobs. Zero values mean "use the configured default".
	NoActivity int      // close: inactivity threshold in days
	Age        int      // tag-version: max bug age for incomplete-marking
	Reinforce  bool     // unassign: also push reviewed bugs to In Progress
	Series     string   // stable: series name, e.g. "mitaka"
	Since      string   // stable: only bugs modified since this date
	CloseAll   bool     // stable: close every remaining open task
	Policies   []string // run: which policies to execute
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates Options with defaults and applies any overrides.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithProject sets the Launchpad project.
func WithProject(project string) Option {
	return func(o *Options) { o.Project = project }
}

// WithSearch sets the free-text search filter.
func WithSearch(search string) Option {
	return func(o *Options) { o.Search = search }
}

// WithDryRun suppresses all tracker writes.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) { o.DryRun = dryRun }
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) { o.Verbosity = v }
}

// WithWorkers sets the number of concurrent review lookups.
func WithWorkers(workers int) Option {
	return func(o *Options) { o.Workers = workers }
}

// WithTUI controls the progress display (nil = auto-detect).
func WithTUI(tui *bool) Option {
	return func(o *Options) { o.TUI = tui }
}
