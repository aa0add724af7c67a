// Package config loads the YAML configuration file and resolves it
// against built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/osops/bugtriage/internal/constants"
	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/version"
)

// envConfigPath overrides the config file location when set.
const envConfigPath = "BUGTRIAGE_CONFIG"

// Config is the on-disk configuration. All fields are optional;
// pointer fields distinguish "unset" from zero so overrides merge
// cleanly over defaults.
type Config struct {
	// Project is the default Launchpad project when --project is not given.
	Project string `yaml:"project,omitempty"`

	// LaunchpadRoot and GerritRoot override the API endpoints.
	LaunchpadRoot string `yaml:"launchpad_root,omitempty"`
	GerritRoot    string `yaml:"gerrit_root,omitempty"`

	// Workers bounds parallel review-status lookups.
	Workers *int `yaml:"workers,omitempty"`

	Thresholds *ThresholdOverrides `yaml:"thresholds,omitempty"`

	// ExtraVersions extends the version prefix table, e.g. "17.": "queens".
	ExtraVersions map[string]string `yaml:"extra_versions,omitempty"`

	// Credentials authenticate against Launchpad. Environment variables
	// take precedence; see LaunchpadCredentials.
	Credentials *launchpad.Credentials `yaml:"credentials,omitempty"`
}

// ThresholdOverrides customizes policy thresholds.
type ThresholdOverrides struct {
	// StaleDays is the inactivity window for closing bugs.
	StaleDays *int `yaml:"stale_days,omitempty"`

	// VersionAgeDays is the maximum age for marking version-less bugs
	// Incomplete. Zero disables the marking branch.
	VersionAgeDays *int `yaml:"version_age_days,omitempty"`
}

// Settings is the fully resolved configuration the commands consume.
type Settings struct {
	Project        string
	LaunchpadRoot  string
	GerritRoot     string
	Workers        int
	StaleDays      int
	VersionAgeDays int
}

// Resolve merges the config over the built-in defaults.
func (c *Config) Resolve() Settings {
	s := Settings{
		Project:        c.Project,
		LaunchpadRoot:  constants.DefaultLaunchpadRoot,
		GerritRoot:     constants.DefaultGerritRoot,
		Workers:        constants.DefaultWorkers,
		StaleDays:      constants.DefaultStaleDays,
		VersionAgeDays: constants.DefaultVersionAgeDays,
	}
	if c.LaunchpadRoot != "" {
		s.LaunchpadRoot = c.LaunchpadRoot
	}
	if c.GerritRoot != "" {
		s.GerritRoot = c.GerritRoot
	}
	if c.Workers != nil {
		s.Workers = *c.Workers
	}
	if t := c.Thresholds; t != nil {
		if t.StaleDays != nil {
			s.StaleDays = *t.StaleDays
		}
		if t.VersionAgeDays != nil {
			s.VersionAgeDays = *t.VersionAgeDays
		}
	}
	return s
}

// RegisterVersions feeds the extra version mappings into the extraction
// table. Prefixes are applied in sorted order so runs are deterministic
// regardless of map iteration.
func (c *Config) RegisterVersions() {
	prefixes := make([]string, 0, len(c.ExtraVersions))
	for prefix := range c.ExtraVersions {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		version.RegisterMapping(prefix, c.ExtraVersions[prefix])
	}
}

// LaunchpadCredentials returns the Launchpad OAuth credentials, with
// the environment taking precedence over the config file. Returns nil
// when nothing is configured; the client then runs anonymously, which
// is enough for searches and dry runs.
func (c *Config) LaunchpadCredentials() *launchpad.Credentials {
	creds := launchpad.Credentials{
		ConsumerKey: os.Getenv("LP_CONSUMER_KEY"),
		Token:       os.Getenv("LP_ACCESS_TOKEN"),
		TokenSecret: os.Getenv("LP_ACCESS_SECRET"),
	}
	if creds.Token != "" {
		return &creds
	}
	return c.Credentials
}

// GerritToken returns the optional Gerrit bearer token. Tokens live in
// the environment only, never in the config file.
func (c *Config) GerritToken() string {
	return os.Getenv("GERRIT_TOKEN")
}

// DefaultConfigDir returns the directory holding the config file.
func DefaultConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ".bugtriage"
	}
	return filepath.Join(configDir, "bugtriage")
}

// Path returns the config file location, honoring the environment
// override.
func Path() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Load reads the config from its default location. A missing file is
// not an error: everything has a default.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads and parses the config at path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
