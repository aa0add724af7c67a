package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/osops/bugtriage/internal/constants"
	"github.com/osops/bugtriage/internal/launchpad"
	"github.com/osops/bugtriage/internal/version"
)

var launchpadCreds = launchpad.Credentials{
	ConsumerKey: "file-key",
	Token:       "file-tok",
	TokenSecret: "file-sec",
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	s := cfg.Resolve()
	if s.LaunchpadRoot != constants.DefaultLaunchpadRoot {
		t.Errorf("LaunchpadRoot = %q", s.LaunchpadRoot)
	}
	if s.StaleDays != constants.DefaultStaleDays {
		t.Errorf("StaleDays = %d", s.StaleDays)
	}
	if s.Workers != constants.DefaultWorkers {
		t.Errorf("Workers = %d", s.Workers)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	path := writeConfig(t, `
project: nova
gerrit_root: https://review.example.org
workers: 8
thresholds:
  stale_days: 90
  version_age_days: 30
credentials:
  consumer_key: bugtriage
  token: tok
  token_secret: sec
`)
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	s := cfg.Resolve()
	if s.Project != "nova" {
		t.Errorf("Project = %q", s.Project)
	}
	if s.GerritRoot != "https://review.example.org" {
		t.Errorf("GerritRoot = %q", s.GerritRoot)
	}
	if s.LaunchpadRoot != constants.DefaultLaunchpadRoot {
		t.Errorf("unset LaunchpadRoot should keep default, got %q", s.LaunchpadRoot)
	}
	if s.Workers != 8 || s.StaleDays != 90 || s.VersionAgeDays != 30 {
		t.Errorf("resolved = %+v", s)
	}

	creds := cfg.LaunchpadCredentials()
	if creds == nil || creds.ConsumerKey != "bugtriage" || creds.Token != "tok" {
		t.Errorf("credentials = %+v", creds)
	}
}

func TestLoadFromPartialThresholds(t *testing.T) {
	path := writeConfig(t, "thresholds:\n  stale_days: 0\n")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	s := cfg.Resolve()
	if s.StaleDays != 0 {
		t.Errorf("explicit zero should override, got %d", s.StaleDays)
	}
	if s.VersionAgeDays != constants.DefaultVersionAgeDays {
		t.Errorf("VersionAgeDays = %d", s.VersionAgeDays)
	}
}

func TestLoadFromMalformed(t *testing.T) {
	path := writeConfig(t, "workers: [not an int\n")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvCredentialsWinOverFile(t *testing.T) {
	t.Setenv("LP_CONSUMER_KEY", "env-key")
	t.Setenv("LP_ACCESS_TOKEN", "env-tok")
	t.Setenv("LP_ACCESS_SECRET", "env-sec")

	cfg := &Config{Credentials: &launchpadCreds}
	creds := cfg.LaunchpadCredentials()
	if creds.Token != "env-tok" || creds.ConsumerKey != "env-key" {
		t.Errorf("credentials = %+v, want environment values", creds)
	}
}

func TestPathEnvOverride(t *testing.T) {
	t.Setenv(envConfigPath, "/tmp/custom.yaml")
	if got := Path(); got != "/tmp/custom.yaml" {
		t.Errorf("Path() = %q", got)
	}
}

func TestRegisterVersions(t *testing.T) {
	cfg := &Config{ExtraVersions: map[string]string{"18.": "rocky"}}
	cfg.RegisterVersions()
	if got := version.Normalize("18.0.1"); got != "rocky" {
		t.Errorf("Normalize(18.0.1) = %q after registration", got)
	}
}
