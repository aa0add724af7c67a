// Package constants provides a centralized location for shared defaults
// and magic values used throughout the bugtriage application.
package constants

// Remote endpoints
const (
	// DefaultLaunchpadRoot is the Launchpad web service API root.
	DefaultLaunchpadRoot = "https://api.launchpad.net/1.0"

	// DefaultGerritRoot is the Gerrit server queried for review status.
	DefaultGerritRoot = "https://review.openstack.org"
)

// Triage thresholds
const (
	// DefaultStaleDays is the number of days without activity after
	// which an open bug is considered abandoned.
	DefaultStaleDays = 180

	// DefaultVersionAgeDays disables the incomplete-marking branch of
	// the version-tagging policy (0 = never mark Incomplete).
	DefaultVersionAgeDays = 0
)

// Concurrency
const (
	// DefaultWorkers bounds the parallel Gerrit status lookups per issue.
	DefaultWorkers = 4
)

// Tag naming convention for version tags.
const (
	// VersionTagPrefix prefixes the canonical release in a version tag,
	// e.g. "openstack-version.liberty".
	VersionTagPrefix = "openstack-version."

	// NeedsVersionTag marks bugs whose description carries no
	// discoverable version.
	NeedsVersionTag = "needs.openstack-version"
)
