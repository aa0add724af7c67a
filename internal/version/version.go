// Package version extracts and normalizes OpenStack release versions
// from free-form bug descriptions.
package version

import (
	"regexp"
	"strings"
	"sync"
)

// maxRawLength is the longest string still treated as a version. Anything
// longer is assumed to be a URL or commit hash pasted into the field.
const maxRawLength = 40

type mapping struct {
	prefix  string
	release string
}

// stackVersions maps raw version prefixes to canonical release names.
// Date-coded entries cover the pre-Liberty numbering scheme; bare
// numeric majors cover the per-project scheme that replaced it. The
// prefixes are disjoint, so first-match iteration is safe.
var stackVersions = []mapping{
	{"2013.1", "grizzly"},
	{"2013.2", "havana"},
	{"2014.1", "icehouse"},
	{"2014.2", "juno"},
	{"2015.1", "kilo"},
	{"2015.2", "liberty"},
	{"12.", "liberty"},
	{"13.", "mitaka"},
	{"14.", "newton"},
	{"15.", "ocata"},
	{"16.", "pike"},
}

var (
	mu       sync.RWMutex
	releases = []string{
		"grizzly", "havana", "icehouse", "juno", "kilo",
		"liberty", "mitaka", "newton", "ocata", "pike",
	}
	keywordRe = buildKeywordRe(releases)
)

func buildKeywordRe(names []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\b`)
}

// RegisterMapping extends the prefix table at startup, e.g. from
// configuration. The release name is added to the canonical set if new.
func RegisterMapping(prefix, release string) {
	mu.Lock()
	defer mu.Unlock()
	stackVersions = append(stackVersions, mapping{prefix: prefix, release: release})
	for _, r := range releases {
		if r == release {
			return
		}
	}
	releases = append(releases, release)
	keywordRe = buildKeywordRe(releases)
}

// Normalize reduces a raw version string to a canonical release name.
// It returns "" when no version can be responsibly inferred: oversized
// strings and "master" both fail closed, since neither pins a release.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > maxRawLength {
		return ""
	}
	if strings.EqualFold(s, "master") {
		return ""
	}

	// People write things like "12.0.0 (liberty)" or "2015.1.2 LOCAL";
	// the leading token is the version.
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	mu.RLock()
	defer mu.RUnlock()

	for _, m := range stackVersions {
		if strings.HasPrefix(s, m.prefix) {
			return m.release
		}
	}

	if r := canonical(s); r != "" {
		return r
	}

	if rest, ok := strings.CutPrefix(s, "stable/"); ok {
		if r := canonical(rest); r != "" {
			return r
		}
	}

	return s
}

// canonical returns the lowercased release name when s already names
// one, else "".
func canonical(s string) string {
	for _, r := range releases {
		if strings.EqualFold(s, r) {
			return r
		}
	}
	return ""
}

// Extract scans free text for a version statement about the given
// project and returns the canonical release, or "" when nothing
// confident is found. Candidate patterns are tried from most to least
// authoritative; the first one that normalizes to a version wins.
func Extract(project, text string) string {
	p := regexp.QuoteMeta(project)

	patterns := []*regexp.Regexp{
		// An explicit "openstack version:" line trumps everything.
		regexp.MustCompile(`(?im)^openstack version\s*:\s*(.+)$`),
		// Project-specific version lines.
		regexp.MustCompile(`(?im)^` + p + `\s+version\s*:\s*(.+)$`),
		regexp.MustCompile(`(?im)^` + p + `\s*:\s*(.+)$`),
		// RPM package naming conventions.
		regexp.MustCompile(`(?i)openstack-` + p + `-common-(\S+)`),
		regexp.MustCompile(`(?i)openstack-` + p + `-compute-(\S+)`),
		// Debian package list line: "ii  nova-common  2:12.0.0-0ubuntu1".
		regexp.MustCompile(`(?im)^ii\s+` + p + `-common\s+(?:\d+:)?(\S+)`),
	}

	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := Normalize(m[1]); v != "" {
				return v
			}
		}
	}

	// Last resort: a bare release keyword anywhere in the text.
	mu.RLock()
	re := keywordRe
	mu.RUnlock()
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1])
	}

	return ""
}
