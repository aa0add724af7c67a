package version

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "date coded kilo", raw: "2015.1", want: "kilo"},
		{name: "date coded liberty", raw: "2015.2", want: "liberty"},
		{name: "date coded point release", raw: "2014.1.5", want: "icehouse"},
		{name: "numeric major liberty", raw: "12.0.0", want: "liberty"},
		{name: "numeric major mitaka", raw: "13.1.4", want: "mitaka"},
		{name: "numeric major newton", raw: "14.0.1", want: "newton"},
		{name: "numeric major pike", raw: "16.0.0", want: "pike"},
		{name: "already canonical", raw: "liberty", want: "liberty"},
		{name: "canonical mixed case", raw: "Liberty", want: "liberty"},
		{name: "stable branch", raw: "stable/mitaka", want: "mitaka"},
		{name: "trailing parenthetical", raw: "12.0.0 (liberty)", want: "liberty"},
		{name: "parenthetical no space", raw: "2015.1.2(distro)", want: "kilo"},
		{name: "secondary token dropped", raw: "2014.2 and friends", want: "juno"},
		{name: "master fails closed", raw: "master", want: ""},
		{name: "master mixed case", raw: "MASTER", want: ""},
		{name: "whitespace only", raw: "   ", want: ""},
		{name: "oversized string", raw: strings.Repeat("a", 41), want: ""},
		{name: "forty chars passes", raw: strings.Repeat("a", 40), want: strings.Repeat("a", 40)},
		{name: "unknown label kept", raw: "grenade", want: "grenade"},
		{name: "unknown stable branch kept", raw: "stable/custom", want: "stable/custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		project string
		text    string
		want    string
	}{
		{
			name:    "openstack version line",
			project: "nova",
			text:    "Some preamble.\nOpenStack Version: Liberty\nMore text.",
			want:    "liberty",
		},
		{
			name:    "project version line",
			project: "nova",
			text:    "nova version: 12.0.2",
			want:    "liberty",
		},
		{
			name:    "project colon line",
			project: "nova",
			text:    "nova: 2015.1.1",
			want:    "kilo",
		},
		{
			name:    "rpm common package",
			project: "nova",
			text:    "installed openstack-nova-common-2014.2-3.el7 on the host",
			want:    "juno",
		},
		{
			name:    "rpm compute package",
			project: "nova",
			text:    "rpm -qa shows openstack-nova-compute-13.0.0-1",
			want:    "mitaka",
		},
		{
			name:    "debian package list",
			project: "nova",
			text:    "ii  nova-common  2:12.0.0-0ubuntu1  all  OpenStack Compute",
			want:    "liberty",
		},
		{
			name:    "bare keyword",
			project: "nova",
			text:    "We saw this on a Mitaka cloud under load.",
			want:    "mitaka",
		},
		{
			name:    "explicit line beats bare keyword",
			project: "nova",
			text:    "Running juno in production.\nnova version: 14.0.1",
			want:    "newton",
		},
		{
			name:    "nothing found",
			project: "nova",
			text:    "It crashes when I click the button.",
			want:    "",
		},
		{
			name:    "master version is no version",
			project: "nova",
			text:    "openstack version: master",
			want:    "",
		},
		{
			name:    "keyword is whole word only",
			project: "nova",
			text:    "see wikijunostuff for details",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.project, tt.text); got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractIsIdempotentOnViewText(t *testing.T) {
	text := "OpenStack Version: 2015.2"
	first := Extract("nova", text)
	second := Extract("nova", text)
	if first != second || first != "liberty" {
		t.Errorf("Extract not stable: %q then %q", first, second)
	}
}

func TestRegisterMapping(t *testing.T) {
	RegisterMapping("17.", "queens")
	if got := Normalize("17.0.0"); got != "queens" {
		t.Errorf("Normalize(17.0.0) = %q, want queens", got)
	}
	if got := Extract("nova", "we run Queens here"); got != "queens" {
		t.Errorf("Extract keyword for registered release = %q", got)
	}
}
