package vps

import "testing"

func TestParseRangeExact(t *testing.T) {
	r := MustRange("1.2.3")
	if v, ok := r.AsSingleVersion(); !ok || v.String() != "1.2.3" {
		t.Errorf("exact range AsSingleVersion() = (%s, %t), want (1.2.3, true)", v, ok)
	}
	if !r.Matches(MustVersion("1.2.3")) {
		t.Error("exact range rejected its own version")
	}
	if r.Matches(MustVersion("1.2.4")) {
		t.Error("exact range matched a different version")
	}

	// A prerelease exact range matches exactly that prerelease.
	pr := MustRange("1.0.0-beta.1")
	if !pr.Matches(MustVersion("1.0.0-beta.1")) {
		t.Error("exact prerelease range rejected its own version")
	}
	if pr.Matches(MustVersion("1.0.0")) {
		t.Error("exact prerelease range matched the release")
	}
}

func TestParseRangeComparator(t *testing.T) {
	tests := []struct {
		rng     string
		version string
		match   bool
	}{
		{"^1.0.0", "1.0.0", true},
		{"^1.0.0", "1.9.2", true},
		{"^1.0.0", "2.0.0", false},
		{"^1.0.0", "0.9.0", false},
		{"~1.2.0", "1.2.5", true},
		{"~1.2.0", "1.3.0", false},
		{">=2.0.0", "2.0.0", true},
		{">=2.0.0", "1.9.9", false},
		{">=1.0.0 <2.0.0", "1.5.0", true},
		{"1.x", "1.7.0", true},
		{"1.x", "2.0.0", false},
	}

	for _, tc := range tests {
		r := MustRange(tc.rng)
		if _, ok := r.AsSingleVersion(); ok {
			t.Errorf("range %q should not denote a single version", tc.rng)
		}
		if got := r.Matches(MustVersion(tc.version)); got != tc.match {
			t.Errorf("(%q).Matches(%s) = %t, want %t", tc.rng, tc.version, got, tc.match)
		}
	}

	if _, err := ParseRange("not @ a range"); err == nil {
		t.Error("ParseRange on garbage should have errored")
	}
}

func TestRangeMatchesPrerelease(t *testing.T) {
	tests := []struct {
		rng     string
		version string
		strict  bool
		relaxed bool
	}{
		// Plain ranges reject prereleases under strict matching but admit
		// them when the release they precede would qualify.
		{"^1.0.0", "1.2.0-beta.1", false, true},
		{"^1.0.0", "2.0.0-beta.1", false, false},
		// A prerelease of the floor itself counts: the release it precedes
		// (1.0.0) is in range, even though 1.0.0-rc.1 orders below it.
		{">=1.0.0", "1.0.0-rc.1", false, true},
		// Releases behave identically either way.
		{"^1.0.0", "1.2.0", true, true},
		{"^1.0.0", "2.0.0", false, false},
	}

	for _, tc := range tests {
		r := MustRange(tc.rng)
		v := MustVersion(tc.version)
		if got := r.Matches(v); got != tc.strict {
			t.Errorf("(%q).Matches(%s) = %t, want %t", tc.rng, v, got, tc.strict)
		}
		if got := r.MatchesPrerelease(v); got != tc.relaxed {
			t.Errorf("(%q).MatchesPrerelease(%s) = %t, want %t", tc.rng, v, got, tc.relaxed)
		}
	}
}

func TestRangeForVersion(t *testing.T) {
	r := RangeForVersion(MustVersion("3.1.4"))
	if v, ok := r.AsSingleVersion(); !ok || v.String() != "3.1.4" {
		t.Errorf("RangeForVersion AsSingleVersion() = (%s, %t)", v, ok)
	}
	if r.String() != "3.1.4" {
		t.Errorf("RangeForVersion String() = %q, want %q", r, "3.1.4")
	}
}

func TestAnyRange(t *testing.T) {
	r := AnyRange()
	for _, body := range []string{"0.0.1", "99.0.0", "1.0.0-beta.1"} {
		if !r.MatchesPrerelease(MustVersion(body)) {
			t.Errorf("AnyRange rejected %s", body)
		}
	}
	// The unbounded range follows the same strict semantics as every other
	// range that mentions no prerelease.
	for _, body := range []string{"1.1.0-beta.1", "0.0.1-rc.0"} {
		if r.Matches(MustVersion(body)) {
			t.Errorf("AnyRange admitted prerelease %s under strict matching", body)
		}
	}
	if !r.Matches(MustVersion("99.0.0")) {
		t.Error("AnyRange rejected a release under strict matching")
	}
	if _, ok := r.AsSingleVersion(); ok {
		t.Error("AnyRange should not denote a single version")
	}
}
