package vps

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

var (
	anyRange  = anyVersions{}
	noneRange = noVersions{}
)

// A Range provides structured limitations on the versions that are
// admissible for a given package dependency.
//
// The concrete implementations are all defined here; the private method
// seals the interface so that range semantics stay internally consistent.
type Range interface {
	fmt.Stringer
	// Matches indicates if the provided Version is allowed by the Range,
	// under strict semver semantics (prereleases only match ranges that
	// themselves mention a prerelease).
	Matches(Version) bool
	// MatchesPrerelease is Matches with prerelease inclusion enabled: a
	// prerelease version is admitted whenever the release it precedes
	// would be.
	MatchesPrerelease(Version) bool
	// AsSingleVersion returns the only version this Range denotes, if it
	// denotes exactly one.
	AsSingleVersion() (Version, bool)
	_private()
}

func (exactRange) _private()      {}
func (comparatorRange) _private() {}
func (anyVersions) _private()     {}
func (noVersions) _private()      {}

// ParseRange parses a dependency range expression. A bare version is an
// exact range; anything else is handed to the semver comparator parser
// (>=, ^, ~, wildcard, hyphen and || forms).
func ParseRange(body string) (Range, error) {
	if v, err := NewVersion(body); err == nil {
		return exactRange{v: v}, nil
	}
	c, err := semver.NewConstraint(body)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version range %q", body)
	}
	return comparatorRange{body: body, c: c}, nil
}

// MustRange is ParseRange, panicking on failure. For literals in tests.
func MustRange(body string) Range {
	r, err := ParseRange(body)
	if err != nil {
		panic(err)
	}
	return r
}

// RangeForVersion returns the exact range denoting only v.
func RangeForVersion(v Version) Range {
	return exactRange{v: v}
}

// AnyRange returns a range matching every release version; like any other
// range that mentions no prerelease, it admits prereleases only through
// MatchesPrerelease.
func AnyRange() Range {
	return anyRange
}

type exactRange struct {
	v Version
}

func (r exactRange) String() string {
	return r.v.String()
}

func (r exactRange) Matches(v Version) bool {
	return r.v.Equal(v)
}

func (r exactRange) MatchesPrerelease(v Version) bool {
	return r.Matches(v)
}

func (r exactRange) AsSingleVersion() (Version, bool) {
	return r.v, true
}

type comparatorRange struct {
	body string
	c    *semver.Constraints
}

func (r comparatorRange) String() string {
	return r.body
}

func (r comparatorRange) Matches(v Version) bool {
	return r.c.Check(v.sv)
}

func (r comparatorRange) MatchesPrerelease(v Version) bool {
	if r.c.Check(v.sv) {
		return true
	}
	if !v.IsPrerelease() {
		return false
	}
	return r.c.Check(v.stripPrerelease().sv)
}

func (r comparatorRange) AsSingleVersion() (Version, bool) {
	return Version{}, false
}

// anyVersions is the unbounded range - it admits every release, and every
// prerelease under relaxed matching.
type anyVersions struct{}

func (anyVersions) String() string                   { return "*" }
func (anyVersions) Matches(v Version) bool           { return !v.IsPrerelease() }
func (anyVersions) MatchesPrerelease(Version) bool   { return true }
func (anyVersions) AsSingleVersion() (Version, bool) { return Version{}, false }

// noVersions is the empty set - it admits nothing.
type noVersions struct{}

func (noVersions) String() string                   { return "" }
func (noVersions) Matches(Version) bool             { return false }
func (noVersions) MatchesPrerelease(Version) bool   { return false }
func (noVersions) AsSingleVersion() (Version, bool) { return Version{}, false }

// admits applies a range under the resolver's prerelease policy.
func admits(r Range, v Version, allowPrerelease bool) bool {
	if allowPrerelease {
		return r.MatchesPrerelease(v)
	}
	return r.Matches(v)
}
