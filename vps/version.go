// Package vps implements the VPM package solver: the version and range
// model, the package resolution algorithm, and the staged pending-changes
// object that describes a not-yet-applied transition of a Unity project's
// manifest and lock state.
package vps

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Version is a single, concrete package version. The zero value is not a
// valid version; construct through NewVersion or MustVersion.
type Version struct {
	sv *semver.Version
}

// NewVersion parses a version string in strict semver form.
func NewVersion(body string) (Version, error) {
	sv, err := semver.StrictNewVersion(body)
	if err != nil {
		return Version{}, errors.Wrapf(err, "invalid version %q", body)
	}
	return Version{sv: sv}, nil
}

// MustVersion is NewVersion, panicking on parse failure. Intended for
// literals in tests and fixtures.
func MustVersion(body string) Version {
	v, err := NewVersion(body)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.String()
}

// Compare returns -1, 0, or 1 per the semver total order. Prerelease tags
// sort below their release.
func (v Version) Compare(o Version) int {
	return v.sv.Compare(o.sv)
}

func (v Version) LessThan(o Version) bool    { return v.sv.LessThan(o.sv) }
func (v Version) GreaterThan(o Version) bool { return v.sv.GreaterThan(o.sv) }
func (v Version) Equal(o Version) bool       { return v.sv.Equal(o.sv) }

// IsPrerelease reports whether the version carries a prerelease tag.
func (v Version) IsPrerelease() bool {
	return v.sv.Prerelease() != ""
}

// stripPrerelease returns the release this prerelease is working toward.
func (v Version) stripPrerelease() Version {
	if !v.IsPrerelease() {
		return v
	}
	return Version{sv: semver.New(v.sv.Major(), v.sv.Minor(), v.sv.Patch(), "", "")}
}

func (v Version) isZero() bool { return v.sv == nil }

// UnityVersion identifies a Unity editor release, e.g. "2022.3.22f1".
type UnityVersion struct {
	major     int
	minor     int
	revision  int
	typ       byte
	increment int
}

// ParseUnityVersion parses the editor version format major.minor.revision
// followed by a release type letter and increment ("2019.4.31f1"). The
// type/increment suffix may be absent.
func ParseUnityVersion(body string) (UnityVersion, error) {
	parts := strings.SplitN(strings.TrimSpace(body), ".", 3)
	if len(parts) != 3 {
		return UnityVersion{}, errors.Errorf("invalid unity version %q", body)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return UnityVersion{}, errors.Errorf("invalid unity version %q", body)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return UnityVersion{}, errors.Errorf("invalid unity version %q", body)
	}

	rest := parts[2]
	cut := len(rest)
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			cut = i
			break
		}
	}
	revision, err := strconv.Atoi(rest[:cut])
	if err != nil {
		return UnityVersion{}, errors.Errorf("invalid unity version %q", body)
	}

	uv := UnityVersion{major: major, minor: minor, revision: revision}
	if cut < len(rest) {
		uv.typ = rest[cut]
		inc, err := strconv.Atoi(rest[cut+1:])
		if err != nil {
			return UnityVersion{}, errors.Errorf("invalid unity version %q", body)
		}
		uv.increment = inc
	}
	return uv, nil
}

func (u UnityVersion) Major() int    { return u.major }
func (u UnityVersion) Minor() int    { return u.minor }
func (u UnityVersion) Revision() int { return u.revision }

func (u UnityVersion) String() string {
	if u.typ == 0 {
		return fmt.Sprintf("%d.%d.%d", u.major, u.minor, u.revision)
	}
	return fmt.Sprintf("%d.%d.%d%c%d", u.major, u.minor, u.revision, u.typ, u.increment)
}

// PartialUnityVersion is the engine-compatibility constraint a package
// declares: a major or major.minor floor ("2019.4" admits 2019.4 and later).
type PartialUnityVersion struct {
	major    int
	minor    int
	hasMinor bool
}

// ParsePartialUnityVersion parses "2022" or "2022.3" forms.
func ParsePartialUnityVersion(body string) (PartialUnityVersion, error) {
	parts := strings.SplitN(strings.TrimSpace(body), ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return PartialUnityVersion{}, errors.Errorf("invalid unity range %q", body)
	}
	p := PartialUnityVersion{major: major}
	if len(parts) == 2 {
		minor, err := strconv.Atoi(parts[1])
		if err != nil {
			return PartialUnityVersion{}, errors.Errorf("invalid unity range %q", body)
		}
		p.minor = minor
		p.hasMinor = true
	}
	return p, nil
}

// SupportedBy reports whether an editor at version v meets this floor.
func (p PartialUnityVersion) SupportedBy(v UnityVersion) bool {
	if v.major != p.major {
		return v.major > p.major
	}
	if !p.hasMinor {
		return true
	}
	return v.minor >= p.minor
}

func (p PartialUnityVersion) String() string {
	if p.hasMinor {
		return fmt.Sprintf("%d.%d", p.major, p.minor)
	}
	return strconv.Itoa(p.major)
}
