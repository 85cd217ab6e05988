package vps

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// PackageInfo is an immutable candidate package produced by a PackageSource
// query: its identity, its own dependency declarations, the engine floor it
// requires, and the package names it supersedes. Candidates live only for
// the duration of the planning call that obtained them.
type PackageInfo struct {
	name            string
	version         Version
	displayName     string
	vpmDependencies map[string]Range
	unity           *PartialUnityVersion
	legacyPackages  []string
	source          string
}

// NewPackageInfo assembles a candidate directly. Fixture and test use;
// production candidates come from ParsePackageManifest.
func NewPackageInfo(name string, version Version, deps map[string]Range, opts ...PackageOption) *PackageInfo {
	p := &PackageInfo{
		name:            name,
		version:         version,
		vpmDependencies: deps,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// PackageOption configures optional PackageInfo fields at construction.
type PackageOption func(*PackageInfo)

// WithLegacyPackages declares the package names this candidate supersedes.
func WithLegacyPackages(names ...string) PackageOption {
	return func(p *PackageInfo) { p.legacyPackages = names }
}

// WithUnity declares the engine floor the candidate requires.
func WithUnity(u PartialUnityVersion) PackageOption {
	return func(p *PackageInfo) { p.unity = &u }
}

// WithSource records the originating repository identifier.
func WithSource(source string) PackageOption {
	return func(p *PackageInfo) { p.source = source }
}

func (p *PackageInfo) Name() string     { return p.name }
func (p *PackageInfo) Version() Version { return p.version }

// DisplayName returns the human-facing name, falling back to the package name.
func (p *PackageInfo) DisplayName() string {
	if p.displayName == "" {
		return p.name
	}
	return p.displayName
}

// VpmDependencies returns the declared dependency ranges by package name.
// Callers must not mutate the returned map.
func (p *PackageInfo) VpmDependencies() map[string]Range { return p.vpmDependencies }

// Unity returns the engine floor, or nil when the package runs anywhere.
func (p *PackageInfo) Unity() *PartialUnityVersion { return p.unity }

// LegacyPackages returns the names this candidate supersedes.
func (p *PackageInfo) LegacyPackages() []string { return p.legacyPackages }

// Source returns the identifier of the repository the candidate came from.
func (p *PackageInfo) Source() string { return p.source }

// SupportsUnity reports whether the candidate may be selected for a project
// on the given editor version. A nil project version skips the check.
func (p *PackageInfo) SupportsUnity(v *UnityVersion) bool {
	if p.unity == nil || v == nil {
		return true
	}
	return p.unity.SupportedBy(*v)
}

type rawPackageManifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	DisplayName     string            `json:"displayName,omitempty"`
	Unity           string            `json:"unity,omitempty"`
	VpmDependencies map[string]string `json:"vpmDependencies,omitempty"`
	LegacyPackages  []string          `json:"legacyPackages,omitempty"`
}

// ParsePackageManifest parses a package.json manifest into a candidate,
// tagging it with the originating repository identifier.
func ParsePackageManifest(data []byte, source string) (*PackageInfo, error) {
	var raw rawPackageManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "malformed package manifest")
	}
	return packageFromRaw(raw, source)
}

func packageFromRaw(raw rawPackageManifest, source string) (*PackageInfo, error) {
	if raw.Name == "" {
		return nil, errors.New("package manifest has no name")
	}
	version, err := NewVersion(raw.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "package %s", raw.Name)
	}

	p := &PackageInfo{
		name:        raw.Name,
		version:     version,
		displayName: raw.DisplayName,
		source:      source,
	}

	if len(raw.VpmDependencies) > 0 {
		p.vpmDependencies = make(map[string]Range, len(raw.VpmDependencies))
		for dep, body := range raw.VpmDependencies {
			r, err := ParseRange(body)
			if err != nil {
				return nil, errors.Wrapf(err, "package %s, dependency %s", raw.Name, dep)
			}
			p.vpmDependencies[dep] = r
		}
	}

	if raw.Unity != "" {
		u, err := ParsePartialUnityVersion(raw.Unity)
		if err != nil {
			return nil, errors.Wrapf(err, "package %s", raw.Name)
		}
		p.unity = &u
	}

	p.legacyPackages = raw.LegacyPackages
	return p, nil
}
