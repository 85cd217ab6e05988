// Package vrcget manages VPM (VRChat Package Manager) projects: the
// vpm-manifest.json read/write model, project discovery, installed-package
// scanning, and transactional application of plans produced by the vps
// solver package.
package vrcget

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/CirnoV/vrc-get/vps"
)

// ManifestName is the manifest file name used by VPM projects, relative to
// the project's Packages directory.
const ManifestName = "vpm-manifest.json"

// Manifest models a project's vpm-manifest.json: the declared top-level
// dependency ranges and the locked, fully resolved graph. The solver reads
// it through the vps.ManifestView interface; writes happen only when a
// SafeWriter applies a finalized plan.
type Manifest struct {
	dependencies map[string]vps.Range
	locked       map[string]vps.LockedDependency
}

type rawManifest struct {
	Dependencies map[string]rawDependency `json:"dependencies"`
	Locked       map[string]rawLocked     `json:"locked"`
}

type rawDependency struct {
	Version string `json:"version"`
}

type rawLocked struct {
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// NewManifest returns an empty manifest, the state of a project that has
// never had a package installed.
func NewManifest() *Manifest {
	return &Manifest{
		dependencies: make(map[string]vps.Range),
		locked:       make(map[string]vps.LockedDependency),
	}
}

// ReadManifest decodes a vpm-manifest.json document.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var raw rawManifest
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "malformed manifest")
	}

	m := NewManifest()

	for name, d := range raw.Dependencies {
		rng, err := vps.ParseRange(d.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "dependency %s", name)
		}
		m.dependencies[name] = rng
	}

	for name, lk := range raw.Locked {
		version, err := vps.NewVersion(lk.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "locked package %s", name)
		}
		entry := vps.LockedDependency{Name: name, Version: version}
		if len(lk.Dependencies) > 0 {
			entry.Dependencies = make(map[string]vps.Range, len(lk.Dependencies))
			for dep, body := range lk.Dependencies {
				rng, err := vps.ParseRange(body)
				if err != nil {
					return nil, errors.Wrapf(err, "locked package %s, dependency %s", name, dep)
				}
				entry.Dependencies[dep] = rng
			}
		}
		m.locked[name] = entry
	}

	return m, nil
}

// Write encodes the manifest as indented JSON. Map keys serialize sorted,
// so repeated writes of the same state are byte-identical.
func (m *Manifest) Write(w io.Writer) error {
	raw := rawManifest{
		Dependencies: make(map[string]rawDependency, len(m.dependencies)),
		Locked:       make(map[string]rawLocked, len(m.locked)),
	}
	for name, rng := range m.dependencies {
		raw.Dependencies[name] = rawDependency{Version: rng.String()}
	}
	for name, lk := range m.locked {
		rl := rawLocked{Version: lk.Version.String()}
		if len(lk.Dependencies) > 0 {
			rl.Dependencies = make(map[string]string, len(lk.Dependencies))
			for dep, rng := range lk.Dependencies {
				rl.Dependencies[dep] = rng.String()
			}
		}
		raw.Locked[name] = rl
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return errors.Wrap(enc.Encode(raw), "encoding manifest")
}

// GetDependency returns the declared top-level range for name.
func (m *Manifest) GetDependency(name string) (vps.Range, bool) {
	r, ok := m.dependencies[name]
	return r, ok
}

// GetLocked returns the locked entry for name.
func (m *Manifest) GetLocked(name string) (vps.LockedDependency, bool) {
	lk, ok := m.locked[name]
	return lk, ok
}

// AllLocked returns every locked entry ordered by name.
func (m *Manifest) AllLocked() []vps.LockedDependency {
	names := make([]string, 0, len(m.locked))
	for name := range m.locked {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]vps.LockedDependency, 0, len(names))
	for _, name := range names {
		out = append(out, m.locked[name])
	}
	return out
}

// IsLocked reports whether name is present in the locked graph.
func (m *Manifest) IsLocked(name string) bool {
	_, ok := m.locked[name]
	return ok
}

var _ vps.ManifestView = (*Manifest)(nil)

func (m *Manifest) clone() *Manifest {
	c := NewManifest()
	for name, r := range m.dependencies {
		c.dependencies[name] = r
	}
	for name, lk := range m.locked {
		c.locked[name] = lk
	}
	return c
}

func (m *Manifest) addDependency(name string, r vps.Range) {
	m.dependencies[name] = r
}

func (m *Manifest) addLocked(p *vps.PackageInfo) {
	entry := vps.LockedDependency{Name: p.Name(), Version: p.Version()}
	if deps := p.VpmDependencies(); len(deps) > 0 {
		entry.Dependencies = make(map[string]vps.Range, len(deps))
		for dep, rng := range deps {
			entry.Dependencies[dep] = rng
		}
	}
	m.locked[p.Name()] = entry
}

func (m *Manifest) removePackage(name string) {
	delete(m.dependencies, name)
	delete(m.locked, name)
}
