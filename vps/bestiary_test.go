package vps

// Shared fixtures for solver tests: a literal in-memory package source and
// project, assembled from compact "name version" strings.

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.DebugLevel)
	return l
}

// nvSplit splits "name version" into its parts, panicking on malformed
// fixture strings.
func nvSplit(info string) (name, version string) {
	s := strings.SplitN(info, " ", 2)
	if len(s) < 2 {
		panic(fmt.Sprintf("malformed name/version fixture string %q", info))
	}
	return s[0], s[1]
}

// mkPkg builds a candidate from "name version" plus "dep range" strings.
func mkPkg(info string, deps ...string) *PackageInfo {
	name, version := nvSplit(info)
	depmap := make(map[string]Range, len(deps))
	for _, d := range deps {
		dn, dr := nvSplit(d)
		depmap[dn] = MustRange(dr)
	}
	return NewPackageInfo(name, MustVersion(version), depmap)
}

// mkLegacyPkg is mkPkg for a candidate superseding older names.
func mkLegacyPkg(info string, legacy []string, deps ...string) *PackageInfo {
	p := mkPkg(info, deps...)
	p.legacyPackages = legacy
	return p
}

// fixSource serves candidates from a literal set, best-first.
type fixSource struct {
	pkgs []*PackageInfo
}

func mkSource(pkgs ...*PackageInfo) fixSource {
	return fixSource{pkgs: pkgs}
}

func (s fixSource) FindBestCandidates(_ context.Context, name string, r Range, unity *UnityVersion, allowPrerelease bool) ([]*PackageInfo, error) {
	var out []*PackageInfo
	for _, p := range s.pkgs {
		if p.Name() != name {
			continue
		}
		if !admits(r, p.Version(), allowPrerelease) {
			continue
		}
		if !p.SupportsUnity(unity) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Version().GreaterThan(out[j].Version())
	})
	return out, nil
}

// fixManifest is an in-memory ManifestView assembled directly.
type fixManifest struct {
	deps   map[string]Range
	locked map[string]LockedDependency
}

func mkManifest() *fixManifest {
	return &fixManifest{
		deps:   make(map[string]Range),
		locked: make(map[string]LockedDependency),
	}
}

// dep declares a top-level "name range" want.
func (m *fixManifest) dep(info string) *fixManifest {
	n, r := nvSplit(info)
	m.deps[n] = MustRange(r)
	return m
}

// lock records "name version" in the locked graph, with "dep range" edges.
func (m *fixManifest) lock(info string, deps ...string) *fixManifest {
	n, v := nvSplit(info)
	entry := LockedDependency{Name: n, Version: MustVersion(v)}
	if len(deps) > 0 {
		entry.Dependencies = make(map[string]Range, len(deps))
		for _, d := range deps {
			dn, dr := nvSplit(d)
			entry.Dependencies[dn] = MustRange(dr)
		}
	}
	m.locked[n] = entry
	return m
}

func (m *fixManifest) GetDependency(name string) (Range, bool) {
	r, ok := m.deps[name]
	return r, ok
}

func (m *fixManifest) GetLocked(name string) (LockedDependency, bool) {
	lk, ok := m.locked[name]
	return lk, ok
}

func (m *fixManifest) AllLocked() []LockedDependency {
	names := make([]string, 0, len(m.locked))
	for name := range m.locked {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]LockedDependency, 0, len(names))
	for _, name := range names {
		out = append(out, m.locked[name])
	}
	return out
}

func (m *fixManifest) IsLocked(name string) bool {
	_, ok := m.locked[name]
	return ok
}

// fixProject is a Project whose reload returns its manifest unchanged,
// simulating the absence of concurrent edits.
type fixProject struct {
	m     *fixManifest
	unity *UnityVersion
}

func mkProject(m *fixManifest) *fixProject {
	return &fixProject{m: m}
}

func (p *fixProject) Manifest() ManifestView      { return p.m }
func (p *fixProject) UnityVersion() *UnityVersion { return p.unity }
func (p *fixProject) Reload(context.Context) (ManifestView, error) {
	return p.m, nil
}

// formatPlan renders a plan deterministically for comparisons.
func formatPlan(c *PendingProjectChanges) string {
	var b strings.Builder
	for _, da := range c.DependencyAdditions() {
		fmt.Fprintf(&b, "dep %s %s\n", da.Name, da.Range)
	}
	for _, p := range c.LockedAdditions() {
		fmt.Fprintf(&b, "lock %s %s\n", p.Name(), p.Version())
	}
	for _, rm := range c.Removals() {
		fmt.Fprintf(&b, "remove %s %s\n", rm.Name, rm.Reason)
	}
	for _, cf := range c.Conflicts() {
		fmt.Fprintf(&b, "conflict %s [%s]\n", cf.Name, strings.Join(cf.Requesters, " "))
	}
	return b.String()
}
