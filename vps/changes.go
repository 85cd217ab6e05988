package vps

import (
	"context"

	"github.com/pkg/errors"
)

// RemoveReason tags why a locked package is slated for removal.
type RemoveReason uint8

const (
	// RemoveReasonLegacy marks a package superseded by a newly installed
	// package that lists it as legacy.
	RemoveReasonLegacy RemoveReason = iota
	// RemoveReasonUnused marks a package no longer reachable from any
	// top-level dependency.
	RemoveReasonUnused
)

func (r RemoveReason) String() string {
	switch r {
	case RemoveReasonLegacy:
		return "legacy"
	case RemoveReasonUnused:
		return "unused"
	default:
		return "unknown"
	}
}

// DependencyAddition is a staged top-level manifest edit.
type DependencyAddition struct {
	Name  string
	Range Range
}

// Removal is a staged deletion of a locked package.
type Removal struct {
	Name   string
	Reason RemoveReason
}

// Conflict records a dependency name that two or more requesting packages
// need at mutually unsatisfiable versions. Requesters are in first-seen
// order. Conflicts do not fail planning; the caller adjudicates.
type Conflict struct {
	Name       string
	Requesters []string
}

// PendingProjectChanges is the finalized plan: an in-memory diff between the
// project's current and desired manifest/lock state. It is produced exactly
// once by a ChangesBuilder finalizer and is immutable from then on; applying
// or discarding it is the caller's business.
type PendingProjectChanges struct {
	dependencies []DependencyAddition
	locked       []*PackageInfo
	removals     []Removal
	conflicts    []Conflict
}

// DependencyAdditions returns staged top-level declaration edits, in staging order.
func (c *PendingProjectChanges) DependencyAdditions() []DependencyAddition {
	return c.dependencies
}

// LockedAdditions returns the packages to install into the locked graph, in
// resolution order.
func (c *PendingProjectChanges) LockedAdditions() []*PackageInfo {
	return c.locked
}

// Removals returns the locked packages to delete, with reasons.
func (c *PendingProjectChanges) Removals() []Removal {
	return c.removals
}

// Conflicts returns the advisory conflict entries, in first-seen order.
func (c *PendingProjectChanges) Conflicts() []Conflict {
	return c.conflicts
}

// IsEmpty reports whether applying the plan would change nothing.
func (c *PendingProjectChanges) IsEmpty() bool {
	return len(c.dependencies) == 0 && len(c.locked) == 0 &&
		len(c.removals) == 0 && len(c.conflicts) == 0
}

// ChangesBuilder accumulates resolver output and manifest edits, then
// finalizes them into a PendingProjectChanges. Each builder finalizes at
// most once; further use panics.
type ChangesBuilder struct {
	dependencies []DependencyAddition
	locked       []*PackageInfo
	removals     []Removal
	conflicts    []Conflict
	finalized    bool
}

// NewChangesBuilder returns an empty builder.
func NewChangesBuilder() *ChangesBuilder {
	return &ChangesBuilder{}
}

func (b *ChangesBuilder) guard() {
	if b.finalized {
		panic("vps: ChangesBuilder used after finalization")
	}
}

// AddToDependencies stages a top-level declaration edit. A later stage for
// the same name overwrites the earlier one in place.
func (b *ChangesBuilder) AddToDependencies(name string, r Range) {
	b.guard()
	for i := range b.dependencies {
		if b.dependencies[i].Name == name {
			b.dependencies[i].Range = r
			return
		}
	}
	b.dependencies = append(b.dependencies, DependencyAddition{Name: name, Range: r})
}

// InstallToLocked stages a package for installation into the locked graph.
func (b *ChangesBuilder) InstallToLocked(p *PackageInfo) {
	b.guard()
	b.locked = append(b.locked, p)
}

// Remove stages deletion of a locked package.
func (b *ChangesBuilder) Remove(name string, reason RemoveReason) {
	b.guard()
	b.removals = append(b.removals, Removal{Name: name, Reason: reason})
}

// ConflictMultiple records a conflicted dependency name with the packages
// requesting it.
func (b *ChangesBuilder) ConflictMultiple(name string, requesters []string) {
	b.guard()
	b.conflicts = append(b.conflicts, Conflict{Name: name, Requesters: requesters})
}

// BuildNoResolve finalizes into a plan carrying only the staged top-level
// edits. Used when nothing needed dependency graph work.
func (b *ChangesBuilder) BuildNoResolve() *PendingProjectChanges {
	b.guard()
	b.finalized = true
	return &PendingProjectChanges{dependencies: b.dependencies}
}

// BuildResolve finalizes the full plan. It re-reads the project state
// through the Project capability and drops staged entries the current state
// already satisfies, so a plan finalized after a concurrent external edit
// stays internally consistent. This is the only finalizer that can block.
func (b *ChangesBuilder) BuildResolve(ctx context.Context, project Project) (*PendingProjectChanges, error) {
	b.guard()
	b.finalized = true

	manifest, err := project.Reload(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "re-reading project state")
	}

	changes := &PendingProjectChanges{conflicts: b.conflicts}

	for _, da := range b.dependencies {
		if staged, ok := da.Range.AsSingleVersion(); ok {
			if cur, found := manifest.GetDependency(da.Name); found {
				if v, single := cur.AsSingleVersion(); single && !v.LessThan(staged) {
					continue
				}
			}
		}
		changes.dependencies = append(changes.dependencies, da)
	}

	for _, p := range b.locked {
		if cur, ok := manifest.GetLocked(p.Name()); ok && !cur.Version.LessThan(p.Version()) {
			continue
		}
		changes.locked = append(changes.locked, p)
	}

	for _, rm := range b.removals {
		if !manifest.IsLocked(rm.Name) {
			continue
		}
		changes.removals = append(changes.removals, rm)
	}

	return changes, nil
}
