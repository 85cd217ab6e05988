package vps

import "context"

// PackageSource is the collaborator that answers candidate queries during
// resolution. Implementations return candidates best-first (highest
// compatible version leading); the solver always takes the first and never
// backtracks across candidates from one query.
type PackageSource interface {
	// FindBestCandidates returns the candidates for name satisfying the
	// range, the project's editor version, and the prerelease policy,
	// ordered best-first. An empty result means the name cannot be
	// resolved under those constraints.
	FindBestCandidates(ctx context.Context, name string, r Range, unity *UnityVersion, allowPrerelease bool) ([]*PackageInfo, error)
}

// LockedDependency is one entry of a project's resolved dependency graph:
// the exact version materialized in the project plus that version's own
// declared dependencies.
type LockedDependency struct {
	Name         string
	Version      Version
	Dependencies map[string]Range
}

// ManifestView is the read-only view of a project manifest the solver
// consumes. Mutation happens only through a finalized PendingProjectChanges
// applied by the caller.
type ManifestView interface {
	// GetDependency returns the declared top-level range for name.
	GetDependency(name string) (Range, bool)
	// GetLocked returns the locked entry for name.
	GetLocked(name string) (LockedDependency, bool)
	// AllLocked returns every locked entry, ordered by name.
	AllLocked() []LockedDependency
	// IsLocked reports whether name is present in the locked graph.
	IsLocked(name string) bool
}

// Project is the project-side capability planning runs against. Reload
// re-reads the authoritative manifest state, so a finalized plan reflects
// concurrent external edits rather than the state resolution started from.
type Project interface {
	Manifest() ManifestView
	// UnityVersion returns the editor version the project targets, or nil
	// when unknown.
	UnityVersion() *UnityVersion
	Reload(ctx context.Context) (ManifestView, error)
}
