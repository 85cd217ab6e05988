package vps

import "fmt"

// Planning failures are typed so callers can react per kind with errors.As.
// The set is open; new kinds may appear, so callers should treat anything
// unrecognized as a generic failure.

// DependencyNotFoundError reports that some package in the transitive
// closure - the requested one or any dependency - has no candidate
// satisfying its range, engine, and prerelease constraints. It aborts the
// whole planning call; no partial plan survives it.
type DependencyNotFoundError struct {
	DependencyName string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("package %s (maybe dependencies of the package) not found", e.DependencyName)
}

// UpgradingNonLockedPackageError reports an upgrade request for a package
// absent from the locked graph. Upgrades are defined only relative to an
// existing locked entry.
type UpgradingNonLockedPackageError struct {
	PackageName string
}

func (e *UpgradingNonLockedPackageError) Error() string {
	return fmt.Sprintf("package %s is not locked, so it cannot be upgraded", e.PackageName)
}
