package vps

import (
	"context"

	"github.com/sirupsen/logrus"
)

// AddPackageOperation selects how requested packages interact with the
// project manifest.
type AddPackageOperation uint8

const (
	// InstallToDependencies adds or raises the top-level declaration for
	// each requested package and installs it (plus transitive needs) into
	// the locked graph unless a newer version is already locked.
	InstallToDependencies AddPackageOperation = iota
	// UpgradeLocked raises the locked version of packages that are already
	// locked. Requesting a non-locked package is an error; requesting a
	// version at or below the locked one is a silent no-op.
	UpgradeLocked
)

func (op AddPackageOperation) String() string {
	switch op {
	case InstallToDependencies:
		return "install"
	case UpgradeLocked:
		return "upgrade"
	default:
		return "unknown"
	}
}

// PlanAddPackages computes the transition plan for adding or upgrading the
// requested packages. It never touches the project itself: the caller
// receives either a complete, internally consistent plan to apply or
// discard, or an error and nothing else. Callers must serialize planning
// per project; the manifest is a single-writer resource.
func PlanAddPackages(ctx context.Context, l *logrus.Logger, project Project, source PackageSource, requested []*PackageInfo, op AddPackageOperation, allowPrerelease bool) (*PendingProjectChanges, error) {
	manifest := project.Manifest()
	changes := NewChangesBuilder()

	// A request enters the adding set only if no locked version for its
	// name is at or above the requested version.
	adding := make([]*PackageInfo, 0, len(requested))

	for _, request := range requested {
		switch op {
		case UpgradeLocked:
			if !manifest.IsLocked(request.Name()) {
				return nil, &UpgradingNonLockedPackageError{PackageName: request.Name()}
			}

		default:
			addToDependencies := true
			if declared, ok := manifest.GetDependency(request.Name()); ok {
				if v, single := declared.AsSingleVersion(); single && !v.LessThan(request.Version()) {
					addToDependencies = false
				}
			}
			if addToDependencies {
				if l.Level >= logrus.DebugLevel {
					l.WithField("name", request.Name()).Debug("Adding package to dependencies")
				}
				changes.AddToDependencies(request.Name(), RangeForVersion(request.Version()))
			}
		}

		if lk, ok := manifest.GetLocked(request.Name()); ok && !lk.Version.LessThan(request.Version()) {
			if l.Level >= logrus.DebugLevel {
				l.WithFields(logrus.Fields{
					"name":      request.Name(),
					"requested": request.Version().String(),
					"locked":    lk.Version.String(),
				}).Debug("Package already locked at same or newer version")
			}
			continue
		}
		adding = append(adding, request)
	}

	if len(adding) == 0 {
		// Nothing new to install; no graph work needed.
		return changes.BuildNoResolve(), nil
	}

	result, err := collectAddingPackages(ctx, l, manifest, project.UnityVersion(), source, adding, allowPrerelease)
	if err != nil {
		return nil, err
	}

	for _, p := range result.newPackages {
		changes.InstallToLocked(p)
	}

	for _, c := range result.conflicts {
		changes.ConflictMultiple(c.Name, c.Requesters)
	}

	for _, name := range result.foundLegacyPackages {
		if !manifest.IsLocked(name) {
			continue
		}
		changes.Remove(name, RemoveReasonLegacy)
	}

	return changes.BuildResolve(ctx, project)
}
