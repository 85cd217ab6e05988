package vps

import (
	"context"
	"testing"
)

func plan(t *testing.T, project *fixProject, source fixSource, op AddPackageOperation, requested ...*PackageInfo) *PendingProjectChanges {
	t.Helper()
	changes, err := PlanAddPackages(context.Background(), testLogger(), project, source, requested, op, false)
	if err != nil {
		t.Fatalf("PlanAddPackages errored: %s", err)
	}
	return changes
}

func TestPlanFreshInstall(t *testing.T) {
	project := mkProject(mkManifest())
	source := mkSource(mkPkg("com.example.b 1.2.0"))
	a := mkPkg("com.example.a 1.0.0", "com.example.b ^1.0.0")

	changes := plan(t, project, source, InstallToDependencies, a)
	want := "dep com.example.a 1.0.0\n" +
		"lock com.example.a 1.0.0\n" +
		"lock com.example.b 1.2.0\n"
	if got := formatPlan(changes); got != want {
		t.Errorf("plan mismatch:\ngot:\n%swant:\n%s", got, want)
	}
}

func TestPlanInstallIsIdempotent(t *testing.T) {
	m := mkManifest().
		dep("com.example.a 1.0.0").
		lock("com.example.a 1.0.0")
	project := mkProject(m)
	a := mkPkg("com.example.a 1.0.0")

	changes := plan(t, project, mkSource(), InstallToDependencies, a)
	if !changes.IsEmpty() {
		t.Errorf("reinstalling the current version produced changes:\n%s", formatPlan(changes))
	}
}

func TestPlanUpgradeToOlderIsNoop(t *testing.T) {
	m := mkManifest().
		dep("com.example.a ^1.0.0").
		lock("com.example.a 1.5.0")
	project := mkProject(m)
	a := mkPkg("com.example.a 1.2.0")

	changes := plan(t, project, mkSource(), UpgradeLocked, a)
	if !changes.IsEmpty() {
		t.Errorf("downgrade request produced changes:\n%s", formatPlan(changes))
	}
}

func TestPlanUpgradeNonLockedFails(t *testing.T) {
	project := mkProject(mkManifest())
	a := mkPkg("com.example.a 2.0.0")

	_, err := PlanAddPackages(context.Background(), testLogger(), project, mkSource(), []*PackageInfo{a}, UpgradeLocked, false)
	ne, ok := err.(*UpgradingNonLockedPackageError)
	if !ok {
		t.Fatalf("got error %v, want *UpgradingNonLockedPackageError", err)
	}
	if ne.PackageName != "com.example.a" {
		t.Errorf("PackageName = %q, want %q", ne.PackageName, "com.example.a")
	}
}

func TestPlanUpgradeLocked(t *testing.T) {
	m := mkManifest().
		dep("com.example.a ^1.0.0").
		lock("com.example.a 1.0.0", "com.example.b ^1.0.0").
		lock("com.example.b 1.0.0")
	project := mkProject(m)
	source := mkSource(mkPkg("com.example.b 1.9.0"))
	a := mkPkg("com.example.a 1.5.0", "com.example.b ^1.5.0")

	changes := plan(t, project, source, UpgradeLocked, a)
	// Upgrades never touch the top-level declarations.
	want := "lock com.example.a 1.5.0\n" +
		"lock com.example.b 1.9.0\n"
	if got := formatPlan(changes); got != want {
		t.Errorf("plan mismatch:\ngot:\n%swant:\n%s", got, want)
	}
}

func TestPlanInstallRaisesDeclaration(t *testing.T) {
	// Installing a version above the declared exact one raises the
	// declaration in place.
	m := mkManifest().
		dep("com.example.a 1.0.0").
		lock("com.example.a 1.0.0")
	project := mkProject(m)
	a := mkPkg("com.example.a 2.0.0")

	changes := plan(t, project, mkSource(), InstallToDependencies, a)
	want := "dep com.example.a 2.0.0\n" +
		"lock com.example.a 2.0.0\n"
	if got := formatPlan(changes); got != want {
		t.Errorf("plan mismatch:\ngot:\n%swant:\n%s", got, want)
	}
}

func TestPlanConflictingRequests(t *testing.T) {
	project := mkProject(mkManifest())
	source := mkSource(
		mkPkg("com.example.z 1.0.0"),
		mkPkg("com.example.z 2.0.0"),
	)
	x := mkPkg("com.example.x 1.0.0", "com.example.z 1.0.0")
	y := mkPkg("com.example.y 1.0.0", "com.example.z 2.0.0")

	changes := plan(t, project, source, InstallToDependencies, x, y)
	want := "dep com.example.x 1.0.0\n" +
		"dep com.example.y 1.0.0\n" +
		"lock com.example.x 1.0.0\n" +
		"lock com.example.y 1.0.0\n" +
		"conflict com.example.z [com.example.x com.example.y]\n"
	if got := formatPlan(changes); got != want {
		t.Errorf("plan mismatch:\ngot:\n%swant:\n%s", got, want)
	}
}

func TestPlanLegacyRemoval(t *testing.T) {
	m := mkManifest().
		dep("com.example.old-sdk ^1.0.0").
		lock("com.example.old-sdk 1.0.0")
	project := mkProject(m)
	sdk := mkLegacyPkg("com.example.sdk 2.0.0", []string{"com.example.old-sdk", "com.example.never-installed"})

	changes := plan(t, project, mkSource(), InstallToDependencies, sdk)
	// Only locked legacy names become removals.
	want := "dep com.example.sdk 2.0.0\n" +
		"lock com.example.sdk 2.0.0\n" +
		"remove com.example.old-sdk legacy\n"
	if got := formatPlan(changes); got != want {
		t.Errorf("plan mismatch:\ngot:\n%swant:\n%s", got, want)
	}
}

func TestPlanMissingDependencyFails(t *testing.T) {
	project := mkProject(mkManifest())
	a := mkPkg("com.example.a 1.0.0", "com.example.missing ^1.0.0")

	_, err := PlanAddPackages(context.Background(), testLogger(), project, mkSource(), []*PackageInfo{a}, InstallToDependencies, false)
	nf, ok := err.(*DependencyNotFoundError)
	if !ok {
		t.Fatalf("got error %v, want *DependencyNotFoundError", err)
	}
	if nf.DependencyName != "com.example.missing" {
		t.Errorf("DependencyName = %q, want %q", nf.DependencyName, "com.example.missing")
	}
}

func TestPlanReusesLockedTransitive(t *testing.T) {
	m := mkManifest().lock("com.example.b 1.0.5")
	project := mkProject(m)
	a := mkPkg("com.example.a 1.0.0", "com.example.b ^1.0.0")

	changes := plan(t, project, mkSource(), InstallToDependencies, a)
	want := "dep com.example.a 1.0.0\n" +
		"lock com.example.a 1.0.0\n"
	if got := formatPlan(changes); got != want {
		t.Errorf("plan mismatch:\ngot:\n%swant:\n%s", got, want)
	}
}

func TestPlanPrereleasePolicy(t *testing.T) {
	project := mkProject(mkManifest())
	source := mkSource(
		mkPkg("com.example.b 1.0.0"),
		mkPkg("com.example.b 1.1.0-beta.1"),
	)
	a := mkPkg("com.example.a 1.0.0", "com.example.b ^1.0.0")

	changes := plan(t, project, source, InstallToDependencies, a)
	locked := changes.LockedAdditions()
	if len(locked) != 2 || locked[1].Version().String() != "1.0.0" {
		t.Fatalf("without prereleases enabled, got:\n%s", formatPlan(changes))
	}

	changes, err := PlanAddPackages(context.Background(), testLogger(), project, source, []*PackageInfo{a}, InstallToDependencies, true)
	if err != nil {
		t.Fatalf("PlanAddPackages errored: %s", err)
	}
	locked = changes.LockedAdditions()
	if len(locked) != 2 || locked[1].Version().String() != "1.1.0-beta.1" {
		t.Fatalf("with prereleases enabled, got:\n%s", formatPlan(changes))
	}
}
