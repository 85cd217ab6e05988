package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	vrcget "github.com/CirnoV/vrc-get"
	"github.com/CirnoV/vrc-get/internal/registry"
	"github.com/CirnoV/vrc-get/vps"
)

var defaultRepositories = []string{
	"https://packages.vrchat.com/official?download",
	"https://packages.vrchat.com/curated?download",
}

type addCommand struct {
	repos      repoFlags
	prerelease bool
	dryRun     bool
}

func (cmd *addCommand) Name() string { return "add" }
func (cmd *addCommand) Args() string { return "<package>[@<version>]..." }
func (cmd *addCommand) ShortHelp() string {
	return "Add packages to the project"
}
func (cmd *addCommand) LongHelp() string {
	return `
Add resolves the requested packages and their transitive dependencies
against the configured repositories, then records them in the project's
vpm-manifest.json. A bare package name selects the newest compatible
version; name@version pins an exact one.
`
}

func (cmd *addCommand) Register(fs *flag.FlagSet) {
	fs.Var(&cmd.repos, "repo", "additional repository URL or file path (repeatable)")
	fs.BoolVar(&cmd.prerelease, "prerelease", false, "allow prerelease package versions")
	fs.BoolVar(&cmd.dryRun, "dry-run", false, "print the plan without applying it")
}

func (cmd *addCommand) Run(ctx *vrcget.Ctx, args []string) error {
	return planAndApply(ctx, args, cmd.repos, vps.InstallToDependencies, cmd.prerelease, cmd.dryRun)
}

func planAndApply(ctx *vrcget.Ctx, args []string, repos []string, op vps.AddPackageOperation, prerelease, dryRun bool) error {
	if len(args) == 0 {
		return errors.New("no packages named")
	}

	project, err := ctx.LoadProject()
	if err != nil {
		return err
	}

	bg := context.Background()
	collection := registry.NewCollection(bg, ctx.Logger)
	defer collection.Close()

	if err := collection.LoadSources(bg, append(append([]string(nil), defaultRepositories...), repos...)); err != nil {
		return err
	}

	requested, err := resolveRequests(bg, collection, project, args, prerelease)
	if err != nil {
		return err
	}

	changes, err := vps.PlanAddPackages(bg, ctx.Logger, project, collection, requested, op, prerelease)
	if err != nil {
		return err
	}

	printPlan(changes)

	if dryRun {
		return nil
	}
	return vrcget.NewSafeWriter(ctx.Logger).Write(project, changes)
}

// resolveRequests turns "name" / "name@version" arguments into concrete
// candidates via the collection.
func resolveRequests(ctx context.Context, collection *registry.Collection, project *vrcget.Project, args []string, prerelease bool) ([]*vps.PackageInfo, error) {
	requested := make([]*vps.PackageInfo, 0, len(args))

	for _, arg := range args {
		name := arg
		want := vps.AnyRange()
		if i := strings.LastIndex(arg, "@"); i > 0 {
			var err error
			want, err = vps.ParseRange(arg[i+1:])
			if err != nil {
				return nil, err
			}
			name = arg[:i]
		}

		candidates, err := collection.FindBestCandidates(ctx, name, want, project.UnityVersion(), prerelease)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, errors.Errorf("package %s not found in the configured repositories", arg)
		}
		requested = append(requested, candidates[0])
	}

	return requested, nil
}

func printPlan(changes *vps.PendingProjectChanges) {
	if changes.IsEmpty() {
		fmt.Println("Already up to date, nothing to change.")
		return
	}

	for _, p := range changes.LockedAdditions() {
		fmt.Printf("  install %s %s\n", p.Name(), p.Version())
	}
	for _, rm := range changes.Removals() {
		fmt.Printf("  remove  %s (%s)\n", rm.Name, rm.Reason)
	}
	for _, c := range changes.Conflicts() {
		fmt.Printf("  CONFLICT on %s, wanted by %s\n", c.Name, strings.Join(c.Requesters, ", "))
	}
}
