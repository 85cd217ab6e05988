package main

import (
	"flag"

	vrcget "github.com/CirnoV/vrc-get"
	"github.com/CirnoV/vrc-get/vps"
)

type upgradeCommand struct {
	repos      repoFlags
	prerelease bool
	dryRun     bool
}

func (cmd *upgradeCommand) Name() string { return "upgrade" }
func (cmd *upgradeCommand) Args() string { return "<package>[@<version>]..." }
func (cmd *upgradeCommand) ShortHelp() string {
	return "Upgrade packages already locked in the project"
}
func (cmd *upgradeCommand) LongHelp() string {
	return `
Upgrade raises the locked version of packages the project already has.
Naming a package that is not locked is an error; requesting a version at
or below the locked one is a no-op.
`
}

func (cmd *upgradeCommand) Register(fs *flag.FlagSet) {
	fs.Var(&cmd.repos, "repo", "additional repository URL or file path (repeatable)")
	fs.BoolVar(&cmd.prerelease, "prerelease", false, "allow prerelease package versions")
	fs.BoolVar(&cmd.dryRun, "dry-run", false, "print the plan without applying it")
}

func (cmd *upgradeCommand) Run(ctx *vrcget.Ctx, args []string) error {
	return planAndApply(ctx, args, cmd.repos, vps.UpgradeLocked, cmd.prerelease, cmd.dryRun)
}
