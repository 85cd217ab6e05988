package main

import (
	"flag"
	"fmt"
	"runtime"

	vrcget "github.com/CirnoV/vrc-get"
)

// version is overridden at build time via -ldflags.
var version = "devel"

type versionCommand struct{}

func (cmd *versionCommand) Name() string      { return "version" }
func (cmd *versionCommand) Args() string      { return "" }
func (cmd *versionCommand) ShortHelp() string { return "Display version" }
func (cmd *versionCommand) LongHelp() string {
	return `
Display version of this application.
`
}

func (cmd *versionCommand) Register(fs *flag.FlagSet) {}

func (cmd *versionCommand) Run(ctx *vrcget.Ctx, args []string) error {
	fmt.Printf("vrc-get %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
	return nil
}
