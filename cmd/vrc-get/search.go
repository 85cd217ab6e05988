package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	vrcget "github.com/CirnoV/vrc-get"
	"github.com/CirnoV/vrc-get/internal/registry"
)

type searchCommand struct {
	repos repoFlags
}

func (cmd *searchCommand) Name() string { return "search" }
func (cmd *searchCommand) Args() string { return "<name-prefix>" }
func (cmd *searchCommand) ShortHelp() string {
	return "Search the repositories by package name prefix"
}
func (cmd *searchCommand) LongHelp() string {
	return `
Search lists every package in the configured repositories whose name
starts with the given prefix, showing the newest known version of each.
`
}

func (cmd *searchCommand) Register(fs *flag.FlagSet) {
	fs.Var(&cmd.repos, "repo", "additional repository URL or file path (repeatable)")
}

func (cmd *searchCommand) Run(ctx *vrcget.Ctx, args []string) error {
	if len(args) != 1 {
		return errors.New("search takes exactly one name prefix")
	}

	bg := context.Background()
	collection := registry.NewCollection(bg, ctx.Logger)
	defer collection.Close()

	if err := collection.LoadSources(bg, append(append([]string(nil), defaultRepositories...), cmd.repos...)); err != nil {
		return err
	}

	results := collection.Search(args[0])
	if len(results) == 0 {
		fmt.Println("No packages found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name(), p.Version(), p.DisplayName())
	}
	return w.Flush()
}
