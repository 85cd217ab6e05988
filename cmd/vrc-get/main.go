// Command vrc-get is a command line VPM package manager for Unity projects.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	vrcget "github.com/CirnoV/vrc-get"
)

type command interface {
	Name() string           // "foobar"
	Args() string           // "<baz> [quux...]"
	ShortHelp() string      // "Foo the first bar"
	LongHelp() string       // "Foo the first bar meeting the following conditions..."
	Register(*flag.FlagSet) // command-specific flags
	Run(*vrcget.Ctx, []string) error
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to get working directory", err)
		os.Exit(1)
	}
	c := &config{
		args:       os.Args,
		stderr:     os.Stderr,
		workingDir: wd,
	}
	os.Exit(c.run())
}

type config struct {
	workingDir string
	args       []string
	stderr     io.Writer
}

func (c *config) run() int {
	commands := []command{
		&addCommand{},
		&upgradeCommand{},
		&searchCommand{},
		&unityCommand{},
		&projectsCommand{},
		&versionCommand{},
	}

	usage := func() {
		fmt.Fprintln(c.stderr, "vrc-get is a tool for managing VPM packages in Unity projects")
		fmt.Fprintln(c.stderr)
		fmt.Fprintln(c.stderr, "Usage: vrc-get <command>")
		fmt.Fprintln(c.stderr)
		fmt.Fprintln(c.stderr, "Commands:")
		fmt.Fprintln(c.stderr)
		w := tabwriter.NewWriter(c.stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
		}
		w.Flush()
		fmt.Fprintln(c.stderr)
		fmt.Fprintln(c.stderr, "Use \"vrc-get help [command]\" for more information about a command.")
	}

	cmdName, printCommandHelp, exit := parseArgs(c.args)
	if exit {
		usage()
		return 1
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(c.stderr)
		verbose := fs.Bool("v", false, "enable verbose logging")

		cmd.Register(fs)

		fs.Usage = func() {
			fmt.Fprintf(c.stderr, "Usage: vrc-get %s %s\n", cmdName, cmd.Args())
			fmt.Fprintln(c.stderr)
			fmt.Fprintln(c.stderr, strings.TrimSpace(cmd.LongHelp()))
			fmt.Fprintln(c.stderr)
			if hasFlags(fs) {
				fmt.Fprintln(c.stderr, "Flags:")
				fmt.Fprintln(c.stderr)
				fs.PrintDefaults()
			}
		}

		if printCommandHelp {
			fs.Usage()
			return 1
		}

		if err := fs.Parse(c.args[2:]); err != nil {
			return 1
		}

		ctx := vrcget.NewContext(c.workingDir, *verbose)
		ctx.Logger.SetOutput(c.stderr)
		ctx.Logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

		if err := cmd.Run(ctx, fs.Args()); err != nil {
			fmt.Fprintf(c.stderr, "vrc-get: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(c.stderr, "vrc-get: %s: no such command\n", cmdName)
	usage()
	return 1
}

func parseArgs(args []string) (cmdName string, printCmdUsage bool, exit bool) {
	switch len(args) {
	case 0, 1:
		exit = true
	case 2:
		if args[1] == "help" || args[1] == "-h" || args[1] == "-help" || args[1] == "--help" {
			exit = true
			return
		}
		cmdName = args[1]
	default:
		if args[1] == "help" {
			cmdName = args[2]
			printCmdUsage = true
		} else {
			cmdName = args[1]
		}
	}
	return cmdName, printCmdUsage, exit
}

func hasFlags(fs *flag.FlagSet) bool {
	var has bool
	fs.VisitAll(func(*flag.Flag) {
		has = true
	})
	return has
}

// repoFlags collects repeated -repo flags.
type repoFlags []string

func (r *repoFlags) String() string {
	return strings.Join(*r, ",")
}

func (r *repoFlags) Set(value string) error {
	*r = append(*r, value)
	return nil
}
