package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"

	vrcget "github.com/CirnoV/vrc-get"
	"github.com/CirnoV/vrc-get/internal/installstore"
	"github.com/CirnoV/vrc-get/internal/unityprobe"
)

type unityCommand struct {
	storePath string
}

func (cmd *unityCommand) Name() string { return "unity" }
func (cmd *unityCommand) Args() string {
	return "list | add <path> | remove <id> | sync [hubpath...]"
}
func (cmd *unityCommand) ShortHelp() string {
	return "Manage known Unity editor installations"
}
func (cmd *unityCommand) LongHelp() string {
	return `
Unity manages the store of editor installations vrc-get knows about.
"add" probes the binary at the given path for its version before
recording it; "list" prints the records; "remove" deletes one by id.
"sync" reconciles the store with the filesystem and with the editor
paths the Unity Hub reports: records whose binary no longer exists are
dropped, and hub-reported editors not yet on record are probed and
added.
`
}

func (cmd *unityCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.storePath, "store", "", "path of the environment database")
}

func (cmd *unityCommand) Run(ctx *vrcget.Ctx, args []string) error {
	if len(args) == 0 {
		return errors.New("unity needs a subcommand: list, add, remove, or sync")
	}

	store, err := openStore(cmd.storePath, ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "list":
		return listInstallations(store)
	case "add":
		if len(args) != 2 {
			return errors.New("unity add takes exactly one editor path")
		}
		return addInstallation(store, args[1], false)
	case "remove":
		if len(args) != 2 {
			return errors.New("unity remove takes exactly one id")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return store.Remove(id)
	case "sync":
		return syncInstallations(ctx, store, args[1:])
	default:
		return errors.Errorf("unknown unity subcommand %q", args[0])
	}
}

// openStore opens the environment database, defaulting to
// <config>/vrc-get/vrc-get.db when no override was given.
func openStore(override string, ctx *vrcget.Ctx) (*installstore.Store, error) {
	path := override
	if path == "" {
		confDir, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "locating config directory")
		}
		path = filepath.Join(confDir, "vrc-get", "vrc-get.db")
		if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
			return nil, errors.Wrap(err, "creating config directory")
		}
	}
	return installstore.Open(path, ctx.Logger)
}

func parseID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func listInstallations(store *installstore.Store) error {
	installations, err := store.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, inst := range installations {
		hub := ""
		if inst.LoadedFromHub {
			hub = "(hub)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", inst.ID, inst.Version, inst.Path, hub)
	}
	return w.Flush()
}

func addInstallation(store *installstore.Store, path string, fromHub bool) error {
	version, err := unityprobe.Probe(context.Background(), path)
	if err != nil {
		return err
	}

	inst := &installstore.Installation{Path: path, Version: version.String(), LoadedFromHub: fromHub}
	if err := store.Add(inst); err != nil {
		return err
	}
	fmt.Printf("Added Unity %s at %s\n", inst.Version, inst.Path)
	return nil
}

func syncInstallations(ctx *vrcget.Ctx, store *installstore.Store, hubPaths []string) error {
	added, err := store.SyncFromHub(hubPaths)
	if err != nil {
		return err
	}
	for _, path := range added {
		ctx.Logger.WithField("path", path).Info("Adding Unity editor reported by the hub")
		if err := addInstallation(store, path, true); err != nil {
			return err
		}
	}
	return nil
}
