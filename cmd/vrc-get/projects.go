package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/pkg/errors"

	vrcget "github.com/CirnoV/vrc-get"
	"github.com/CirnoV/vrc-get/internal/installstore"
	"github.com/CirnoV/vrc-get/vps"
)

type projectsCommand struct {
	storePath string
}

func (cmd *projectsCommand) Name() string { return "projects" }
func (cmd *projectsCommand) Args() string {
	return "list | add <path> | remove <id> | favorite <id> | unfavorite <id>"
}
func (cmd *projectsCommand) ShortHelp() string {
	return "Track Unity projects known to vrc-get"
}
func (cmd *projectsCommand) LongHelp() string {
	return `
Projects manages the store of Unity projects vrc-get tracks. "add"
loads the project at the given path to record its editor version and
project type; "list" prints the records, marking favorites with a
star; "favorite" and "unfavorite" flip that flag by id.
`
}

func (cmd *projectsCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.storePath, "store", "", "path of the environment database")
}

func (cmd *projectsCommand) Run(ctx *vrcget.Ctx, args []string) error {
	if len(args) == 0 {
		return errors.New("projects needs a subcommand: list, add, remove, favorite, or unfavorite")
	}

	store, err := openStore(cmd.storePath, ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "list":
		return listProjects(store)
	case "add":
		if len(args) != 2 {
			return errors.New("projects add takes exactly one project path")
		}
		return trackProject(store, args[1])
	case "remove":
		if len(args) != 2 {
			return errors.New("projects remove takes exactly one id")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return store.RemoveProject(id)
	case "favorite", "unfavorite":
		if len(args) != 2 {
			return errors.Errorf("projects %s takes exactly one id", args[0])
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		return store.SetFavorite(id, args[0] == "favorite")
	default:
		return errors.Errorf("unknown projects subcommand %q", args[0])
	}
}

func listProjects(store *installstore.Store) error {
	records, err := store.ListProjects()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, rec := range records {
		star := ""
		if rec.Favorite {
			star = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", rec.ID, star, rec.Type, rec.UnityVersion, rec.Path)
	}
	return w.Flush()
}

func trackProject(store *installstore.Store, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}
	root, err := vrcget.FindProjectRoot(abs)
	if err != nil {
		return err
	}
	proj, err := vrcget.LoadProject(root)
	if err != nil {
		return err
	}

	rec := &installstore.ProjectRecord{
		Path: root,
		Type: classifyProject(proj.Manifest()),
	}
	if uv := proj.UnityVersion(); uv != nil {
		rec.UnityVersion = uv.String()
	}
	if err := store.AddProject(rec); err != nil {
		return err
	}
	fmt.Printf("Tracking %s project at %s\n", rec.Type, rec.Path)
	return nil
}

// classifyProject derives the project type from the SDK packages the
// manifest locks.
func classifyProject(m vps.ManifestView) installstore.ProjectType {
	switch {
	case m.IsLocked("com.vrchat.avatars"):
		return installstore.ProjectAvatars
	case m.IsLocked("com.vrchat.worlds"):
		return installstore.ProjectWorlds
	case m.IsLocked("com.vrchat.base"):
		return installstore.ProjectVpmStarter
	default:
		return installstore.ProjectUnknown
	}
}
