package vrcget

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/CirnoV/vrc-get/vps"
)

var errProjectNotFound = fmt.Errorf("could not find a Unity project (no ProjectSettings/ProjectVersion.txt)")

// FindProjectRoot searches from the starting directory upwards looking for
// the ProjectSettings/ProjectVersion.txt marker until the filesystem root.
func FindProjectRoot(from string) (string, error) {
	for {
		vp := filepath.Join(from, "ProjectSettings", "ProjectVersion.txt")

		_, err := os.Stat(vp)
		if err == nil {
			return from, nil
		}
		if !os.IsNotExist(err) {
			// Some err other than non-existence - return that out
			return "", err
		}

		parent := filepath.Dir(from)
		if parent == from {
			return "", errProjectNotFound
		}
		from = parent
	}
}

// Project is a Unity project on disk: its root, its VPM manifest, and the
// editor version it targets. It satisfies the vps.Project capability so
// planning can run directly against it.
type Project struct {
	// AbsRoot is the absolute path to the root directory of the project.
	AbsRoot  string
	manifest *Manifest
	unity    *vps.UnityVersion
}

// LoadProject reads the project at root. A missing manifest yields an empty
// one (a project that never had a package installed); a missing or
// unparsable ProjectVersion.txt leaves the editor version unknown.
func LoadProject(root string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolving project root")
	}

	p := &Project{AbsRoot: abs}

	p.manifest, err = readManifestFile(p.manifestPath())
	if err != nil {
		return nil, err
	}

	if uv, err := readProjectVersion(abs); err == nil {
		p.unity = &uv
	}

	return p, nil
}

func (p *Project) manifestPath() string {
	return filepath.Join(p.AbsRoot, "Packages", ManifestName)
}

func readManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewManifest(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	m, err := ReadManifest(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return m, nil
}

// readProjectVersion extracts the m_EditorVersion line from
// ProjectSettings/ProjectVersion.txt.
func readProjectVersion(root string) (vps.UnityVersion, error) {
	data, err := os.ReadFile(filepath.Join(root, "ProjectSettings", "ProjectVersion.txt"))
	if err != nil {
		return vps.UnityVersion{}, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "m_EditorVersion:"); ok {
			return vps.ParseUnityVersion(rest)
		}
	}
	return vps.UnityVersion{}, errors.New("no m_EditorVersion entry in ProjectVersion.txt")
}

// Manifest returns the project manifest as loaded.
func (p *Project) Manifest() vps.ManifestView {
	return p.manifest
}

// UnityVersion returns the editor version the project targets, or nil when
// unknown.
func (p *Project) UnityVersion() *vps.UnityVersion {
	return p.unity
}

// Reload re-reads the manifest from disk and returns the fresh state. The
// in-memory Project keeps serving the state it was loaded with.
func (p *Project) Reload(_ context.Context) (vps.ManifestView, error) {
	return readManifestFile(p.manifestPath())
}

var _ vps.Project = (*Project)(nil)
