package vrcget

import (
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/CirnoV/vrc-get/vps"
)

// InstalledPackage is a package physically present under the project's
// Packages directory, whether or not the manifest knows about it.
type InstalledPackage struct {
	Name    string
	Version vps.Version
	Dir     string
}

// ScanInstalledPackages walks the project's Packages directory and parses
// the package.json of each embedded package. Directories without a readable
// package manifest (Unity's own content, half-extracted debris) are
// skipped, not errors.
func (p *Project) ScanInstalledPackages() ([]InstalledPackage, error) {
	packagesDir := filepath.Join(p.AbsRoot, "Packages")

	var found []InstalledPackage
	err := godirwalk.Walk(packagesDir, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if !de.IsDir() || osPathname == packagesDir {
				return nil
			}

			data, err := os.ReadFile(filepath.Join(osPathname, "package.json"))
			if err == nil {
				if info, perr := vps.ParsePackageManifest(data, ""); perr == nil {
					found = append(found, InstalledPackage{
						Name:    info.Name(),
						Version: info.Version(),
						Dir:     osPathname,
					})
				}
			}
			// packages do not nest
			return filepath.SkipDir
		},
		Unsorted: false,
	})
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "scanning Packages directory")
	}
	return found, nil
}
