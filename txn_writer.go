package vrcget

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/CirnoV/vrc-get/vps"
)

// SafeWriter applies a finalized plan to a project's manifest as a
// pseudo-atomic action: the new manifest is staged beside the target and
// moved into place with a rename, so a crash mid-write leaves the original
// intact.
//
// It is not impervious to errors (writing to disk is hard), but it should
// guard against non-arcane failure conditions.
type SafeWriter struct {
	logger *logrus.Logger
}

// NewSafeWriter returns a writer logging through the given logger.
func NewSafeWriter(logger *logrus.Logger) *SafeWriter {
	return &SafeWriter{logger: logger}
}

// Write applies changes to the project's manifest on disk and to the
// in-memory Project. An empty plan writes nothing.
func (sw *SafeWriter) Write(p *Project, changes *vps.PendingProjectChanges) error {
	if changes.IsEmpty() {
		sw.logger.Debug("Nothing to write, skipping manifest update")
		return nil
	}

	updated := p.manifest.clone()

	for _, da := range changes.DependencyAdditions() {
		updated.addDependency(da.Name, da.Range)
	}
	for _, pkg := range changes.LockedAdditions() {
		updated.addLocked(pkg)
	}
	for _, rm := range changes.Removals() {
		if sw.logger.Level >= logrus.DebugLevel {
			sw.logger.WithFields(logrus.Fields{
				"name":   rm.Name,
				"reason": rm.Reason.String(),
			}).Debug("Removing package from manifest")
		}
		updated.removePackage(rm.Name)
	}

	path := p.manifestPath()
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrap(err, "creating Packages directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+ManifestName+".*")
	if err != nil {
		return errors.Wrap(err, "staging manifest")
	}
	defer os.Remove(tmp.Name())

	if err := updated.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "staging manifest")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replacing manifest")
	}

	p.manifest = updated
	return nil
}
