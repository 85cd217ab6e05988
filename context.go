package vrcget

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Ctx defines the supporting context of the tool: where it runs and how it
// reports. Commands receive one Ctx and thread its logger everywhere.
type Ctx struct {
	WorkingDir string
	Verbose    bool
	Logger     *logrus.Logger
}

// NewContext builds a Ctx rooted at wd. Verbose drops the logger to debug
// level.
func NewContext(wd string, verbose bool) *Ctx {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return &Ctx{
		WorkingDir: wd,
		Verbose:    verbose,
		Logger:     logger,
	}
}

// LoadProject finds the enclosing Unity project from the working directory
// and loads it.
func (c *Ctx) LoadProject() (*Project, error) {
	root, err := FindProjectRoot(c.WorkingDir)
	if err != nil {
		return nil, err
	}
	p, err := LoadProject(root)
	if err != nil {
		return nil, errors.Wrapf(err, "loading project at %s", root)
	}
	return p, nil
}
