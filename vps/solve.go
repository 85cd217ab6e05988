package vps

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
)

// resolutionResult is what one transitive-closure pass produces: the
// candidates to install, the advisory conflicts, and the superseded names
// discovered along the way. Failures abort the pass entirely; there is no
// partial result.
type resolutionResult struct {
	newPackages         []*PackageInfo
	conflicts           []Conflict
	foundLegacyPackages []string
}

// chosenEntry is the single version the pass has committed to for a name.
// Once chosen, a version is never re-resolved; later consumers either accept
// it or produce a conflict.
type chosenEntry struct {
	version    Version
	pkg        *PackageInfo // nil when the locked graph's version was adopted
	requesters []string
	conflicted bool
}

type resolution struct {
	l               *logrus.Logger
	manifest        ManifestView
	unity           *UnityVersion
	source          PackageSource
	allowPrerelease bool

	chosen        map[string]*chosenEntry
	order         []string // names with newly chosen candidates, in choose order
	conflicts     map[string]*Conflict
	conflictOrder []string
	queue         []*PackageInfo
}

// collectAddingPackages walks the dependency graph outward from the adding
// set, consulting the source for every name that neither the locked graph
// nor an earlier choice in this pass can satisfy. The walk is sequential
// and visits dependency names in sorted order at each expansion, so output
// ordering is a pure function of the inputs.
func collectAddingPackages(ctx context.Context, l *logrus.Logger, manifest ManifestView, unity *UnityVersion, source PackageSource, adding []*PackageInfo, allowPrerelease bool) (resolutionResult, error) {
	res := &resolution{
		l:               l,
		manifest:        manifest,
		unity:           unity,
		source:          source,
		allowPrerelease: allowPrerelease,
		chosen:          make(map[string]*chosenEntry),
		conflicts:       make(map[string]*Conflict),
	}

	for _, p := range adding {
		res.choose(p, "")
	}

	for len(res.queue) > 0 {
		p := res.queue[0]
		res.queue = res.queue[1:]

		if err := res.expand(ctx, p); err != nil {
			return resolutionResult{}, err
		}
	}

	return res.finish(), nil
}

// choose commits to p's version for p's name and queues p's dependencies
// for examination. requester is the name of the consuming package, or empty
// when p was requested directly.
func (res *resolution) choose(p *PackageInfo, requester string) {
	e := &chosenEntry{version: p.Version(), pkg: p}
	if requester != "" {
		e.requesters = append(e.requesters, requester)
	}
	res.chosen[p.Name()] = e
	res.order = append(res.order, p.Name())
	res.queue = append(res.queue, p)

	if res.l.Level >= logrus.DebugLevel {
		res.l.WithFields(logrus.Fields{
			"name":    p.Name(),
			"version": p.Version().String(),
		}).Debug("Chose package version")
	}

	res.checkLockedConsumers(p.Name(), p.Version())
}

// expand walks one chosen package's dependency declarations.
func (res *resolution) expand(ctx context.Context, p *PackageInfo) error {
	deps := p.VpmDependencies()
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, depName := range names {
		r := deps[depName]

		if e, ok := res.chosen[depName]; ok {
			if admits(r, e.version, res.allowPrerelease) {
				e.addRequester(p.Name())
				continue
			}
			res.conflict(depName, p.Name())
			continue
		}

		lk, locked := res.manifest.GetLocked(depName)
		if locked && admits(r, lk.Version, res.allowPrerelease) {
			// The locked graph is closed, so the adopted entry's own
			// dependencies are already materialized; no walk needed.
			res.chosen[depName] = &chosenEntry{
				version:    lk.Version,
				requesters: []string{p.Name()},
			}
			if res.l.Level >= logrus.DebugLevel {
				res.l.WithFields(logrus.Fields{
					"name":    depName,
					"version": lk.Version.String(),
				}).Debug("Reusing locked version")
			}
			continue
		}

		candidates, err := res.source.FindBestCandidates(ctx, depName, r, res.unity, res.allowPrerelease)
		if err != nil {
			return err
		}
		// Replacing a locked entry only ever moves forward; candidates at
		// or below the locked version are never selected.
		pick := -1
		for i, c := range candidates {
			if locked && !c.Version().GreaterThan(lk.Version) {
				continue
			}
			pick = i
			break
		}
		if pick < 0 {
			if res.l.Level >= logrus.InfoLevel {
				res.l.WithFields(logrus.Fields{
					"name":      depName,
					"range":     r.String(),
					"requester": p.Name(),
				}).Info("No candidate satisfies dependency")
			}
			return &DependencyNotFoundError{DependencyName: depName}
		}
		res.choose(candidates[pick], p.Name())
	}

	return nil
}

// checkLockedConsumers records conflicts with locked packages whose declared
// range on name does not admit the newly chosen version. Locked packages
// that this pass is itself replacing are judged by their replacement's
// declarations instead, via the work queue.
func (res *resolution) checkLockedConsumers(name string, v Version) {
	for _, lp := range res.manifest.AllLocked() {
		if lp.Name == name {
			continue
		}
		if e, ok := res.chosen[lp.Name]; ok && e.pkg != nil {
			continue
		}
		r, ok := lp.Dependencies[name]
		if !ok {
			continue
		}
		if !admits(r, v, res.allowPrerelease) {
			res.conflict(name, lp.Name)
		}
	}
}

// conflict marks name as conflicted and adds requester to its entry,
// preserving first-seen order across all requesters.
func (res *resolution) conflict(name, requester string) {
	e := res.chosen[name]

	c, ok := res.conflicts[name]
	if !ok {
		c = &Conflict{Name: name}
		if e != nil {
			c.Requesters = append(c.Requesters, e.requesters...)
		}
		res.conflicts[name] = c
		res.conflictOrder = append(res.conflictOrder, name)
	}
	c.addRequester(requester)

	if e != nil {
		e.conflicted = true
	}

	if res.l.Level >= logrus.InfoLevel {
		res.l.WithFields(logrus.Fields{
			"name":      name,
			"requester": requester,
		}).Info("Version conflict recorded")
	}
}

func (res *resolution) finish() resolutionResult {
	var out resolutionResult

	emitted := make(map[string]bool)
	for _, name := range res.order {
		e := res.chosen[name]
		if e.pkg == nil || e.conflicted || emitted[name] {
			continue
		}
		emitted[name] = true
		out.newPackages = append(out.newPackages, e.pkg)
	}

	for _, name := range res.conflictOrder {
		out.conflicts = append(out.conflicts, *res.conflicts[name])
	}

	seen := make(map[string]bool)
	for _, p := range out.newPackages {
		for _, legacy := range p.LegacyPackages() {
			if seen[legacy] {
				continue
			}
			seen[legacy] = true
			out.foundLegacyPackages = append(out.foundLegacyPackages, legacy)
		}
	}

	return out
}

func (e *chosenEntry) addRequester(name string) {
	if name == "" {
		return
	}
	for _, r := range e.requesters {
		if r == name {
			return
		}
	}
	e.requesters = append(e.requesters, name)
}

func (c *Conflict) addRequester(name string) {
	if name == "" {
		return
	}
	for _, r := range c.Requesters {
		if r == name {
			return
		}
	}
	c.Requesters = append(c.Requesters, name)
}
