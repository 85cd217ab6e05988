// Package registry fetches VPM package repositories and serves candidate
// queries over their combined contents. A Collection is the production
// implementation of the solver's PackageSource capability.
package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sdboyer/constext"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/CirnoV/vrc-get/vps"
)

// Repository is one fetched repository index: its identity and every
// package version it offers.
type Repository struct {
	Name     string
	URL      string
	packages map[string][]*vps.PackageInfo
}

type rawRepository struct {
	Name     string                `json:"name"`
	ID       string                `json:"id,omitempty"`
	URL      string                `json:"url,omitempty"`
	Packages map[string]rawVersions `json:"packages"`
}

type rawVersions struct {
	Versions map[string]json.RawMessage `json:"versions"`
}

// ParseRepository decodes a repository index document. Individual package
// versions that fail to parse are skipped with a log line; a repository is
// only rejected wholesale when the document itself is malformed.
func ParseRepository(data []byte, source string, logger *logrus.Logger) (*Repository, error) {
	var raw rawRepository
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "malformed repository index from %s", source)
	}

	repo := &Repository{
		Name:     raw.Name,
		URL:      source,
		packages: make(map[string][]*vps.PackageInfo, len(raw.Packages)),
	}
	if repo.Name == "" {
		repo.Name = source
	}

	for name, vers := range raw.Packages {
		for _, manifest := range vers.Versions {
			info, err := vps.ParsePackageManifest(manifest, source)
			if err != nil {
				logger.WithError(err).WithField("name", name).Warn("Skipping unparsable package version")
				continue
			}
			repo.packages[info.Name()] = append(repo.packages[info.Name()], info)
		}
	}

	return repo, nil
}

// Collection aggregates repositories and answers candidate queries.
// Query contexts are joined with the collection's lifetime context, so
// closing the collection cancels in-flight work no matter the caller.
type Collection struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *logrus.Logger

	mu    sync.RWMutex
	repos []*Repository
	index packageTrie
}

// NewCollection returns an empty collection whose operations live within
// ctx.
func NewCollection(ctx context.Context, logger *logrus.Logger) *Collection {
	ctx, cancel := context.WithCancel(ctx)
	return &Collection{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		index:  newPackageTrie(),
	}
}

// Close cancels outstanding work.
func (c *Collection) Close() {
	c.cancel()
}

// AddRepository merges a repository into the collection and reindexes the
// names it contributes.
func (c *Collection) AddRepository(repo *Repository) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.repos = append(c.repos, repo)
	for name, versions := range repo.packages {
		merged, _ := c.index.Get(name)
		merged = append(append([]*vps.PackageInfo(nil), merged...), versions...)
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].Version().GreaterThan(merged[j].Version())
		})
		c.index.Insert(name, merged)
	}
}

// LoadSources fetches every listed source (http(s) URLs or local file
// paths) concurrently and adds each successfully parsed repository.
func (c *Collection) LoadSources(ctx context.Context, sources []string) error {
	ctx, cancel := constext.Cons(ctx, c.ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	repos := make([]*Repository, len(sources))

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			data, err := fetchSource(ctx, src)
			if err != nil {
				return err
			}
			repo, err := ParseRepository(data, src, c.logger)
			if err != nil {
				return err
			}
			repos[i] = repo
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, repo := range repos {
		if c.logger.Level >= logrus.DebugLevel {
			c.logger.WithFields(logrus.Fields{
				"repository": repo.Name,
				"packages":   len(repo.packages),
			}).Debug("Loaded repository")
		}
		c.AddRepository(repo)
	}
	return nil
}

func fetchSource(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		return data, errors.Wrapf(err, "reading repository %s", source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching repository %s", source)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching repository %s", source)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching repository %s: unexpected status %s", source, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// FindBestCandidates implements vps.PackageSource over the merged
// repository contents: highest satisfying version first.
func (c *Collection) FindBestCandidates(ctx context.Context, name string, r vps.Range, unity *vps.UnityVersion, allowPrerelease bool) ([]*vps.PackageInfo, error) {
	cctx, cancel := constext.Cons(ctx, c.ctx)
	defer cancel()
	if err := cctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	versions, _ := c.index.Get(name)
	c.mu.RUnlock()

	var out []*vps.PackageInfo
	for _, p := range versions {
		matches := r.Matches(p.Version())
		if !matches && allowPrerelease {
			matches = r.MatchesPrerelease(p.Version())
		}
		if !matches {
			continue
		}
		if unity != nil && !p.SupportsUnity(unity) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Search returns every known package whose name starts with prefix, each at
// its best available version, in name order.
func (c *Collection) Search(prefix string) []*vps.PackageInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*vps.PackageInfo
	c.index.WalkPrefix(prefix, func(_ string, versions []*vps.PackageInfo) bool {
		if len(versions) > 0 {
			out = append(out, versions[0])
		}
		return false
	})
	return out
}

var _ vps.PackageSource = (*Collection)(nil)
