// Package git provides coordinate resolution for git-hosted projects.
//
// A git coordinate names a repository URL and a revision. The revision's
// worktree is expected under the artifact cache (populated by the git
// fetcher); resolution reads the project's deps.toml from there. Distinct
// revisions compare only when both parse as version tags — arbitrary
// commits have no order and conflict resolution fails on them.
package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/stackmesa/depstack/pkg/cache"
	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/depsfile"
	"github.com/stackmesa/depstack/pkg/errors"
	"github.com/stackmesa/depstack/pkg/provider"
)

// Provider resolves git coordinates.
type Provider struct{}

// New creates a git provider.
func New() *Provider { return &Provider{} }

// Type returns the git coordinate type.
func (p *Provider) Type() coord.Type { return coord.TypeGit }

// Canonicalize validates the coordinate and pins its root to the
// revision's worktree.
func (p *Provider) Canonicalize(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Lib, coord.Coord, error) {
	if c.URL == "" || c.Rev == "" {
		return lib, c, errors.New(errors.ErrCodeInvalidCoord, "git coordinate for %s needs url and rev", lib)
	}
	c.Root = worktree(cfg.CacheDir, c.URL, c.Rev)
	return lib, c, nil
}

// DepID identifies a git coordinate by its revision.
func (p *Provider) DepID(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.ID, error) {
	return coord.ID(c.Rev), nil
}

// ManifestType marks the coordinate as deps.toml-described.
func (p *Provider) ManifestType(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Coord, error) {
	if c.Manifest == coord.ManifestNone {
		c.Manifest = coord.ManifestDeps
	}
	return c, nil
}

// Deps reads the worktree's manifest. Local child coordinates resolve
// relative to the worktree.
func (p *Provider) Deps(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]coord.Dep, error) {
	dir, err := p.checkout(lib, c, cfg)
	if err != nil {
		return nil, err
	}
	f, err := depsfile.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	deps := make([]coord.Dep, len(f.Deps))
	for i, d := range f.Deps {
		if d.Coord.Type == coord.TypeLocal && !filepath.IsAbs(d.Coord.Path) {
			d.Coord.Path = filepath.Join(dir, d.Coord.Path)
			d.Coord.Root = d.Coord.Path
		}
		deps[i] = d
	}
	return deps, nil
}

// CompareVersions orders revisions that parse as version tags; anything
// else is incomparable.
func (p *Provider) CompareVersions(lib coord.Lib, a, b coord.Coord, cfg provider.Config) (int, error) {
	if a.Rev == b.Rev {
		return 0, nil
	}
	va, errA := semver.NewVersion(strings.TrimPrefix(a.Rev, "v"))
	vb, errB := semver.NewVersion(strings.TrimPrefix(b.Rev, "v"))
	if errA != nil || errB != nil {
		return 0, errors.New(errors.ErrCodeIncomparable,
			"cannot compare git revs %s and %s for %s; pin one with override-deps", a.Rev, b.Rev, lib)
	}
	return va.Compare(vb), nil
}

// Paths returns the worktree's source paths from its manifest.
func (p *Provider) Paths(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]string, error) {
	dir, err := p.checkout(lib, c, cfg)
	if err != nil {
		return nil, err
	}
	f, err := depsfile.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	paths := f.Paths
	if len(paths) == 0 {
		paths = []string{"src"}
	}
	out := make([]string, len(paths))
	for i, path := range paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		out[i] = path
	}
	return out, nil
}

// Location returns the expected worktree directory, which may not exist
// before fetching.
func (p *Provider) Location(lib coord.Lib, c coord.Coord, cfg provider.Config) (string, error) {
	return worktree(cfg.CacheDir, c.URL, c.Rev), nil
}

// Summary renders "url@rev" with the rev shortened like git does.
func (p *Provider) Summary(lib coord.Lib, c coord.Coord) string {
	rev := c.Rev
	if len(rev) > 12 && !strings.ContainsAny(rev, ".") {
		rev = rev[:7]
	}
	return c.URL + "@" + rev
}

// checkout locates the revision's worktree, erroring when the fetcher has
// not populated it yet.
func (p *Provider) checkout(lib coord.Lib, c coord.Coord, cfg provider.Config) (string, error) {
	dir := worktree(cfg.CacheDir, c.URL, c.Rev)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", errors.New(errors.ErrCodeNotFound,
			"git checkout for %s (%s@%s) not found at %s; fetch it first", lib, c.URL, c.Rev, dir)
	}
	return dir, nil
}

func worktree(cacheDir, url, rev string) string {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cacheDir = filepath.Join(home, ".cache", "depstack")
		}
	}
	return filepath.Join(cacheDir, "git", cache.Hash([]byte(url))[:16], rev)
}
