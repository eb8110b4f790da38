// Package local provides coordinate resolution for projects on disk.
//
// A local coordinate names a project directory; dependencies and source
// paths come from the project's deps.toml manifest. Relative paths are
// resolved against the directory of the manifest that declared them, so
// chains of local projects compose.
package local

import (
	"context"
	"os"
	"path/filepath"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/depsfile"
	"github.com/stackmesa/depstack/pkg/errors"
	"github.com/stackmesa/depstack/pkg/provider"
)

// Provider resolves local project coordinates.
type Provider struct{}

// New creates a local provider.
func New() *Provider { return &Provider{} }

// Type returns the local coordinate type.
func (p *Provider) Type() coord.Type { return coord.TypeLocal }

// Canonicalize resolves the project path against cfg.Dir and records it as
// the coordinate's root for scoped manifest reads.
func (p *Provider) Canonicalize(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Lib, coord.Coord, error) {
	if c.Path == "" {
		return lib, c, errors.New(errors.ErrCodeInvalidCoord, "local coordinate for %s has no path", lib)
	}
	abs, err := absPath(c.Path, cfg.Dir)
	if err != nil {
		return lib, c, err
	}
	c.Path = abs
	c.Root = abs
	return lib, c, nil
}

// DepID identifies a local coordinate by its absolute project path.
func (p *Provider) DepID(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.ID, error) {
	abs, err := absPath(c.Path, cfg.Dir)
	if err != nil {
		return "", err
	}
	return coord.ID(abs), nil
}

// ManifestType marks the coordinate as deps.toml-described.
func (p *Provider) ManifestType(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Coord, error) {
	if c.Manifest == coord.ManifestNone {
		c.Manifest = coord.ManifestDeps
	}
	return c, nil
}

// Deps reads the project manifest and returns its deps. Child coordinates
// with relative local paths are resolved against this project's directory
// and stamped with their root, so deeper manifest reads scope correctly.
func (p *Provider) Deps(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]coord.Dep, error) {
	root, err := absPath(c.Path, cfg.Dir)
	if err != nil {
		return nil, err
	}
	f, err := depsfile.LoadDir(root)
	if err != nil {
		return nil, err
	}

	deps := make([]coord.Dep, len(f.Deps))
	for i, d := range f.Deps {
		if d.Coord.Type == coord.TypeLocal {
			abs, err := absPath(d.Coord.Path, root)
			if err != nil {
				return nil, err
			}
			d.Coord.Path = abs
			d.Coord.Root = abs
		}
		deps[i] = d
	}
	return deps, nil
}

// CompareVersions has no ordering over distinct project paths; identical
// paths share a DepID and never reach here.
func (p *Provider) CompareVersions(lib coord.Lib, a, b coord.Coord, cfg provider.Config) (int, error) {
	return 0, errors.New(errors.ErrCodeIncomparable,
		"cannot choose between local projects %s and %s for %s", a.Path, b.Path, lib)
}

// Paths returns the project's source paths from its manifest, resolved
// absolute. Projects without declared paths contribute "src".
func (p *Provider) Paths(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]string, error) {
	root, err := absPath(c.Path, cfg.Dir)
	if err != nil {
		return nil, err
	}
	f, err := depsfile.LoadDir(root)
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
			path = filepath.Join(root, path)
		}
		out[i] = path
	}
	return out, nil
}

// Location returns the project directory.
func (p *Provider) Location(lib coord.Lib, c coord.Coord, cfg provider.Config) (string, error) {
	return absPath(c.Path, cfg.Dir)
}

// Summary renders the project path for tree output.
func (p *Provider) Summary(lib coord.Lib, c coord.Coord) string { return c.Path }

func absPath(path, dir string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrCodeInvalidCoord, "empty local path")
	}
	if !filepath.IsAbs(path) {
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			dir = wd
		}
		path = filepath.Join(dir, path)
	}
	return filepath.Clean(path), nil
}
