// Package maven provides Maven-repository coordinate resolution.
//
// Coordinates carry an explicit version; dependencies are read from the
// artifact's POM, and artifacts are materialized into the local cache
// directory on demand. Only compile and runtime scope dependencies are
// followed; optional dependencies are skipped.
package maven

import (
	"context"
	"strings"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/errors"
	"github.com/stackmesa/depstack/pkg/provider"
)

// CentralURL is the default repository when the config names none.
const CentralURL = "https://repo1.maven.org/maven2"

// Provider resolves maven coordinates.
type Provider struct {
	client *Client
}

// New creates a maven provider over the given repository client.
func New(client *Client) *Provider {
	return &Provider{client: client}
}

// Type returns the maven coordinate type.
func (p *Provider) Type() coord.Type { return coord.TypeMaven }

// Canonicalize validates the coordinate and trims version whitespace.
func (p *Provider) Canonicalize(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Lib, coord.Coord, error) {
	c.Version = strings.TrimSpace(c.Version)
	if c.Version == "" {
		return lib, c, errors.New(errors.ErrCodeInvalidCoord, "maven coordinate for %s has no version", lib)
	}
	return lib, c, nil
}

// DepID identifies a maven coordinate by its version string.
func (p *Provider) DepID(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.ID, error) {
	return coord.ID(c.Version), nil
}

// ManifestType marks the coordinate as POM-described unless already set.
func (p *Provider) ManifestType(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Coord, error) {
	if c.Manifest == coord.ManifestNone {
		c.Manifest = coord.ManifestPOM
	}
	return c, nil
}

// Deps fetches the coordinate's POM and returns its followed dependencies.
func (p *Provider) Deps(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]coord.Dep, error) {
	pom, err := p.client.FetchPOM(ctx, repos(cfg), lib.Group, artifactID(lib), c.Version)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProvider, err, "fetch pom for %s %s", lib, c.Version)
	}
	return pomDeps(pom), nil
}

// CompareVersions orders two maven version strings.
func (p *Provider) CompareVersions(lib coord.Lib, a, b coord.Coord, cfg provider.Config) (int, error) {
	return CompareVersions(a.Version, b.Version), nil
}

// Paths returns the jar's local cache path, downloading it if absent.
func (p *Provider) Paths(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]string, error) {
	path, err := p.client.EnsureJar(ctx, repos(cfg), cfg.CacheDir, lib.Group, artifactID(lib), c.Version)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeProvider, err, "fetch jar for %s %s", lib, c.Version)
	}
	return []string{path}, nil
}

// Location returns the jar's expected cache path without fetching.
func (p *Provider) Location(lib coord.Lib, c coord.Coord, cfg provider.Config) (string, error) {
	return jarPath(cfg.CacheDir, lib.Group, artifactID(lib), c.Version), nil
}

// Summary renders the version for tree output.
func (p *Provider) Summary(lib coord.Lib, c coord.Coord) string { return c.Version }

// artifactID strips the '$' sub-library suffix: the artifact on disk is
// the base one regardless of which sub-library an edge names.
func artifactID(lib coord.Lib) string {
	return lib.Base().Name
}

func repos(cfg provider.Config) []provider.Repo {
	if len(cfg.Repos) > 0 {
		return cfg.Repos
	}
	return []provider.Repo{{Name: "central", URL: CentralURL}}
}

// pomDeps converts POM dependencies to engine edges. Test, provided, and
// optional dependencies are not followed; unresolvable property references
// in group or artifact are skipped the way unresolved coordinates must be.
// A dependency without a concrete version yields a zero coordinate so
// default-deps can supply one.
func pomDeps(pom *Project) []coord.Dep {
	var deps []coord.Dep
	seen := make(map[coord.Lib]bool)

	for _, d := range pom.Dependencies {
		if d.Scope == "test" || d.Scope == "provided" || d.Scope == "system" || d.Optional == "true" {
			continue
		}
		if strings.Contains(d.GroupID, "${") || strings.Contains(d.ArtifactID, "${") {
			continue
		}
		lib := coord.Lib{Group: d.GroupID, Name: d.ArtifactID}
		if seen[lib] {
			continue
		}
		seen[lib] = true

		var c coord.Coord
		if v := d.Version; v != "" && !strings.Contains(v, "${") {
			c = coord.Coord{Type: coord.TypeMaven, Version: v}
		}
		for _, ex := range d.Exclusions {
			if ex.ArtifactID == "*" || ex.GroupID == "*" {
				continue
			}
			c.Exclusions = append(c.Exclusions, coord.Lib{Group: ex.GroupID, Name: ex.ArtifactID})
		}
		deps = append(deps, coord.Dep{Lib: lib, Coord: c})
	}
	return deps
}
