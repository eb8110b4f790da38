// Package provider defines the contract between the resolution core and
// coordinate providers.
//
// A [Provider] knows how to interpret one coordinate [coord.Type]: listing
// direct dependencies, comparing versions, computing coordinate identities,
// and producing the local filesystem paths a coordinate contributes. The
// [Registry] dispatches on the coordinate type. Provider failures that
// carry no error code are wrapped in a PROVIDER_ERROR naming the operation
// and the responsible lib, with the original error as cause; the
// coordinate is not added to that message. Errors that already carry a
// code pass through unchanged.
package provider

import (
	"context"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/errors"
)

// Repo names a Maven repository to resolve artifacts against.
type Repo struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Config carries resolution-wide settings providers may consult.
// It is passed by value; providers must not retain or mutate it.
type Config struct {
	// Dir is the directory relative local paths resolve against.
	// The engine rebinds it per coordinate when a manifest declares a root.
	Dir string

	// CacheDir is the root of the local artifact cache.
	CacheDir string

	// Repos lists Maven repositories in resolution order.
	Repos []Repo
}

// WithDir returns a copy of the config with Dir rebound.
// Used by the expansion engine to scope manifest reads to a coordinate's
// root without mutating shared state.
func (c Config) WithDir(dir string) Config {
	if dir != "" {
		c.Dir = dir
	}
	return c
}

// Provider resolves coordinates of a single type.
//
// Deps and Paths perform I/O and are called from worker goroutines; they
// must be safe for concurrent use and honor context cancellation. The
// remaining operations are pure or filesystem-local.
type Provider interface {
	// Type returns the coordinate type this provider handles.
	Type() coord.Type

	// Canonicalize normalizes a lib and coordinate (e.g. resolves a
	// relative local path against cfg.Dir). Called once per top-level dep
	// before seeding the expansion queue.
	Canonicalize(lib coord.Lib, c coord.Coord, cfg Config) (coord.Lib, coord.Coord, error)

	// DepID returns a stable identity for conflict comparison. Coordinates
	// with equal IDs are treated as the same version.
	DepID(lib coord.Lib, c coord.Coord, cfg Config) (coord.ID, error)

	// ManifestType augments the coordinate with a detected manifest kind.
	// A no-op if the coordinate already names one.
	ManifestType(lib coord.Lib, c coord.Coord, cfg Config) (coord.Coord, error)

	// Deps lists the coordinate's direct dependencies. Order is preserved
	// by the engine and significant only for trace output.
	Deps(ctx context.Context, lib coord.Lib, c coord.Coord, cfg Config) ([]coord.Dep, error)

	// CompareVersions orders two coordinates of this type:
	// -1 if a < b, 0 if equal, 1 if a > b.
	CompareVersions(lib coord.Lib, a, b coord.Coord, cfg Config) (int, error)

	// Paths returns the local filesystem paths the coordinate contributes
	// to a classpath. Called after selection, possibly fetching artifacts.
	Paths(ctx context.Context, lib coord.Lib, c coord.Coord, cfg Config) ([]string, error)

	// Location returns the expected on-disk location of the coordinate's
	// artifact, which may not exist yet.
	Location(lib coord.Lib, c coord.Coord, cfg Config) (string, error)

	// Summary renders a short human-readable form of the coordinate for
	// tree output (e.g. "1.9.0", "/path/to/project").
	Summary(lib coord.Lib, c coord.Coord) string
}

// Registry dispatches provider operations on the coordinate type.
type Registry struct {
	providers map[coord.Type]Provider
}

// NewRegistry creates a registry over the given providers.
func NewRegistry(providers ...Provider) *Registry {
	m := make(map[coord.Type]Provider, len(providers))
	for _, p := range providers {
		m[p.Type()] = p
	}
	return &Registry{providers: m}
}

// For returns the provider for a coordinate.
func (r *Registry) For(lib coord.Lib, c coord.Coord) (Provider, error) {
	if p, ok := r.providers[c.Type]; ok {
		return p, nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "no provider for %s coordinate of %s", c.Type, lib)
}

// Canonicalize dispatches Provider.Canonicalize.
func (r *Registry) Canonicalize(lib coord.Lib, c coord.Coord, cfg Config) (coord.Lib, coord.Coord, error) {
	p, err := r.For(lib, c)
	if err != nil {
		return lib, c, err
	}
	l2, c2, err := p.Canonicalize(lib, c, cfg)
	if err != nil {
		return lib, c, wrap(err, lib, "canonicalize")
	}
	return l2, c2, nil
}

// DepID dispatches Provider.DepID.
func (r *Registry) DepID(lib coord.Lib, c coord.Coord, cfg Config) (coord.ID, error) {
	p, err := r.For(lib, c)
	if err != nil {
		return "", err
	}
	id, err := p.DepID(lib, c, cfg)
	if err != nil {
		return "", wrap(err, lib, "identify")
	}
	return id, nil
}

// ManifestType dispatches Provider.ManifestType.
func (r *Registry) ManifestType(lib coord.Lib, c coord.Coord, cfg Config) (coord.Coord, error) {
	p, err := r.For(lib, c)
	if err != nil {
		return c, err
	}
	c2, err := p.ManifestType(lib, c, cfg)
	if err != nil {
		return c, wrap(err, lib, "detect manifest")
	}
	return c2, nil
}

// Deps dispatches Provider.Deps.
func (r *Registry) Deps(ctx context.Context, lib coord.Lib, c coord.Coord, cfg Config) ([]coord.Dep, error) {
	p, err := r.For(lib, c)
	if err != nil {
		return nil, err
	}
	deps, err := p.Deps(ctx, lib, c, cfg)
	if err != nil {
		return nil, wrap(err, lib, "list deps")
	}
	return deps, nil
}

// CompareVersions orders two coordinates for the same lib. Coordinates of
// different types are incomparable and fail resolution.
func (r *Registry) CompareVersions(lib coord.Lib, a, b coord.Coord, cfg Config) (int, error) {
	if a.Type != b.Type {
		return 0, errors.New(errors.ErrCodeIncomparable,
			"cannot compare %s and %s coordinates of %s", a.Type, b.Type, lib)
	}
	p, err := r.For(lib, a)
	if err != nil {
		return 0, err
	}
	n, err := p.CompareVersions(lib, a, b, cfg)
	if err != nil {
		return 0, wrap(err, lib, "compare versions")
	}
	return n, nil
}

// Paths dispatches Provider.Paths.
func (r *Registry) Paths(ctx context.Context, lib coord.Lib, c coord.Coord, cfg Config) ([]string, error) {
	p, err := r.For(lib, c)
	if err != nil {
		return nil, err
	}
	paths, err := p.Paths(ctx, lib, c, cfg)
	if err != nil {
		return nil, wrap(err, lib, "resolve paths")
	}
	return paths, nil
}

// Location dispatches Provider.Location.
func (r *Registry) Location(lib coord.Lib, c coord.Coord, cfg Config) (string, error) {
	p, err := r.For(lib, c)
	if err != nil {
		return "", err
	}
	loc, err := p.Location(lib, c, cfg)
	if err != nil {
		return "", wrap(err, lib, "locate")
	}
	return loc, nil
}

// Summary renders a coordinate for display. Unknown types fall back to the
// type tag so tree output never fails.
func (r *Registry) Summary(lib coord.Lib, c coord.Coord) string {
	if p, ok := r.providers[c.Type]; ok {
		return p.Summary(lib, c)
	}
	return string(c.Type)
}

func wrap(err error, lib coord.Lib, op string) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeProvider, err, "%s %s", op, lib)
}
