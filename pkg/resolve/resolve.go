// Package resolve implements transitive dependency expansion.
//
// Given ordered top-level deps, [Deps] walks the dependency graph
// breadth-first, fetching child lists concurrently through the provider
// registry while a single coordinator applies conflict resolution
// (top-dep-wins, newer-wins among non-top), honors per-path exclusions,
// and drops work orphaned by selection changes. The result is a flat
// [LibMap] from each required library to its selected coordinate and the
// local paths it contributes.
//
// Expansion and materialization are all-or-nothing: the first provider
// error shuts the worker pool down and no partial lib map is returned.
package resolve

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/executor"
	"github.com/stackmesa/depstack/pkg/provider"
)

// Options configures one resolution run.
type Options struct {
	// ExtraDeps are additional top-level deps appended to (and merged
	// over) the main dep list.
	ExtraDeps []coord.Dep

	// OverrideDeps forces a coordinate for a lib wherever it appears.
	OverrideDeps map[coord.Lib]coord.Coord

	// DefaultDeps supplies a coordinate for edges that declare none.
	DefaultDeps map[coord.Lib]coord.Coord

	// Threads bounds the worker pool; 0 means host CPU count.
	Threads int

	// Trace attaches an include-decision log to the result.
	Trace bool

	// Logger receives debug-level decision logging. Defaults to discard.
	Logger *log.Logger
}

// Deps resolves the given top-level deps to a complete lib map.
//
// Top deps are canonicalized, seeded in order, and expanded; when the
// queue drains, local paths are materialized concurrently for every
// selection. Order of top deps is significant only where two top deps
// name the same lib: the first listed wins.
func Deps(ctx context.Context, reg *provider.Registry, deps []coord.Dep, cfg provider.Config, opts Options) (*LibMap, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	seeds, err := seedDeps(reg, deps, opts.ExtraDeps, cfg)
	if err != nil {
		return nil, err
	}

	pool := executor.New(ctx, opts.Threads)
	defer pool.Shutdown(nil)

	e := &expander{
		reg:       reg,
		cfg:       cfg,
		pool:      pool,
		vmap:      NewVersionMap(),
		excl:      make(Exclusions),
		cut:       make(Cut),
		overrides: opts.OverrideDeps,
		defaults:  opts.DefaultDeps,
		logger:    logger,
	}
	if opts.Trace {
		e.trace = &Trace{RunID: uuid.NewString()}
	}

	if err := e.expand(seeds); err != nil {
		pool.Shutdown(err)
		return nil, err
	}

	lm := e.libMap()
	if err := materialize(lm, reg, cfg, pool); err != nil {
		pool.Shutdown(err)
		return nil, err
	}

	if e.trace != nil {
		e.trace.Exclusions = snapshotExclusions(e.excl)
		lm.Trace = e.trace
	}
	logger.Debug("resolved", "libs", lm.Len())
	return lm, nil
}

// seedDeps merges extra deps over the main list (same lib: extra's
// coordinate wins in place; new libs append) and canonicalizes every seed.
func seedDeps(reg *provider.Registry, deps, extra []coord.Dep, cfg provider.Config) ([]coord.Dep, error) {
	merged := make([]coord.Dep, 0, len(deps)+len(extra))
	index := make(map[coord.Lib]int, len(deps))
	for _, d := range deps {
		if _, ok := index[d.Lib]; ok {
			// A lib listed twice keeps its first coordinate.
			continue
		}
		index[d.Lib] = len(merged)
		merged = append(merged, d)
	}
	for _, d := range extra {
		if i, ok := index[d.Lib]; ok {
			merged[i] = d
			continue
		}
		index[d.Lib] = len(merged)
		merged = append(merged, d)
	}

	out := make([]coord.Dep, 0, len(merged))
	for _, d := range merged {
		lib, c, err := reg.Canonicalize(d.Lib, d.Coord, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, coord.Dep{Lib: lib, Coord: c})
	}
	return out, nil
}
