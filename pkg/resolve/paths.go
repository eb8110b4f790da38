package resolve

import (
	"context"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/executor"
	"github.com/stackmesa/depstack/pkg/provider"
)

// libMap collapses the expanded version map to the final lib map. A library
// is kept only when some parent path of its selected coordinate still
// chains back to a top dep; everything else was orphaned by a later
// selection change. Dependents are the immediate parents taken from the
// recorded paths of the selected coordinate.
func (e *expander) libMap() *LibMap {
	live := map[string]bool{"": true}

	var isLive func(p []coord.Lib) bool
	isLive = func(p []coord.Lib) bool {
		key := pathKey(p)
		if v, ok := live[key]; ok {
			return v
		}
		// Default false while computing; prefixes strictly shrink so the
		// recursion terminates even on cyclic graphs.
		live[key] = false

		parent := p[len(p)-1]
		prefix := p[:len(p)-1]
		entry, ok := e.vmap.Entry(parent)
		if !ok || entry.Selected == "" {
			return false
		}
		if _, ok := entry.Paths[entry.Selected][pathKey(prefix)]; !ok {
			return false
		}
		v := isLive(prefix)
		live[key] = v
		return v
	}

	lm := NewLibMap()
	for _, lib := range e.vmap.Libs() {
		entry, _ := e.vmap.Entry(lib)
		if entry.Selected == "" {
			continue
		}
		paths := entry.Paths[entry.Selected]

		keep := entry.Top
		dependents := make(libSet)
		for _, p := range paths {
			if isLive(p) {
				keep = true
			}
			if len(p) > 0 {
				dependents[p[len(p)-1]] = struct{}{}
			}
		}
		if !keep {
			continue
		}

		sel := &Selection{Coord: entry.Versions[entry.Selected]}
		if !entry.Top && len(dependents) > 0 {
			sel.Dependents = dependents.sorted()
		}
		lm.Put(lib, sel)
	}
	return lm
}

// materialize resolves local paths for every selection concurrently through
// the pool. Results are attached in lib order; the first error aborts.
func materialize(lm *LibMap, reg *provider.Registry, cfg provider.Config, pool *executor.Pool) error {
	libs := lm.Libs()
	futs := make([]*executor.Future[[]string], len(libs))
	for i, lib := range libs {
		sel, _ := lm.Get(lib)
		lib, c := lib, sel.Coord
		futs[i] = executor.Submit(pool, func(ctx context.Context) ([]string, error) {
			return reg.Paths(ctx, lib, c, cfg.WithDir(c.Root))
		})
	}
	for i, fut := range futs {
		paths, err := fut.Wait()
		if err != nil {
			return err
		}
		sel, _ := lm.Get(libs[i])
		sel.Paths = paths
	}
	return nil
}
