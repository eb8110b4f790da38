package resolve

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/errors"
	"github.com/stackmesa/depstack/pkg/executor"
	"github.com/stackmesa/depstack/pkg/provider"
)

// childLookup is a pending child-dependency fetch. The future resolves on a
// worker; the coordinator consumes results strictly in enqueue order, which
// keeps traversal deterministic even though fetches race.
type childLookup struct {
	fut    *executor.Future[[]coord.Dep]
	parent []coord.Dep
	pred   func(coord.Lib) bool
}

// queueItem is either a concrete path to visit or a child lookup.
type queueItem struct {
	path   []coord.Dep
	lookup *childLookup
}

// expander owns all expansion state. The main loop is strictly sequential:
// only the coordinator reads or writes vmap, excl, cut, q, pendq, and
// trace. Workers perform provider Deps calls and return pure values.
type expander struct {
	reg  *provider.Registry
	cfg  provider.Config
	pool *executor.Pool

	vmap *VersionMap
	excl Exclusions
	cut  Cut

	overrides map[coord.Lib]coord.Coord
	defaults  map[coord.Lib]coord.Coord

	q     []queueItem
	pendq [][]coord.Dep

	trace  *Trace
	logger *log.Logger
}

// expand drives the breadth-first walk from the seeded top-level deps until
// both queues drain. Any provider error aborts the walk.
func (e *expander) expand(seeds []coord.Dep) error {
	for _, d := range seeds {
		e.q = append(e.q, queueItem{path: []coord.Dep{d}})
	}

	for {
		path, ok, err := e.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := e.visit(path); err != nil {
			return err
		}
	}
}

// next yields the path to process: pendq first, then the queue. Popping a
// child lookup blocks on its future, filters the children through the
// recorded predicate, and turns them into the new pendq.
func (e *expander) next() ([]coord.Dep, bool, error) {
	for {
		if len(e.pendq) > 0 {
			path := e.pendq[0]
			e.pendq = e.pendq[1:]
			return path, true, nil
		}
		if len(e.q) == 0 {
			return nil, false, nil
		}

		item := e.q[0]
		e.q = e.q[1:]
		if item.lookup == nil {
			return item.path, true, nil
		}

		children, err := item.lookup.fut.Wait()
		if err != nil {
			return nil, false, err
		}
		for _, child := range children {
			if !item.lookup.pred(child.Lib) {
				continue
			}
			path := make([]coord.Dep, len(item.lookup.parent)+1)
			copy(path, item.lookup.parent)
			path[len(path)-1] = child
			e.pendq = append(e.pendq, path)
		}
	}
}

// visit processes one path: compute the effective coordinate, make the
// include decision, update exclusion state, and enqueue a child lookup when
// the decision calls for one.
func (e *expander) visit(path []coord.Dep) error {
	dep := path[len(path)-1]
	lib := dep.Lib
	parents := libsOf(path[:len(path)-1])

	use, override := e.chooseCoord(lib, dep.Coord)
	if use.IsZero() {
		return errors.New(errors.ErrCodeInvalidCoord, "no coordinate declared for %s", lib)
	}

	// Manifest reads for this coordinate are scoped to its root so
	// relative local paths resolve correctly.
	scoped := e.cfg.WithDir(use.Root)

	use, err := e.reg.ManifestType(lib, use, scoped)
	if err != nil {
		return err
	}
	id, err := e.reg.DepID(lib, use, scoped)
	if err != nil {
		return err
	}

	include, reason, err := e.decide(lib, use, id, parents)
	if err != nil {
		return err
	}

	e.record(parents, lib, dep.Coord, use, id, override, include, reason)

	usePath := make([]coord.Lib, len(parents)+1)
	copy(usePath, parents)
	usePath[len(usePath)-1] = lib

	pred, ok := updateExclusions(lib, use, id, usePath, include, reason, e.excl, e.cut)
	if !ok {
		return nil
	}

	parent := make([]coord.Dep, len(path))
	copy(parent, path)
	parent[len(parent)-1] = coord.Dep{Lib: lib, Coord: use}

	fut := executor.Submit(e.pool, func(ctx context.Context) ([]coord.Dep, error) {
		return e.reg.Deps(ctx, lib, use, scoped)
	})
	e.q = append(e.q, queueItem{lookup: &childLookup{fut: fut, parent: parent, pred: pred}})
	return nil
}

// chooseCoord computes the effective coordinate for an edge: an override
// wins, then the edge's own coordinate, then a default.
func (e *expander) chooseCoord(lib coord.Lib, c coord.Coord) (coord.Coord, *coord.Coord) {
	if oc, ok := e.overrides[lib]; ok {
		return oc, &oc
	}
	if !c.IsZero() {
		return c, nil
	}
	if dc, ok := e.defaults[lib]; ok {
		return dc, nil
	}
	return c, nil
}

// decide applies the include-decision rules in order; the first match wins.
// Top deps always win over deeper edges; among non-top observations the
// newer version wins.
func (e *expander) decide(lib coord.Lib, use coord.Coord, id coord.ID, parents []coord.Lib) (bool, Reason, error) {
	if len(parents) == 0 {
		e.vmap.AddVersion(lib, use, parents, id)
		e.vmap.SelectVersion(lib, id, true)
		return true, ReasonNewTopDep, nil
	}
	if e.excl.Excluded(parents, lib) {
		return false, ReasonExcluded, nil
	}

	entry, known := e.vmap.Entry(lib)
	switch {
	case known && entry.Top:
		return false, ReasonUseTop, nil
	case e.vmap.ParentMissing(parents):
		return false, ReasonParentOmitted, nil
	case !known:
		e.vmap.AddVersion(lib, use, parents, id)
		e.vmap.SelectVersion(lib, id, false)
		return true, ReasonNewDep, nil
	}

	if id == entry.Selected {
		// Still record the parent path: downstream orphan checks depend
		// on it even though the node is omitted.
		e.vmap.AddVersion(lib, use, parents, id)
		return false, ReasonSameVersion, nil
	}

	cmp, err := e.reg.CompareVersions(lib, use, entry.Versions[entry.Selected], e.cfg)
	if err != nil {
		return false, "", err
	}
	if cmp > 0 {
		e.vmap.AddVersion(lib, use, parents, id)
		e.vmap.SelectVersion(lib, id, false)
		return true, ReasonNewerVersion, nil
	}
	return false, ReasonOlderVersion, nil
}

func (e *expander) record(parents []coord.Lib, lib coord.Lib, orig, use coord.Coord, id coord.ID,
	override *coord.Coord, include bool, reason Reason) {
	e.logger.Debug("dep", "lib", lib, "id", id, "include", include, "reason", reason)
	if e.trace == nil {
		return
	}
	p := make([]coord.Lib, len(parents))
	copy(p, parents)
	e.trace.Entries = append(e.trace.Entries, TraceEntry{
		Path:          p,
		Lib:           lib,
		Coord:         orig,
		UseCoord:      use,
		CoordID:       id,
		OverrideCoord: override,
		Include:       include,
		Reason:        reason,
	})
}

func libsOf(deps []coord.Dep) []coord.Lib {
	if len(deps) == 0 {
		return nil
	}
	libs := make([]coord.Lib, len(deps))
	for i, d := range deps {
		libs[i] = d.Lib
	}
	return libs
}
