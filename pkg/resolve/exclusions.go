package resolve

import (
	"slices"

	"github.com/stackmesa/depstack/pkg/coord"
)

// libSet is a set of libraries stored base-normalized (pre-'$' names), so
// membership tests match sub-libraries against their base exclusion.
type libSet map[coord.Lib]struct{}

func newLibSet(libs []coord.Lib) libSet {
	if len(libs) == 0 {
		return nil
	}
	s := make(libSet, len(libs))
	for _, l := range libs {
		s[l.Base()] = struct{}{}
	}
	return s
}

func (s libSet) has(l coord.Lib) bool {
	_, ok := s[l.Base()]
	return ok
}

func (s libSet) intersect(o libSet) libSet {
	var out libSet
	for l := range s {
		if _, ok := o[l]; ok {
			if out == nil {
				out = make(libSet)
			}
			out[l] = struct{}{}
		}
	}
	return out
}

func (s libSet) sorted() []coord.Lib {
	out := make([]coord.Lib, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	slices.SortFunc(out, func(a, b coord.Lib) int {
		switch as, bs := a.String(), b.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Exclusions maps parent paths (as pathKeys) to the libraries suppressed
// beneath them.
type Exclusions map[string]libSet

// Excluded walks path from full length down to empty and reports whether
// any prefix suppresses lib. Matching uses the pre-'$' base name.
func (e Exclusions) Excluded(path []coord.Lib, lib coord.Lib) bool {
	for i := len(path); i >= 0; i-- {
		if e[pathKey(path[:i])].has(lib) {
			return true
		}
	}
	return false
}

// cutKey identifies one admitted (lib, version) pair.
type cutKey struct {
	lib coord.Lib
	id  coord.ID
}

// Cut records, per (lib, version), the children that were suppressed by
// exclusion when that pair was admitted. When the same pair is revisited
// through a path with a smaller exclusion set, exactly the newly-uncovered
// children are re-enqueued.
type Cut map[cutKey]libSet

// updateExclusions applies the exclusion bookkeeping for one include
// decision, mutating excl and cut in place. The returned predicate decides
// which children to enqueue; ok is false when no children are enqueued at
// all (excluded / older / use-top / parent-omitted).
func updateExclusions(lib coord.Lib, useCoord coord.Coord, id coord.ID, usePath []coord.Lib,
	include bool, reason Reason, excl Exclusions, cut Cut) (pred func(coord.Lib) bool, ok bool) {
	switch {
	case include:
		e := newLibSet(useCoord.Exclusions)
		if len(e) == 0 {
			return func(coord.Lib) bool { return true }, true
		}
		excl[pathKey(usePath)] = e
		cut[cutKey{lib: lib, id: id}] = e
		return func(c coord.Lib) bool { return !e.has(c) }, true

	case reason == ReasonSameVersion:
		prev := cut[cutKey{lib: lib, id: id}]
		next := newLibSet(useCoord.Exclusions)
		if len(next) > 0 {
			excl[pathKey(usePath)] = next
		}
		cut[cutKey{lib: lib, id: id}] = prev.intersect(next)
		// Enqueue only children previously suppressed here that the new
		// edge no longer suppresses; everything else already ran.
		return func(c coord.Lib) bool { return prev.has(c) && !next.has(c) }, true

	default:
		return nil, false
	}
}
