package resolve

import (
	"strings"

	"github.com/stackmesa/depstack/pkg/coord"
)

// pathKey renders a parent-lib chain as a map key. Lib strings never
// contain the separator, so keys are collision-free.
func pathKey(libs []coord.Lib) string {
	if len(libs) == 0 {
		return ""
	}
	parts := make([]string, len(libs))
	for i, l := range libs {
		parts[i] = l.String()
	}
	return strings.Join(parts, "\x1f")
}

// Entry tracks everything observed about one library during expansion.
type Entry struct {
	// Versions maps every observed coordinate identity to its coordinate.
	Versions map[coord.ID]coord.Coord

	// Paths maps each coordinate identity to the set of parent paths it
	// arrived through, keyed by pathKey with the original chain retained.
	Paths map[coord.ID]map[string][]coord.Lib

	// Selected is the currently chosen coordinate identity.
	Selected coord.ID

	// Top is true iff the library appears as a top-level dep. Top
	// selections never change once set.
	Top bool
}

// VersionMap tracks per-library version observations and selections.
// It is owned by the expansion engine's coordinator and mutated in place;
// entries are created on first sighting and never removed. Orphaning is
// expressed by selection changes elsewhere and filtered during final
// extraction.
type VersionMap struct {
	order   []coord.Lib
	entries map[coord.Lib]*Entry
}

// NewVersionMap creates an empty version map.
func NewVersionMap() *VersionMap {
	return &VersionMap{entries: make(map[coord.Lib]*Entry)}
}

// Entry returns the entry for lib, if one exists.
func (m *VersionMap) Entry(lib coord.Lib) (*Entry, bool) {
	e, ok := m.entries[lib]
	return e, ok
}

// Libs returns all tracked libraries in first-sighting order.
func (m *VersionMap) Libs() []coord.Lib {
	return m.order
}

// AddVersion registers a coordinate observation for lib and records the
// parent path it arrived through. Recording happens even when the node is
// ultimately omitted (same-version revisits), because downstream orphan
// checks depend on the path being present.
func (m *VersionMap) AddVersion(lib coord.Lib, c coord.Coord, parents []coord.Lib, id coord.ID) {
	e, ok := m.entries[lib]
	if !ok {
		e = &Entry{
			Versions: make(map[coord.ID]coord.Coord),
			Paths:    make(map[coord.ID]map[string][]coord.Lib),
		}
		m.entries[lib] = e
		m.order = append(m.order, lib)
	}
	e.Versions[id] = c
	paths, ok := e.Paths[id]
	if !ok {
		paths = make(map[string][]coord.Lib)
		e.Paths[id] = paths
	}
	key := pathKey(parents)
	if _, ok := paths[key]; !ok {
		p := make([]coord.Lib, len(parents))
		copy(p, parents)
		paths[key] = p
	}
}

// SelectVersion sets the current selection for lib. When top is true the
// entry is marked as a top-level dep.
func (m *VersionMap) SelectVersion(lib coord.Lib, id coord.ID, top bool) {
	e := m.entries[lib]
	e.Selected = id
	if top {
		e.Top = true
	}
}

// SelectedVersion returns the selected coordinate identity for lib.
func (m *VersionMap) SelectedVersion(lib coord.Lib) (coord.ID, bool) {
	if e, ok := m.entries[lib]; ok && e.Selected != "" {
		return e.Selected, true
	}
	return "", false
}

// SelectedCoord returns the selected coordinate for lib.
func (m *VersionMap) SelectedCoord(lib coord.Lib) (coord.Coord, bool) {
	if e, ok := m.entries[lib]; ok && e.Selected != "" {
		return e.Versions[e.Selected], true
	}
	return coord.Coord{}, false
}

// ParentMissing reports whether a child's parent path has been orphaned:
// given parents = prefix ++ [parentLib], it is true iff prefix is not among
// the paths recorded for parentLib's currently selected coordinate. Used to
// drop stale work produced by a displaced ancestor.
func (m *VersionMap) ParentMissing(parents []coord.Lib) bool {
	if len(parents) == 0 {
		return false
	}
	parentLib := parents[len(parents)-1]
	prefix := parents[:len(parents)-1]

	e, ok := m.entries[parentLib]
	if !ok || e.Selected == "" {
		return true
	}
	paths, ok := e.Paths[e.Selected]
	if !ok {
		return true
	}
	_, ok = paths[pathKey(prefix)]
	return !ok
}
