package resolve

import (
	"fmt"
	"io"
	"strings"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/provider"
)

// PrintTree reconstructs the dependency forest from each selection's
// dependents and writes an indented listing. Roots (top deps) print first
// in lib-map order; children print in lib-map order beneath each parent.
// Cycles are broken by not revisiting a lib already on the current branch.
func PrintTree(w io.Writer, reg *provider.Registry, lm *LibMap) {
	children := make(map[coord.Lib][]coord.Lib)
	var roots []coord.Lib
	for _, lib := range lm.Libs() {
		sel, _ := lm.Get(lib)
		if len(sel.Dependents) == 0 {
			roots = append(roots, lib)
			continue
		}
		for _, parent := range sel.Dependents {
			children[parent] = append(children[parent], lib)
		}
	}

	onBranch := make(map[coord.Lib]bool)
	var walk func(lib coord.Lib, depth int)
	walk = func(lib coord.Lib, depth int) {
		sel, ok := lm.Get(lib)
		if !ok || onBranch[lib] {
			return
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", depth), lib, reg.Summary(lib, sel.Coord))
		onBranch[lib] = true
		for _, child := range children[lib] {
			walk(child, depth+1)
		}
		onBranch[lib] = false
	}

	for _, root := range roots {
		walk(root, 0)
	}
}
