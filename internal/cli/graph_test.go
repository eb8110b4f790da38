package cli

import (
	"strings"
	"testing"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/provider"
	"github.com/stackmesa/depstack/pkg/provider/git"
	"github.com/stackmesa/depstack/pkg/provider/local"
	"github.com/stackmesa/depstack/pkg/resolve"
)

func TestToDOT(t *testing.T) {
	lm := resolve.NewLibMap()
	a, b := mkLib("a"), mkLib("b")
	lm.Put(a, &resolve.Selection{Coord: coord.Coord{Type: coord.TypeLocal, Path: "/p/a"}})
	lm.Put(b, &resolve.Selection{
		Coord:      coord.Coord{Type: coord.TypeLocal, Path: "/p/b"},
		Dependents: []coord.Lib{a},
	})

	reg := provider.NewRegistry(local.New(), git.New())
	dot := toDOT(reg, lm)

	if !strings.Contains(dot, `"a/a" -> "b/b";`) {
		t.Errorf("missing edge in DOT:\n%s", dot)
	}
	if !strings.Contains(dot, "digraph deps {") {
		t.Errorf("missing header:\n%s", dot)
	}
	if !strings.Contains(dot, "/p/a") {
		t.Errorf("missing summary label:\n%s", dot)
	}
}
