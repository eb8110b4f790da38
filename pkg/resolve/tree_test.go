package resolve

import (
	"strings"
	"testing"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/provider"
)

func TestPrintTree(t *testing.T) {
	repo := map[string][]coord.Dep{
		"clojure 1.9.0":      {dep("spec.alpha", "0.1.124")},
		"spec.alpha 0.1.124": nil,
	}
	reg := provider.NewRegistry(&memProvider{repo: repo})
	lm := run(t, repo, []coord.Dep{dep("clojure", "1.9.0")}, Options{})

	var b strings.Builder
	PrintTree(&b, reg, lm)
	out := b.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("tree lines = %d, want 2:\n%s", len(lines), out)
	}
	if lines[0] != "clojure/clojure 1.9.0" {
		t.Errorf("root line = %q", lines[0])
	}
	if lines[1] != "  spec.alpha/spec.alpha 0.1.124" {
		t.Errorf("child line = %q", lines[1])
	}
}

func TestPrintTreeSharedChildAppearsUnderBothParents(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("c", "1")},
		"b 1": {dep("c", "1")},
	}
	reg := provider.NewRegistry(&memProvider{repo: repo})
	lm := run(t, repo, []coord.Dep{dep("a", "1"), dep("b", "1")}, Options{})

	var sb strings.Builder
	PrintTree(&sb, reg, lm)
	if got := strings.Count(sb.String(), "c/c 1"); got != 2 {
		t.Errorf("shared child printed %d times, want 2:\n%s", got, sb.String())
	}
}
