package resolve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/provider"
)

const typeMem = coord.Type("mem")

// memProvider is a synthetic in-memory provider: version comparison is
// lexicographic on the version string, and the dependency repo is a fixed
// map from "lib version" to child deps.
type memProvider struct {
	repo    map[string][]coord.Dep
	depsErr error
	pathErr error
}

func (p *memProvider) Type() coord.Type { return typeMem }

func (p *memProvider) Canonicalize(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Lib, coord.Coord, error) {
	return lib, c, nil
}

func (p *memProvider) DepID(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.ID, error) {
	return coord.ID(c.Version), nil
}

func (p *memProvider) ManifestType(lib coord.Lib, c coord.Coord, cfg provider.Config) (coord.Coord, error) {
	return c, nil
}

func (p *memProvider) Deps(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]coord.Dep, error) {
	if p.depsErr != nil {
		return nil, p.depsErr
	}
	return p.repo[lib.Name+" "+c.Version], nil
}

func (p *memProvider) CompareVersions(lib coord.Lib, a, b coord.Coord, cfg provider.Config) (int, error) {
	return strings.Compare(a.Version, b.Version), nil
}

func (p *memProvider) Paths(ctx context.Context, lib coord.Lib, c coord.Coord, cfg provider.Config) ([]string, error) {
	if p.pathErr != nil {
		return nil, p.pathErr
	}
	return []string{lib.Name + "-" + c.Version + ".jar"}, nil
}

func (p *memProvider) Location(lib coord.Lib, c coord.Coord, cfg provider.Config) (string, error) {
	return lib.Name + "-" + c.Version + ".jar", nil
}

func (p *memProvider) Summary(lib coord.Lib, c coord.Coord) string { return c.Version }

func lib(name string) coord.Lib { return coord.Lib{Group: name, Name: name} }

func ver(v string, exclusions ...string) coord.Coord {
	c := coord.Coord{Type: typeMem, Version: v}
	for _, e := range exclusions {
		c.Exclusions = append(c.Exclusions, lib(e))
	}
	return c
}

func dep(name, v string, exclusions ...string) coord.Dep {
	return coord.Dep{Lib: lib(name), Coord: ver(v, exclusions...)}
}

func run(t *testing.T, repo map[string][]coord.Dep, deps []coord.Dep, opts Options) *LibMap {
	t.Helper()
	reg := provider.NewRegistry(&memProvider{repo: repo})
	lm, err := Deps(context.Background(), reg, deps, provider.Config{}, opts)
	if err != nil {
		t.Fatalf("Deps() error: %v", err)
	}
	return lm
}

// wantVersions checks the lib map holds exactly the given lib→version set.
func wantVersions(t *testing.T, lm *LibMap, want map[string]string) {
	t.Helper()
	if lm.Len() != len(want) {
		t.Errorf("lib count = %d, want %d (libs: %v)", lm.Len(), len(want), lm.Libs())
	}
	for name, v := range want {
		sel, ok := lm.Get(lib(name))
		if !ok {
			t.Errorf("missing lib %s", name)
			continue
		}
		if sel.Coord.Version != v {
			t.Errorf("%s version = %s, want %s", name, sel.Coord.Version, v)
		}
	}
}

func TestBasicTransitive(t *testing.T) {
	repo := map[string][]coord.Dep{
		"clojure 1.9.0": {dep("spec.alpha", "0.1.124"), dep("core.specs.alpha", "0.1.10")},
	}
	lm := run(t, repo, []coord.Dep{dep("clojure", "1.9.0")}, Options{})
	wantVersions(t, lm, map[string]string{
		"clojure":          "1.9.0",
		"spec.alpha":       "0.1.124",
		"core.specs.alpha": "0.1.10",
	})

	// Transitive deps carry their parent as a dependent; top deps none.
	sel, _ := lm.Get(lib("spec.alpha"))
	if len(sel.Dependents) != 1 || sel.Dependents[0] != lib("clojure") {
		t.Errorf("spec.alpha dependents = %v, want [clojure]", sel.Dependents)
	}
	top, _ := lm.Get(lib("clojure"))
	if len(top.Dependents) != 0 {
		t.Errorf("top dep has dependents: %v", top.Dependents)
	}
}

func TestTopDepWinsOverDeeper(t *testing.T) {
	repo := map[string][]coord.Dep{
		"clojure 1.9.0": {dep("spec.alpha", "0.1.124"), dep("core.specs.alpha", "0.1.10")},
	}
	lm := run(t, repo, []coord.Dep{dep("clojure", "1.9.0"), dep("spec.alpha", "0.1.1")}, Options{})
	wantVersions(t, lm, map[string]string{
		"clojure":          "1.9.0",
		"spec.alpha":       "0.1.1",
		"core.specs.alpha": "0.1.10",
	})
}

func TestNewerWinsWhenNotTop(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("b", "1"), dep("c", "2")},
		"b 1": {dep("c", "1")},
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1")}, Options{})
	wantVersions(t, lm, map[string]string{"a": "1", "b": "1", "c": "2"})
}

func TestOrphaningByNewerSelection(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("d", "1")},
		"b 1": {dep("e", "1")},
		"c 1": {dep("e", "2")},
		"e 1": {dep("d", "2")},
	}
	// The d2 enqueued under e1 must be dropped once e1 is displaced by e2.
	lm := run(t, repo, []coord.Dep{dep("a", "1"), dep("b", "1"), dep("c", "1")}, Options{})
	wantVersions(t, lm, map[string]string{"a": "1", "b": "1", "c": "1", "d": "1", "e": "2"})
}

func TestTopOrderIrrelevantWithoutConflict(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("d", "1")},
		"b 1": {dep("e", "1")},
		"c 1": {dep("e", "2")},
		"e 1": {dep("d", "2")},
	}
	want := map[string]string{"a": "1", "b": "1", "c": "1", "d": "1", "e": "2"}
	orders := [][]coord.Dep{
		{dep("a", "1"), dep("b", "1"), dep("c", "1")},
		{dep("c", "1"), dep("b", "1"), dep("a", "1")},
		{dep("b", "1"), dep("c", "1"), dep("a", "1")},
	}
	for _, deps := range orders {
		wantVersions(t, run(t, repo, deps, Options{}), want)
	}
}

func TestExclusionNarrowingAcrossPaths(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("c", "1", "d")},
		"b 1": {dep("c", "1")},
		"c 1": {dep("d", "1")},
	}
	want := map[string]string{"a": "1", "b": "1", "c": "1", "d": "1"}

	// The excluding edge first: d is cut under a/c, then re-enqueued when
	// the b/c edge arrives without the exclusion.
	wantVersions(t, run(t, repo, []coord.Dep{dep("a", "1"), dep("b", "1")}, Options{}), want)

	// The open edge first: d resolves immediately, the later excluding
	// edge must not retract it.
	wantVersions(t, run(t, repo, []coord.Dep{dep("b", "1"), dep("a", "1")}, Options{}), want)
}

func TestExclusionSuppressesChild(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("c", "1", "d")},
		"c 1": {dep("d", "1")},
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1")}, Options{})
	wantVersions(t, lm, map[string]string{"a": "1", "c": "1"})
}

func TestExclusionMatchesBaseName(t *testing.T) {
	// Excluding d suppresses the sub-library d$tests as well.
	repo := map[string][]coord.Dep{
		"a 1": {dep("c", "1", "d")},
		"c 1": {{Lib: coord.Lib{Group: "d", Name: "d$tests"}, Coord: ver("1")}},
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1")}, Options{})
	wantVersions(t, lm, map[string]string{"a": "1", "c": "1"})
}

func TestCycleTerminates(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("b", "1"), dep("c", "2")},
		"b 1": {dep("c", "1")},
		"c 1": {dep("a", "1")},
		"c 2": {dep("a", "1")},
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1")}, Options{})
	wantVersions(t, lm, map[string]string{"a": "1", "b": "1", "c": "2"})
}

func TestSelfCycleTerminates(t *testing.T) {
	repo := map[string][]coord.Dep{
		"x 1": {dep("a", "1")},
		"a 1": {dep("a", "1")},
	}
	lm := run(t, repo, []coord.Dep{dep("x", "1")}, Options{})
	wantVersions(t, lm, map[string]string{"x": "1", "a": "1"})
}

func TestEmptyDeps(t *testing.T) {
	lm := run(t, nil, nil, Options{})
	if lm.Len() != 0 {
		t.Errorf("empty deps should yield empty lib map, got %v", lm.Libs())
	}
}

func TestSameVersionRecordsAllParentPaths(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("c", "1")},
		"b 1": {dep("c", "1")},
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1"), dep("b", "1")}, Options{})
	sel, _ := lm.Get(lib("c"))
	if len(sel.Dependents) != 2 {
		t.Fatalf("c dependents = %v, want both a and b", sel.Dependents)
	}
}

func TestOverrideDeps(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("b", "1")},
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1")}, Options{
		OverrideDeps: map[coord.Lib]coord.Coord{lib("b"): ver("9")},
	})
	wantVersions(t, lm, map[string]string{"a": "1", "b": "9"})
}

func TestDefaultDepsFillMissingCoord(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {{Lib: lib("b")}}, // edge declares no coordinate
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1")}, Options{
		DefaultDeps: map[coord.Lib]coord.Coord{lib("b"): ver("3")},
	})
	wantVersions(t, lm, map[string]string{"a": "1", "b": "3"})
}

func TestMissingCoordFails(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {{Lib: lib("b")}},
	}
	reg := provider.NewRegistry(&memProvider{repo: repo})
	_, err := Deps(context.Background(), reg, []coord.Dep{dep("a", "1")}, provider.Config{}, Options{})
	if err == nil {
		t.Fatal("expected error for edge without coordinate")
	}
}

func TestExtraDepsMergeOverDeps(t *testing.T) {
	repo := map[string][]coord.Dep{}
	lm := run(t, repo, []coord.Dep{dep("a", "1"), dep("b", "1")}, Options{
		ExtraDeps: []coord.Dep{dep("b", "2"), dep("c", "1")},
	})
	wantVersions(t, lm, map[string]string{"a": "1", "b": "2", "c": "1"})
}

func TestProviderErrorAborts(t *testing.T) {
	boom := errors.New("registry down")
	reg := provider.NewRegistry(&memProvider{depsErr: boom})
	_, err := Deps(context.Background(), reg, []coord.Dep{dep("a", "1")}, provider.Config{}, Options{})
	if err == nil {
		t.Fatal("expected error when provider fails")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error should wrap cause, got: %v", err)
	}
}

func TestPathErrorAborts(t *testing.T) {
	boom := errors.New("download failed")
	reg := provider.NewRegistry(&memProvider{pathErr: boom})
	_, err := Deps(context.Background(), reg, []coord.Dep{dep("a", "1")}, provider.Config{}, Options{})
	if err == nil {
		t.Fatal("expected error when path materialization fails")
	}
}

func TestPathsMaterialized(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("b", "2")},
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1")}, Options{})
	sel, _ := lm.Get(lib("b"))
	if len(sel.Paths) != 1 || sel.Paths[0] != "b-2.jar" {
		t.Errorf("b paths = %v, want [b-2.jar]", sel.Paths)
	}
}

func TestTrace(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("b", "1"), dep("c", "2")},
		"b 1": {dep("c", "1")},
	}
	lm := run(t, repo, []coord.Dep{dep("a", "1")}, Options{Trace: true})
	if lm.Trace == nil {
		t.Fatal("trace not attached")
	}
	if lm.Trace.RunID == "" {
		t.Error("trace run ID empty")
	}

	reasons := make(map[Reason]int)
	for _, e := range lm.Trace.Entries {
		reasons[e.Reason]++
	}
	if reasons[ReasonNewTopDep] != 1 {
		t.Errorf("new-top-dep count = %d, want 1", reasons[ReasonNewTopDep])
	}
	if reasons[ReasonNewDep] != 2 {
		t.Errorf("new-dep count = %d, want 2", reasons[ReasonNewDep])
	}
	if reasons[ReasonOlderVersion] != 1 {
		t.Errorf("older-version count = %d, want 1", reasons[ReasonOlderVersion])
	}
}

func TestTraceOffByDefault(t *testing.T) {
	lm := run(t, nil, []coord.Dep{dep("a", "1")}, Options{})
	if lm.Trace != nil {
		t.Error("trace attached without Trace option")
	}
}

func TestDeterministicOrder(t *testing.T) {
	repo := map[string][]coord.Dep{
		"a 1": {dep("b", "1"), dep("c", "1"), dep("d", "1")},
	}
	first := run(t, repo, []coord.Dep{dep("a", "1")}, Options{}).Libs()
	for range 5 {
		again := run(t, repo, []coord.Dep{dep("a", "1")}, Options{}).Libs()
		if len(again) != len(first) {
			t.Fatalf("lib count changed between runs: %v vs %v", again, first)
		}
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("order changed between runs: %v vs %v", again, first)
			}
		}
	}
}
