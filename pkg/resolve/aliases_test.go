package resolve

import (
	"reflect"
	"testing"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/errors"
)

func TestCombineAliasesMergeRules(t *testing.T) {
	b, c := lib("b"), lib("c")
	aliases := map[string]ArgsMap{
		"dev": {
			ExtraDeps:  map[coord.Lib]coord.Coord{b: ver("1")},
			Paths:      []string{"src", "dev"},
			JVMOpts:    []string{"-Xms256m"},
			MainOpts:   []string{"-m", "dev.main"},
			ExtraPaths: []string{"resources"},
		},
		"test": {
			ExtraDeps:  map[coord.Lib]coord.Coord{b: ver("2"), c: ver("1")},
			Paths:      []string{"test", "src"},
			JVMOpts:    []string{"-Xmx1g"},
			ExtraPaths: []string{"test-resources"},
		},
	}

	got, err := CombineAliases(aliases, []string{"dev", "test"})
	if err != nil {
		t.Fatalf("CombineAliases error: %v", err)
	}

	// Dep maps merge, right wins.
	if got.ExtraDeps[b].Version != "2" {
		t.Errorf("extra-deps b = %s, want 2", got.ExtraDeps[b].Version)
	}
	if got.ExtraDeps[c].Version != "1" {
		t.Errorf("extra-deps c = %s, want 1", got.ExtraDeps[c].Version)
	}

	// Paths concatenate and dedupe preserving order.
	if want := []string{"src", "dev", "test"}; !reflect.DeepEqual(got.Paths, want) {
		t.Errorf("paths = %v, want %v", got.Paths, want)
	}

	// jvm-opts concatenate.
	if want := []string{"-Xms256m", "-Xmx1g"}; !reflect.DeepEqual(got.JVMOpts, want) {
		t.Errorf("jvm-opts = %v, want %v", got.JVMOpts, want)
	}

	// main-opts: last non-empty wins; test has none, so dev's survive.
	if want := []string{"-m", "dev.main"}; !reflect.DeepEqual(got.MainOpts, want) {
		t.Errorf("main-opts = %v, want %v", got.MainOpts, want)
	}
}

func TestCombineAliasesComposes(t *testing.T) {
	b, c := lib("b"), lib("c")
	aliases := map[string]ArgsMap{
		"x": {
			OverrideDeps: map[coord.Lib]coord.Coord{b: ver("1")},
			Paths:        []string{"a", "b"},
			MainOpts:     []string{"x"},
		},
		"y": {
			OverrideDeps: map[coord.Lib]coord.Coord{c: ver("2")},
			Paths:        []string{"b", "c"},
			MainOpts:     []string{"y"},
		},
	}

	both, err := CombineAliases(aliases, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	x, _ := CombineAliases(aliases, []string{"x"})
	y, _ := CombineAliases(aliases, []string{"y"})
	composed := MergeArgs(x, y)

	if !reflect.DeepEqual(both, composed) {
		t.Errorf("combine({x,y}) != combine({x}) ∘ combine({y}):\n%+v\n%+v", both, composed)
	}
}

func TestCombineAliasesUnknownName(t *testing.T) {
	_, err := CombineAliases(map[string]ArgsMap{}, []string{"nope"})
	if err == nil {
		t.Fatal("expected error for unknown alias")
	}
	if !errors.Is(err, errors.ErrCodeAlias) {
		t.Errorf("error code = %s, want ALIAS_ERROR", errors.GetCode(err))
	}
}

func TestCombineAliasesUnknownKey(t *testing.T) {
	aliases := map[string]ArgsMap{
		"bad": {Unknown: []string{"jvm-optz"}},
	}
	_, err := CombineAliases(aliases, []string{"bad"})
	if err == nil {
		t.Fatal("expected error for unknown alias key")
	}
	if !errors.Is(err, errors.ErrCodeAlias) {
		t.Errorf("error code = %s, want ALIAS_ERROR", errors.GetCode(err))
	}
}
