package resolve

import (
	"maps"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/errors"
)

// ArgsMap is the merged argument set produced by combining aliases. Each
// field corresponds to one recognized alias key and carries that key's
// merge rule.
type ArgsMap struct {
	Deps               map[coord.Lib]coord.Coord `json:"deps,omitempty"`
	ExtraDeps          map[coord.Lib]coord.Coord `json:"extra_deps,omitempty"`
	OverrideDeps       map[coord.Lib]coord.Coord `json:"override_deps,omitempty"`
	DefaultDeps        map[coord.Lib]coord.Coord `json:"default_deps,omitempty"`
	ClasspathOverrides map[coord.Lib]string      `json:"classpath_overrides,omitempty"`
	Paths              []string                  `json:"paths,omitempty"`
	ExtraPaths         []string                  `json:"extra_paths,omitempty"`
	JVMOpts            []string                  `json:"jvm_opts,omitempty"`
	MainOpts           []string                  `json:"main_opts,omitempty"`

	// Unknown records unrecognized keys found when the alias was read.
	// Combining an alias with unknown keys fails.
	Unknown []string `json:"-"`
}

// CombineAliases merges the named aliases left to right under per-key
// rules: dep maps merge with right winning per lib, path lists concatenate
// with order-preserving dedup, jvm-opts concatenate, and main-opts take the
// last non-empty value. Unknown alias names or keys fail with a
// descriptive error.
func CombineAliases(aliases map[string]ArgsMap, names []string) (ArgsMap, error) {
	var out ArgsMap
	for _, name := range names {
		alias, ok := aliases[name]
		if !ok {
			return ArgsMap{}, errors.New(errors.ErrCodeAlias, "unknown alias %q", name)
		}
		if len(alias.Unknown) > 0 {
			return ArgsMap{}, errors.New(errors.ErrCodeAlias, "unknown key %q in alias %q", alias.Unknown[0], name)
		}
		out = MergeArgs(out, alias)
	}
	return out, nil
}

// MergeArgs merges b into a under the per-key rules and returns the result.
// Neither input is mutated.
func MergeArgs(a, b ArgsMap) ArgsMap {
	return ArgsMap{
		Deps:               mergeDepMaps(a.Deps, b.Deps),
		ExtraDeps:          mergeDepMaps(a.ExtraDeps, b.ExtraDeps),
		OverrideDeps:       mergeDepMaps(a.OverrideDeps, b.OverrideDeps),
		DefaultDeps:        mergeDepMaps(a.DefaultDeps, b.DefaultDeps),
		ClasspathOverrides: mergeStringMaps(a.ClasspathOverrides, b.ClasspathOverrides),
		Paths:              dedupe(append(append([]string{}, a.Paths...), b.Paths...)),
		ExtraPaths:         dedupe(append(append([]string{}, a.ExtraPaths...), b.ExtraPaths...)),
		JVMOpts:            append(append([]string{}, a.JVMOpts...), b.JVMOpts...),
		MainOpts:           lastNonEmpty(a.MainOpts, b.MainOpts),
	}
}

func mergeDepMaps(a, b map[coord.Lib]coord.Coord) map[coord.Lib]coord.Coord {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[coord.Lib]coord.Coord, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}

func mergeStringMaps(a, b map[coord.Lib]string) map[coord.Lib]string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[coord.Lib]string, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func lastNonEmpty(a, b []string) []string {
	if len(b) > 0 {
		return append([]string{}, b...)
	}
	if len(a) > 0 {
		return append([]string{}, a...)
	}
	return nil
}
