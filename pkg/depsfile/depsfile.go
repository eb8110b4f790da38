// Package depsfile reads deps.toml project manifests.
//
// A manifest declares the project's top-level deps (in file order), its
// source paths, Maven repositories, and named aliases:
//
//	paths = ["src", "resources"]
//
//	[deps]
//	"org.clojure/clojure" = { version = "1.9.0" }
//	"mylib/mylib" = { path = "../mylib" }
//
//	[aliases.test]
//	extra-paths = ["test"]
//	[aliases.test.extra-deps]
//	"junit/junit" = { version = "4.13.2" }
//
// Coordinate types may be declared explicitly or inferred: a version means
// maven, a path means local, a url/rev pair means git.
package depsfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/errors"
	"github.com/stackmesa/depstack/pkg/provider"
	"github.com/stackmesa/depstack/pkg/resolve"
)

// Name is the manifest filename looked for in project roots.
const Name = "deps.toml"

// File is a parsed manifest.
type File struct {
	// Deps are the top-level deps in declaration order.
	Deps []coord.Dep

	// Paths are the project's own source paths.
	Paths []string

	// Repos lists Maven repositories.
	Repos []provider.Repo

	// Aliases are named argument maps for resolve.CombineAliases.
	Aliases map[string]resolve.ArgsMap
}

type fileTOML struct {
	Paths   []string               `toml:"paths"`
	Deps    map[string]coord.Coord `toml:"deps"`
	Repos   []provider.Repo        `toml:"repos"`
	Aliases map[string]argsTOML    `toml:"aliases"`
}

type argsTOML struct {
	Deps               map[string]coord.Coord `toml:"deps"`
	ExtraDeps          map[string]coord.Coord `toml:"extra-deps"`
	OverrideDeps       map[string]coord.Coord `toml:"override-deps"`
	DefaultDeps        map[string]coord.Coord `toml:"default-deps"`
	ClasspathOverrides map[string]string      `toml:"classpath-overrides"`
	Paths              []string               `toml:"paths"`
	ExtraPaths         []string               `toml:"extra-paths"`
	JVMOpts            []string               `toml:"jvm-opts"`
	MainOpts           []string               `toml:"main-opts"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "no manifest at %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "read %s", path)
	}
	return Parse(data)
}

// LoadDir reads the deps.toml inside dir.
func LoadDir(dir string) (*File, error) {
	return Load(filepath.Join(dir, Name))
}

// Parse decodes a manifest document. Dep order follows the document.
// Unknown keys inside an alias are attached to that alias and rejected
// when it is combined; unknown keys elsewhere fail immediately.
func Parse(data []byte) (*File, error) {
	var raw fileTOML
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfig, err, "parse manifest")
	}

	f := &File{
		Paths: raw.Paths,
		Repos: raw.Repos,
	}

	deps, err := orderedDeps(md, raw.Deps)
	if err != nil {
		return nil, err
	}
	f.Deps = deps

	if len(raw.Aliases) > 0 {
		f.Aliases = make(map[string]resolve.ArgsMap, len(raw.Aliases))
		for name, a := range raw.Aliases {
			args, err := a.toArgs()
			if err != nil {
				return nil, err
			}
			f.Aliases[name] = args
		}
	}

	for _, key := range md.Undecoded() {
		if len(key) >= 3 && key[0] == "aliases" {
			name := key[1]
			args := f.Aliases[name]
			args.Unknown = append(args.Unknown, strings.Join(key[2:], "."))
			f.Aliases[name] = args
			continue
		}
		return nil, errors.New(errors.ErrCodeConfig, "unknown key %q in manifest", key.String())
	}
	return f, nil
}

// orderedDeps converts the deps table preserving document order, which the
// TOML decoder's map loses but its metadata retains.
func orderedDeps(md toml.MetaData, deps map[string]coord.Coord) ([]coord.Dep, error) {
	var names []string
	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == "deps" {
			names = append(names, key[1])
		}
	}
	// Fall back to map order for docs where metadata misses inline keys.
	if len(names) != len(deps) {
		names = names[:0]
		for name := range deps {
			names = append(names, name)
		}
	}

	out := make([]coord.Dep, 0, len(deps))
	for _, name := range names {
		c, ok := deps[name]
		if !ok {
			continue
		}
		lib, err := coord.ParseLib(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "bad lib %q", name)
		}
		out = append(out, coord.Dep{Lib: lib, Coord: InferType(c)})
	}
	return out, nil
}

func (a argsTOML) toArgs() (resolve.ArgsMap, error) {
	var out resolve.ArgsMap
	var err error
	if out.Deps, err = libMapOf(a.Deps); err != nil {
		return out, err
	}
	if out.ExtraDeps, err = libMapOf(a.ExtraDeps); err != nil {
		return out, err
	}
	if out.OverrideDeps, err = libMapOf(a.OverrideDeps); err != nil {
		return out, err
	}
	if out.DefaultDeps, err = libMapOf(a.DefaultDeps); err != nil {
		return out, err
	}
	if len(a.ClasspathOverrides) > 0 {
		out.ClasspathOverrides = make(map[coord.Lib]string, len(a.ClasspathOverrides))
		for name, p := range a.ClasspathOverrides {
			lib, err := coord.ParseLib(name)
			if err != nil {
				return out, errors.Wrap(errors.ErrCodeConfig, err, "bad lib %q", name)
			}
			out.ClasspathOverrides[lib] = p
		}
	}
	out.Paths = a.Paths
	out.ExtraPaths = a.ExtraPaths
	out.JVMOpts = a.JVMOpts
	out.MainOpts = a.MainOpts
	return out, nil
}

func libMapOf(in map[string]coord.Coord) (map[coord.Lib]coord.Coord, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[coord.Lib]coord.Coord, len(in))
	for name, c := range in {
		lib, err := coord.ParseLib(name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, err, "bad lib %q", name)
		}
		out[lib] = InferType(c)
	}
	return out, nil
}

// InferType fills in the coordinate type from the fields present: a
// version means maven, a path means local, a url means git. Explicit
// types are left alone.
func InferType(c coord.Coord) coord.Coord {
	if c.Type != "" {
		return c
	}
	switch {
	case c.Version != "":
		c.Type = coord.TypeMaven
	case c.Path != "":
		c.Type = coord.TypeLocal
	case c.URL != "":
		c.Type = coord.TypeGit
	}
	return c
}
