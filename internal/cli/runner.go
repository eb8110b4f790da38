package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stackmesa/depstack/pkg/coord"
	"github.com/stackmesa/depstack/pkg/depsfile"
	"github.com/stackmesa/depstack/pkg/provider"
	"github.com/stackmesa/depstack/pkg/provider/git"
	"github.com/stackmesa/depstack/pkg/provider/local"
	"github.com/stackmesa/depstack/pkg/provider/maven"
	"github.com/stackmesa/depstack/pkg/resolve"
)

// resolveFlags are the flags shared by every command that resolves deps.
type resolveFlags struct {
	manifest string   // path to deps.toml
	aliases  []string // alias names to combine
	threads  int
	trace    string // write the trace log to this file when set
	cacheDir string
}

// session is a loaded manifest plus everything needed to resolve it.
type session struct {
	file     *depsfile.File
	args     resolve.ArgsMap
	registry *provider.Registry
	cfg      provider.Config
}

// httpCacheTTL is how long registry responses stay fresh.
const httpCacheTTL = 24 * time.Hour

// loadSession reads the manifest, combines the requested aliases, and
// builds the provider registry.
func loadSession(flags resolveFlags) (*session, error) {
	path := flags.manifest
	if path == "" {
		path = depsfile.Name
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f, err := depsfile.Load(abs)
	if err != nil {
		return nil, err
	}

	args, err := resolve.CombineAliases(f.Aliases, flags.aliases)
	if err != nil {
		return nil, err
	}

	client, err := maven.NewClient(httpCacheTTL)
	if err != nil {
		return nil, err
	}

	cacheDir := flags.cacheDir
	if cacheDir == "" {
		cacheDir = defaultCacheDir()
	}
	return &session{
		file:     f,
		args:     args,
		registry: provider.NewRegistry(maven.New(client), local.New(), git.New()),
		cfg: provider.Config{
			Dir:      filepath.Dir(abs),
			CacheDir: cacheDir,
			Repos:    f.Repos,
		},
	}, nil
}

// resolveDeps runs resolution for the session with a spinner on stderr.
func (s *session) resolveDeps(ctx context.Context, flags resolveFlags, logger *log.Logger) (*resolve.LibMap, error) {
	deps := mergeDeps(s.file.Deps, s.args.Deps)
	opts := resolve.Options{
		ExtraDeps:    sortedDeps(s.args.ExtraDeps),
		OverrideDeps: s.args.OverrideDeps,
		DefaultDeps:  s.args.DefaultDeps,
		Threads:      flags.threads,
		Trace:        flags.trace != "",
		Logger:       logger,
	}

	spin := newSpinner(ctx, "Resolving dependencies...")
	spin.start()
	p := newProgress(logger)
	lm, err := resolve.Deps(ctx, s.registry, deps, s.cfg, opts)
	spin.stop()
	if err != nil {
		return nil, err
	}
	p.done("Resolved " + strconv.Itoa(lm.Len()) + " libs")

	if flags.trace != "" && lm.Trace != nil {
		if err := writeTrace(flags.trace, lm.Trace); err != nil {
			return nil, err
		}
		printDetail("trace written to %s", flags.trace)
	}
	return lm, nil
}

// paths returns the project source paths for classpath assembly: alias
// paths replace the manifest's when present.
func (s *session) paths() []string {
	if len(s.args.Paths) > 0 {
		return s.args.Paths
	}
	if len(s.file.Paths) > 0 {
		return s.file.Paths
	}
	return []string{"src"}
}

// mergeDeps applies alias dep replacements onto the ordered manifest deps.
func mergeDeps(deps []coord.Dep, replacements map[coord.Lib]coord.Coord) []coord.Dep {
	if len(replacements) == 0 {
		return deps
	}
	out := make([]coord.Dep, len(deps))
	copy(out, deps)
	seen := make(map[coord.Lib]bool, len(deps))
	for i, d := range out {
		if c, ok := replacements[d.Lib]; ok {
			out[i].Coord = c
		}
		seen[d.Lib] = true
	}
	for _, lib := range sortedLibs(replacements) {
		if !seen[lib] {
			out = append(out, coord.Dep{Lib: lib, Coord: replacements[lib]})
		}
	}
	return out
}

// sortedDeps flattens a dep map into a deterministic slice.
func sortedDeps(m map[coord.Lib]coord.Coord) []coord.Dep {
	out := make([]coord.Dep, 0, len(m))
	for _, lib := range sortedLibs(m) {
		out = append(out, coord.Dep{Lib: lib, Coord: m[lib]})
	}
	return out
}

func sortedLibs[V any](m map[coord.Lib]V) []coord.Lib {
	libs := make([]coord.Lib, 0, len(m))
	for lib := range m {
		libs = append(libs, lib)
	}
	slices.SortFunc(libs, func(a, b coord.Lib) int {
		switch as, bs := a.String(), b.String(); {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	})
	return libs
}

func writeTrace(path string, trace *resolve.Trace) error {
	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".depstack-cache"
	}
	return filepath.Join(home, ".cache", "depstack")
}
