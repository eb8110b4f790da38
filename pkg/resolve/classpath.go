package resolve

import (
	"os"
	"strings"

	"github.com/stackmesa/depstack/pkg/coord"
)

// ClasspathArgs tunes classpath assembly.
type ClasspathArgs struct {
	// ExtraPaths are prepended before project paths.
	ExtraPaths []string

	// ClasspathOverrides replaces a lib's contributed paths with a single
	// path (e.g. a locally patched jar).
	ClasspathOverrides map[coord.Lib]string
}

// MakeClasspath assembles a platform classpath string: extra paths, then
// project paths, then every lib's contributed paths in lib-map order.
// Blank entries are dropped.
func MakeClasspath(lm *LibMap, paths []string, args ClasspathArgs) string {
	var out []string
	out = append(out, args.ExtraPaths...)
	out = append(out, paths...)
	for _, lib := range lm.Libs() {
		if override, ok := args.ClasspathOverrides[lib]; ok {
			out = append(out, override)
			continue
		}
		sel, _ := lm.Get(lib)
		out = append(out, sel.Paths...)
	}

	nonBlank := out[:0]
	for _, p := range out {
		if strings.TrimSpace(p) != "" {
			nonBlank = append(nonBlank, p)
		}
	}
	return strings.Join(nonBlank, string(os.PathListSeparator))
}
