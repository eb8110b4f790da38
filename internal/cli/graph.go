package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/spf13/cobra"

	"github.com/stackmesa/depstack/pkg/provider"
	"github.com/stackmesa/depstack/pkg/resolve"
)

// newGraphCmd creates the graph command: resolve and export the dependency
// graph as DOT or rendered SVG/PNG.
func newGraphCmd() *cobra.Command {
	var flags resolveFlags
	var output string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Resolve dependencies and export the graph",
		Long:  "Exports the resolved dependency graph. The output format follows the file extension: .dot, .svg, or .png.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			s, err := loadSession(flags)
			if err != nil {
				return err
			}
			lm, err := s.resolveDeps(cmd.Context(), flags, logger)
			if err != nil {
				return err
			}

			dot := toDOT(s.registry, lm)
			var data []byte
			switch ext := filepath.Ext(output); ext {
			case ".dot", "":
				data = []byte(dot)
			case ".svg":
				data, err = renderDOT(cmd.Context(), dot, graphviz.SVG)
			case ".png":
				data, err = renderDOT(cmd.Context(), dot, graphviz.PNG)
			default:
				return fmt.Errorf("unsupported graph format %q (use .dot, .svg, or .png)", ext)
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess("Graph exported")
			printFile(output)
			return nil
		},
	}
	addResolveFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot, .svg, .png); stdout DOT when empty")
	return cmd
}

// toDOT renders the lib map's dependency edges as Graphviz DOT. Edges are
// reconstructed from dependents; top deps have none and become roots.
func toDOT(reg *provider.Registry, lm *resolve.LibMap) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, lib := range lm.Libs() {
		sel, _ := lm.Get(lib)
		label := lib.String() + "\\n" + escapeDOT(reg.Summary(lib, sel.Coord))
		fmt.Fprintf(&buf, "  %q [label=\"%s\"];\n", lib.String(), label)
	}
	buf.WriteString("\n")
	for _, lib := range lm.Libs() {
		sel, _ := lm.Get(lib)
		for _, parent := range sel.Dependents {
			fmt.Fprintf(&buf, "  %q -> %q;\n", parent.String(), lib.String())
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func escapeDOT(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// renderDOT rasterizes a DOT document with Graphviz.
func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
