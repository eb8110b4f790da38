package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/stackmesa/depstack/pkg/buildinfo"
)

// Execute runs the depstack CLI.
//
// The root command wires up all subcommands, configures logging from the
// --verbose flag, and attaches the logger to the command context.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "depstack",
		Short:        "depstack resolves dependency trees to classpaths",
		Long:         `depstack reads deps.toml manifests, expands the transitive dependency graph across Maven, local, and git coordinates, and emits the resolved lib map as a tree, a classpath, or a graph.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newTreeCmd())
	root.AddCommand(newClasspathCmd())
	root.AddCommand(newLibsCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newServeCmd())

	return root.ExecuteContext(ctx)
}

// addResolveFlags registers the flags shared by resolving commands.
func addResolveFlags(cmd *cobra.Command, flags *resolveFlags) {
	cmd.Flags().StringVar(&flags.manifest, "deps", "", "path to deps.toml (default ./deps.toml)")
	cmd.Flags().StringSliceVarP(&flags.aliases, "alias", "A", nil, "aliases to combine, repeatable")
	cmd.Flags().IntVar(&flags.threads, "threads", 0, "worker threads (default: CPU count)")
	cmd.Flags().StringVar(&flags.trace, "trace", "", "write the include-decision trace to this file")
	cmd.Flags().StringVar(&flags.cacheDir, "cache-dir", "", "artifact cache directory (default ~/.cache/depstack)")
}
