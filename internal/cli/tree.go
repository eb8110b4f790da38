package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/stackmesa/depstack/pkg/resolve"
)

// newTreeCmd creates the tree command: resolve and print the forest.
func newTreeCmd() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Resolve dependencies and print them as a tree",
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
			resolve.PrintTree(os.Stdout, s.registry, lm)
			return nil
		},
	}
	addResolveFlags(cmd, &flags)
	return cmd
}
