package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackmesa/depstack/pkg/resolve"
)

// newClasspathCmd creates the classpath command: resolve and print the
// joined classpath string.
func newClasspathCmd() *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "classpath",
		Short: "Resolve dependencies and print the classpath",
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

			cp := resolve.MakeClasspath(lm, s.paths(), resolve.ClasspathArgs{
				ExtraPaths:         s.args.ExtraPaths,
				ClasspathOverrides: s.args.ClasspathOverrides,
			})
			fmt.Println(cp)
			return nil
		},
	}
	addResolveFlags(cmd, &flags)
	return cmd
}
