package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// newLibsCmd creates the libs command: resolve and list the flat lib map.
// With --interactive, opens a browsable list showing each lib's paths and
// dependents.
func newLibsCmd() *cobra.Command {
	var flags resolveFlags
	var interactive bool

	cmd := &cobra.Command{
		Use:   "libs",
		Short: "Resolve dependencies and list the selected libs",
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

			if interactive && isatty.IsTerminal(os.Stdout.Fd()) {
				model := newLibListModel(s.registry, lm)
				_, err := tea.NewProgram(model).Run()
				return err
			}

			for _, lib := range lm.Libs() {
				sel, _ := lm.Get(lib)
				fmt.Printf("%s %s\n", lib, s.registry.Summary(lib, sel.Coord))
			}
			return nil
		},
	}
	addResolveFlags(cmd, &flags)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the lib map interactively")
	return cmd
}
