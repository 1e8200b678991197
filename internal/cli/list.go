package cli

import (
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rpmgoal/rpmgoal/internal/config"
	"github.com/rpmgoal/rpmgoal/internal/query"
	"github.com/rpmgoal/rpmgoal/internal/ui"
)

// NewListCmd creates the list command: installed packages by default,
// or every considered package with --all.
func NewListCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long:  `List packages currently in the fixture's installed repo, or every considered package with --all.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSack(cmd, cfg)
			if err != nil {
				color.Red("Error: %v", err)
				return err
			}

			q := query.New(s)
			q.SetLogger(log)
			var result, applyErr = q.Apply()
			if applyErr != nil {
				color.Red("Error: %v", applyErr)
				return applyErr
			}
			if !all {
				result, err = q.Installed()
				if err != nil {
					color.Red("Error: %v", err)
					return err
				}
			}

			if result.Size() == 0 {
				ui.PrintInfo("no packages found")
				return nil
			}

			printPackageTable(cmd, s.Pool(), result.Ids())
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every considered package, not just installed ones")
	return cmd
}
