package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rpmgoal/rpmgoal/internal/config"
	"github.com/rpmgoal/rpmgoal/internal/solver"
	"github.com/rpmgoal/rpmgoal/internal/ui"
)

// NewEraseCmd creates the erase command.
func NewEraseCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		provides  string
		cleanDeps bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "erase [name]",
		Short: "Remove a package",
		Long:  `Stage an ERASE job against a package name or --provides match and run the solver.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			sel, err := targetSelector(name, provides)
			if err != nil {
				color.Red("Error: %v", err)
				return err
			}

			s, err := loadSack(cmd, cfg)
			if err != nil {
				color.Red("Error: %v", err)
				return err
			}

			ctx := context.Background()
			db, err := openHistory(ctx, cfg, s)
			if err != nil {
				color.Red("Error: %v", err)
				return err
			}
			defer db.Close()

			g := newGoal(cfg, s, log)
			if err := g.EraseSelector(sel, cleanDeps); err != nil {
				color.Red("Error: %v", err)
				return err
			}

			flags := solver.Flags{AllowVendorChange: s.AllowVendorChange()}
			locale := resolveLocale(cmd)
			if err := runGoal(cmd, g, s.Pool(), flags, locale); err != nil {
				return err
			}

			if len(g.ListErases()) == 0 {
				ui.PrintInfo("nothing to do")
				return nil
			}

			printTransaction(cmd, s.Pool(), g)

			if !assumeYes {
				ok, err := ui.ConfirmPrompt("Proceed with this transaction")
				if err != nil || !ok {
					ui.PrintWarning("aborted")
					return nil
				}
			}

			if err := recordTransaction(ctx, db, s.Pool(), g); err != nil {
				color.Red("Error: failed to record history: %v", err)
				return fmt.Errorf("record history: %w", err)
			}

			ui.PrintSuccess("transaction complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&provides, "provides", "", "erase whatever provides this reldep expression instead of a name")
	cmd.Flags().BoolVar(&cleanDeps, "clean-deps", false, "stage the erase with CLEANDEPS (reason \"clean\"); dependencies left unneeded are not erased")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
