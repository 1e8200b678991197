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

// NewInstallCmd creates the install command.
func NewInstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		provides  string
		weak      bool
		forceBest bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "install [name]",
		Short: "Install a package",
		Long:  `Stage an INSTALL job against a package name or --provides match and run the solver.`,
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
			g.SetForceBest(forceBest)
			if err := g.InstallSelector(sel, weak); err != nil {
				color.Red("Error: %v", err)
				return err
			}

			flags := solver.Flags{
				AllowVendorChange: s.AllowVendorChange(),
				IgnoreWeak:        cfg.Goal.IgnoreWeak,
			}
			locale := resolveLocale(cmd)
			if err := runGoal(cmd, g, s.Pool(), flags, locale); err != nil {
				return err
			}

			if len(g.ListInstalls())+len(g.ListErases())+len(g.ListUpgrades())+len(g.ListDowngrades()) == 0 {
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

			ui.Success.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.CheckMark, "transaction complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&provides, "provides", "", "install whatever provides this reldep expression instead of a name")
	cmd.Flags().BoolVar(&weak, "weak", false, "stage the install as a weak (recommend-level) request")
	cmd.Flags().BoolVar(&forceBest, "force-best", false, "require the best available candidate for every staged job")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
