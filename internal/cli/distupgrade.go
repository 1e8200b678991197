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

// NewDistupgradeCmd creates the distupgrade command: DISTUPGRADE over the
// whole pool, including obsoletion handling.
func NewDistupgradeCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "distupgrade",
		Short: "Synchronize installed packages with the latest available versions, honoring obsoletes",
		Long:  `Stage a DISTUPGRADE job over every installed package and run the solver.`,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			g.Distupgrade()

			flags := solver.Flags{AllowVendorChange: s.AllowVendorChange(), DupAllowVendorChange: s.AllowVendorChange()}
			locale := resolveLocale(cmd)
			if err := runGoal(cmd, g, s.Pool(), flags, locale); err != nil {
				return err
			}

			total := len(g.ListUpgrades()) + len(g.ListDowngrades()) + len(g.ListInstalls()) + len(g.ListErases()) + len(g.ListObsoleted())
			if total == 0 {
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

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
