package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rpmgoal/rpmgoal/internal/config"
	"github.com/rpmgoal/rpmgoal/internal/query"
	"github.com/rpmgoal/rpmgoal/internal/selector"
	"github.com/rpmgoal/rpmgoal/internal/solver"
	"github.com/rpmgoal/rpmgoal/internal/ui"
)

// NewUpgradeCmd creates the upgrade command: UPDATE over everything, or a
// single name when given.
func NewUpgradeCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "upgrade [name]",
		Short: "Upgrade packages",
		Long:  `Stage an UPDATE job over every installed package, or a single name when given, and run the solver.`,
		Args:  cobra.MaximumNArgs(1),
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
			if len(args) == 1 {
				sel := selector.Selector{Name: &query.Filter{Keyname: query.NAME, Cmp: query.CmpEQ, MatchType: query.MatchStr, Strs: []string{args[0]}}}
				if err := g.UpgradeSelector(sel); err != nil {
					color.Red("Error: %v", err)
					return err
				}
			} else {
				g.Upgrade()
			}

			flags := solver.Flags{AllowVendorChange: s.AllowVendorChange()}
			locale := resolveLocale(cmd)
			if err := runGoal(cmd, g, s.Pool(), flags, locale); err != nil {
				return err
			}

			if len(g.ListUpgrades())+len(g.ListInstalls())+len(g.ListErases()) == 0 {
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
