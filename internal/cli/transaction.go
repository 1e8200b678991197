package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/rpmgoal/rpmgoal/internal/goal"
	"github.com/rpmgoal/rpmgoal/internal/goalerr"
	"github.com/rpmgoal/rpmgoal/internal/history"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
	"github.com/rpmgoal/rpmgoal/internal/problem"
	"github.com/rpmgoal/rpmgoal/internal/solver"
	"github.com/rpmgoal/rpmgoal/internal/ui"
)

// runGoal runs g under flags and, on NO_SOLUTION or REMOVAL_OF_PROTECTED_PKG,
// renders the problem explanation instead of a raw error chain.
func runGoal(cmd *cobra.Command, g *goal.Goal, p *pool.Pool, flags solver.Flags, locale string) error {
	spinner := ui.NewIndeterminateProgressBar("resolving dependencies")
	err := g.Run(flags)
	spinner.Clear()
	if err == nil {
		return nil
	}
	if goalerr.HasCode(err, goalerr.NoSolution) || goalerr.HasCode(err, goalerr.RemovalOfProtectedPkg) {
		problems := g.DescribeAllProblemRules(problem.VocabPackage, locale)
		color.Red("%s", problem.FormatProblems(problems))
		return err
	}
	color.Red("Error: %v", err)
	return err
}

// printTransaction renders the classified transaction as a table, one row
// per transaction step, followed by the step count.
func printTransaction(cmd *cobra.Command, p *pool.Pool, g *goal.Goal) {
	type row struct {
		action string
		ids    []int
	}
	rows := []row{
		{"install", g.ListInstalls()},
		{"upgrade", g.ListUpgrades()},
		{"downgrade", g.ListDowngrades()},
		{"reinstall", g.ListReinstalls()},
		{"erase", g.ListErases()},
		{"obsoleted", g.ListObsoleted()},
	}

	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"Action", "NEVRA", "Reason"}),
		tablewriter.WithAlignment(tw.MakeAlign(3, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)

	total := 0
	for _, r := range rows {
		for _, id := range r.ids {
			total++
			sv := p.MustGet(id)
			n := nevra.NEVRA{Name: sv.Name, Epoch: sv.EVR.Epoch, HasEpoch: sv.EVR.HasEpoch, Version: sv.EVR.Version, Release: sv.EVR.Release, Arch: sv.Arch}
			table.Append(ui.ColorizeStep(r.action), n.String(), g.GetReason(id).String())
		}
	}
	table.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "%d step(s)\n", total)
}

// recordTransaction updates the history DB: user-installed packages are
// recorded, erased packages are forgotten.
func recordTransaction(ctx context.Context, db *history.DB, p *pool.Pool, g *goal.Goal) error {
	for _, id := range g.ListInstalls() {
		if g.GetReason(id) != goal.ReasonUser {
			continue
		}
		sv := p.MustGet(id)
		if err := db.Record(ctx, sv.Name, sv.Arch, goal.ReasonUser); err != nil {
			return err
		}
	}
	for _, id := range g.ListErases() {
		sv := p.MustGet(id)
		if err := db.Forget(ctx, sv.Name, sv.Arch); err != nil {
			return err
		}
	}
	return nil
}
