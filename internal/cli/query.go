package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rpmgoal/rpmgoal/internal/config"
	"github.com/rpmgoal/rpmgoal/internal/idset"
	"github.com/rpmgoal/rpmgoal/internal/nevra"
	"github.com/rpmgoal/rpmgoal/internal/pool"
	"github.com/rpmgoal/rpmgoal/internal/query"
)

// NewQueryCmd creates the query command: a thin pass-through onto
// internal/query's Filter/Apply machinery, one flag per common keyname.
func NewQueryCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		name       string
		provides   string
		requires   string
		installed  bool
		available  bool
		duplicated bool
		extras     bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the package pool",
		Long:  `Filter the fixture's package pool by name, provides, requires, and installed/available status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSack(cmd, cfg)
			if err != nil {
				color.Red("Error: %v", err)
				return err
			}

			q := query.New(s)
			q.SetLogger(log)
			if name != "" {
				cmp := query.CmpEQ
				if hasGlobChar(name) {
					cmp = query.CmpGlob
				}
				if err := q.AddFilter(query.Filter{Keyname: query.NAME, Cmp: cmp, MatchType: query.MatchStr, Strs: []string{name}}); err != nil {
					color.Red("Error: %v", err)
					return err
				}
			}
			if provides != "" {
				if err := q.AddReldepStrings(query.PROVIDES, query.CmpEQ, provides); err != nil {
					color.Red("Error: %v", err)
					return err
				}
			}
			if requires != "" {
				if err := q.AddReldepStrings(query.REQUIRES, query.CmpEQ, requires); err != nil {
					color.Red("Error: %v", err)
					return err
				}
			}

			var result *idset.PackageSet
			switch {
			case duplicated:
				result, err = q.FilterDuplicated()
			case extras:
				result, err = q.FilterExtras()
			case installed:
				result, err = q.Installed()
			case available:
				result, err = q.Available()
			default:
				result, err = q.Apply()
			}
			if err != nil {
				color.Red("Error: %v", err)
				return err
			}

			printPackageTable(cmd, s.Pool(), result.Ids())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by package name (supports * and ? globs)")
	cmd.Flags().StringVar(&provides, "provides", "", "filter by a provided reldep expression, e.g. 'webserver'")
	cmd.Flags().StringVar(&requires, "requires", "", "filter by a required reldep expression")
	cmd.Flags().BoolVar(&installed, "installed", false, "narrow to installed packages")
	cmd.Flags().BoolVar(&available, "available", false, "narrow to available (not installed) packages")
	cmd.Flags().BoolVar(&duplicated, "duplicated", false, "narrow to installed packages with more than one installed evr")
	cmd.Flags().BoolVar(&extras, "extras", false, "narrow to installed packages with no available counterpart")

	return cmd
}

func hasGlobChar(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']':
			return true
		}
	}
	return false
}

func printPackageTable(cmd *cobra.Command, p *pool.Pool, ids []int) {
	table := tablewriter.NewTable(cmd.OutOrStdout(),
		tablewriter.WithHeader([]string{"NEVRA", "Repo", "Summary"}),
		tablewriter.WithAlignment(tw.MakeAlign(3, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)
	for _, id := range ids {
		sv := p.MustGet(id)
		n := nevra.NEVRA{Name: sv.Name, Epoch: sv.EVR.Epoch, HasEpoch: sv.EVR.HasEpoch, Version: sv.EVR.Version, Release: sv.EVR.Release, Arch: sv.Arch}
		repoName := ""
		if r := p.Repo(sv.RepoId); r != nil {
			repoName = r.Name
		}
		table.Append(n.String(), repoName, sv.Summary)
	}
	table.Render()
	fmt.Fprintf(cmd.OutOrStdout(), "%d package(s)\n", len(ids))
}
