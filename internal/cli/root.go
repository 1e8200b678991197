// Package cli wires the core collaborators — sack, goal, query, selector,
// history, fixtures — into a cobra command tree, the CLI surface a
// developer drives the solver core through.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rpmgoal/rpmgoal/internal/config"
)

// New builds the root command tree. A fixture-backed pool is the CLI's
// only supported package source — loading real repository metadata is
// out of scope — so every subcommand resolves its Sack from --fixture.
func New(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rpmgoal",
		Short: "Query and solve RPM-style package dependency goals",
		Long: `rpmgoal builds a package pool from a declarative fixture manifest and
runs dependency queries and goal resolutions against it, the way dnf's
hawkey/libdnf core runs against real repository metadata.`,
		SilenceUsage: true,
		Version:      version,
	}

	cmd.PersistentFlags().String("fixture", "", "path to a YAML fixture manifest describing the pool (required)")
	cmd.PersistentFlags().String("locale", cfg.Locale, "locale used to render problem sentences (en, es)")

	cmd.AddCommand(NewQueryCmd(cfg, log))
	cmd.AddCommand(NewListCmd(cfg, log))
	cmd.AddCommand(NewInstallCmd(cfg, log))
	cmd.AddCommand(NewEraseCmd(cfg, log))
	cmd.AddCommand(NewUpgradeCmd(cfg, log))
	cmd.AddCommand(NewDistupgradeCmd(cfg, log))

	return cmd
}
