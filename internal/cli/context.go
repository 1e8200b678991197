package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rpmgoal/rpmgoal/internal/config"
	"github.com/rpmgoal/rpmgoal/internal/fixtures"
	"github.com/rpmgoal/rpmgoal/internal/goal"
	"github.com/rpmgoal/rpmgoal/internal/history"
	"github.com/rpmgoal/rpmgoal/internal/sack"
)

// loadSack resolves the --fixture flag (inherited from the root command)
// into a Sack, layering cfg's sack-wide policy on top of whatever the
// manifest itself declared.
func loadSack(cmd *cobra.Command, cfg *config.Config) (*sack.Sack, error) {
	path, err := cmd.Flags().GetString("fixture")
	if err != nil || path == "" {
		return nil, fmt.Errorf("--fixture is required")
	}

	fs := afero.NewOsFs()
	m, err := fixtures.Load(fs, path)
	if err != nil {
		return nil, fmt.Errorf("load fixture %q: %w", path, err)
	}
	s, err := fixtures.Build(fs, m)
	if err != nil {
		return nil, fmt.Errorf("build fixture pool: %w", err)
	}

	s.SetAllowVendorChange(cfg.Sack.AllowVendorChange)
	if len(cfg.Sack.InstallOnlyNames) > 0 {
		s.SetInstallOnlyNames(cfg.Sack.InstallOnlyNames)
	}
	if cfg.Sack.InstallOnlyLimit > 0 {
		s.SetInstallOnlyLimit(cfg.Sack.InstallOnlyLimit)
	}
	s.RecomputeConsidered()
	return s, nil
}

// openHistory opens the configured history database, resolving records
// against s's pool.
func openHistory(ctx context.Context, cfg *config.Config, s *sack.Sack) (*history.DB, error) {
	db, err := history.Open(ctx, cfg.Paths.HistoryDB, s.Pool())
	if err != nil {
		return nil, fmt.Errorf("open history db %q: %w", cfg.Paths.HistoryDB, err)
	}
	return db, nil
}

// newGoal builds a Goal over s with cfg's goal-wide policy defaults
// applied: protected name globs and running-kernel protection.
func newGoal(cfg *config.Config, s *sack.Sack, log *zerolog.Logger) *goal.Goal {
	g := goal.New(s)
	g.SetLogger(log)
	g.SetProtectedNames(cfg.Goal.DefaultProtected)
	g.SetProtectRunningKernel(cfg.Goal.ProtectRunningKernel)
	return g
}

func resolveLocale(cmd *cobra.Command) string {
	locale, _ := cmd.Flags().GetString("locale")
	if locale == "" {
		return "en"
	}
	return locale
}
