package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rpmgoal/rpmgoal/internal/cli"
	"github.com/rpmgoal/rpmgoal/internal/config"
	"github.com/rpmgoal/rpmgoal/internal/logging"
	"github.com/rpmgoal/rpmgoal/internal/ui"
)

var version = "dev"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: cfg.Logging.Color == "never",
	})

	ui.InitColors()
	if cfg.Logging.Color == "never" {
		ui.DisableColors()
	}

	rootCmd := cli.New(cfg, log, version)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
