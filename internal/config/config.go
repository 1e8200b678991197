package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	Sack    SackConfig    `mapstructure:"sack"`
	Goal    GoalConfig    `mapstructure:"goal"`
	Logging LoggingConfig `mapstructure:"logging"`
	Locale  string        `mapstructure:"locale"`
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	HistoryDB string `mapstructure:"history_db"`
	LogFile   string `mapstructure:"log_file"`
	DebugDir  string `mapstructure:"debug_dir"`
}

// SackConfig controls pool/sack-wide resolution policy.
type SackConfig struct {
	AllowVendorChange bool     `mapstructure:"allow_vendor_change"`
	InstallOnlyLimit  int      `mapstructure:"install_only_limit"`
	InstallOnlyNames  []string `mapstructure:"install_only_names"`
	ModuleExcludes    []string `mapstructure:"module_excludes"`
}

// GoalConfig controls goal-run policy defaults.
type GoalConfig struct {
	ProtectRunningKernel bool     `mapstructure:"protect_running_kernel"`
	DefaultProtected     []string `mapstructure:"default_protected"`
	IgnoreWeak           bool     `mapstructure:"ignore_weak"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// Load loads configuration from file and environment
func Load() (*Config, error) {
	// Set config name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	// Add config paths
	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".config", "rpmgoal"))
	}
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Environment variable overrides
	viper.SetEnvPrefix("RPMGOAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found - use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Expand paths
	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.HistoryDB = expandPath(cfg.Paths.HistoryDB)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Paths.DebugDir = expandPath(cfg.Paths.DebugDir)

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		homeDir = os.Getenv("HOME")
	}
	if homeDir == "" {
		homeDir = "."
	}

	viper.SetDefault("paths.data_dir", filepath.Join(homeDir, ".local", "share", "rpmgoal"))
	viper.SetDefault("paths.history_db", filepath.Join(homeDir, ".local", "share", "rpmgoal", "history.db"))
	viper.SetDefault("paths.log_file", filepath.Join(homeDir, ".local", "share", "rpmgoal", "rpmgoal.log"))
	viper.SetDefault("paths.debug_dir", filepath.Join(homeDir, ".local", "share", "rpmgoal", "debugdata"))

	viper.SetDefault("sack.allow_vendor_change", true)
	viper.SetDefault("sack.install_only_limit", 3)
	viper.SetDefault("sack.install_only_names", []string{"kernel", "kernel-core", "kernel-devel"})
	viper.SetDefault("sack.module_excludes", []string{})

	viper.SetDefault("goal.protect_running_kernel", true)
	viper.SetDefault("goal.default_protected", []string{"rpmgoal-core"})
	viper.SetDefault("goal.ignore_weak", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.color", "auto")

	viper.SetDefault("locale", "en")
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	// Expand ~
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	// Expand environment variables
	path = os.ExpandEnv(path)

	return path
}
