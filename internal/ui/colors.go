package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Color scheme for rpmgoal's CLI status output.
var (
	Success = color.New(color.FgGreen)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	CheckMark = color.GreenString("✓")
	Arrow     = color.CyanString("→")

	// Transaction step colors
	StepInstall = color.New(color.FgGreen)
	StepUpgrade = color.New(color.FgCyan)
	StepErase   = color.New(color.FgRed)
)

// InitColors initializes color settings based on environment
func InitColors() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	// Respect TERM environment variable
	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Fprintf(os.Stdout, "%s %s\n", CheckMark, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(os.Stderr, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Fprintf(os.Stdout, "%s %s\n", Arrow, fmt.Sprintf(format, args...))
}

// ColorizeStep returns a colored transaction step action string.
func ColorizeStep(action string) string {
	switch action {
	case "install":
		return StepInstall.Sprint(action)
	case "upgrade", "downgrade", "reinstall":
		return StepUpgrade.Sprint(action)
	case "erase", "obsoleted":
		return StepErase.Sprint(action)
	default:
		return action
	}
}

// DisableColors disables all color output
func DisableColors() {
	color.NoColor = true
}
