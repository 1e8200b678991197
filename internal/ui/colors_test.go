package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestInitColors(t *testing.T) {
	t.Run("with NO_COLOR", func(t *testing.T) {
		os.Setenv("NO_COLOR", "1")
		defer os.Unsetenv("NO_COLOR")

		color.NoColor = false
		InitColors()

		assert.True(t, color.NoColor)
	})

	t.Run("with TERM=dumb", func(t *testing.T) {
		os.Setenv("TERM", "dumb")
		defer os.Unsetenv("TERM")

		color.NoColor = false
		InitColors()

		assert.True(t, color.NoColor)
	})

	t.Run("normal terminal", func(_ *testing.T) {
		os.Unsetenv("NO_COLOR")
		os.Unsetenv("TERM")

		// Just ensure it doesn't panic
		InitColors()
		// Can't assert on color.NoColor as it depends on terminal detection
	})
}

func TestPrintFunctions(t *testing.T) {
	// Disable colors for consistent testing
	oldNoColor := color.NoColor
	DisableColors()
	defer func() { color.NoColor = oldNoColor }()

	t.Run("PrintSuccess", func(t *testing.T) {
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		PrintSuccess("test %s", "message")

		w.Close()
		os.Stdout = oldStdout

		var buf bytes.Buffer
		buf.ReadFrom(r)
		output := buf.String()

		assert.Contains(t, output, "✓")
		assert.Contains(t, output, "test message")
	})

	t.Run("PrintWarning", func(t *testing.T) {
		oldStderr := os.Stderr
		r, w, _ := os.Pipe()
		os.Stderr = w

		PrintWarning("test %s", "warning")

		w.Close()
		os.Stderr = oldStderr

		var buf bytes.Buffer
		buf.ReadFrom(r)
		output := buf.String()

		assert.Contains(t, output, "Warning:")
		assert.Contains(t, output, "test warning")
	})

	t.Run("PrintInfo", func(t *testing.T) {
		oldStdout := os.Stdout
		r, w, _ := os.Pipe()
		os.Stdout = w

		PrintInfo("test %s", "info")

		w.Close()
		os.Stdout = oldStdout

		var buf bytes.Buffer
		buf.ReadFrom(r)
		output := buf.String()

		assert.Contains(t, output, "→")
		assert.Contains(t, output, "test info")
	})
}

func TestColorizeStep(t *testing.T) {
	oldNoColor := color.NoColor
	DisableColors()
	defer func() { color.NoColor = oldNoColor }()

	tests := []struct {
		action   string
		expected string
	}{
		{"install", "install"},
		{"upgrade", "upgrade"},
		{"downgrade", "downgrade"},
		{"reinstall", "reinstall"},
		{"erase", "erase"},
		{"obsoleted", "obsoleted"},
		{"lock", "lock"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			result := ColorizeStep(tt.action)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestDisableColors(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()

	color.NoColor = false
	DisableColors()
	assert.True(t, color.NoColor)
}
