package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpmgoal/rpmgoal/internal/config"
)

const testFixtureYAML = `
repos:
  - name: "@System"
    installed: true
  - name: fedora
    priority: 100

install_only_names:
  - kernel

running_kernel: "kernel.x86_64@@System"

packages:
  - name: kernel
    evr: "5"
    arch: x86_64
    repo: "@System"
  - name: bash
    evr: "1"
    arch: x86_64
    repo: "@System"
    requires: ["libc"]
  - name: libc
    evr: "1"
    arch: x86_64
    repo: "@System"
  - name: httpd
    evr: "1"
    arch: x86_64
    repo: fedora
    provides: ["webserver"]
    summary: "Apache HTTP Server"
  - name: nginx
    evr: "2"
    arch: x86_64
    repo: fedora
    provides: ["webserver"]
    summary: "nginx HTTP server"
`

func writeTestFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testFixtureYAML), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Paths: config.PathsConfig{
			HistoryDB: filepath.Join(dir, "history.db"),
		},
		Sack: config.SackConfig{
			AllowVendorChange: true,
			InstallOnlyLimit:  2,
		},
		Goal: config.GoalConfig{
			ProtectRunningKernel: true,
			DefaultProtected:     []string{"libc"},
		},
		Locale: "en",
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}

	cmd := New(cfg, &logger, "1.0.0")

	assert.NotNil(t, cmd)
	assert.Equal(t, "rpmgoal", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("fixture"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("locale"))
}
