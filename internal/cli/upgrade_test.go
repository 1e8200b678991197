package cli

import (
	"bytes"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpmgoal/rpmgoal/internal/config"
)

func TestUpgradeCmd_Construction(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}
	cmd := NewUpgradeCmd(cfg, &logger)

	assert.NotNil(t, cmd)
	assert.Equal(t, "upgrade [name]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("yes"))
}

func TestUpgradeCmd_RunSingleName(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)
	fixture := writeTestFixture(t)

	cmd := NewUpgradeCmd(cfg, &logger)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.Flags().String("fixture", "", "")
	cmd.Flags().String("locale", "en", "")
	require.NoError(t, cmd.Flags().Set("fixture", fixture))
	cmd.SetArgs([]string{"bash", "-y"})

	require.NoError(t, cmd.Execute())
}

func TestUpgradeCmd_RunAll(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)
	fixture := writeTestFixture(t)

	cmd := NewUpgradeCmd(cfg, &logger)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.Flags().String("fixture", "", "")
	cmd.Flags().String("locale", "en", "")
	require.NoError(t, cmd.Flags().Set("fixture", fixture))
	cmd.SetArgs([]string{"-y"})

	require.NoError(t, cmd.Execute())
}
