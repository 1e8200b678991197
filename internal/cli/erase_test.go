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

func TestEraseCmd_Construction(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}
	cmd := NewEraseCmd(cfg, &logger)

	assert.NotNil(t, cmd)
	assert.Equal(t, "erase [name]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("provides"))
	assert.NotNil(t, cmd.Flags().Lookup("clean-deps"))
	assert.NotNil(t, cmd.Flags().Lookup("yes"))
}

func TestEraseCmd_Run(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)
	fixture := writeTestFixture(t)

	cmd := NewEraseCmd(cfg, &logger)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.Flags().String("fixture", "", "")
	cmd.Flags().String("locale", "en", "")
	require.NoError(t, cmd.Flags().Set("fixture", fixture))
	cmd.SetArgs([]string{"bash", "-y"})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "erase")
}

func TestEraseCmd_ProtectedPackage(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)
	fixture := writeTestFixture(t)

	cmd := NewEraseCmd(cfg, &logger)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.Flags().String("fixture", "", "")
	cmd.Flags().String("locale", "en", "")
	require.NoError(t, cmd.Flags().Set("fixture", fixture))
	cmd.SetArgs([]string{"libc", "-y"})

	err := cmd.Execute()
	assert.Error(t, err)
}
