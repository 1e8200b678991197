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

func TestInstallCmd_Construction(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{}
	cmd := NewInstallCmd(cfg, &logger)

	assert.NotNil(t, cmd)
	assert.Equal(t, "install [name]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("provides"))
	assert.NotNil(t, cmd.Flags().Lookup("weak"))
	assert.NotNil(t, cmd.Flags().Lookup("force-best"))
	assert.NotNil(t, cmd.Flags().Lookup("yes"))
}

func TestInstallCmd_Run(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)
	fixture := writeTestFixture(t)

	cmd := NewInstallCmd(cfg, &logger)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.Flags().String("fixture", "", "")
	cmd.Flags().String("locale", "en", "")
	require.NoError(t, cmd.Flags().Set("fixture", fixture))
	cmd.SetArgs([]string{"nginx", "-y"})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "install")
	assert.Contains(t, out, "transaction complete")
}

func TestInstallCmd_NothingToDo(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)
	fixture := writeTestFixture(t)

	cmd := NewInstallCmd(cfg, &logger)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.Flags().String("fixture", "", "")
	cmd.Flags().String("locale", "en", "")
	require.NoError(t, cmd.Flags().Set("fixture", fixture))
	cmd.SetArgs([]string{"kernel", "-y"})

	require.NoError(t, cmd.Execute())
}

func TestInstallCmd_BothNameAndProvides(t *testing.T) {
	logger := zerolog.New(io.Discard)
	cfg := testConfig(t)
	fixture := writeTestFixture(t)

	cmd := NewInstallCmd(cfg, &logger)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.Flags().String("fixture", "", "")
	cmd.Flags().String("locale", "en", "")
	require.NoError(t, cmd.Flags().Set("fixture", fixture))
	cmd.SetArgs([]string{"httpd", "--provides", "webserver", "-y"})

	assert.Error(t, cmd.Execute())
}
