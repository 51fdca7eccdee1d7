package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	out := &bytes.Buffer{}

	config, shouldExit, err := Parse(nil, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "conf/defaults.yaml", config.DefaultsPath)
	assert.Empty(t, config.ConfigPath)
	assert.Empty(t, config.Overrides)
	assert.False(t, config.Print)
	assert.Equal(t, "text", config.LogFormat)
	assert.Equal(t, "info", config.LogLevel)
}

func TestParseFlags(t *testing.T) {
	out := &bytes.Buffer{}

	config, shouldExit, err := Parse([]string{
		"--defaults", "conf/base.yaml",
		"--config", "experiments/chesapeake.yaml",
		"--print",
		"--log-format", "json",
		"--log-level", "debug",
		"program.seed=5",
		"experiment.name=run",
	}, out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "conf/base.yaml", config.DefaultsPath)
	assert.Equal(t, "experiments/chesapeake.yaml", config.ConfigPath)
	assert.Equal(t, []string{"program.seed=5", "experiment.name=run"}, config.Overrides)
	assert.True(t, config.Print)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestParseShorthandConfigFlag(t *testing.T) {
	out := &bytes.Buffer{}

	config, _, err := Parse([]string{"-c", "override.yaml"}, out)
	require.NoError(t, err)
	assert.Equal(t, "override.yaml", config.ConfigPath)
}

func TestParseEnvironmentLayer(t *testing.T) {
	t.Setenv("TRAINCONF_CONFIG", "env-override.yaml")
	t.Setenv("TRAINCONF_LOG_LEVEL", "warn")

	out := &bytes.Buffer{}
	config, _, err := Parse(nil, out)
	require.NoError(t, err)

	assert.Equal(t, "env-override.yaml", config.ConfigPath)
	assert.Equal(t, "warn", config.LogLevel)
}

func TestParseFlagWinsOverEnvironment(t *testing.T) {
	t.Setenv("TRAINCONF_CONFIG", "env-override.yaml")
	t.Setenv("TRAINCONF_LOG_LEVEL", "warn")

	out := &bytes.Buffer{}
	config, _, err := Parse([]string{"--config", "flag-override.yaml", "--log-level", "error"}, out)
	require.NoError(t, err)

	assert.Equal(t, "flag-override.yaml", config.ConfigPath)
	assert.Equal(t, "error", config.LogLevel)
}

func TestParseHelp(t *testing.T) {
	out := &bytes.Buffer{}

	_, shouldExit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "conf/defaults.yaml", "help must show the effective default")
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		msg  string
	}{
		{"unknown flag", []string{"--nope"}, "flag provided but not defined"},
		{"bad log format", []string{"--log-format", "xml"}, "invalid log-format"},
		{"bad log level", []string{"--log-level", "loud"}, "invalid log-level"},
		{"positional without assignment", []string{"justapath"}, "expected path.to.field=value"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			_, _, err := Parse(tc.args, out)
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Error(), tc.msg)
		})
	}
}
