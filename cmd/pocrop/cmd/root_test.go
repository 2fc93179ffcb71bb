package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a fresh command tree with args and returns stdout and
// stderr separately.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return strings.TrimSpace(stdout.String()), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := GetRootCommand()
	assert.NotNil(t, cmd)
	assert.Equal(t, "pocrop", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := executeCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "content area")
	assert.Contains(t, out, "Available Commands:")
	assert.Contains(t, out, "Usage:")
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"crop", "analyze", "config", "version"} {
		assert.Contains(t, names, expected, "Expected subcommand '%s' not found", expected)
	}
}

func TestRootCommandInvalidFlag(t *testing.T) {
	_, stderr, err := executeCommand(t, "--invalid-flag")
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown flag")
}

func TestRootCommandNoArgs(t *testing.T) {
	out, _, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestRootCommandMissingConfigFile(t *testing.T) {
	_, _, err := executeCommand(t, "--config", "/nonexistent/pocrop.yaml", "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestRootCommandInvalidLogLevel(t *testing.T) {
	_, _, err := executeCommand(t, "--log-level", "loud", "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pocrop "), out)
}
