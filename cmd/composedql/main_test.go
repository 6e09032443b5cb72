package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "composedql.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Parser.AllowMissing)
	assert.False(t, cfg.Parser.Lenient)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
[parser]
allow_missing = true
lenient = true

[output]
format = "yaml"

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Parser.AllowMissing)
	assert.True(t, cfg.Parser.Lenient)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[output\nformat = "))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Parse(t *testing.T) {
	out, err := run(t, "parse", "a.b")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"a","type":"field","source":"a.b","properties":[{"name":"b","type":"property"}]}]`, out)
}

func TestRootCommand_ConfigFile(t *testing.T) {
	path := writeConfig(t, `
[parser]
lenient = true

[output]
format = "compact"
`)
	out, err := run(t, "--config", path, "parse", "~r(a)")
	require.NoError(t, err)
	assert.Equal(t, "~r resource\n  a field\n", out)

	out, err = run(t, "--config", path, "parse", "a(")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)
}

func TestRootCommand_FlagOverridesConfig(t *testing.T) {
	path := writeConfig(t, "[output]\nformat = \"compact\"\n")
	out, err := run(t, "--config", path, "parse", "a", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"a","type":"field","source":"a"}]`, out)
}

func TestRootCommand_LogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "debug", "check", "a")
	require.NoError(t, err)

	_, err = run(t, "--log-level", "loud", "check", "a")
	require.Error(t, err)
}

func TestRootCommand_MissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "parse", "a")
	require.Error(t, err)
}
