package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestZodiacCommand(t *testing.T) {
	out, err := execute(t, "zodiac", "2025-01-20")
	require.NoError(t, err)
	assert.Equal(t, "Wood Dragon (lunar year 2024)\n", out)

	out, err = execute(t, "zodiac", "1850-07-01")
	require.NoError(t, err)
	assert.Contains(t, out, "approximate")

	_, err = execute(t, "zodiac", "2025-02-30")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^lantern version \S+\n$`, out)
}

func TestStateCommands(t *testing.T) {
	t.Setenv("LANTERN_STORE_BACKEND", "file")
	t.Setenv("LANTERN_STORE_DIR", t.TempDir())

	out, err := execute(t, "state", "show")
	require.NoError(t, err)
	var snapshot map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &snapshot))
	assert.Equal(t, []any{}, snapshot["wishes"])

	out, err = execute(t, "state", "clear", "--session", "visitor")
	require.NoError(t, err)
	assert.Equal(t, "cleared visitor\n", out)

	out, err = execute(t, "state", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "visitor")
}

func TestLanternGetRequiresRemote(t *testing.T) {
	t.Setenv("LANTERN_STORE_BACKEND", "memory")
	_, err := execute(t, "lantern", "get", "42")
	assert.ErrorContains(t, err, "no lantern service configured")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "idle -- \"select_birthdate\" --> entering_transition")
	assert.NotContains(t, out, "classDef")
}
