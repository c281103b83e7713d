package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommands_SQLite(t *testing.T) {
	t.Setenv("MATCH_SERVER_LOG_LEVEL", "error")
	t.Setenv("MATCH_DATABASE_DRIVER", "sqlite")
	t.Setenv("MATCH_DATABASE_URL", filepath.Join(t.TempDir(), "match.db"))

	out, err := runCommand(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "0", strings.TrimSpace(out))

	out, err = runCommand(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "00001_create_profiles.sql")

	_, err = runCommand(t, "migrate", "up")
	require.NoError(t, err)

	out, err = runCommand(t, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "applied")
	assert.NotContains(t, out, "pending")

	_, err = runCommand(t, "migrate", "down")
	require.NoError(t, err)

	out, err = runCommand(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "0", strings.TrimSpace(out))
}

func TestMigrateCommands_MemoryDriver(t *testing.T) {
	t.Setenv("MATCH_SERVER_LOG_LEVEL", "error")
	t.Setenv("MATCH_DATABASE_DRIVER", "memory")

	_, err := runCommand(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no schema to migrate")
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.NotNil(t, cmd.Flags().Lookup("migrate"))
}
