package setup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, cfg.MCPServers)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRegister_PreservesOtherEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	existing := `{"theme":"dark","mcpServers":{"other":{"command":"/bin/other"}}}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	binary := filepath.Join(t.TempDir(), "mcp-server")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"), 0755))

	written, err := Register(Options{ConfigPath: path, BinaryPath: binary, DataDir: "/data/pq", History: true})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `"dark"`, string(raw["theme"]))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.MCPServers, "other")

	entry := cfg.MCPServers[ServerName]
	assert.Equal(t, binary, entry.Command)
	assert.Equal(t, "/data/pq", entry.Env["PQS_DATA_DIR"])
	assert.Equal(t, "true", entry.Env["PQS_HISTORY"])

	status, err := Inspect(path)
	require.NoError(t, err)
	assert.True(t, status.Registered)
	assert.True(t, status.History)
	assert.Empty(t, status.Issues)
}

func TestInspect(t *testing.T) {
	t.Run("not registered", func(t *testing.T) {
		status, err := Inspect(filepath.Join(t.TempDir(), "config.json"))
		require.NoError(t, err)
		assert.False(t, status.Registered)
		assert.Len(t, status.Issues, 1)
	})

	t.Run("missing binary", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		_, err := Register(Options{ConfigPath: path, BinaryPath: "/nonexistent/pq-mcp-server"})
		require.NoError(t, err)

		status, err := Inspect(path)
		require.NoError(t, err)
		assert.True(t, status.Registered)
		require.Len(t, status.Issues, 1)
		assert.Contains(t, status.Issues[0], "not found")
	})
}

func TestUnregister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	_, err := Register(Options{ConfigPath: path, BinaryPath: "/usr/bin/true"})
	require.NoError(t, err)

	removed, err := Unregister(path)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = Unregister(path)
	require.NoError(t, err)
	assert.False(t, removed)
}
