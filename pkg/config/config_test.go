package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oracle.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
ApplicationConfiguration:
  RPCEndpoint: "http://127.0.0.1:10332"
  Oracle:
    Enabled: true
    NodeTimeout: 2s
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	app := cfg.ApplicationConfiguration
	require.Equal(t, "http://127.0.0.1:10332", app.RPCEndpoint)
	require.Equal(t, defaultRPCTimeout, app.RPCTimeout)
	require.True(t, app.Oracle.Enabled)
	require.Equal(t, 2*time.Second, app.Oracle.NodeTimeout)
	require.Equal(t, defaultMaxConcurrentRequests, app.Oracle.MaxConcurrentRequests)
	require.Equal(t, defaultRequestTimeout, app.Oracle.RequestTimeout)
	require.Equal(t, defaultResponseTimeout, app.Oracle.ResponseTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}
