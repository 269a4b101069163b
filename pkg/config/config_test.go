package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uc-client/pkg/ucclient"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"UC_REMOTE", "UC_REMOTE_ADDR", "UC_REMOTE_PORT", "UC_LOCAL_PORT", "UC_CLIENT_ID",
		"UC_SKIP_VALIDATION", "LOG_LEVEL", "LOG_FORMAT", "UC_LISTEN_ADDRESS", "UC_TELEMETRY_PATH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
controller:
  remote_addr: 10.0.0.1
  remote_port: 9000
  local_port: 9001
log:
  level: debug
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ucclient.Endpoint{RemoteAddr: "10.0.0.1", RemotePort: 9000, LocalPort: 9001}, cfg.Endpoint())
	assert.True(t, cfg.HasEndpoint())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Web.ListenAddress)
	assert.Equal(t, "/metrics", cfg.Web.TelemetryPath)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("controller: [1, 2"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	cfg := Default()

	assert.False(t, cfg.HasEndpoint())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("UC_REMOTE", "10.0.0.5:7000")
	t.Setenv("UC_LOCAL_PORT", "7001")
	t.Setenv("UC_CLIENT_ID", "edge-1")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("UC_SKIP_VALIDATION", "true")

	cfg, err := Parse([]byte("controller:\n  remote_addr: 10.0.0.1\n  remote_port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, ucclient.Endpoint{RemoteAddr: "10.0.0.5", RemotePort: 7000, LocalPort: 7001}, cfg.Endpoint())
	assert.Equal(t, "edge-1", cfg.Controller.ClientID)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Controller.SkipValidation)
}

func TestEnvOverridesSplitWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("UC_REMOTE", "10.0.0.5:7000")
	t.Setenv("UC_REMOTE_ADDR", "10.0.0.6")
	t.Setenv("UC_REMOTE_PORT", "bad")

	cfg := Default()
	assert.Equal(t, "10.0.0.6", cfg.Controller.RemoteAddr)
	assert.Equal(t, 7000, cfg.Controller.RemotePort)
}
