package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  timeout: 5s
  pretty: true
  maxBodyBytes: 1048576
  corsOrigins:
    - https://app.example.com
otel:
  endpoint: "collector:4317"
  service: myservice
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, 5*time.Second, cfg.Server.Timeout)
	require.True(t, cfg.Server.Pretty)
	require.Equal(t, int64(1048576), cfg.Server.MaxBodyBytes)
	require.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	require.Equal(t, "collector:4317", cfg.Otel.Endpoint)
	require.Equal(t, "myservice", cfg.Otel.Service)
}

func TestLoad_DefaultsForUnsetFields(t *testing.T) {
	path := writeConfig(t, `
server:
  pretty: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 10*time.Second, cfg.Server.Timeout)
	require.Equal(t, "graphbind", cfg.Otel.Service)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeConfig(t, `
server:
  adress: ":9000"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ""
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
