package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
http_addr: ":9000"
admin_token: "secret"
epoch: "2026-08"
threshold: 50
epochs:
  - "2026-08"
  - "2026-09"
postgres:
  host: "db.internal"
  port: 5432
  user: "star"
  database: "star"
`), 0o644)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddr)
	require.Equal(t, "secret", cfg.AdminToken)
	require.Equal(t, "2026-08", cfg.Epoch)
	require.Equal(t, uint32(50), cfg.Threshold)
	require.Equal(t, []string{"2026-08", "2026-09"}, cfg.Epochs)
	require.NotNil(t, cfg.Postgres)
	require.Equal(t, "db.internal", cfg.Postgres.Host)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`admin_token: "secret"`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, uint32(20), cfg.Threshold)
	require.Nil(t, cfg.Postgres)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewTripleStoreDefaultsToMemory(t *testing.T) {
	store, err := NewTripleStore(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, store)
}
