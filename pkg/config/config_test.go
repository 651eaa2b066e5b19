package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamestats/smite-stats/pkg/smite"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
api:
  dev_id: "1004"
  auth_key: "mysecretkey"
  session_file: "/var/lib/smite/session"
database:
  enabled: true
  dsn: "postgres://localhost/smite?sslmode=disable"
  max_open_conns: 5
harvest:
  queue: 440
  hours: [0, 1, 2]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "1004", cfg.API.DevID)
	assert.Equal(t, "mysecretkey", cfg.API.AuthKey)
	assert.Equal(t, "/var/lib/smite/session", cfg.API.SessionFile)
	assert.Equal(t, smite.DefaultEndpoint, cfg.API.Endpoint)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, 5, cfg.Database.MaxOpenConns)
	assert.Equal(t, 440, cfg.Harvest.Queue)
	assert.Equal(t, []int{0, 1, 2}, cfg.Harvest.Hours)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
api:
  dev_id: "1004"
  auth_key: "mysecretkey"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, smite.DefaultEndpoint, cfg.API.Endpoint)
	assert.Equal(t, ".smite-session", cfg.API.SessionFile)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SMITE_AUTH_KEY", "secret-from-env")
	path := writeConfig(t, `
api:
  dev_id: "1004"
  auth_key: "${SMITE_AUTH_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.API.AuthKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "api: [broken")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.dev_id is required")
	assert.Contains(t, err.Error(), "api.auth_key is required")
}

func TestValidate_DatabaseNeedsDSN(t *testing.T) {
	cfg := &Config{
		API:      APIConfig{DevID: "1004", AuthKey: "k"},
		Database: DatabaseConfig{Enabled: true},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.dsn is required")
}

func TestValidate_HarvestHoursRange(t *testing.T) {
	cfg := &Config{
		API:     APIConfig{DevID: "1004", AuthKey: "k"},
		Harvest: HarvestConfig{Hours: []int{0, 24}},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "harvest.hours")
}
